package agent

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/khttp/DSPyBridge/internal/agent/prompts"
)

// signatureChain is a compiled template→model pipeline for one generation
// mode. Chains are compiled once at startup and reused across requests.
type signatureChain = compose.Runnable[map[string]any, *schema.Message]

// signatureChains holds one chain per generation mode.
type signatureChains struct {
	chat signatureChain
	qa   signatureChain
	cot  signatureChain
	rag  signatureChain
}

func newSignatureChains(ctx context.Context, cm einomodel.BaseChatModel) (*signatureChains, error) {
	chat, err := compileChain(ctx, prompts.ChatTemplate(), cm)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}
	qa, err := compileChain(ctx, prompts.QATemplate(), cm)
	if err != nil {
		return nil, fmt.Errorf("compile qa chain: %w", err)
	}
	cot, err := compileChain(ctx, prompts.CoTTemplate(), cm)
	if err != nil {
		return nil, fmt.Errorf("compile cot chain: %w", err)
	}
	rag, err := compileChain(ctx, prompts.RAGTemplate(), cm)
	if err != nil {
		return nil, fmt.Errorf("compile rag chain: %w", err)
	}
	return &signatureChains{chat: chat, qa: qa, cot: cot, rag: rag}, nil
}

func compileChain(ctx context.Context, tpl prompt.ChatTemplate, cm einomodel.BaseChatModel) (signatureChain, error) {
	return compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(tpl).
		AppendChatModel(cm).
		Compile(ctx)
}
