// Package agent hosts the LLM orchestration layer: signature chains for
// chat, question answering, chain of thought, and retrieval-grounded
// generation, plus the ReAct tool-using agent graph.
package agent

import (
	"context"
	"fmt"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/khttp/DSPyBridge/internal/agent/conversation"
	"github.com/khttp/DSPyBridge/internal/agent/model"
	"github.com/khttp/DSPyBridge/internal/agent/observers"
	"github.com/khttp/DSPyBridge/internal/agent/parsers"
	"github.com/khttp/DSPyBridge/internal/agent/tools"
	"github.com/khttp/DSPyBridge/internal/config"
	errx "github.com/khttp/DSPyBridge/internal/core/error"
	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

// EmptyContextNote replaces an absent question context so the model never
// sees a dangling "Context:" label.
const EmptyContextNote = "No additional context provided."

// Options configures the agent service.
type Options struct {
	LLM           config.LLMConfig
	Registry      *tools.Registry
	Conversations *conversation.Manager
	MaxToolCalls  int
}

// Service exposes every generation mode over one configured backend. It is
// only constructed when an API key is present; callers run in fallback mode
// otherwise.
type Service struct {
	modelName    string
	chains       *signatureChains
	agentRunner  compose.Runnable[model.AgentInput, *schema.Message]
	conversation *conversation.Manager
	callbacks    einocb.Handler
}

// New builds the service against the configured Gemini backend.
func New(ctx context.Context, opts Options) (*Service, error) {
	if !opts.LLM.Configured() {
		return nil, fmt.Errorf("LLM backend is not configured")
	}
	chainModel, agentModel, err := newChatModels(ctx, opts.LLM)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, opts, chainModel, agentModel)
}

// assemble wires the chains and graph around the given models. Split from
// New so tests can substitute a deterministic chat model.
func assemble(ctx context.Context, opts Options, chainModel einomodel.BaseChatModel, agentModel einomodel.ToolCallingChatModel) (*Service, error) {
	if opts.Conversations == nil {
		return nil, fmt.Errorf("conversation manager is nil")
	}

	chains, err := newSignatureChains(ctx, chainModel)
	if err != nil {
		return nil, err
	}
	runner, err := buildAgentGraph(ctx, agentModel, opts.Registry, opts.MaxToolCalls)
	if err != nil {
		return nil, err
	}

	logx.Info().Str("model", opts.LLM.Model).Msg("agent service ready")
	return &Service{
		modelName:    opts.LLM.Model,
		chains:       chains,
		agentRunner:  runner,
		conversation: opts.Conversations,
		callbacks:    observers.NewAllCallbacks(),
	}, nil
}

// ModelName reports the backing model, for response metadata.
func (s *Service) ModelName() string {
	return s.modelName
}

// Chat answers a conversational message. An empty conversationID starts a
// new conversation under a fresh UUID; the id actually used is returned.
func (s *Service) Chat(ctx context.Context, conversationID, message string) (response, usedID string, err error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	history, err := s.conversation.Window(ctx, conversationID)
	if err != nil {
		return "", "", err
	}
	if err := s.conversation.AppendUser(ctx, conversationID, message); err != nil {
		return "", "", err
	}

	out, err := s.invoke(ctx, s.chains.chat, map[string]any{
		"history": history,
		"message": message,
	})
	if err != nil {
		return "", "", err
	}

	if err := s.conversation.AppendAssistant(ctx, conversationID, out); err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to save assistant reply")
	}
	return out, conversationID, nil
}

// Answer runs the question answering signature.
func (s *Service) Answer(ctx context.Context, question, questionContext string) (string, error) {
	return s.AnswerWithExamples(ctx, question, questionContext, nil)
}

// AnswerWithExamples runs the question answering signature with few-shot
// exemplar turns ahead of the question.
func (s *Service) AnswerWithExamples(ctx context.Context, question, questionContext string, examples []model.Exemplar) (string, error) {
	turns := make([]*schema.Message, 0, len(examples)*2)
	for _, ex := range examples {
		turns = append(turns,
			schema.UserMessage(ex.Question),
			schema.AssistantMessage(ex.Answer, nil),
		)
	}
	return s.invoke(ctx, s.chains.qa, map[string]any{
		"examples": turns,
		"question": question,
		"context":  orEmptyContextNote(questionContext),
	})
}

// Reason runs the chain of thought signature and splits the reply into its
// reasoning and answer sections.
func (s *Service) Reason(ctx context.Context, question, questionContext string) (answer, reasoning string, err error) {
	out, err := s.invoke(ctx, s.chains.cot, map[string]any{
		"question": question,
		"context":  orEmptyContextNote(questionContext),
	})
	if err != nil {
		return "", "", err
	}
	reasoning, answer = parsers.ParseSections(out)
	return answer, reasoning, nil
}

// GenerateRAG answers a query grounded on retrieved context. Satisfies
// rag.Generator.
func (s *Service) GenerateRAG(ctx context.Context, query, docContext string) (string, error) {
	return s.invoke(ctx, s.chains.rag, map[string]any{
		"query":   query,
		"context": docContext,
	})
}

// RunAgent executes the ReAct graph for one request.
func (s *Service) RunAgent(ctx context.Context, in model.AgentInput) (*model.AgentResult, error) {
	opts := []compose.Option{compose.WithCallbacks(s.callbacks)}
	var modelOpts []einomodel.Option
	if in.MaxTokens != nil && *in.MaxTokens > 0 {
		modelOpts = append(modelOpts, einomodel.WithMaxTokens(*in.MaxTokens))
	}
	if in.Temperature != nil {
		modelOpts = append(modelOpts, einomodel.WithTemperature(float32(*in.Temperature)))
	}
	if len(modelOpts) > 0 {
		opts = append(opts, compose.WithChatModelOption(modelOpts...))
	}

	out, err := s.agentRunner.Invoke(ctx, in, opts...)
	if err != nil {
		return nil, errx.GenerationFailure(err)
	}
	if out == nil {
		return nil, errx.GenerationFailure(fmt.Errorf("agent returned no message"))
	}

	result := &model.AgentResult{Response: strings.TrimSpace(out.Content)}
	if used, ok := out.Extra[extraToolsUsed].([]string); ok {
		result.ToolsUsed = used
	}
	return result, nil
}

func (s *Service) invoke(ctx context.Context, chain signatureChain, vars map[string]any) (string, error) {
	out, err := chain.Invoke(ctx, vars, compose.WithCallbacks(s.callbacks))
	if err != nil {
		return "", errx.GenerationFailure(err)
	}
	if out == nil {
		return "", errx.GenerationFailure(fmt.Errorf("chain returned no message"))
	}
	return strings.TrimSpace(out.Content), nil
}

func orEmptyContextNote(questionContext string) string {
	if strings.TrimSpace(questionContext) == "" {
		return EmptyContextNote
	}
	return questionContext
}
