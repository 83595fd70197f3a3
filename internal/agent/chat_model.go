package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/khttp/DSPyBridge/internal/config"
	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

// newChatModels creates the Gemini chat models over one shared client: one
// plain model for the signature chains and one for the agent graph, which
// later gets the tool set bound to it.
func newChatModels(ctx context.Context, cfg config.LLMConfig) (chainModel, agentModel *gemini.ChatModel, err error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("failed to create Gemini client")
		return nil, nil, fmt.Errorf("create Gemini client: %w", err)
	}

	modelCfg := func() *gemini.Config {
		c := &gemini.Config{
			Client:      client,
			Model:       cfg.Model,
			Temperature: genai.Ptr(cfg.Temperature),
			MaxTokens:   genai.Ptr(cfg.MaxTokens),
		}
		if cfg.ThinkingBudget > 0 {
			c.ThinkingConfig = &genai.ThinkingConfig{
				IncludeThoughts: true,
				ThinkingBudget:  genai.Ptr(int32(cfg.ThinkingBudget)),
			}
		}
		return c
	}

	chainModel, err = gemini.NewChatModel(ctx, modelCfg())
	if err != nil {
		return nil, nil, fmt.Errorf("create chain chat model: %w", err)
	}
	agentModel, err = gemini.NewChatModel(ctx, modelCfg())
	if err != nil {
		return nil, nil, fmt.Errorf("create agent chat model: %w", err)
	}
	return chainModel, agentModel, nil
}
