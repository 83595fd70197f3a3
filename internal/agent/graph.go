package agent

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/khttp/DSPyBridge/internal/agent/model"
	"github.com/khttp/DSPyBridge/internal/agent/tools"
	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

// buildAgentGraph composes the ReAct loop: prompt assembly, a tool-calling
// chat model, and a tool executor that feeds results back to the model until
// it stops requesting tools or hits the call limit.
func buildAgentGraph(
	ctx context.Context,
	cm einomodel.ToolCallingChatModel,
	registry *tools.Registry,
	maxToolCalls int,
) (compose.Runnable[model.AgentInput, *schema.Message], error) {
	if cm == nil {
		return nil, fmt.Errorf("agent chat model is nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("tool registry is nil")
	}

	infos, err := registry.Infos(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect tool infos: %w", err)
	}
	chatModel := cm
	if len(infos) > 0 {
		chatModel, err = cm.WithTools(infos)
		if err != nil {
			logx.Error().Err(err).Msg("failed to bind tools to agent model")
			return nil, fmt.Errorf("bind tools: %w", err)
		}
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               registry.Tools(),
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Hallucinated or malformed tool calls get a structured result
			// the model can recover from instead of a hard failure.
			logx.Warn().Str("tool_name", name).Str("arguments", input).
				Msg("unknown tool call, returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create tools node: %w", err)
	}

	g := compose.NewGraph[model.AgentInput, *schema.Message](
		compose.WithGenLocalState(func(ctx context.Context) *model.AgentState {
			return &model.AgentState{}
		}),
	)

	g.AddLambdaNode(NodePromptAssembler,
		newPromptAssemblerNode(registry.Names()),
		compose.WithStatePreHandler(newPromptAssemblerPreHandler()),
	)
	g.AddChatModelNode(NodeAgentChatModel,
		chatModel,
		compose.WithStatePreHandler(newChatModelPreHandler(maxToolCalls)),
		compose.WithStatePostHandler(newChatModelPostHandler()),
	)
	g.AddToolsNode(NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(newToolExecutorPreHandler(maxToolCalls)),
	)

	edges := [][2]string{
		{compose.START, NodePromptAssembler},
		{NodePromptAssembler, NodeAgentChatModel},
		{NodeToolExecutor, NodeAgentChatModel},
	}
	for _, edge := range edges {
		g.AddEdge(edge[0], edge[1])
	}

	branch := compose.NewGraphBranch(
		newToolExecutorCondition(),
		map[string]bool{
			NodeToolExecutor: true,
			compose.END:      true,
		},
	)
	if err := g.AddBranch(NodeAgentChatModel, branch); err != nil {
		return nil, fmt.Errorf("add tool executor branch: %w", err)
	}

	// Bound run steps so a looping model cannot spin forever.
	maxSteps := 10 + normalizeMaxToolCalls(maxToolCalls)*2
	if maxSteps < 20 {
		maxSteps = 20
	}
	runnable, err := g.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("failed to compile agent graph")
		return nil, fmt.Errorf("compile agent graph: %w", err)
	}

	logx.Debug().Int("max_steps", maxSteps).Msg("agent graph compiled")
	return runnable, nil
}
