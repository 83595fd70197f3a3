package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/khttp/DSPyBridge/internal/agent/model"
	"github.com/khttp/DSPyBridge/internal/agent/prompts"
	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

const (
	NodePromptAssembler = "PromptAssembler"
	NodeAgentChatModel  = "AgentChatModel"
	NodeToolExecutor    = "ToolExecutor"
)

const DefaultMaxToolCalls = 6

// extraToolsUsed is the message Extra key carrying the tools executed during
// the invocation, set on the final assistant message.
const extraToolsUsed = "tools_used"

// normalizeMaxToolCalls returns a sane default when the provided value is invalid.
func normalizeMaxToolCalls(n int) int {
	if n <= 0 {
		return DefaultMaxToolCalls
	}
	return n
}

// checkAndMarkToolLimit evaluates whether another tool call would exceed the
// limit and, if so, marks the state accordingly. Returns true when marked now.
func checkAndMarkToolLimit(state *model.AgentState, max int) bool {
	max = normalizeMaxToolCalls(max)
	if !state.ToolCallLimitReached && state.ToolCallCount >= max {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}

// incrementToolCallAndCheck increments the count and marks the state if it
// exceeds the limit after incrementing. Returns true when exceeded.
func incrementToolCallAndCheck(state *model.AgentState, max int) bool {
	max = normalizeMaxToolCalls(max)
	state.ToolCallCount++
	if state.ToolCallCount > max {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}

// newPromptAssemblerPreHandler resets the per-invocation state.
func newPromptAssemblerPreHandler() func(context.Context, model.AgentInput, *model.AgentState) (model.AgentInput, error) {
	return func(ctx context.Context, in model.AgentInput, s *model.AgentState) (model.AgentInput, error) {
		s.History = nil
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0
		s.ToolsUsed = nil
		return in, nil
	}
}

// newPromptAssemblerNode turns the request into the initial message list:
// the agent system prompt naming the available tools, then the user message.
func newPromptAssemblerNode(toolNames []string) *compose.Lambda {
	systemPrompt := prompts.AgentSystem(toolNames)
	return compose.InvokableLambda(func(ctx context.Context, in model.AgentInput) ([]*schema.Message, error) {
		if strings.TrimSpace(in.Message) == "" {
			return nil, fmt.Errorf("agent message is empty")
		}
		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(in.Message),
		}, nil
	})
}

// newChatModelPreHandler accumulates incoming messages into the invocation
// history and injects the wrap-up notice once the tool call limit is hit.
func newChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AgentState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AgentState) ([]*schema.Message, error) {
		// Gemini requires tool results to carry the originating call id;
		// backfill from the latest assistant tool call when the provider
		// dropped it.
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					if id := msg.ToolCalls[0].ID; strings.TrimSpace(id) != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			limit := normalizeMaxToolCalls(maxToolCalls)
			wrapUp := schema.SystemMessage(fmt.Sprintf(
				"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
					"Synthesize a helpful response from the information already gathered "+
					"and acknowledge any gaps you could not fill.",
				limit,
			))
			state.History = append(state.History, wrapUp)
			logx.Debug().Int("limit", limit).Msg("tool call limit reached, injecting wrap-up notice")
		}

		return state.History, nil
	}
}

// newChatModelPostHandler records the model output in the history,
// synthesizes missing tool call ids, and stamps the tools used onto the
// final assistant message so the runner can report them.
func newChatModelPostHandler() func(context.Context, *schema.Message, *model.AgentState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AgentState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("chat model returned nil message")
		}

		for i := range out.ToolCalls {
			if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
				state.ToolCallIDSeq++
				out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 && !state.ToolCallLimitReached {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("agent requesting tools")
			return out, nil
		}

		if len(state.ToolsUsed) > 0 {
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			used := make([]string, len(state.ToolsUsed))
			copy(used, state.ToolsUsed)
			out.Extra[extraToolsUsed] = used
		}
		logx.Debug().Msg("agent response ready")
		return out, nil
	}
}

// newToolExecutorCondition routes to the tool executor while the model keeps
// requesting tools and the limit has not been reached.
func newToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		_ = compose.ProcessState(ctx, func(_ context.Context, state *model.AgentState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})

		if limitReached {
			return compose.END, nil
		}
		if len(input.ToolCalls) > 0 {
			return NodeToolExecutor, nil
		}
		return compose.END, nil
	}
}

// newToolExecutorPreHandler counts tool calls against the limit and records
// which tools the model invoked.
func newToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AgentState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AgentState) (*schema.Message, error) {
		for _, tc := range in.ToolCalls {
			if name := strings.TrimSpace(tc.Function.Name); name != "" {
				state.ToolsUsed = append(state.ToolsUsed, name)
			}
		}

		exceeded := incrementToolCallAndCheck(state, maxToolCalls)
		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Bool("limit_exceeded", exceeded).
			Msg("tool execution attempt")
		return in, nil
	}
}
