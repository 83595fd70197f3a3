package model

import (
	"github.com/cloudwego/eino/schema"
)

// AgentState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Do not access AgentState directly from outside handlers. For persistence,
//     use repositories/services (e.g., conversation.Manager).
type AgentState struct {
	History              []*schema.Message // mutated only inside Eino state handlers
	ToolCallCount        int               // maintained in handlers (reset/increment)
	ToolCallLimitReached bool              // set when tool call limit is exceeded
	ToolCallIDSeq        int               // local sequence to synthesize tool_call_id when provider omits
	ToolsUsed            []string          // tool names executed during this invocation, in order
}

// AgentInput represents one request into the agent graph.
type AgentInput struct {
	Message     string   `json:"message"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// AgentResult holds the final model answer plus the tools that produced it.
type AgentResult struct {
	Response  string
	ToolsUsed []string
}

// Exemplar is one question/answer pair used for few-shot prompting.
type Exemplar struct {
	Question string
	Answer   string
}
