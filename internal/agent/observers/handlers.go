// Package observers wires eino callback handlers that log the prompt,
// model, and tool lifecycle of every invocation at debug level.
package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewAllCallbacks aggregates the prompt, model, and tool observers into one
// callbacks.Handler. Attach it via compose.WithCallbacks when invoking a
// chain or graph.
func NewAllCallbacks() einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		Prompt(newPromptHandler()).
		ChatModel(newModelHandler()).
		Tool(newToolHandler()).
		Handler()
}
