// Package prompts holds the chat templates for every generation mode.
// System prompts live in template/ and are embedded at build time.
package prompts

import (
	_ "embed"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/chat_system.txt
var chatSystemPrompt string

//go:embed template/qa_system.txt
var qaSystemPrompt string

//go:embed template/cot_system.txt
var cotSystemPrompt string

//go:embed template/rag_system.txt
var ragSystemPrompt string

//go:embed template/agent_system.txt
var agentSystemPrompt string

// ChatTemplate builds the conversational template. The "history" placeholder
// carries the windowed conversation turns, oldest first.
func ChatTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(chatSystemPrompt),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{message}"),
	)
}

// QATemplate builds the question answering template. The "examples"
// placeholder carries few-shot exemplar turns and stays empty for plain QA.
func QATemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(qaSystemPrompt),
		schema.MessagesPlaceholder("examples", true),
		schema.UserMessage("Context: {context}\n\nQuestion: {question}"),
	)
}

// CoTTemplate builds the chain of thought template. The system prompt pins
// the Reasoning/Answer section format that the reply parser expects.
func CoTTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(cotSystemPrompt),
		schema.UserMessage("Context: {context}\n\nQuestion: {question}"),
	)
}

// RAGTemplate builds the retrieval-grounded template.
func RAGTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(ragSystemPrompt),
		schema.UserMessage("Retrieved context:\n{context}\n\nQuery: {query}"),
	)
}

// AgentSystem renders the agent system prompt with the registered tool
// names. Rendered with a plain replacer so braces elsewhere in the template
// never collide with formatting.
func AgentSystem(toolNames []string) string {
	tools := "none"
	if len(toolNames) > 0 {
		tools = strings.Join(toolNames, ", ")
	}
	return strings.NewReplacer("{tools}", tools).Replace(agentSystemPrompt)
}
