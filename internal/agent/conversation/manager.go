package conversation

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/khttp/DSPyBridge/internal/agent/model"
)

// Manager wraps a ConversationRepository with the windowing policy the
// chat endpoints use: prompts see only the most recent turns, while the
// repository keeps the full history.
type Manager struct {
	repo     model.ConversationRepository
	maxTurns int
}

func NewManager(repo model.ConversationRepository, maxTurns int) *Manager {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &Manager{repo: repo, maxTurns: maxTurns}
}

// Window returns the most recent turns of a conversation, oldest first.
func (m *Manager) Window(ctx context.Context, conversationID string) ([]*schema.Message, error) {
	history, err := m.repo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return trimTail(history.Messages, m.maxTurns), nil
}

func (m *Manager) AppendUser(ctx context.Context, conversationID, content string) error {
	return m.repo.AddMessage(ctx, conversationID, schema.UserMessage(content))
}

func (m *Manager) AppendAssistant(ctx context.Context, conversationID, content string) error {
	return m.repo.AddMessage(ctx, conversationID, schema.AssistantMessage(content, nil))
}

func (m *Manager) Clear(ctx context.Context, conversationID string) error {
	return m.repo.ClearHistory(ctx, conversationID)
}

func (m *Manager) Count(ctx context.Context, conversationID string) (int, error) {
	return m.repo.GetMessageCount(ctx, conversationID)
}

// trimTail keeps the last maxTurns messages, copying so callers never
// share the repository's backing slice.
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
