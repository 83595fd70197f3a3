package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "docs", cfg.RAG.DocsDir)
	assert.Equal(t, 3, cfg.RAG.DefaultTopK)
	assert.Equal(t, 10, cfg.RAG.MaxTopK)
	assert.Equal(t, "memory", cfg.Conversation.Store)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.Equal(t, 6, cfg.Agent.MaxToolCalls)
	assert.Equal(t, "train-data", cfg.Training.DataDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DOCS_DIR", "/tmp/corpus")
	t.Setenv("CONVERSATION_TTL", "1h")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/corpus", cfg.RAG.DocsDir)
	assert.True(t, cfg.LLM.Configured())

	ttl, err := cfg.Conversation.ParseTTL()
	require.NoError(t, err)
	assert.Equal(t, "1h0m0s", ttl.String())
}

func TestParseTTLInvalid(t *testing.T) {
	c := ConversationConfig{TTL: "not-a-duration"}
	_, err := c.ParseTTL()
	assert.Error(t, err)
}

func TestConfiguredEmptyKey(t *testing.T) {
	assert.False(t, LLMConfig{}.Configured())
}
