package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.AddMessage(ctx, "c1", schema.UserMessage("hello")))
	require.NoError(t, repo.AddMessage(ctx, "c1", schema.AssistantMessage("hi there", nil)))
	require.NoError(t, repo.AddMessage(ctx, "c2", schema.UserMessage("other conversation")))

	history, err := repo.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, schema.User, history.Messages[0].Role)
	assert.Equal(t, "hello", history.Messages[0].Content)
	assert.Equal(t, schema.Assistant, history.Messages[1].Role)

	count, err := repo.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.ClearHistory(ctx, "c1"))
	count, err = repo.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// other conversations are untouched
	count, err = repo.GetMessageCount(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryRepositoryLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.AddMessage(ctx, "c1", schema.UserMessage("original")))

	history, err := repo.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	history.Messages[0] = schema.UserMessage("mutated")

	reloaded, err := repo.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "original", reloaded.Messages[0].Content)
}

func TestManagerWindowTrimsOldTurns(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	mgr := NewManager(repo, 4)

	for i := 0; i < 6; i++ {
		require.NoError(t, mgr.AppendUser(ctx, "c1", fmt.Sprintf("question %d", i)))
		require.NoError(t, mgr.AppendAssistant(ctx, "c1", fmt.Sprintf("answer %d", i)))
	}

	window, err := mgr.Window(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, window, 4)
	assert.Equal(t, "question 5", window[2].Content)
	assert.Equal(t, "answer 5", window[3].Content)

	// the repository still holds everything
	count, err := mgr.Count(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}

func TestManagerWindowShortHistory(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(NewMemoryRepository(), 10)

	require.NoError(t, mgr.AppendUser(ctx, "c1", "only message"))

	window, err := mgr.Window(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "only message", window[0].Content)
}

func TestManagerClear(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(NewMemoryRepository(), 10)

	require.NoError(t, mgr.AppendUser(ctx, "c1", "hello"))
	require.NoError(t, mgr.Clear(ctx, "c1"))

	window, err := mgr.Window(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, window)
}
