package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	config := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}
	manager, err := NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestInsightStorage_LatestByCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := newTestManager(t).InsightStorage()

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	base := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	seeds := []struct {
		content string
		offset  time.Duration
	}{
		{"middle", time.Hour},
		{"newest", 2 * time.Hour},
		{"oldest", 0},
	}
	for _, seed := range seeds {
		report := &models.InsightReport{ID: common.NewInsightID(), CreatedAt: base.Add(seed.offset), Content: seed.content}
		require.NoError(t, store.Save(ctx, report))
	}

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newest", latest.Content)

	list, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newest", list[0].Content)
	assert.Equal(t, "middle", list[1].Content)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInsightStorage_AssignsIdentity(t *testing.T) {
	ctx := context.Background()
	store := newTestManager(t).InsightStorage()

	report := &models.InsightReport{Content: "briefing"}
	require.NoError(t, store.Save(ctx, report))

	assert.NotEmpty(t, report.ID)
	assert.False(t, report.CreatedAt.IsZero())

	// Append-only: a second save under the same ID is rejected
	assert.Error(t, store.Save(ctx, report))
}

func TestChatLogStorage_DeduplicatesQuestions(t *testing.T) {
	ctx := context.Background()
	store := newTestManager(t).ChatLogStorage()

	saved, err := store.SaveAll(ctx, []models.ChatExchange{
		{Question: "What is RAG?", Answer: "Retrieval augmented generation"},
		{Question: "Gangnam vacancy rate?", Answer: "Rising"},
		{Question: "What is RAG?", Answer: "duplicate inside batch"},
		{Question: "", Answer: "ignored"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	saved, err = store.SaveAll(ctx, []models.ChatExchange{
		{Question: "What is RAG?", Answer: "again"},
		{Question: "what is rag?", Answer: "different case is a different question"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestChatLogStorage_ListSince(t *testing.T) {
	ctx := context.Background()
	store := newTestManager(t).ChatLogStorage()

	before := time.Now().Add(-time.Minute)
	_, err := store.SaveAll(ctx, []models.ChatExchange{{Question: "q1"}, {Question: "q2"}})
	require.NoError(t, err)

	logs, err := store.ListSince(ctx, before)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "q1", logs[0].Question)

	logs, err = store.ListSince(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, logs)
}
