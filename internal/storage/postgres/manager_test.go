package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// Runs against a disposable database named by AUGUR_TEST_POSTGRES_URL
func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	url := os.Getenv("AUGUR_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("AUGUR_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	manager, err := NewManager(ctx, arbor.NewLogger(), &common.PostgresConfig{URL: url, MaxConns: 4, MinConns: 1})
	require.NoError(t, err)

	pool := manager.(*Manager).db.Pool()
	_, err = pool.Exec(ctx, `TRUNCATE daily_insights, chat_logs`)
	require.NoError(t, err)

	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestPostgres_InsightRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.InsightStorage()

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	base := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, &models.InsightReport{CreatedAt: base, Content: "older"}))
	require.NoError(t, store.Save(ctx, &models.InsightReport{CreatedAt: base.Add(time.Hour), Content: "newer"}))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", latest.Content)

	list, err := store.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPostgres_ChatLogDedup(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	store := manager.ChatLogStorage()

	saved, err := store.SaveAll(ctx, []models.ChatExchange{{Question: "a"}, {Question: "b"}, {Question: "a"}})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	saved, err = store.SaveAll(ctx, []models.ChatExchange{{Question: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 0, saved)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
