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

func TestNewBadgerDB_RequiresPath(t *testing.T) {
	_, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{})
	assert.Error(t, err)
}

func TestNewBadgerDB_ReopenKeepsBriefings(t *testing.T) {
	ctx := context.Background()
	logger := arbor.NewLogger()
	config := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}

	manager, err := NewManager(logger, config)
	require.NoError(t, err)
	require.NoError(t, manager.InsightStorage().Save(ctx, &models.InsightReport{
		CreatedAt: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
		Content:   "kept",
	}))
	require.NoError(t, manager.Close())

	reopened, err := NewManager(logger, config)
	require.NoError(t, err)
	latest, err := reopened.InsightStorage().Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kept", latest.Content)
	require.NoError(t, reopened.Close())

	config.ResetOnStartup = true
	reset, err := NewManager(logger, config)
	require.NoError(t, err)
	defer reset.Close()
	_, err = reset.InsightStorage().Latest(ctx)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestBadgerDB_CloseTwice(t *testing.T) {
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)

	rewritten, err := db.CollectGarbage()
	require.NoError(t, err)
	assert.Equal(t, 0, rewritten)

	require.NoError(t, db.Close())
	assert.NoError(t, db.Close())
}
