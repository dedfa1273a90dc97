package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
)

func TestNewStorageManager(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = filepath.Join(t.TempDir(), "db")

	manager, err := NewStorageManager(context.Background(), arbor.NewLogger(), config)
	require.NoError(t, err)
	defer manager.Close()

	assert.NotNil(t, manager.InsightStorage())
	assert.NotNil(t, manager.ChatLogStorage())

	config.Storage.Type = "sqlite"
	_, err = NewStorageManager(context.Background(), arbor.NewLogger(), config)
	assert.Error(t, err)
}
