package postgres

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
)

// Manager implements the StorageManager interface for PostgreSQL
type Manager struct {
	db      *DB
	insight interfaces.InsightStorage
	chatLog interfaces.ChatLogStorage
}

// NewManager connects and returns a storage manager
func NewManager(ctx context.Context, logger arbor.ILogger, config *common.PostgresConfig) (interfaces.StorageManager, error) {
	db, err := NewDB(ctx, logger, config)
	if err != nil {
		return nil, err
	}

	logger.Info().Msg("Postgres storage manager initialized")

	return &Manager{
		db:      db,
		insight: NewInsightStorage(db, logger),
		chatLog: NewChatLogStorage(db, logger),
	}, nil
}

func (m *Manager) InsightStorage() interfaces.InsightStorage {
	return m.insight
}

func (m *Manager) ChatLogStorage() interfaces.ChatLogStorage {
	return m.chatLog
}

func (m *Manager) Close() error {
	m.db.Close()
	return nil
}
