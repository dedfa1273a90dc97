package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	insight interfaces.InsightStorage
	chatLog interfaces.ChatLogStorage
	logger  arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		insight: NewInsightStorage(db, logger),
		chatLog: NewChatLogStorage(db, logger),
		logger:  logger,
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return manager, nil
}

// InsightStorage returns the insight report storage
func (m *Manager) InsightStorage() interfaces.InsightStorage {
	return m.insight
}

// ChatLogStorage returns the chat log storage
func (m *Manager) ChatLogStorage() interfaces.ChatLogStorage {
	return m.chatLog
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}
