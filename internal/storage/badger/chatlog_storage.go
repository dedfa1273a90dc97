package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// ChatLogStorage implements the ChatLogStorage interface for Badger
type ChatLogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex
}

// NewChatLogStorage creates a new ChatLogStorage instance
func NewChatLogStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChatLogStorage {
	return &ChatLogStorage{
		db:     db,
		logger: logger,
	}
}

// SaveAll stores exchanges whose exact question text is new
func (s *ChatLogStorage) SaveAll(ctx context.Context, exchanges []models.ChatExchange) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := 0
	for _, exchange := range exchanges {
		if exchange.Question == "" {
			continue
		}

		count, err := s.db.Store().Count(&models.ChatLog{}, badgerhold.Where("Question").Eq(exchange.Question).Index("Question"))
		if err != nil {
			return saved, fmt.Errorf("failed to check chat log: %w", err)
		}
		if count > 0 {
			continue
		}

		log := &models.ChatLog{
			ID:        common.NewChatID(),
			CreatedAt: time.Now(),
			Question:  exchange.Question,
			Answer:    exchange.Answer,
		}
		if err := s.db.Store().Insert(log.ID, log); err != nil {
			return saved, fmt.Errorf("failed to save chat log: %w", err)
		}
		saved++
	}

	s.logger.Debug().Int("received", len(exchanges)).Int("saved", saved).Msg("Chat logs saved")
	return saved, nil
}

// ListSince returns logs created at or after since, oldest first
func (s *ChatLogStorage) ListSince(ctx context.Context, since time.Time) ([]*models.ChatLog, error) {
	var logs []models.ChatLog
	query := badgerhold.Where("CreatedAt").Ge(since).SortBy("CreatedAt")
	if err := s.db.Store().Find(&logs, query); err != nil {
		return nil, fmt.Errorf("failed to list chat logs: %w", err)
	}

	result := make([]*models.ChatLog, len(logs))
	for i := range logs {
		result[i] = &logs[i]
	}
	return result, nil
}

// Count returns the number of stored logs
func (s *ChatLogStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.ChatLog{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count chat logs: %w", err)
	}
	return int(count), nil
}
