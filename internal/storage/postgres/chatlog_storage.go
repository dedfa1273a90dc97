package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// ChatLogStorage implements ChatLogStorage on the chat_logs table
type ChatLogStorage struct {
	db     *DB
	logger arbor.ILogger
}

// NewChatLogStorage creates a new ChatLogStorage
func NewChatLogStorage(db *DB, logger arbor.ILogger) interfaces.ChatLogStorage {
	return &ChatLogStorage{db: db, logger: logger}
}

// SaveAll inserts exchanges in one transaction; the unique question index
// drops repeats
func (s *ChatLogStorage) SaveAll(ctx context.Context, exchanges []models.ChatExchange) (int, error) {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	saved := 0
	for _, exchange := range exchanges {
		if exchange.Question == "" {
			continue
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO chat_logs (id, created_at, question, answer) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (md5(question)) DO NOTHING`,
			common.NewChatID(), time.Now(), exchange.Question, exchange.Answer)
		if err != nil {
			return 0, fmt.Errorf("failed to save chat log: %w", err)
		}
		saved += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit chat logs: %w", err)
	}
	return saved, nil
}

func (s *ChatLogStorage) ListSince(ctx context.Context, since time.Time) ([]*models.ChatLog, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT id, created_at, question, answer FROM chat_logs WHERE created_at >= $1 ORDER BY created_at`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ChatLog
	for rows.Next() {
		var log models.ChatLog
		if err := rows.Scan(&log.ID, &log.CreatedAt, &log.Question, &log.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan chat log: %w", err)
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}

func (s *ChatLogStorage) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chat logs: %w", err)
	}
	return count, nil
}
