package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/augur/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// InsightStorage persists daily briefings. Reports are append-only.
type InsightStorage interface {
	// Save appends a report. ID and CreatedAt are assigned when empty.
	Save(ctx context.Context, report *models.InsightReport) error

	// Latest returns the report with the greatest CreatedAt.
	// Returns ErrNotFound when no report exists.
	Latest(ctx context.Context) (*models.InsightReport, error)

	// List returns up to limit reports, newest first.
	List(ctx context.Context, limit int) ([]*models.InsightReport, error)
}

// ChatLogStorage persists question/answer pairs from the assistant UI
type ChatLogStorage interface {
	// SaveAll stores exchanges whose question text has not been seen before.
	// Returns the number of newly stored rows.
	SaveAll(ctx context.Context, exchanges []models.ChatExchange) (int, error)

	// ListSince returns logs created at or after since, oldest first.
	ListSince(ctx context.Context, since time.Time) ([]*models.ChatLog, error)

	// Count returns the total number of stored logs.
	Count(ctx context.Context) (int, error)
}

// StorageManager owns the storage backend and its lifetime
type StorageManager interface {
	InsightStorage() InsightStorage
	ChatLogStorage() ChatLogStorage
	Close() error
}
