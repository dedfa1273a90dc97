package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// InsightStorage implements InsightStorage on the daily_insights table
type InsightStorage struct {
	db     *DB
	logger arbor.ILogger
}

// NewInsightStorage creates a new InsightStorage
func NewInsightStorage(db *DB, logger arbor.ILogger) interfaces.InsightStorage {
	return &InsightStorage{db: db, logger: logger}
}

func (s *InsightStorage) Save(ctx context.Context, report *models.InsightReport) error {
	if report.ID == "" {
		report.ID = common.NewInsightID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO daily_insights (id, created_at, content) VALUES ($1, $2, $3)`,
		report.ID, report.CreatedAt, report.Content)
	if err != nil {
		return fmt.Errorf("failed to save insight report: %w", err)
	}
	return nil
}

func (s *InsightStorage) Latest(ctx context.Context) (*models.InsightReport, error) {
	var report models.InsightReport
	err := s.db.pool.QueryRow(ctx,
		`SELECT id, created_at, content FROM daily_insights ORDER BY created_at DESC LIMIT 1`,
	).Scan(&report.ID, &report.CreatedAt, &report.Content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest insight: %w", err)
	}
	return &report, nil
}

func (s *InsightStorage) List(ctx context.Context, limit int) ([]*models.InsightReport, error) {
	query := `SELECT id, created_at, content FROM daily_insights ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var reports []*models.InsightReport
	for rows.Next() {
		var report models.InsightReport
		if err := rows.Scan(&report.ID, &report.CreatedAt, &report.Content); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}
