package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// InsightStorage implements the InsightStorage interface for Badger
type InsightStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewInsightStorage creates a new InsightStorage instance
func NewInsightStorage(db *BadgerDB, logger arbor.ILogger) interfaces.InsightStorage {
	return &InsightStorage{
		db:     db,
		logger: logger,
	}
}

// Save appends a report. Reports are never overwritten.
func (s *InsightStorage) Save(ctx context.Context, report *models.InsightReport) error {
	if report.ID == "" {
		report.ID = common.NewInsightID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(report.ID, report); err != nil {
		return fmt.Errorf("failed to save insight report: %w", err)
	}

	s.logger.Debug().Str("id", report.ID).Int("content_len", len(report.Content)).Msg("Insight report saved")
	return nil
}

// Latest returns the most recent report
func (s *InsightStorage) Latest(ctx context.Context) (*models.InsightReport, error) {
	reports, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return reports[0], nil
}

// List returns up to limit reports, newest first. A limit <= 0 returns all.
func (s *InsightStorage) List(ctx context.Context, limit int) ([]*models.InsightReport, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var reports []models.InsightReport
	if err := s.db.Store().Find(&reports, query); err != nil {
		return nil, fmt.Errorf("failed to list insight reports: %w", err)
	}

	result := make([]*models.InsightReport, len(reports))
	for i := range reports {
		result[i] = &reports[i]
	}
	return result, nil
}
