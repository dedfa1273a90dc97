package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// DefaultSchedule runs the batch every day at 07:00
const DefaultSchedule = "0 7 * * *"

// Service implements SchedulerService around a single daily batch
type Service struct {
	ctx    context.Context
	batch  *Batch
	locker RunLocker
	cron   *cron.Cron
	logger arbor.ILogger

	mu       sync.Mutex // Protects running and entryID
	running  bool
	entryID  cron.EntryID
	schedule cron.Schedule
}

var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates a scheduler. ctx bounds every run the service starts and
// is normally the process shutdown context.
func NewService(ctx context.Context, batch *Batch, locker RunLocker, logger arbor.ILogger) *Service {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Service{
		ctx:    ctx,
		batch:  batch,
		locker: locker,
		cron:   cron.New(),
		logger: logger,
	}
}

// Batch returns the batch the service runs
func (s *Service) Batch() *Batch {
	return s.batch
}

// Start registers the daily trigger. A second call while running is a no-op.
func (s *Service) Start(cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Debug().Msg("Scheduler already running")
		return nil
	}

	if cronExpr == "" {
		cronExpr = DefaultSchedule
	}
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}

	s.entryID = s.cron.Schedule(schedule, cron.FuncJob(s.runScheduled))
	s.schedule = schedule
	s.cron.Start()
	s.running = true

	s.logger.Info().Str("cron_expr", cronExpr).Msg("Scheduler started")
	return nil
}

// Stop removes the trigger and waits for a cron-fired batch to return. A
// second call is a no-op.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.cron.Remove(s.entryID)
	done := s.cron.Stop()
	s.running = false
	s.schedule = nil
	s.mu.Unlock()

	<-done.Done()
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		next = s.schedule.Next(time.Now())
	}
	return &next
}

// TriggerBatch starts a full batch in the background. It returns
// ErrBatchInProgress without starting anything when a run is in flight.
func (s *Service) TriggerBatch() error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	common.SafeGo(s.logger, "batch", func() {
		defer release()
		s.batch.Run(s.ctx)
	})
	return nil
}

// TriggerAnalysis starts only the analysis step in the background
func (s *Service) TriggerAnalysis() error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	common.SafeGo(s.logger, "analysis", func() {
		defer release()
		s.batch.RunAnalysis(s.ctx)
	})
	return nil
}

// RunBatch runs a full batch in the caller's goroutine
func (s *Service) RunBatch(ctx context.Context) (*models.BatchReport, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return s.batch.Run(ctx), nil
}

// RunAnalysis runs the analysis step in the caller's goroutine
func (s *Service) RunAnalysis(ctx context.Context) (models.StepOutcome, error) {
	release, err := s.acquire()
	if err != nil {
		return models.StepOutcome{}, err
	}
	defer release()
	return s.batch.RunAnalysis(ctx), nil
}

func (s *Service) runScheduled() {
	defer common.Recover(s.logger, "scheduled batch")

	s.logger.Info().Msg("🔄 Scheduled batch firing")
	if _, err := s.RunBatch(s.ctx); err != nil && !errors.Is(err, ErrBatchInProgress) {
		s.logger.Error().Err(err).Msg("Scheduled batch could not start")
	}
}

func (s *Service) acquire() (func(), error) {
	release, err := s.locker.TryLock(s.ctx)
	if err != nil {
		if errors.Is(err, ErrBatchInProgress) {
			s.logger.Warn().Msg("Batch already in progress, trigger skipped")
			s.batch.publish(models.BatchEvent{Type: models.BatchSkipped, Error: err.Error()})
		}
		return nil, err
	}
	return release, nil
}
