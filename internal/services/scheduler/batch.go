package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// AnalysisStepName is the name recorded for the closing synthesis step
const AnalysisStepName = "analysis"

// StepFunc is one unit of batch work
type StepFunc func(ctx context.Context) error

// Step is a named batch entry. Steps run in slice order; Wave is informational.
type Step struct {
	Name string
	Wave int
	Run  StepFunc
}

// Observer receives batch progress events. Observers are called synchronously
// and must not block.
type Observer func(models.BatchEvent)

// Batch runs collection steps one after another and finishes with analysis.
// A failing or panicking step is logged and the batch moves on.
type Batch struct {
	steps    []Step
	analysis StepFunc
	pace     time.Duration
	logger   arbor.ILogger
	sleep    func(ctx context.Context, d time.Duration) error

	mu        sync.RWMutex
	observers map[int]Observer
	nextObs   int
}

// NewBatch creates a batch. analysis may be nil when only collection is wanted.
func NewBatch(steps []Step, analysis StepFunc, pace time.Duration, logger arbor.ILogger) *Batch {
	return &Batch{
		steps:     steps,
		analysis:  analysis,
		pace:      pace,
		logger:    logger,
		sleep:     common.Sleep,
		observers: make(map[int]Observer),
	}
}

// Steps returns a copy of the configured steps
func (b *Batch) Steps() []Step {
	return append([]Step(nil), b.steps...)
}

// Subscribe registers an observer and returns a func that removes it
func (b *Batch) Subscribe(o Observer) func() {
	b.mu.Lock()
	id := b.nextObs
	b.nextObs++
	b.observers[id] = o
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.observers, id)
		b.mu.Unlock()
	}
}

func (b *Batch) publish(event models.BatchEvent) {
	event.Timestamp = time.Now()
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, o := range b.observers {
		o(event)
	}
}

// Run executes every step and then the analysis step. It never returns an
// error; per-step failures are in the report. Cancelling ctx stops the batch
// before the next step.
func (b *Batch) Run(ctx context.Context) *models.BatchReport {
	report := &models.BatchReport{StartedAt: time.Now()}
	b.logger.Info().Int("steps", len(b.steps)).Msg("🚀 Batch started")
	b.publish(models.BatchEvent{Type: models.BatchStarted})

	for i, step := range b.steps {
		if i > 0 {
			if err := b.sleep(ctx, b.pace); err != nil {
				b.logger.Warn().Err(err).Str("next_step", step.Name).Msg("Batch cancelled")
				return b.finish(report)
			}
		}
		report.Steps = append(report.Steps, b.runStep(ctx, step))
	}

	if b.analysis != nil {
		if len(b.steps) > 0 {
			if err := b.sleep(ctx, b.pace); err != nil {
				b.logger.Warn().Err(err).Msg("Batch cancelled before analysis")
				return b.finish(report)
			}
		}
		report.Steps = append(report.Steps, b.RunAnalysis(ctx))
	}

	return b.finish(report)
}

// RunAnalysis runs only the analysis step with the same isolation as a batch step
func (b *Batch) RunAnalysis(ctx context.Context) models.StepOutcome {
	if b.analysis == nil {
		return models.StepOutcome{Name: AnalysisStepName, Error: "analysis step is not configured"}
	}
	return b.runStep(ctx, Step{Name: AnalysisStepName, Wave: b.lastWave() + 1, Run: b.analysis})
}

func (b *Batch) finish(report *models.BatchReport) *models.BatchReport {
	report.FinishedAt = time.Now()
	failed := 0
	for _, s := range report.Steps {
		if !s.Succeeded() {
			failed++
		}
	}
	b.logger.Info().
		Int("steps_run", len(report.Steps)).
		Int("steps_failed", failed).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("✅ Batch completed")
	b.publish(models.BatchEvent{Type: models.BatchCompleted})
	return report
}

func (b *Batch) lastWave() int {
	wave := 0
	for _, s := range b.steps {
		if s.Wave > wave {
			wave = s.Wave
		}
	}
	return wave
}

// runStep executes one step, converting a panic into a failed outcome
func (b *Batch) runStep(ctx context.Context, step Step) (outcome models.StepOutcome) {
	outcome = models.StepOutcome{Name: step.Name, Wave: step.Wave}
	start := time.Now()
	b.publish(models.BatchEvent{Type: models.StepStarted, Step: step.Name, Wave: step.Wave})

	defer func() {
		outcome.Duration = time.Since(start)
		if r := recover(); r != nil {
			outcome.Panicked = true
			outcome.Error = fmt.Sprintf("panic: %v", r)
			b.logger.Error().
				Str("step", step.Name).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", common.Stack()).
				Msg("PANIC RECOVERED in batch step")
		}

		if outcome.Succeeded() {
			b.logger.Info().Str("step", step.Name).Dur("duration", outcome.Duration).Msg("Step completed")
			b.publish(models.BatchEvent{Type: models.StepCompleted, Step: step.Name, Wave: step.Wave})
		} else {
			b.publish(models.BatchEvent{Type: models.StepFailed, Step: step.Name, Wave: step.Wave, Error: outcome.Error})
		}
	}()

	if err := step.Run(ctx); err != nil {
		outcome.Error = err.Error()
		b.logger.Error().Err(err).Str("step", step.Name).Dur("duration", time.Since(start)).Msg("❌ Step failed")
	}
	return outcome
}

// CollectorStep adapts a collector into a batch step that logs its report
func CollectorStep(c interfaces.Collector, wave int, logger arbor.ILogger) Step {
	return Step{
		Name: c.Name(),
		Wave: wave,
		Run: func(ctx context.Context) error {
			report, err := c.Collect(ctx)
			if report != nil {
				logger.Info().
					Str("collector", c.Name()).
					Int("saved", report.Count(models.ItemSaved)).
					Int("skipped", report.Count(models.ItemSkipped)).
					Int("failed", report.Count(models.ItemFailed)).
					Msg("Collection finished")
			}
			return err
		},
	}
}
