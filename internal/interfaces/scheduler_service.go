package interfaces

import "time"

// SchedulerService manages the daily batch
type SchedulerService interface {
	// Start registers the cron trigger. Calling Start on a running scheduler is a no-op.
	Start(cronExpr string) error

	// Stop halts the cron trigger. Calling Stop on a stopped scheduler is a no-op.
	Stop() error

	// TriggerBatch runs the full batch in the background
	TriggerBatch() error

	// TriggerAnalysis runs only the synthesis step in the background
	TriggerAnalysis() error

	// IsRunning returns true if the cron trigger is active
	IsRunning() bool

	// NextRun returns the next scheduled run, or nil when stopped
	NextRun() *time.Time
}
