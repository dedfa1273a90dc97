package models

import "time"

// BatchEventType identifies a scheduler progress event
type BatchEventType string

const (
	BatchStarted   BatchEventType = "batch_started"
	BatchSkipped   BatchEventType = "batch_skipped"
	StepStarted    BatchEventType = "step_started"
	StepCompleted  BatchEventType = "step_completed"
	StepFailed     BatchEventType = "step_failed"
	BatchCompleted BatchEventType = "batch_completed"
)

// BatchEvent is published to observers while a batch runs
type BatchEvent struct {
	Type      BatchEventType `json:"type"`
	Step      string         `json:"step,omitempty"`
	Wave      int            `json:"wave,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// StepOutcome is the result of one batch step
type StepOutcome struct {
	Name     string        `json:"name"`
	Wave     int           `json:"wave"`
	Error    string        `json:"error,omitempty"`
	Panicked bool          `json:"panicked,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the step finished without error or panic
func (o StepOutcome) Succeeded() bool {
	return o.Error == "" && !o.Panicked
}

// BatchReport summarizes one complete batch run
type BatchReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Steps      []StepOutcome `json:"steps"`
}
