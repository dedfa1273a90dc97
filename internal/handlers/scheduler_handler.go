package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/services/scheduler"
)

type SchedulerHandler struct {
	scheduler interfaces.SchedulerService
	logger    arbor.ILogger
}

func NewSchedulerHandler(scheduler interfaces.SchedulerService, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{scheduler: scheduler, logger: logger}
}

// RunBatchHandler starts the full collection batch
func (h *SchedulerHandler) RunBatchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	h.trigger(w, h.scheduler.TriggerBatch, "Batch started")
}

// RunAnalysisHandler starts only the synthesis step
func (h *SchedulerHandler) RunAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	h.trigger(w, h.scheduler.TriggerAnalysis, "Analysis started")
}

func (h *SchedulerHandler) trigger(w http.ResponseWriter, fn func() error, message string) {
	err := fn()
	if errors.Is(err, scheduler.ErrBatchInProgress) {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to trigger run")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteStarted(w, message)
}

// StatusHandler reports whether the cron trigger is active and when it fires next
func (h *SchedulerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := map[string]interface{}{
		"running":  h.scheduler.IsRunning(),
		"next_run": nil,
	}
	if next := h.scheduler.NextRun(); next != nil {
		status["next_run"] = next
	}
	WriteJSON(w, http.StatusOK, status)
}
