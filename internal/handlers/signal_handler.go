package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/signal"
)

// SignalAnalyzer produces a technical signal on demand
type SignalAnalyzer interface {
	Analyze(ctx context.Context) (*models.TechnicalSignal, error)
}

type SignalHandler struct {
	analyzer SignalAnalyzer
	logger   arbor.ILogger
}

func NewSignalHandler(analyzer SignalAnalyzer, logger arbor.ILogger) *SignalHandler {
	return &SignalHandler{analyzer: analyzer, logger: logger}
}

// SignalHandler returns a freshly computed technical signal
func (h *SignalHandler) SignalHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	if h.analyzer == nil {
		WriteError(w, http.StatusServiceUnavailable, signal.ErrMarketDataUnavailable.Error())
		return
	}

	result, err := h.analyzer.Analyze(r.Context())
	if errors.Is(err, signal.ErrMarketDataUnavailable) {
		h.logger.Warn().Err(err).Msg("Technical signal unavailable")
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Technical signal failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
