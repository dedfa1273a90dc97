package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
)

// InsightHandler serves the stored daily briefings
type InsightHandler struct {
	insights interfaces.InsightStorage
	exporter interfaces.PDFExporter
	logger   arbor.ILogger
}

func NewInsightHandler(insights interfaces.InsightStorage, exporter interfaces.PDFExporter, logger arbor.ILogger) *InsightHandler {
	return &InsightHandler{
		insights: insights,
		exporter: exporter,
		logger:   logger,
	}
}

// LatestHandler returns the newest briefing, or status "empty" when none exists
func (h *InsightHandler) LatestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	report, err := h.insights.Latest(r.Context())
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "empty", "content": ""})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load latest insight")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "content": report.Content})
}

// ListHandler returns recent briefings, newest first
func (h *InsightHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	reports, err := h.insights.List(r.Context(), GetLimitParam(r, 10, 100))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list insights")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"insights": reports,
		"count":    len(reports),
	})
}

// LatestPDFHandler renders the newest briefing as a PDF download
func (h *InsightHandler) LatestPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	report, err := h.insights.Latest(r.Context())
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "no insight report yet")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	title := "Daily Briefing " + report.CreatedAt.Format("2006-01-02")
	data, err := h.exporter.ConvertMarkdownToPDF(report.Content, title)
	if err != nil {
		h.logger.Error().Err(err).Str("report_id", report.ID).Msg("PDF export failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="briefing_%s.pdf"`, report.CreatedAt.Format("20060102")))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
