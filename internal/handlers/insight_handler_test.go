package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/models"
)

func TestInsightHandler_Latest(t *testing.T) {
	tests := []struct {
		name       string
		store      *fakeInsights
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:       "no report yet",
			store:      &fakeInsights{},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"status": "empty", "content": ""},
		},
		{
			name: "newest report",
			store: &fakeInsights{reports: []*models.InsightReport{
				{ID: "a", CreatedAt: time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC), Content: "old"},
				{ID: "b", CreatedAt: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC), Content: "# Briefing"},
			}},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"status": "success", "content": "# Briefing"},
		},
		{
			name:       "storage failure",
			store:      &fakeInsights{err: errors.New("disk gone")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]string{"status": "error", "error": "disk gone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewInsightHandler(tt.store, &fakeExporter{}, arbor.NewLogger())
			rec := httptest.NewRecorder()
			h.LatestHandler(rec, httptest.NewRequest(http.MethodGet, "/latest_insight", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestInsightHandler_List(t *testing.T) {
	store := &fakeInsights{}
	for i := 0; i < 5; i++ {
		store.reports = append(store.reports, &models.InsightReport{
			ID:        string(rune('a' + i)),
			CreatedAt: time.Date(2026, 10, 15+i, 7, 0, 0, 0, time.UTC),
		})
	}
	h := NewInsightHandler(store, &fakeExporter{}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.ListHandler(rec, httptest.NewRequest(http.MethodGet, "/api/insights?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Insights []models.InsightReport `json:"insights"`
		Count    int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "e", body.Insights[0].ID)

	rec = httptest.NewRecorder()
	h.ListHandler(rec, httptest.NewRequest(http.MethodPost, "/api/insights", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestInsightHandler_LatestPDF(t *testing.T) {
	exporter := &fakeExporter{}
	store := &fakeInsights{reports: []*models.InsightReport{
		{ID: "b", CreatedAt: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC), Content: "# Briefing"},
	}}
	h := NewInsightHandler(store, exporter, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.LatestPDFHandler(rec, httptest.NewRequest(http.MethodGet, "/api/insights/latest.pdf", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "briefing_20261019.pdf")
	assert.Equal(t, "# Briefing", exporter.markdown)
	assert.Equal(t, "Daily Briefing 2026-10-19", exporter.title)

	rec = httptest.NewRecorder()
	NewInsightHandler(&fakeInsights{}, exporter, arbor.NewLogger()).
		LatestPDFHandler(rec, httptest.NewRequest(http.MethodGet, "/api/insights/latest.pdf", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
