package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/app"
	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/handlers"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/pdf"
	"github.com/ternarybob/augur/internal/services/scheduler"
	"github.com/ternarybob/augur/internal/storage/badger"
)

func newTestServer(t *testing.T) (*Server, interfaces.StorageManager) {
	t.Helper()

	logger := arbor.NewLogger()
	config := common.NewDefaultConfig()
	config.Data.Dir = t.TempDir()

	manager, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	batch := scheduler.NewBatch(nil, nil, 0, logger)
	sched := scheduler.NewService(context.Background(), batch, nil, logger)

	application := &app.App{
		Config:           config,
		Logger:           logger,
		StorageManager:   manager,
		SchedulerService: sched,
		APIHandler:       handlers.NewAPIHandler(config.Data.Dir, logger),
		InsightHandler:   handlers.NewInsightHandler(manager.InsightStorage(), pdf.NewExporter(logger), logger),
		ChatLogHandler:   handlers.NewChatLogHandler(manager.ChatLogStorage(), logger),
		SchedulerHandler: handlers.NewSchedulerHandler(sched, logger),
		SignalHandler:    handlers.NewSignalHandler(nil, logger),
		WSHandler:        handlers.NewWebSocketHandler(logger),
	}
	return New(application), manager
}

func TestServer_Routes(t *testing.T) {
	srv, manager := newTestServer(t)
	handler := srv.Handler()

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"running"`)

	assert.JSONEq(t, `{"status":"empty","content":""}`, do(http.MethodGet, "/latest_insight", "").Body.String())

	require.NoError(t, manager.InsightStorage().Save(context.Background(), &models.InsightReport{
		CreatedAt: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
		Content:   "# Daily Briefing\n\nHold.",
	}))
	rec = do(http.MethodGet, "/latest_insight", "")
	var latest map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, "success", latest["status"])
	assert.Equal(t, "# Daily Briefing\n\nHold.", latest["content"])

	rec = do(http.MethodPost, "/save_all", `[{"question":"q1","answer":"a1"},{"question":"q1","answer":"a2"}]`)
	assert.JSONEq(t, `{"status":"success","saved_count":1}`, rec.Body.String())

	rec = do(http.MethodGet, "/api/insights/latest.pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	assert.Equal(t, http.StatusServiceUnavailable, do(http.MethodGet, "/api/signal", "").Code)
	assert.Equal(t, http.StatusAccepted, do(http.MethodPost, "/api/analysis/run", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/scheduler", "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/nope", "").Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/save_all", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestServer_RecoversHandlerPanic(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signal", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.Equal(t, "Content-Disposition", rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestStatusRecorder_CountsBytes(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	rec.WriteHeader(http.StatusAccepted)
	_, err := rec.Write([]byte("started"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rec.status)
	assert.Equal(t, 7, rec.written)
	_, _, err = rec.Hijack()
	assert.Error(t, err)
}
