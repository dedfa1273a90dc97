package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Browser extension endpoints
	mux.HandleFunc("/", s.app.APIHandler.StatusHandler)
	mux.HandleFunc("/latest_insight", s.app.InsightHandler.LatestHandler)
	mux.HandleFunc("/save_all", s.app.ChatLogHandler.SaveAllHandler)

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Batch
	mux.HandleFunc("/api/batch/run", s.app.SchedulerHandler.RunBatchHandler)
	mux.HandleFunc("/api/analysis/run", s.app.SchedulerHandler.RunAnalysisHandler)
	mux.HandleFunc("/api/scheduler", s.app.SchedulerHandler.StatusHandler)

	// API routes - Insights
	mux.HandleFunc("/api/insights", s.app.InsightHandler.ListHandler)
	mux.HandleFunc("/api/insights/latest.pdf", s.app.InsightHandler.LatestPDFHandler)

	// API routes - Signal
	mux.HandleFunc("/api/signal", s.app.SignalHandler.SignalHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	return mux
}
