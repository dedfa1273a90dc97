package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
)

type APIHandler struct {
	logger  arbor.ILogger
	dataDir string
}

func NewAPIHandler(dataDir string, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		logger:  logger,
		dataDir: dataDir,
	}
}

// StatusHandler answers GET / for liveness checks from the extension
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFoundHandler(w, r)
		return
	}
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "running",
		"data_dir": h.dataDir,
		"version":  common.GetVersion(),
	})
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, common.GetBuildInfo())
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
