package handlers

import (
	"net/http"

	"github.com/huc-edu/insight-engine/internal/core/ingest"
	"github.com/huc-edu/insight-engine/internal/models"
)

// StatusHandler exposes the ingestion queue snapshot for polling clients.
type StatusHandler struct {
	manager *ingest.Manager
}

func NewStatusHandler(manager *ingest.Manager) *StatusHandler {
	return &StatusHandler{manager: manager}
}

// Status returns the current queue counters. When the manager hasn't been
// constructed (app still starting), a zeroed snapshot is returned instead of
// an error.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		writeJSON(w, http.StatusOK, models.QueueStatus{})
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Status())
}
