package handlers

import (
	"net/http"

	"github.com/huc-edu/insight-engine/internal/core/rag"
)

type DashboardHandler struct {
	engine *rag.Engine
}

func NewDashboardHandler(engine *rag.Engine) *DashboardHandler {
	return &DashboardHandler{engine: engine}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.CorpusStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
