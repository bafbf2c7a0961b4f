package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/huc-edu/insight-engine/internal/core/rag"
)

type NotebookHandler struct {
	engine *rag.Engine
}

func NewNotebookHandler(engine *rag.Engine) *NotebookHandler {
	return &NotebookHandler{engine: engine}
}

type deepReportRequest struct {
	Topic     string   `json:"topic"`
	SourceIDs []string `json:"source_ids"`
}

func (h *NotebookHandler) DeepReport(w http.ResponseWriter, r *http.Request) {
	var req deepReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	report, err := h.engine.GenerateDeepReport(r.Context(), req.Topic, req.SourceIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"report_markdown": report})
}
