package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/huc-edu/insight-engine/internal/core/rag"
)

// StudioHandler generates derivative artifacts from provided content.
type StudioHandler struct {
	engine *rag.Engine
}

func NewStudioHandler(engine *rag.Engine) *StudioHandler {
	return &StudioHandler{engine: engine}
}

type studioRequest struct {
	Content string `json:"content"`
}

func decodeStudioRequest(w http.ResponseWriter, r *http.Request) (studioRequest, bool) {
	var req studioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return req, false
	}
	return req, true
}

func (h *StudioHandler) Podcast(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStudioRequest(w, r)
	if !ok {
		return
	}
	script, err := h.engine.GeneratePodcastScript(r.Context(), req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"script": script})
}

func (h *StudioHandler) MindMap(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStudioRequest(w, r)
	if !ok {
		return
	}
	syntax, err := h.engine.GenerateMindMap(r.Context(), req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mermaid_syntax": syntax})
}

func (h *StudioHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStudioRequest(w, r)
	if !ok {
		return
	}
	questions, err := h.engine.GenerateQuiz(r.Context(), req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}
