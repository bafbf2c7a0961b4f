package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/huc-edu/insight-engine/internal/core/rag"
)

type SearchHandler struct {
	engine *rag.Engine
}

func NewSearchHandler(engine *rag.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// Search runs a similarity search and a grounded answer in one shot.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			k = n
		}
	}

	results, err := h.engine.Search(r.Context(), query, k, r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	answer, _, err := h.engine.Answer(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"answer":  answer,
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat answers a free-form question over the corpus and returns the chunks
// used as sources.
func (h *SearchHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	answer, sources, err := h.engine.Answer(r.Context(), req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":  answer,
		"sources": sources,
	})
}
