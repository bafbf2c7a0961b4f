package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huc-edu/insight-engine/internal/core"
)

type DocumentHandler struct {
	dbclient core.DbClient
}

func NewDocumentHandler(dbclient core.DbClient) *DocumentHandler {
	return &DocumentHandler{dbclient: dbclient}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.dbclient.ListDocuments(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.dbclient.GetDocumentByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
