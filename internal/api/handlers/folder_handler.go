package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huc-edu/insight-engine/internal/core"
	"github.com/huc-edu/insight-engine/internal/models"
)

// defaultFolders are seeded the first time a category is browsed, so a new
// category isn't an empty page.
var defaultFolders = []string{
	"Standards & Criteria",
	"Self-Study Report (SSR)",
	"Faculty Credentials",
	"Course Syllabi",
	"Student Work Samples",
	"Assessment Results",
	"Meeting Minutes",
	"Correspondence",
}

type FolderHandler struct {
	dbclient core.DbClient
}

func NewFolderHandler(dbclient core.DbClient) *FolderHandler {
	return &FolderHandler{dbclient: dbclient}
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	folders, err := h.dbclient.ListFolders(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(folders) == 0 {
		for _, name := range defaultFolders {
			f := models.Folder{Name: name, Category: category}
			if err := h.dbclient.CreateFolder(r.Context(), &f); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			folders = append(folders, f)
		}
	}

	writeJSON(w, http.StatusOK, folders)
}

type folderCreateRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req folderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "name and category are required")
		return
	}

	folder := models.Folder{Name: req.Name, Category: req.Category}
	if err := h.dbclient.CreateFolder(r.Context(), &folder); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}
