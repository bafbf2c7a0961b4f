package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/huc-edu/insight-engine/internal/core/drive"
	"github.com/huc-edu/insight-engine/internal/core/ingest"
	"github.com/huc-edu/insight-engine/internal/models"
)

// DriveHandler exposes Google Drive auth, browsing and ingestion triggers.
type DriveHandler struct {
	client  *drive.Client
	manager *ingest.Manager
	destDir string
}

func NewDriveHandler(client *drive.Client, manager *ingest.Manager, archiveDir string) *DriveHandler {
	return &DriveHandler{
		client:  client,
		manager: manager,
		destDir: filepath.Join(archiveDir, "google_drive"),
	}
}

func (h *DriveHandler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": h.client.IsAuthenticated()})
}

type driveLoginRequest struct {
	Code string `json:"code"`
}

// Login either returns the consent URL (no code yet) or exchanges the
// authorization code for a persisted token.
func (h *DriveHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req driveLoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Code == "" {
		url, err := h.client.AuthURL()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"auth_url": url})
		return
	}

	if err := h.client.Exchange(r.Context(), req.Code); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "authenticated": true})
}

func (h *DriveHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if !h.client.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "not authenticated, please login first")
		return
	}

	files, err := h.client.ListFiles(r.Context(), r.URL.Query().Get("folder_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, files)
}

type driveIngestRequest struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// Ingest downloads one Drive file locally and enqueues it.
func (h *DriveHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req driveIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileID == "" || req.FileName == "" {
		writeError(w, http.StatusBadRequest, "file_id and file_name are required")
		return
	}

	path, err := h.client.DownloadFile(r.Context(), req.FileID, req.FileName, h.destDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.manager.Enqueue(path, models.SourceGoogleDrive, models.DefaultCategory)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ingesting", "file": req.FileName})
}
