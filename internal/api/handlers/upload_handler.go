package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/huc-edu/insight-engine/internal/core/ingest"
	"github.com/huc-edu/insight-engine/internal/models"
)

// UploadHandler accepts bulk file uploads, materializes them in the uploads
// directory and hands each path to the ingestion queue. Responses only
// acknowledge queueing; clients poll the status endpoint for progress.
type UploadHandler struct {
	manager   *ingest.Manager
	uploadDir string
}

func NewUploadHandler(manager *ingest.Manager, uploadDir string) *UploadHandler {
	return &UploadHandler{manager: manager, uploadDir: uploadDir}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(52 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	category := r.FormValue("category")
	if category == "" {
		category = models.DefaultCategory
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "cannot create upload directory")
		return
	}

	queued := 0
	var errs []string
	for _, header := range r.MultipartForm.File["files"] {
		// Strip any path components to keep writes inside the upload dir.
		name := filepath.Base(header.Filename)
		dest := filepath.Join(h.uploadDir, name)

		if err := saveUpload(header, dest); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		h.manager.Enqueue(dest, models.SourceUpload, category)
		queued++
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"message": fmt.Sprintf("Queued %d files for ingestion.", queued),
		"queued":  queued,
		"errors":  errs,
	})
}

func saveUpload(header *multipart.FileHeader, dest string) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
