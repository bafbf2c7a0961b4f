package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/huc-edu/insight-engine/internal/core/sharepoint"
)

type SyncHandler struct {
	job *sharepoint.SyncJob
	// appCtx outlives individual requests so the background sync isn't
	// cancelled when the triggering request completes.
	appCtx context.Context
}

func NewSyncHandler(appCtx context.Context, job *sharepoint.SyncJob) *SyncHandler {
	return &SyncHandler{job: job, appCtx: appCtx}
}

func (h *SyncHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.job.Start(h.appCtx); err != nil {
		if errors.Is(err, sharepoint.ErrSyncRunning) {
			writeError(w, http.StatusConflict, "sync already in progress")
			return
		}
		if errors.Is(err, sharepoint.ErrNoSite) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Sync started"})
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.job.Status())
}
