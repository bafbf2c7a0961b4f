package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/huc-edu/insight-engine/internal/core/flasher"
	"github.com/huc-edu/insight-engine/internal/core/sharepoint"
)

// ConfigHandler covers runtime configuration: the SharePoint site URL used
// for syncing and the dashboard flasher message.
type ConfigHandler struct {
	syncJob *sharepoint.SyncJob
	cookie  string
	flasher *flasher.Store
}

func NewConfigHandler(syncJob *sharepoint.SyncJob, sharePointCookie string, flasherStore *flasher.Store) *ConfigHandler {
	return &ConfigHandler{syncJob: syncJob, cookie: sharePointCookie, flasher: flasherStore}
}

type sharePointURLRequest struct {
	URL string `json:"url"`
}

// UpdateSharePointURL swaps the scrape target at runtime. The change is not
// persisted across restarts.
func (h *ConfigHandler) UpdateSharePointURL(w http.ResponseWriter, r *http.Request) {
	var req sharePointURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if !strings.Contains(req.URL, "sharepoint.com") && !strings.Contains(req.URL, "onedrive") {
		writeError(w, http.StatusBadRequest, "invalid SharePoint/OneDrive URL")
		return
	}

	if err := h.syncJob.SetScraper(sharepoint.NewScraper(req.URL, h.cookie)); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "URL updated successfully", "url": req.URL})
}

func (h *ConfigHandler) GetFlasher(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.flasher.Get())
}

func (h *ConfigHandler) SetFlasher(w http.ResponseWriter, r *http.Request) {
	var msg flasher.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || msg.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if err := h.flasher.Update(msg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
