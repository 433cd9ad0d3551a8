package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rsawyer/homewarden/internal/backup"
	"github.com/rsawyer/homewarden/internal/model"
	"github.com/rsawyer/homewarden/internal/store"
	"github.com/rsawyer/homewarden/internal/websocket"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	backupStore   *store.BackupStore
	backups       *backup.Manager
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, bs *store.BackupStore, bm *backup.Manager, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, backupStore: bs, backups: bm, hub: hub, logger: logger}
}

func (h *SettingsHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetAll()
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	// The passphrase never leaves the server
	delete(settings, "backup_passphrase")
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := validateSettings(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for key, value := range req {
		if err := h.settingsStore.Set(key, value); err != nil {
			h.logger.Error("save setting", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	h.broadcast(websocket.NewEvent("settings", "updated", 0, nil))

	h.Get(w, r)
}

func validateSettings(settings map[string]string) error {
	allowedKeys := map[string]bool{
		"reminder_interval_minutes": true,
		"backup_enabled":            true,
		"backup_passphrase":         true,
	}

	for key, value := range settings {
		if !allowedKeys[key] {
			return fmt.Errorf("unknown setting: %s", key)
		}

		switch key {
		case "reminder_interval_minutes":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 1440 {
				return fmt.Errorf("reminder_interval_minutes must be 1-1440")
			}
		case "backup_enabled":
			if value != "true" && value != "false" {
				return fmt.Errorf("backup_enabled must be \"true\" or \"false\"")
			}
		}
	}
	return nil
}

// RunBackup handles POST /api/backup/run (admin only).
func (h *SettingsHandler) RunBackup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Passphrase == "" {
		settings, err := h.settingsStore.GetBackupSettings()
		if err != nil {
			h.logger.Error("backup settings", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read backup settings")
			return
		}
		req.Passphrase = settings["backup_passphrase"]
	}

	id, err := h.backups.Run(r.Context(), req.Passphrase)
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"backup_id": id})
}

// RestoreBackup handles POST /api/backup/restore/{id} (admin only).
// On success the process replaces the database file and exits so the
// supervisor can restart it, so only the error path writes a response.
func (h *SettingsHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup id")
		return
	}

	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase is required")
		return
	}

	if err := h.backups.Restore(r.Context(), id, req.Passphrase); err != nil {
		h.logger.Error("restore backup", "backup_id", id, "error", err)
		writeError(w, http.StatusConflict, err.Error())
		return
	}
}

// BackupStatus handles GET /api/backup/status.
func (h *SettingsHandler) BackupStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backups.Status())
}

// ListBackups handles GET /api/backup/list.
func (h *SettingsHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backupStore.List(50)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}
