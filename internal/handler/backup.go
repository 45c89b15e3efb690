package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/tidyroom/internal/auth"
	"github.com/dukerupert/tidyroom/internal/backup"
)

type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.manager.List(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Run triggers an immediate backup outside the schedule.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	filename, err := h.manager.RunNow(r.Context(), auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"filename": filename})
}

// Download streams the encrypted snapshot back to the caller. Decryption
// happens offline with the configured passphrase.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	body, size, err := h.manager.Download(r.Context(), auth.FamilyID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.logger.Error("download backup", "error", err)
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("stream backup", "error", err)
	}
}
