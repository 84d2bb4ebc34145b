package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/logger"
)

// AdminStop acknowledges, then releases the listening socket. The stop runs
// outside the handler so the acknowledgement can still be delivered.
func (h *Handler) AdminStop(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, MessageResponse{Message: "stopping..."})

	go h.Lifecycle.Stop()
}

// AdminReload notifies the supervisor. The configuration reload itself is
// not implemented yet.
func (h *Handler) AdminReload(w http.ResponseWriter, r *http.Request) {
	h.Lifecycle.Reload()

	JSON(w, http.StatusOK, MessageResponse{Message: "reloading"})
}

// BackupData streams the full store serialization into the response body.
// Headers and status go out before the first byte of payload.
func (h *Handler) BackupData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", `attachment; filename="konsum_backup.txt"`)
	w.WriteHeader(http.StatusOK)

	if err := h.Store.Backup(r.Context(), w); err != nil {
		// too late for a status change; a disconnected client lands here
		// after the producer has been aborted
		logger.Error(errors.Wrap(err, "failed to stream backup"))
	}
}

type BackupRequest struct {
	Filename string `json:"filename,omitempty"`
}

type BackupResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// BackupToFile starts a background backup write and acknowledges
// immediately. The outcome is observable via BackupStatus, not through this
// request.
func (h *Handler) BackupToFile(w http.ResponseWriter, r *http.Request) {
	backupRequest := BackupRequest{}
	if err := json.NewDecoder(r.Body).Decode(&backupRequest); err != nil && !errors.Is(err, io.EOF) {
		JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
		return
	}

	name := backupRequest.Filename
	if name == "" {
		name = h.Config.Backup.Path
	}

	id := uuid.New().String()
	message := "backup to " + name

	h.Tasks.Start(id, message, func() error {
		f, err := os.Create(name)
		if err != nil {
			return errors.Wrapf(err, "failed to create backup file %s", name)
		}
		defer f.Close()

		if err := h.Store.Backup(context.Background(), f); err != nil {
			return errors.Wrapf(err, "failed to write backup to %s", name)
		}

		return errors.Wrapf(f.Sync(), "failed to sync backup file %s", name)
	})

	JSON(w, http.StatusOK, BackupResponse{Message: message + "...", ID: id})
}

// BackupStatus reports a background backup task, the latest one when no id
// is given.
func (h *Handler) BackupStatus(w http.ResponseWriter, r *http.Request) {
	setNoCacheHeaders(w)

	var status interface{}
	var ok bool

	if id := r.URL.Query().Get("id"); id != "" {
		status, ok = h.Tasks.Get(id)
	} else {
		status, ok = h.Tasks.Latest()
	}

	if !ok {
		JSON(w, http.StatusNotFound, MessageResponse{Message: "No such backup task"})
		return
	}

	JSON(w, http.StatusOK, status)
}
