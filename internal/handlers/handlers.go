// Package handlers implements the HTTP API over the game processor.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/saga-engine/internal/worker"
	"github.com/jwebster45206/saga-engine/pkg/history"
	"github.com/jwebster45206/saga-engine/pkg/scheduler"
	"github.com/jwebster45206/saga-engine/pkg/storage"
)

// maxBodyBytes bounds request bodies; a turn response is at most a few
// tens of kilobytes of prose.
const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// gameID parses the {id} path value. It writes the 400 itself on failure.
func gameID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		logger.Warn("Invalid game ID", "id", raw, "error", err)
		writeError(w, logger, http.StatusBadRequest, "Invalid game ID format")
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeProcessError maps processor errors onto status codes.
func writeProcessError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, logger, http.StatusNotFound, err.Error())
	case errors.Is(err, history.ErrTurnNotFound):
		writeError(w, logger, http.StatusNotFound, err.Error())
	case errors.Is(err, worker.ErrGameBusy), errors.Is(err, worker.ErrLockLost):
		writeError(w, logger, http.StatusConflict, err.Error())
	case errors.Is(err, scheduler.ErrAutonomyDisabled):
		writeError(w, logger, http.StatusConflict, err.Error())
	case errors.Is(err, scheduler.ErrInvalidPlan):
		writeError(w, logger, http.StatusBadGateway, err.Error())
	case errors.Is(err, worker.ErrNoScheduler):
		writeError(w, logger, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("Request processing failed", "error", err)
		writeError(w, logger, http.StatusInternalServerError, "Internal server error")
	}
}
