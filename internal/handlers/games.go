package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/saga-engine/internal/worker"
	"github.com/jwebster45206/saga-engine/pkg/storage"
)

type CreateGameRequest struct {
	Seed string `json:"seed"`
}

type GameHandler struct {
	processor *worker.Processor
	storage   storage.Storage
	logger    *slog.Logger
}

func NewGameHandler(processor *worker.Processor, storage storage.Storage, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		processor: processor,
		storage:   storage,
		logger:    logger,
	}
}

// Create handles POST /v1/games.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Warn("Invalid create game body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'seed' field.")
		return
	}
	req.Seed = strings.TrimSpace(req.Seed)
	if req.Seed == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Seed is required")
		return
	}

	save, err := h.processor.CreateGame(r.Context(), req.Seed)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Seed not found: "+req.Seed)
			return
		}
		h.logger.Error("Failed to create game", "seed", req.Seed, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create game")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, save)
}

// Get handles GET /v1/games/{id}. History is omitted; it has its own route.
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r, h.logger)
	if !ok {
		return
	}
	save, err := h.storage.LoadGame(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load game", "game_id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if save == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}
	save.History = nil
	writeJSON(w, h.logger, http.StatusOK, save)
}

// Delete handles DELETE /v1/games/{id}.
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r, h.logger)
	if !ok {
		return
	}
	save, err := h.storage.LoadGame(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load game", "game_id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if save == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}
	if err := h.storage.DeleteGame(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete game", "game_id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	h.logger.Info("Game deleted", "game_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// ListSeeds handles GET /v1/seeds.
func (h *GameHandler) ListSeeds(w http.ResponseWriter, r *http.Request) {
	seeds, err := h.storage.ListSeeds(r.Context())
	if err != nil {
		h.logger.Error("Failed to list seeds", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list seeds")
		return
	}
	if seeds == nil {
		seeds = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"seeds": seeds})
}
