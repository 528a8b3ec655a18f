package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jwebster45206/saga-engine/internal/services/events"
	"github.com/jwebster45206/saga-engine/internal/services/queue"
	"github.com/jwebster45206/saga-engine/internal/worker"
	"github.com/jwebster45206/saga-engine/pkg/chat"
	queuePkg "github.com/jwebster45206/saga-engine/pkg/queue"
)

type RollbackRequest struct {
	Turn *int `json:"turn"`
}

type QueuedResponse struct {
	RequestID string `json:"request_id"`
	Type      string `json:"type"`
	GameID    string `json:"game_id"`
}

// TurnHandler serves the write endpoints: turns, ticks and rollbacks. Each
// runs synchronously through the processor, or with ?async=true is queued
// for a worker when a queue is configured.
type TurnHandler struct {
	processor   *worker.Processor
	queue       *queue.RequestQueue
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

func NewTurnHandler(processor *worker.Processor, q *queue.RequestQueue, broadcaster *events.Broadcaster, logger *slog.Logger) *TurnHandler {
	return &TurnHandler{
		processor:   processor,
		queue:       q,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func isAsync(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	return v
}

// Turn handles POST /v1/games/{id}/turns.
func (h *TurnHandler) Turn(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r, h.logger)
	if !ok {
		return
	}
	var req chat.TurnRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Warn("Invalid turn body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'playerInput' and 'response' fields.")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if isAsync(r) {
		qr := queuePkg.NewRequest(queuePkg.RequestTypeTurn, id)
		qr.PlayerInput = req.PlayerInput
		qr.Response = req.Response
		h.enqueue(w, r, qr)
		return
	}

	res, err := h.processor.ProcessTurn(r.Context(), id, req.PlayerInput, req.Response)
	if err != nil {
		writeProcessError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}

// Tick handles POST /v1/games/{id}/tick.
func (h *TurnHandler) Tick(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r, h.logger)
	if !ok {
		return
	}
	if isAsync(r) {
		h.enqueue(w, r, queuePkg.NewRequest(queuePkg.RequestTypeTick, id))
		return
	}

	res, err := h.processor.ProcessTick(r.Context(), id)
	if err != nil {
		writeProcessError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}

// Rollback handles POST /v1/games/{id}/rollback.
func (h *TurnHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r, h.logger)
	if !ok {
		return
	}
	var req RollbackRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'turn' field.")
		return
	}
	if req.Turn == nil || *req.Turn < 0 {
		writeError(w, h.logger, http.StatusBadRequest, "A non-negative turn is required")
		return
	}

	if isAsync(r) {
		qr := queuePkg.NewRequest(queuePkg.RequestTypeRollback, id)
		qr.Turn = *req.Turn
		h.enqueue(w, r, qr)
		return
	}

	save, err := h.processor.Rollback(r.Context(), id, *req.Turn)
	if err != nil {
		writeProcessError(w, h.logger, err)
		return
	}
	save.History = nil
	writeJSON(w, h.logger, http.StatusOK, save)
}

func (h *TurnHandler) enqueue(w http.ResponseWriter, r *http.Request, req *queuePkg.Request) {
	if h.queue == nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "Async processing is not configured")
		return
	}
	if err := h.queue.Enqueue(r.Context(), req); err != nil {
		h.logger.Error("Failed to enqueue request", "game_id", req.GameID.String(), "type", req.Type, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to enqueue request")
		return
	}
	h.publishQueued(r, req.GameID, req)

	writeJSON(w, h.logger, http.StatusAccepted, QueuedResponse{
		RequestID: req.RequestID,
		Type:      string(req.Type),
		GameID:    req.GameID.String(),
	})
}

func (h *TurnHandler) publishQueued(r *http.Request, id uuid.UUID, req *queuePkg.Request) {
	if h.broadcaster == nil {
		return
	}
	if err := h.broadcaster.PublishRequestQueued(r.Context(), id, req.RequestID, string(req.Type)); err != nil {
		h.logger.Warn("Failed to publish queued event", "request_id", req.RequestID, "error", err)
	}
}
