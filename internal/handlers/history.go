package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jwebster45206/saga-engine/internal/journal"
	"github.com/jwebster45206/saga-engine/pkg/history"
	"github.com/jwebster45206/saga-engine/pkg/storage"
)

const defaultJournalLimit = 100

// HistoryEntry is a history entry without its snapshots.
type HistoryEntry struct {
	Turn       int               `json:"turn"`
	Kind       history.EntryKind `json:"kind"`
	Snapshot   bool              `json:"snapshot"`
	WorldOps   int               `json:"world_ops"`
	MessageOps int               `json:"message_ops"`
	RecordedAt time.Time         `json:"recorded_at"`
}

type HistoryResponse struct {
	GameID  string         `json:"game_id"`
	Turn    int            `json:"turn"`
	Entries []HistoryEntry `json:"entries"`
}

type HistoryHandler struct {
	storage storage.Storage
	journal *journal.Journal
	logger  *slog.Logger
}

func NewHistoryHandler(storage storage.Storage, j *journal.Journal, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		storage: storage,
		journal: j,
		logger:  logger,
	}
}

// countOps returns the number of operations in an RFC 6902 patch.
func countOps(patch json.RawMessage) int {
	if len(patch) == 0 {
		return 0
	}
	var ops []json.RawMessage
	if err := json.Unmarshal(patch, &ops); err != nil {
		return 0
	}
	return len(ops)
}

// History handles GET /v1/games/{id}/history.
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
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

	resp := HistoryResponse{
		GameID:  id.String(),
		Entries: make([]HistoryEntry, 0, len(save.History)),
	}
	if save.World != nil {
		resp.Turn = save.World.Turn
	}
	for _, e := range save.History {
		resp.Entries = append(resp.Entries, HistoryEntry{
			Turn:       e.Turn,
			Kind:       e.Kind,
			Snapshot:   e.HasSnapshot(),
			WorldOps:   countOps(e.WorldDelta),
			MessageOps: countOps(e.MessagesDelta),
			RecordedAt: e.RecordedAt,
		})
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// Journal handles GET /v1/games/{id}/journal?limit=N.
func (h *HistoryHandler) Journal(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r, h.logger)
	if !ok {
		return
	}
	if h.journal == nil {
		writeError(w, h.logger, http.StatusNotFound, "Command journal is disabled")
		return
	}

	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.journal.List(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("Failed to list journal", "game_id", id.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list journal")
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"game_id": id.String(), "entries": entries})
}
