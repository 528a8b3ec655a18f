package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/saga-engine/internal/journal"
	"github.com/jwebster45206/saga-engine/internal/services"
	"github.com/jwebster45206/saga-engine/internal/services/events"
	"github.com/jwebster45206/saga-engine/internal/services/queue"
	"github.com/jwebster45206/saga-engine/internal/worker"
	"github.com/jwebster45206/saga-engine/pkg/storage"
)

// Deps is everything the API routes need. Queue, Broadcaster, Journal and
// Planner may be nil; the routes that need them then answer 503 or 404.
type Deps struct {
	Processor   *worker.Processor
	Storage     storage.Storage
	Planner     services.Planner
	Queue       *queue.RequestQueue
	Broadcaster *events.Broadcaster
	Journal     *journal.Journal
	Logger      *slog.Logger
}

// NewRouter registers every API route on a new mux.
func NewRouter(d Deps) *http.ServeMux {
	games := NewGameHandler(d.Processor, d.Storage, d.Logger)
	turns := NewTurnHandler(d.Processor, d.Queue, d.Broadcaster, d.Logger)
	hist := NewHistoryHandler(d.Storage, d.Journal, d.Logger)

	mux := http.NewServeMux()
	mux.Handle("GET /health", NewHealthHandler(d.Storage, d.Planner, d.Logger))

	mux.HandleFunc("GET /v1/seeds", games.ListSeeds)
	mux.HandleFunc("POST /v1/games", games.Create)
	mux.HandleFunc("GET /v1/games/{id}", games.Get)
	mux.HandleFunc("DELETE /v1/games/{id}", games.Delete)

	mux.HandleFunc("POST /v1/games/{id}/turns", turns.Turn)
	mux.HandleFunc("POST /v1/games/{id}/tick", turns.Tick)
	mux.HandleFunc("POST /v1/games/{id}/rollback", turns.Rollback)

	mux.HandleFunc("GET /v1/games/{id}/history", hist.History)
	mux.HandleFunc("GET /v1/games/{id}/journal", hist.Journal)

	mux.Handle("GET /v1/games/{id}/events", NewEventsHandler(d.Broadcaster, d.Logger))
	return mux
}
