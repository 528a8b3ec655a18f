// Package app wires the components shared by the API server and the worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/saga-engine/internal/config"
	"github.com/jwebster45206/saga-engine/internal/journal"
	"github.com/jwebster45206/saga-engine/internal/services"
	"github.com/jwebster45206/saga-engine/internal/services/events"
	"github.com/jwebster45206/saga-engine/internal/services/queue"
	"github.com/jwebster45206/saga-engine/internal/storage"
	"github.com/jwebster45206/saga-engine/internal/telemetry"
	"github.com/jwebster45206/saga-engine/internal/worker"
	"github.com/jwebster45206/saga-engine/pkg/history"
	"github.com/jwebster45206/saga-engine/pkg/mutator"
	"github.com/jwebster45206/saga-engine/pkg/scheduler"
)

type App struct {
	Redis       *services.RedisService
	Storage     *storage.RedisStorage
	Journal     *journal.Journal
	Planner     services.Planner
	Processor   *worker.Processor
	Queue       *queue.RequestQueue
	Broadcaster *events.Broadcaster

	shutdownTracing func(context.Context) error
}

// New connects to Redis, opens the journal and builds the processor. The
// caller owns the result and must Close it.
func New(ctx context.Context, cfg *config.Config, serviceName string, log *slog.Logger) (*App, error) {
	a := &App{}

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Warn("Tracing disabled", "error", err)
	}
	a.shutdownTracing = shutdown

	a.Redis, err = services.NewRedisService(cfg.RedisURL, log)
	if err != nil {
		return nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := a.Redis.WaitForConnection(waitCtx); err != nil {
		_ = a.Redis.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	rdb := a.Redis.GetClient()
	a.Storage = storage.NewRedisStorage(rdb, cfg.SeedDir, cfg.GameTTL, log)
	a.Queue = queue.NewRequestQueue(queue.NewClientFromRedis(rdb, log))
	a.Broadcaster = events.NewBroadcaster(rdb, log)

	if cfg.JournalPath != "" {
		if a.Journal, err = journal.Open(cfg.JournalPath); err != nil {
			_ = a.Redis.Close()
			return nil, err
		}
		log.Info("Command journal opened", "path", cfg.JournalPath)
	}

	if cfg.LLMMock {
		a.Planner = services.NewMockPlanner()
		log.Info("Using mock planner")
	} else {
		a.Planner = services.NewOpenAIPlanner(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, log)
		log.Info("Using OpenAI-compatible planner", "model", cfg.LLMModel, "base_url", cfg.LLMBaseURL)
	}

	dispatcher := mutator.NewDispatcher(log)
	sched := scheduler.New(a.Planner, dispatcher, log, scheduler.WithCandidates(cfg.TickCandidates))
	hist := history.NewManager(cfg.KeyframeInterval, cfg.HistoryMax, log)
	hist.CompactDeltas = cfg.HistoryCompact
	a.Processor = worker.NewProcessor(a.Storage, dispatcher, sched, hist, a.Journal, log,
		worker.WithLocker(a.Redis),
		worker.WithLockTTL(cfg.LockTTL),
		worker.WithLockWait(cfg.LockWait))

	return a, nil
}

// Close releases every connection New opened.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Journal != nil {
		errs = append(errs, a.Journal.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.shutdownTracing != nil {
		errs = append(errs, a.shutdownTracing(ctx))
	}
	return errors.Join(errs...)
}
