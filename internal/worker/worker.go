package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/saga-engine/internal/services"
	"github.com/jwebster45206/saga-engine/internal/services/events"
	"github.com/jwebster45206/saga-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/saga-engine/pkg/queue"
	"github.com/jwebster45206/saga-engine/pkg/scheduler"
	"github.com/jwebster45206/saga-engine/pkg/storage"
)

const (
	workerTimeout = 5 * time.Second
	requeueDelay  = 250 * time.Millisecond
)

// Worker processes requests from the queue, one game at a time.
type Worker struct {
	id           string
	queue        *queue.RequestQueue
	processor    *Processor
	broadcaster  *events.Broadcaster
	storage      storage.Storage
	tickInterval time.Duration
	log          *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
}

type Option func(*Worker)

// WithTickInterval makes the worker enqueue a tick for every autonomous game
// on the given period. Zero disables it.
func WithTickInterval(d time.Duration) Option {
	return func(w *Worker) { w.tickInterval = d }
}

func New(
	q *queue.RequestQueue,
	processor *Processor,
	redisService *services.RedisService,
	store storage.Storage,
	log *slog.Logger,
	workerID string,
	opts ...Option,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	w := &Worker{
		id:          workerID,
		queue:       q,
		processor:   processor,
		broadcaster: events.NewBroadcaster(redisService.GetClient(), log),
		storage:     store,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) ID() string { return w.id }

// Start processes requests until Stop is called.
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id, "tick_interval", w.tickInterval)

	if w.tickInterval > 0 {
		go w.tickLoop()
	}

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				if w.ctx.Err() != nil {
					continue
				}
				w.log.Error("Error processing request", "error", err, "worker_id", w.id)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

func (w *Worker) processNextRequest() error {
	req, err := w.queue.BlockingDequeue(w.ctx, workerTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		return nil
	}
	return w.Handle(req)
}

// Handle runs one request. The processor takes the game lock; a request
// whose game is locked by another process goes back to the end of the queue.
func (w *Worker) Handle(req *queuePkg.Request) error {
	log := w.log.With("worker_id", w.id, "request_id", req.RequestID, "type", req.Type, "game_id", req.GameID.String())
	log.Info("Received request from queue")

	start := time.Now()
	event, err := w.process(req)
	if errors.Is(err, ErrGameBusy) {
		log.Info("Game already locked, re-queueing request")
		if err := w.queue.Enqueue(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		// Back off so a lone request does not spin while the lock is held.
		select {
		case <-w.ctx.Done():
		case <-time.After(requeueDelay):
		}
		return nil
	}
	if err != nil {
		log.Error("Request failed", "error", err)
		if pubErr := w.broadcaster.PublishRequestFailed(w.ctx, req.GameID, req.RequestID, err.Error()); pubErr != nil {
			log.Error("Failed to publish failure event", "error", pubErr)
		}
		return err
	}

	event.RequestID = req.RequestID
	if event.Data == nil {
		event.Data = map[string]any{}
	}
	event.Data["duration_ms"] = time.Since(start).Milliseconds()
	if err := w.broadcaster.Publish(w.ctx, req.GameID, event); err != nil {
		log.Error("Failed to publish completion event", "error", err)
	}
	log.Info("Request processed", "event", event.Type, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Worker) process(req *queuePkg.Request) (events.Event, error) {
	switch req.Type {
	case queuePkg.RequestTypeTurn:
		res, err := w.processor.ProcessTurn(w.ctx, req.GameID, req.PlayerInput, req.Response)
		if err != nil {
			return events.Event{}, err
		}
		return events.Event{
			Type: events.EventTypeTurnApplied,
			Data: map[string]any{
				"turn":          res.Turn,
				"prose":         res.Prose,
				"notifications": res.Notifications,
				"outcomes":      res.Outcomes,
			},
		}, nil

	case queuePkg.RequestTypeTick:
		res, err := w.processor.ProcessTick(w.ctx, req.GameID)
		switch {
		case errors.Is(err, scheduler.ErrInvalidPlan), errors.Is(err, scheduler.ErrAutonomyDisabled):
			return events.Event{
				Type: events.EventTypeTickDiscarded,
				Data: map[string]any{"reason": err.Error()},
			}, nil
		case err != nil:
			return events.Event{}, err
		}
		return events.Event{
			Type: events.EventTypeTickCompleted,
			Data: map[string]any{
				"processed":     res.Processed,
				"dropped":       res.Dropped,
				"notifications": res.Notifications,
			},
		}, nil

	case queuePkg.RequestTypeRollback:
		save, err := w.processor.Rollback(w.ctx, req.GameID, req.Turn)
		if err != nil {
			return events.Event{}, err
		}
		return events.Event{
			Type: events.EventTypeRollbackCompleted,
			Data: map[string]any{"turn": save.World.Turn},
		}, nil
	}
	return events.Event{}, fmt.Errorf("unknown request type: %s", req.Type)
}

func (w *Worker) tickLoop() {
	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			n, err := w.EnqueueTicks(w.ctx)
			if err != nil {
				w.log.Error("Failed to enqueue ticks", "error", err)
				continue
			}
			w.log.Debug("Interval ticks enqueued", "count", n)
		}
	}
}

// EnqueueTicks queues a tick for every saved game with autonomy enabled.
func (w *Worker) EnqueueTicks(ctx context.Context) (int, error) {
	ids, err := w.storage.ListGames(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		save, err := w.storage.LoadGame(ctx, id)
		if err != nil {
			w.log.Warn("Skipping game for tick", "game_id", id.String(), "error", err)
			continue
		}
		if save == nil || save.World == nil || !save.World.Config.Autonomy.Enabled {
			continue
		}
		if err := w.queue.Enqueue(ctx, queuePkg.NewRequest(queuePkg.RequestTypeTick, id)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
