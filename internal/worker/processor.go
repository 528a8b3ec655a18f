package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jwebster45206/saga-engine/internal/journal"
	"github.com/jwebster45206/saga-engine/internal/logger"
	"github.com/jwebster45206/saga-engine/pkg/chat"
	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/history"
	"github.com/jwebster45206/saga-engine/pkg/mutator"
	"github.com/jwebster45206/saga-engine/pkg/scheduler"
	"github.com/jwebster45206/saga-engine/pkg/storage"
	"github.com/jwebster45206/saga-engine/pkg/tags"
)

var tracer = otel.Tracer("saga-engine/worker")

// ErrNoScheduler is returned by ProcessTick when no planning model is wired.
var ErrNoScheduler = errors.New("no tick scheduler configured")

// TurnResult is what one narrator turn did to the world.
type TurnResult struct {
	Turn          int               `json:"turn"`
	Prose         string            `json:"prose"`
	Notifications []string          `json:"notifications"`
	Outcomes      []command.Outcome `json:"outcomes"`
}

// Processor owns every write to a game. It is used by both the HTTP
// handlers (synchronously) and the queue worker. With a Locker configured,
// writes from every process sharing it run one at a time per game.
type Processor struct {
	storage    storage.Storage
	dispatcher *command.Dispatcher
	scheduler  *scheduler.Scheduler
	history    *history.Manager
	journal    *journal.Journal
	logger     *slog.Logger

	locksMu  sync.Mutex
	locks    map[uuid.UUID]*sync.Mutex
	locker   Locker
	lockTTL  time.Duration
	lockWait time.Duration
}

func NewProcessor(
	store storage.Storage,
	dispatcher *command.Dispatcher,
	sched *scheduler.Scheduler,
	hist *history.Manager,
	j *journal.Journal,
	logger *slog.Logger,
	opts ...ProcessorOption,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if hist == nil {
		hist = history.NewManager(0, 0, logger)
	}
	p := &Processor{
		storage:    store,
		dispatcher: dispatcher,
		scheduler:  sched,
		history:    hist,
		journal:    j,
		logger:     logger,
		locks:      make(map[uuid.UUID]*sync.Mutex),
		lockTTL:    defaultLockTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) load(ctx context.Context, id uuid.UUID) (*storage.Save, error) {
	save, err := p.storage.LoadGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if save == nil || save.World == nil {
		return nil, fmt.Errorf("game %s: %w", id, storage.ErrNotFound)
	}
	return save, nil
}

// CreateGame starts a new game from a seed world and records turn 0 so the
// opening state can be rolled back to.
func (p *Processor) CreateGame(ctx context.Context, seed string) (*storage.Save, error) {
	ws, err := p.storage.LoadSeed(ctx, seed)
	if err != nil {
		return nil, err
	}
	save := &storage.Save{
		ID:       uuid.New(),
		Seed:     seed,
		World:    ws,
		Messages: []chat.ChatMessage{},
	}
	if save.History, err = p.history.Record(nil, ws.Turn, ws, save.Messages); err != nil {
		return nil, fmt.Errorf("failed to record opening turn: %w", err)
	}
	if err := p.storage.SaveGame(ctx, save); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}
	p.logger.Info("Game created", "game_id", save.ID.String(), "seed", seed)
	return save, nil
}

// ProcessTurn applies the tags in a narrator response to the game, advances
// the turn and records it in history.
func (p *Processor) ProcessTurn(ctx context.Context, gameID uuid.UUID, playerInput, response string) (*TurnResult, error) {
	ctx, span := tracer.Start(ctx, "worker.turn", trace.WithAttributes(
		attribute.String("game.id", gameID.String()),
	))
	defer span.End()

	l, err := p.acquire(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer l.release()

	save, err := p.load(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	log := logger.WithGame(p.logger, gameID.String())

	found := tags.Extract(response)
	res := p.dispatcher.Apply(save.World, found)

	next, expired, err := mutator.SweepEffects(res.World)
	if err != nil {
		span.SetStatus(codes.Error, "sweep failed")
		return nil, err
	}
	next.Turn++

	prose := tags.Strip(response)
	messages := append(append([]chat.ChatMessage(nil), save.Messages...), chat.Messages(playerInput, prose)...)

	hist, err := p.history.Record(save.History, next.Turn, next, messages)
	if err != nil {
		log.Error("Failed to record history", "turn", next.Turn, "error", err)
		hist = save.History
	}

	if err := l.check(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	save.World, save.Messages, save.History = next, messages, hist
	if err := p.storage.SaveGame(ctx, save); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return nil, fmt.Errorf("failed to save game: %w", err)
	}
	p.recordJournal(ctx, gameID, next.Turn, journal.SourceTurn, res.Outcomes)

	result := &TurnResult{
		Turn:          next.Turn,
		Prose:         prose,
		Notifications: append(res.Notifications, expired...),
		Outcomes:      res.Outcomes,
	}
	span.SetAttributes(
		attribute.Int("game.turn", next.Turn),
		attribute.Int("turn.tags", len(found)),
		attribute.Int("turn.applied", res.Count(command.StatusApplied)),
	)
	log.Info("Turn processed",
		"turn", next.Turn,
		"tags", len(found),
		"applied", res.Count(command.StatusApplied),
		"skipped", res.Count(command.StatusSkipped),
		"failed", res.Count(command.StatusFailed))
	return result, nil
}

// ProcessTick runs one autonomous world tick. When the planner answer is
// unusable the save is left untouched and the error is returned.
func (p *Processor) ProcessTick(ctx context.Context, gameID uuid.UUID) (*scheduler.TickResult, error) {
	ctx, span := tracer.Start(ctx, "worker.tick", trace.WithAttributes(
		attribute.String("game.id", gameID.String()),
	))
	defer span.End()

	if p.scheduler == nil {
		return nil, ErrNoScheduler
	}

	l, err := p.acquire(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer l.release()

	save, err := p.load(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	res, err := p.scheduler.Tick(ctx, save.World)
	if err != nil {
		span.RecordError(err)
		return &res, err
	}
	if res.World == save.World {
		return &res, nil
	}

	if err := l.check(); err != nil {
		span.RecordError(err)
		return &res, err
	}
	save.World = res.World
	if err := p.storage.SaveGame(ctx, save); err != nil {
		span.SetStatus(codes.Error, "save failed")
		return &res, fmt.Errorf("failed to save game: %w", err)
	}
	p.recordJournal(ctx, gameID, save.World.Turn, journal.SourceTick, res.Outcomes)
	return &res, nil
}

// Rollback restores the world and conversation recorded for turn and drops
// every later history entry.
func (p *Processor) Rollback(ctx context.Context, gameID uuid.UUID, turn int) (*storage.Save, error) {
	ctx, span := tracer.Start(ctx, "worker.rollback", trace.WithAttributes(
		attribute.String("game.id", gameID.String()),
		attribute.Int("game.turn", turn),
	))
	defer span.End()

	l, err := p.acquire(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer l.release()

	save, err := p.load(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	ws, messages, err := p.history.Rollback(save.History, turn)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := l.check(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	save.World = ws
	save.Messages = messages
	save.History = p.history.Truncate(save.History, turn)
	if err := p.storage.SaveGame(ctx, save); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	p.logger.Info("Game rolled back", "game_id", gameID.String(), "turn", turn)
	return save, nil
}

func (p *Processor) recordJournal(ctx context.Context, gameID uuid.UUID, turn int, source string, outcomes []command.Outcome) {
	if p.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.journal.Record(ctx, gameID, turn, source, outcomes); err != nil {
		p.logger.Error("Failed to journal commands", "game_id", gameID.String(), "error", err)
	}
}
