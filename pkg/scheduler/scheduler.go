// Package scheduler runs world ticks: it picks the NPCs that matter most
// right now, asks a model what they do next, and feeds the validated plans
// through the same dispatcher that handles narrator tags.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jwebster45206/saga-engine/pkg/chat"
	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/prompts"
	"github.com/jwebster45206/saga-engine/pkg/tags"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

const DefaultCandidates = 25

// ErrAutonomyDisabled is returned when the world has autonomy turned off.
var ErrAutonomyDisabled = errors.New("autonomy is disabled for this world")

// Model produces a JSON plan for the given messages.
type Model interface {
	CompleteJSON(ctx context.Context, messages []chat.ChatMessage) (string, error)
}

type Scheduler struct {
	model       Model
	dispatcher  *command.Dispatcher
	logger      *slog.Logger
	candidates  int
	memoryDepth int
}

type Option func(*Scheduler)

func WithCandidates(k int) Option {
	return func(s *Scheduler) {
		if k > 0 {
			s.candidates = k
		}
	}
}

func WithMemoryDepth(n int) Option {
	return func(s *Scheduler) { s.memoryDepth = n }
}

func New(model Model, dispatcher *command.Dispatcher, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		model:       model,
		dispatcher:  dispatcher,
		logger:      logger,
		candidates:  DefaultCandidates,
		memoryDepth: prompts.DefaultMemoryDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TickResult describes one world tick. World is the input snapshot when
// nothing changed.
type TickResult struct {
	World         *world.State      `json:"-"`
	Selected      []Scored          `json:"selected"`
	Plans         []NPCPlan         `json:"plans"`
	Dropped       []Drop            `json:"dropped,omitempty"`
	Processed     []string          `json:"processed"`
	Outcomes      []command.Outcome `json:"outcomes,omitempty"`
	Notifications []string          `json:"notifications,omitempty"`
}

// Tick runs one autonomous cycle against ws. On ErrInvalidPlan or a model
// failure the returned result carries ws unchanged.
func (s *Scheduler) Tick(ctx context.Context, ws *world.State) (TickResult, error) {
	ctx, span := otel.Tracer("saga-engine/scheduler").Start(ctx, "scheduler.tick")
	defer span.End()

	res := TickResult{World: ws}
	if ws == nil {
		return res, fmt.Errorf("cannot tick nil world")
	}
	if !ws.Config.Autonomy.Enabled {
		return res, ErrAutonomyDisabled
	}

	res.Selected = Select(ScoreAll(ws), s.candidates)
	span.SetAttributes(attribute.Int("scheduler.selected", len(res.Selected)))
	if len(res.Selected) == 0 {
		s.logger.Debug("No NPCs to schedule", "turn", ws.Turn)
		return res, nil
	}

	candidates := make([]world.NPC, 0, len(res.Selected))
	selected := make(map[string]bool, len(res.Selected))
	for _, sc := range res.Selected {
		candidates = append(candidates, ws.NPCs[sc.Index])
		selected[sc.NPCID] = true
	}
	actionTypes := make([]string, len(ActionTypes))
	for i, t := range ActionTypes {
		actionTypes[i] = string(t)
	}
	messages, err := prompts.New().
		WithWorld(ws).
		WithCandidates(candidates).
		WithActionTypes(actionTypes...).
		WithMemoryDepth(s.memoryDepth).
		Build()
	if err != nil {
		return res, fmt.Errorf("failed to build planner prompt: %w", err)
	}

	raw, err := s.model.CompleteJSON(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "planner request failed")
		return res, fmt.Errorf("planner request failed: %w", err)
	}
	plans, err := ParsePlans(raw)
	if err != nil {
		s.logger.Warn("Discarding tick with invalid plan", "turn", ws.Turn, "error", err)
		span.SetStatus(codes.Error, "invalid plan")
		return res, err
	}

	res.Plans, res.Dropped = Validate(ws, plans, selected)
	for _, d := range res.Dropped {
		s.logger.Warn("Dropped NPC action", "npc", d.NPCID, "action", d.Action, "reason", d.Reason)
	}

	var batch []tags.Tag
	for _, p := range res.Plans {
		batch = append(batch, Convert(ws, p)...)
		res.Processed = append(res.Processed, p.NPCID)
	}
	applied := s.dispatcher.Apply(ws, batch)
	res.Outcomes = applied.Outcomes
	res.Notifications = applied.Notifications

	next := applied.World
	if next == ws {
		if next, err = ws.DeepCopy(); err != nil {
			return TickResult{World: ws}, fmt.Errorf("failed to copy world: %w", err)
		}
	}
	for _, sc := range res.Selected {
		if n := next.NPCByID(sc.NPCID); n != nil {
			n.PriorityScore = sc.Score
		}
	}
	for _, id := range res.Processed {
		if n := next.NPCByID(id); n != nil {
			n.LastTickTurn = ws.Turn
			n.PriorityScore = 0
		}
	}
	res.World = next

	span.SetAttributes(
		attribute.Int("scheduler.processed", len(res.Processed)),
		attribute.Int("scheduler.dropped", len(res.Dropped)),
	)
	s.logger.Info("World tick complete",
		"turn", ws.Turn,
		"selected", len(res.Selected),
		"processed", len(res.Processed),
		"dropped", len(res.Dropped),
		"applied", applied.Count(command.StatusApplied))
	return res, nil
}
