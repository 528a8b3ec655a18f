package command

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/jwebster45206/saga-engine/pkg/tags"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// Status is the fate of one tag in a batch.
type Status string

const (
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one tag.
type Outcome struct {
	Tag           string   `json:"tag"`
	Kind          Kind     `json:"kind,omitempty"`
	Status        Status   `json:"status"`
	Detail        string   `json:"detail,omitempty"`
	Notifications []string `json:"notifications,omitempty"`
}

// Result is the output of one batch. World is the input snapshot itself
// when nothing was applied.
type Result struct {
	World         *world.State
	Notifications []string
	Outcomes      []Outcome
}

// Count returns how many outcomes have the given status.
func (r Result) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Dispatcher routes tags to handlers. Each handler runs on its own deep copy
// inside a recover boundary, so one bad tag never affects the others or the
// caller's snapshot.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

func (d *Dispatcher) Registry() *Registry { return d.registry }

// Decode parses and coerces one tag.
func (d *Dispatcher) Decode(t tags.Tag) (Command, error) {
	def, ok := d.registry.Lookup(t.Name)
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownKind, t.Name)
	}
	params, dropped := tags.ParseParams(t.Body)
	for _, part := range dropped {
		d.logger.Warn("Dropping tag parameter without '='", "tag", t.Name, "part", part)
	}
	cmd, warnings, err := def.Coerce(params)
	for _, w := range warnings {
		d.logger.Warn("Tag parameter coerced to default", "tag", t.Name, "detail", w)
	}
	if err != nil {
		return Command{}, err
	}
	cmd.Tag = t.Raw()
	return cmd, nil
}

// ApplyText extracts every tag from prose and applies them in order.
func (d *Dispatcher) ApplyText(ws *world.State, text string) Result {
	return d.Apply(ws, tags.Extract(text))
}

// Apply decodes and applies a batch of tags in order.
func (d *Dispatcher) Apply(ws *world.State, batch []tags.Tag) Result {
	res := Result{World: ws}
	for _, t := range batch {
		cmd, err := d.Decode(t)
		if err != nil {
			kind, _ := ParseKind(t.Name)
			if errors.Is(err, ErrUnknownKind) {
				kind = ""
				d.logger.Warn("Skipping unknown tag", "tag", t.Name)
			} else {
				d.logger.Warn("Skipping malformed tag", "tag", t.Raw(), "error", err)
			}
			res.Outcomes = append(res.Outcomes, Outcome{Tag: t.Raw(), Kind: kind, Status: StatusSkipped, Detail: err.Error()})
			continue
		}
		d.apply(&res, cmd)
	}
	return res
}

// ApplyCommands applies already-built commands through the same boundary.
func (d *Dispatcher) ApplyCommands(ws *world.State, cmds []Command) Result {
	res := Result{World: ws}
	for _, cmd := range cmds {
		d.apply(&res, cmd)
	}
	return res
}

func (d *Dispatcher) apply(res *Result, cmd Command) {
	out := Outcome{Tag: cmd.Tag, Kind: cmd.Kind}
	if out.Tag == "" {
		out.Tag = string(cmd.Kind)
	}

	def, ok := d.registry.defs[cmd.Kind]
	if !ok {
		d.logger.Warn("Skipping unregistered command", "kind", cmd.Kind)
		out.Status, out.Detail = StatusSkipped, ErrUnknownKind.Error()
		res.Outcomes = append(res.Outcomes, out)
		return
	}

	next, notes, err := d.run(def.Handler, res.World, cmd)
	var skip *SkipError
	switch {
	case errors.As(err, &skip):
		d.logger.Warn("Command skipped", "kind", cmd.Kind, "tag", out.Tag, "reason", skip.Error())
		out.Status, out.Detail = StatusSkipped, skip.Error()
		if skip.Notice != "" {
			out.Notifications = []string{skip.Notice}
		}
	case err != nil:
		d.logger.Error("Command failed", "kind", cmd.Kind, "tag", out.Tag, "error", err)
		out.Status, out.Detail = StatusFailed, err.Error()
	case next == nil:
		d.logger.Error("Command returned no world", "kind", cmd.Kind, "tag", out.Tag)
		out.Status, out.Detail = StatusFailed, "handler returned nil world"
	default:
		d.logger.Debug("Command applied", "kind", cmd.Kind, "tag", out.Tag)
		res.World = next
		out.Status = StatusApplied
		out.Notifications = notes
	}
	res.Notifications = append(res.Notifications, out.Notifications...)
	res.Outcomes = append(res.Outcomes, out)
}

// run calls h on a private copy and converts panics into errors.
func (d *Dispatcher) run(h Handler, ws *world.State, cmd Command) (next *world.State, notes []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Command handler panicked", "kind", cmd.Kind, "panic", r, "stack", string(debug.Stack()))
			next, notes, err = nil, nil, fmt.Errorf("handler panic: %v", r)
		}
	}()
	cp, err := ws.DeepCopy()
	if err != nil {
		return nil, nil, err
	}
	return h(cp, cmd)
}
