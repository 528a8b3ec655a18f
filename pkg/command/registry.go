package command

import (
	"fmt"

	"github.com/jwebster45206/saga-engine/pkg/world"
)

// Command is a typed, ready-to-apply instruction.
type Command struct {
	Kind Kind
	Args Args
	Tag  string // source text, for logs and the journal
}

// Handler applies one command to a private copy of the world and returns
// the resulting snapshot plus player-facing notifications. It may mutate
// and return ws; the dispatcher never hands the same copy out twice.
type Handler func(ws *world.State, cmd Command) (*world.State, []string, error)

// Definition registers one command kind.
type Definition struct {
	Kind    Kind
	Summary string
	Params  []ParamSpec
	Extra   ParamType // type of undeclared parameters; 0 rejects them
	Handler Handler
}

// Registry is the static table of command kinds. It is built once at
// startup and read-only afterwards.
type Registry struct {
	defs map[Kind]Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[Kind]Definition)}
}

// Register adds a definition. Kinds outside the vocabulary, duplicates and
// definitions without a handler are rejected.
func (r *Registry) Register(def Definition) error {
	if _, ok := known[def.Kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, def.Kind)
	}
	if def.Handler == nil {
		return fmt.Errorf("command %s has no handler", def.Kind)
	}
	if _, dup := r.defs[def.Kind]; dup {
		return fmt.Errorf("command %s already registered", def.Kind)
	}
	for _, p := range def.Params {
		if p.Default == "" {
			continue
		}
		if _, err := coerce(p, p.Default); err != nil {
			return fmt.Errorf("command %s: default for %s: %w", def.Kind, p.Name, err)
		}
	}
	r.defs[def.Kind] = def
	return nil
}

// MustRegister panics on error. Use it only while building the static table.
func (r *Registry) MustRegister(defs ...Definition) *Registry {
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Lookup finds the definition for a tag name, case-insensitively.
func (r *Registry) Lookup(name string) (Definition, bool) {
	k, ok := ParseKind(name)
	if !ok {
		return Definition{}, false
	}
	def, ok := r.defs[k]
	return def, ok
}

// Definitions returns registered definitions in vocabulary order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, k := range Kinds {
		if d, ok := r.defs[k]; ok {
			out = append(out, d)
		}
	}
	return out
}
