package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/chat"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// DefaultMemoryDepth is how many activity entries each NPC profile carries.
const DefaultMemoryDepth = 5

// Builder constructs the planner messages for one world tick using a fluent
// interface.
type Builder struct {
	ws          *world.State
	candidates  []world.NPC
	actionTypes []string
	memoryDepth int
	messages    []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		memoryDepth: DefaultMemoryDepth,
		messages:    make([]chat.ChatMessage, 0),
	}
}

func (b *Builder) WithWorld(ws *world.State) *Builder {
	b.ws = ws
	return b
}

// WithCandidates sets the NPCs the model is asked to plan for.
func (b *Builder) WithCandidates(npcs []world.NPC) *Builder {
	b.candidates = npcs
	return b
}

func (b *Builder) WithActionTypes(types ...string) *Builder {
	b.actionTypes = types
	return b
}

func (b *Builder) WithMemoryDepth(depth int) *Builder {
	b.memoryDepth = depth
	return b
}

// Build constructs and returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.ws == nil {
		return nil, fmt.Errorf("world is required")
	}
	if len(b.candidates) == 0 {
		return nil, fmt.Errorf("at least one candidate NPC is required")
	}
	if len(b.actionTypes) == 0 {
		return nil, fmt.Errorf("action types are required")
	}

	b.messages = make([]chat.ChatMessage, 0, 2)
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: fmt.Sprintf(PlannerSystemPrompt, strings.Join(b.actionTypes, ", ")),
	})

	ps := ToPromptState(b.ws, b.candidates, b.memoryDepth)
	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshaling prompt state: %w", err)
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: fmt.Sprintf(PlannerStateTemplate, ps.Calendar, data),
	})
	return b.messages, nil
}
