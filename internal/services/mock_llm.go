package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/saga-engine/pkg/chat"
)

// EmptyPlan is what MockPlanner returns by default: a valid plan in which
// no NPC acts.
const EmptyPlan = `{"npcUpdates":[]}`

// MockPlanner is a Planner for tests and for running without a model.
type MockPlanner struct {
	CompleteJSONFunc func(ctx context.Context, messages []chat.ChatMessage) (string, error)
	ReadyErr         error

	// Track calls for testing
	Calls [][]chat.ChatMessage

	mu sync.Mutex // protects all fields above
}

var _ Planner = (*MockPlanner)(nil)

func NewMockPlanner() *MockPlanner {
	return &MockPlanner{}
}

func (m *MockPlanner) Name() string { return "mock" }

func (m *MockPlanner) Ready(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReadyErr
}

func (m *MockPlanner) CompleteJSON(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, messages)
	fn := m.CompleteJSONFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	return EmptyPlan, nil
}

// SetResponse makes every call return raw.
func (m *MockPlanner) SetResponse(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteJSONFunc = func(context.Context, []chat.ChatMessage) (string, error) {
		return raw, nil
	}
}

// SetError makes every call fail with err.
func (m *MockPlanner) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteJSONFunc = func(context.Context, []chat.ChatMessage) (string, error) {
		return "", err
	}
}

// CallCount returns the number of CompleteJSON calls so far.
func (m *MockPlanner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
