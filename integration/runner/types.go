package runner

import (
	"time"

	"github.com/google/uuid"
)

// Action is what a step asks the API to do.
type Action string

const (
	ActionTurn     Action = "turn"
	ActionTick     Action = "tick"
	ActionRollback Action = "rollback"
)

// TestSuite is one scripted game: a seed and the steps played against it.
type TestSuite struct {
	Name  string     `json:"name"`
	Seed  string     `json:"seed"`
	Steps []TestStep `json:"steps"`
}

// TestStep is one request and what the game should look like afterwards.
// Action defaults to turn.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       Action       `json:"action,omitempty"`
	PlayerInput  string       `json:"player_input,omitempty"`
	Response     string       `json:"response,omitempty"`
	RollbackTurn *int         `json:"rollback_turn,omitempty"`
	Async        bool         `json:"async,omitempty"`
	Expectations Expectations `json:"expect"`
}

func (s TestStep) action() Action {
	if s.Action == "" {
		return ActionTurn
	}
	return s.Action
}

// Expectations are checked after the step completes. Nil and empty fields
// are not checked. Outcome counts and prose checks need a synchronous step.
type Expectations struct {
	Status *int `json:"status,omitempty"` // HTTP status of the step request

	// World
	Turn         *int              `json:"turn,omitempty"`
	Location     *string           `json:"location,omitempty"`      // player location id or name
	Inventory    map[string]int    `json:"inventory,omitempty"`     // item name -> quantity, 0 means absent
	NPCLocations map[string]string `json:"npc_locations,omitempty"` // npc name -> location id
	Messages     *int              `json:"messages,omitempty"`

	// Response
	Applied              *int     `json:"applied,omitempty"`
	Skipped              *int     `json:"skipped,omitempty"`
	Failed               *int     `json:"failed,omitempty"`
	NotificationsContain []string `json:"notifications_contain,omitempty"`
	ProseContains        []string `json:"prose_contains,omitempty"`
	ProseNotContains     []string `json:"prose_not_contains,omitempty"`
}

func (e Expectations) needsResponse() bool {
	return e.Applied != nil || e.Skipped != nil || e.Failed != nil ||
		len(e.NotificationsContain) > 0 || len(e.ProseContains) > 0 || len(e.ProseNotContains) > 0
}

// TestResult is the outcome of one step.
type TestResult struct {
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestRunResult contains the results of running an entire suite.
type TestRunResult struct {
	Suite    string
	GameID   uuid.UUID
	Results  []TestResult
	Duration time.Duration
}

// Passed reports whether every step succeeded.
func (r TestRunResult) Passed() bool {
	for _, res := range r.Results {
		if !res.Success {
			return false
		}
	}
	return true
}
