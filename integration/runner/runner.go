package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/storage"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// Runner executes scripted games against a running saga-engine API.
type Runner struct {
	BaseURL       string
	Client        *http.Client
	Timeout       time.Duration
	Logger        func(format string, args ...any)
	StopOnFailure bool
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: 60 * time.Second},
		Timeout: 30 * time.Second,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	if suite.Seed == "" {
		return TestSuite{}, fmt.Errorf("%s: seed is required", filename)
	}
	return suite, nil
}

// stepResponse is the union of the turn, tick and rollback response bodies.
type stepResponse struct {
	Turn          int               `json:"turn"`
	Prose         string            `json:"prose"`
	Notifications []string          `json:"notifications"`
	Outcomes      []command.Outcome `json:"outcomes"`
	World         *world.State      `json:"world"`
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger(format, args...)
	}
}

// RunSuite creates a game from the suite's seed and plays every step.
// The error is only for failures that stop the suite before any step runs.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{Suite: suite.Name, Results: make([]TestResult, 0, len(suite.Steps))}

	gameID, err := r.createGame(ctx, suite.Seed)
	if err != nil {
		return result, err
	}
	result.GameID = gameID
	r.logf("Suite %q: game %s from seed %s", suite.Name, gameID, suite.Seed)

	for i, step := range suite.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
		err := r.runStep(stepCtx, gameID, step)
		cancel()

		res := TestResult{StepName: name, Success: err == nil, Error: err, Duration: time.Since(stepStart)}
		result.Results = append(result.Results, res)
		if err != nil {
			r.logf("  FAIL %s: %v", name, err)
			if r.StopOnFailure {
				break
			}
			continue
		}
		r.logf("  ok   %s (%v)", name, res.Duration.Round(time.Millisecond))
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, gameID uuid.UUID, step TestStep) error {
	exp := step.Expectations
	if step.Async && exp.needsResponse() {
		return fmt.Errorf("outcome and prose expectations need a synchronous step")
	}

	var path string
	var body any
	switch step.action() {
	case ActionTurn:
		path = "/turns"
		body = map[string]string{"playerInput": step.PlayerInput, "response": step.Response}
	case ActionTick:
		path = "/tick"
	case ActionRollback:
		if step.RollbackTurn == nil {
			return fmt.Errorf("rollback step needs rollback_turn")
		}
		path = "/rollback"
		body = map[string]int{"turn": *step.RollbackTurn}
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	var before *storage.Save
	if step.Async {
		var err error
		if before, err = GetGame(ctx, r.Client, r.BaseURL, gameID); err != nil {
			return err
		}
		path += "?async=true"
	}

	status, raw, err := r.post(ctx, fmt.Sprintf("/v1/games/%s%s", gameID, path), body)
	if err != nil {
		return err
	}
	want := http.StatusOK
	if step.Async {
		want = http.StatusAccepted
	}
	if exp.Status != nil {
		want = *exp.Status
	}
	if status != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, status, strings.TrimSpace(string(raw)))
	}
	if status >= 300 {
		// An expected error status ends the step; the world checks below
		// still apply to whatever state the game is in.
		return r.checkWorld(ctx, gameID, exp)
	}

	if step.Async {
		if _, err := PollForGame(ctx, r.Client, r.BaseURL, gameID, asyncDone(step, before)); err != nil {
			return err
		}
		return r.checkWorld(ctx, gameID, exp)
	}

	var resp stepResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := checkResponse(resp, exp); err != nil {
		return err
	}
	return r.checkWorld(ctx, gameID, exp)
}

func (r *Runner) createGame(ctx context.Context, seed string) (uuid.UUID, error) {
	status, raw, err := r.post(ctx, "/v1/games", map[string]string{"seed": seed})
	if err != nil {
		return uuid.Nil, err
	}
	if status != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("create game returned %d: %s", status, strings.TrimSpace(string(raw)))
	}
	var save storage.Save
	if err := json.Unmarshal(raw, &save); err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode created game: %w", err)
	}
	return save.ID, nil
}

func (r *Runner) post(ctx context.Context, path string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func checkResponse(resp stepResponse, exp Expectations) error {
	var problems []string
	count := func(label string, want *int, status command.Status) {
		if want == nil {
			return
		}
		got := 0
		for _, o := range resp.Outcomes {
			if o.Status == status {
				got++
			}
		}
		if got != *want {
			problems = append(problems, fmt.Sprintf("expected %d %s outcomes, got %d", *want, label, got))
		}
	}
	count("applied", exp.Applied, command.StatusApplied)
	count("skipped", exp.Skipped, command.StatusSkipped)
	count("failed", exp.Failed, command.StatusFailed)

	notes := strings.Join(resp.Notifications, "\n")
	for _, want := range exp.NotificationsContain {
		if !strings.Contains(notes, want) {
			problems = append(problems, fmt.Sprintf("no notification contains %q", want))
		}
	}
	for _, want := range exp.ProseContains {
		if !strings.Contains(resp.Prose, want) {
			problems = append(problems, fmt.Sprintf("prose does not contain %q", want))
		}
	}
	for _, unwanted := range exp.ProseNotContains {
		if strings.Contains(resp.Prose, unwanted) {
			problems = append(problems, fmt.Sprintf("prose contains %q", unwanted))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func (r *Runner) checkWorld(ctx context.Context, gameID uuid.UUID, exp Expectations) error {
	if exp.Turn == nil && exp.Location == nil && len(exp.Inventory) == 0 &&
		len(exp.NPCLocations) == 0 && exp.Messages == nil {
		return nil
	}
	save, err := GetGame(ctx, r.Client, r.BaseURL, gameID)
	if err != nil {
		return err
	}
	return checkSave(save, exp)
}

func checkSave(save *storage.Save, exp Expectations) error {
	ws := save.World
	var problems []string

	if exp.Turn != nil && ws.Turn != *exp.Turn {
		problems = append(problems, fmt.Sprintf("expected turn %d, got %d", *exp.Turn, ws.Turn))
	}
	if exp.Location != nil {
		loc := ws.LocationByID(ws.Player.LocationID)
		if ws.Player.LocationID != *exp.Location && (loc == nil || loc.Name != *exp.Location) {
			problems = append(problems, fmt.Sprintf("expected player at %q, got %q", *exp.Location, ws.Player.LocationID))
		}
	}
	for name, want := range exp.Inventory {
		got := 0
		for _, it := range ws.Inventory {
			if strings.EqualFold(it.Name, name) {
				got = it.Quantity
			}
		}
		if got != want {
			problems = append(problems, fmt.Sprintf("expected %d x %s, got %d", want, name, got))
		}
	}
	for name, want := range exp.NPCLocations {
		var got string
		found := false
		for _, n := range ws.NPCs {
			if strings.EqualFold(n.Name, name) {
				got, found = n.LocationID, true
			}
		}
		switch {
		case !found:
			problems = append(problems, fmt.Sprintf("npc %q not found", name))
		case got != want:
			problems = append(problems, fmt.Sprintf("expected %s at %q, got %q", name, want, got))
		}
	}
	if exp.Messages != nil && len(save.Messages) != *exp.Messages {
		problems = append(problems, fmt.Sprintf("expected %d messages, got %d", *exp.Messages, len(save.Messages)))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
