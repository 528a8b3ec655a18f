package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/saga-engine/pkg/storage"
)

const (
	// PollInterval is how often to check the game for updates
	PollInterval = 250 * time.Millisecond
	// AsyncTimeout is max time to wait for a worker to finish a request
	AsyncTimeout = 30 * time.Second
)

// GetGame retrieves the current save.
func GetGame(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) (*storage.Save, error) {
	url := fmt.Sprintf("%s/v1/games/%s", baseURL, gameID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create game request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send game request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("game endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var save storage.Save
	if err := json.NewDecoder(resp.Body).Decode(&save); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}
	return &save, nil
}

// PollForGame polls the game until done returns true for it.
func PollForGame(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID, done func(*storage.Save) bool) (*storage.Save, error) {
	timeout := time.After(AsyncTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout:
			return nil, fmt.Errorf("timeout waiting for worker (waited %v)", AsyncTimeout)
		case <-ticker.C:
			save, err := GetGame(ctx, client, baseURL, gameID)
			if err != nil {
				// Keep polling; the worker may hold the game briefly.
				continue
			}
			if done(save) {
				return save, nil
			}
		}
	}
}

// asyncDone returns the completion check for an accepted request, given
// the save as it was before the request.
func asyncDone(step TestStep, before *storage.Save) func(*storage.Save) bool {
	switch step.action() {
	case ActionRollback:
		return func(s *storage.Save) bool {
			return s.World.Turn == *step.RollbackTurn && !s.UpdatedAt.Equal(before.UpdatedAt)
		}
	case ActionTick:
		return func(s *storage.Save) bool { return s.UpdatedAt.After(before.UpdatedAt) }
	default:
		return func(s *storage.Save) bool { return s.World.Turn > before.World.Turn }
	}
}
