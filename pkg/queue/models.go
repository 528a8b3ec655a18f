package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestType identifies the kind of work a queued request carries.
type RequestType string

const (
	// RequestTypeTurn applies a narrator response to a game.
	RequestTypeTurn RequestType = "turn"

	// RequestTypeTick runs one autonomous world tick.
	RequestTypeTick RequestType = "tick"

	// RequestTypeRollback restores a game to an earlier turn.
	RequestTypeRollback RequestType = "rollback"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestTypeTurn, RequestTypeTick, RequestTypeRollback:
		return true
	}
	return false
}

// Request is one unit of work in the queue.
type Request struct {
	RequestID string      `json:"request_id"`
	Type      RequestType `json:"type"`
	GameID    uuid.UUID   `json:"game_id"`

	// Turn fields
	PlayerInput string `json:"player_input,omitempty"`
	Response    string `json:"response,omitempty"`

	// Rollback target
	Turn int `json:"turn,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewRequest stamps a request id and enqueue time.
func NewRequest(t RequestType, gameID uuid.UUID) *Request {
	return &Request{
		RequestID:  uuid.New().String(),
		Type:       t,
		GameID:     gameID,
		EnqueuedAt: time.Now().UTC(),
	}
}

// ToJSON converts the request to JSON bytes for Redis.
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses and checks a request read from Redis.
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown request type %q", req.Type)
	}
	if req.GameID == uuid.Nil {
		return nil, fmt.Errorf("request %s has no game id", req.RequestID)
	}
	return &req, nil
}
