package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/saga-engine/pkg/chat"
	"github.com/jwebster45206/saga-engine/pkg/history"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// ErrNotFound is returned for missing seeds. Missing saves are reported as
// (nil, nil) by LoadGame.
var ErrNotFound = errors.New("not found")

// Save is everything persisted for one game.
type Save struct {
	ID        uuid.UUID          `json:"id"`
	Seed      string             `json:"seed,omitempty"`
	World     *world.State       `json:"world"`
	Messages  []chat.ChatMessage `json:"messages"`
	History   []history.Entry    `json:"history"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Storage combines save persistence (Redis) with seed world loading
// (filesystem).
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	SaveGame(ctx context.Context, save *Save) error
	// LoadGame returns nil, nil when no save exists for id.
	LoadGame(ctx context.Context, id uuid.UUID) (*Save, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	ListGames(ctx context.Context) ([]uuid.UUID, error)

	LoadSeed(ctx context.Context, name string) (*world.State, error)
	ListSeeds(ctx context.Context) ([]string, error)
}
