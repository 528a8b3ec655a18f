package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/saga-engine/pkg/storage"
)

func saveKey(id uuid.UUID) string {
	return savePrefix + id.String()
}

// SaveGame writes the save and indexes its id. UpdatedAt is stamped here.
func (r *RedisStorage) SaveGame(ctx context.Context, save *storage.Save) error {
	if save == nil {
		return errors.New("save cannot be nil")
	}
	now := time.Now().UTC()
	if save.CreatedAt.IsZero() {
		save.CreatedAt = now
	}
	save.UpdatedAt = now

	data, err := json.Marshal(save)
	if err != nil {
		r.logger.Error("Failed to marshal save", "game_id", save.ID, "error", err)
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, saveKey(save.ID), data, r.ttl)
		pipe.SAdd(ctx, savesIndex, save.ID.String())
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save game", "game_id", save.ID, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}
	r.logger.Debug("Game saved", "game_id", save.ID, "bytes", len(data), "history", len(save.History))
	return nil
}

// LoadGame returns nil, nil for unknown or expired games.
func (r *RedisStorage) LoadGame(ctx context.Context, id uuid.UUID) (*storage.Save, error) {
	data, err := r.client.Get(ctx, saveKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Game not found", "game_id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load game", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	var save storage.Save
	if err := json.Unmarshal(data, &save); err != nil {
		r.logger.Error("Failed to unmarshal save", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return &save, nil
}

func (r *RedisStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, saveKey(id))
		pipe.SRem(ctx, savesIndex, id.String())
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete game", "game_id", id, "error", err)
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// ListGames returns the ids of live saves. Ids whose save has expired are
// pruned from the index on the way.
func (r *RedisStorage) ListGames(ctx context.Context) ([]uuid.UUID, error) {
	members, err := r.client.SMembers(ctx, savesIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			r.logger.Warn("Dropping malformed id from save index", "member", m)
			r.client.SRem(ctx, savesIndex, m)
			continue
		}
		n, err := r.client.Exists(ctx, saveKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check save %s: %w", id, err)
		}
		if n == 0 {
			r.logger.Debug("Pruning expired save from index", "game_id", id)
			r.client.SRem(ctx, savesIndex, m)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
