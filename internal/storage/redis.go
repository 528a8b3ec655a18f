package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/saga-engine/pkg/storage"
)

const (
	savePrefix = "save:"
	savesIndex = "saves"
)

// RedisStorage implements the Storage interface using Redis for saves
// and the filesystem for seed worlds.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	seedDir string
	ttl     time.Duration
}

var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage wraps an existing client. A zero ttl keeps saves forever.
func NewRedisStorage(client *redis.Client, seedDir string, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	if seedDir == "" {
		seedDir = "data/worlds"
	}
	return &RedisStorage{
		client:  client,
		logger:  logger,
		seedDir: seedDir,
		ttl:     ttl,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}
