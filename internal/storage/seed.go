package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/storage"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// LoadSeed reads SEED_DIR/<name>.json. Integrity problems are logged, not
// fatal: the dispatcher tolerates dangling references.
func (r *RedisStorage) LoadSeed(ctx context.Context, name string) (*world.State, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".json")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("seed %q: %w", name, storage.ErrNotFound)
	}
	path := filepath.Join(r.seedDir, name+".json")
	r.logger.Debug("Loading seed", "seed", name, "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("seed %q: %w", name, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	ws, err := world.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", name, err)
	}
	for _, problem := range ws.Integrity() {
		r.logger.Warn("Seed integrity problem", "seed", name, "error", problem)
	}
	return ws, nil
}

func (r *RedisStorage) ListSeeds(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.seedDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read seed directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	slices.Sort(names)
	return names, nil
}
