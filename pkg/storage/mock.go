package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/saga-engine/pkg/world"
)

// MockStorage is an in-memory Storage for tests. Saves are copied on the
// way in and out so callers cannot alias stored state.
type MockStorage struct {
	mu        sync.RWMutex
	saves     map[uuid.UUID][]byte
	seeds     map[string]*world.State
	pingError error
	saveError error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		saves: make(map[uuid.UUID][]byte),
		seeds: make(map[string]*world.State),
	}
}

// SetPingError configures the mock to fail on ping with the given error.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every SaveGame fail with err.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGame(ctx context.Context, save *Save) error {
	if save == nil {
		return errors.New("save cannot be nil")
	}
	data, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.saves[save.ID] = data
	return nil
}

func (m *MockStorage) LoadGame(ctx context.Context, id uuid.UUID) (*Save, error) {
	m.mu.RLock()
	data, exists := m.saves[id]
	m.mu.RUnlock()
	if !exists {
		return nil, nil
	}
	var save Save
	if err := json.Unmarshal(data, &save); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return &save, nil
}

func (m *MockStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

func (m *MockStorage) ListGames(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.saves))
	for id := range m.saves {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return ids, nil
}

// AddSeed registers a seed world under name.
func (m *MockStorage) AddSeed(name string, ws *world.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeds[name] = ws
}

func (m *MockStorage) LoadSeed(ctx context.Context, name string) (*world.State, error) {
	m.mu.RLock()
	seed, exists := m.seeds[name]
	m.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("seed %q: %w", name, ErrNotFound)
	}
	return seed.DeepCopy()
}

func (m *MockStorage) ListSeeds(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.seeds))
	for name := range m.seeds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
