package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/jwebster45206/saga-engine/pkg/world"
)

func TestMockStorage_SaveAndLoad(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	ws := world.New()
	ws.Player.Name = "Tester"
	save := &Save{ID: ws.ID, World: ws}
	if err := m.SaveGame(ctx, save); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	// stored copy is detached from the caller's pointer
	ws.Player.Name = "Changed"

	loaded, err := m.LoadGame(ctx, save.ID)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded == nil || loaded.World.Player.Name != "Tester" {
		t.Fatalf("Expected stored player name Tester, got %+v", loaded)
	}

	ids, _ := m.ListGames(ctx)
	if len(ids) != 1 || ids[0] != save.ID {
		t.Errorf("Expected one listed game, got %v", ids)
	}

	if err := m.DeleteGame(ctx, save.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if loaded, _ := m.LoadGame(ctx, save.ID); loaded != nil {
		t.Error("Expected nil after delete")
	}
}

func TestMockStorage_LoadMissing(t *testing.T) {
	loaded, err := NewMockStorage().LoadGame(context.Background(), uuid.New())
	if err != nil || loaded != nil {
		t.Errorf("Expected nil, nil for missing save, got %v, %v", loaded, err)
	}
}

func TestMockStorage_Seeds(t *testing.T) {
	m := NewMockStorage()
	m.AddSeed("b", world.New())
	m.AddSeed("a", world.New())

	names, _ := m.ListSeeds(context.Background())
	if len(names) != 2 || names[0] != "a" {
		t.Errorf("Expected sorted seed names, got %v", names)
	}
	if _, err := m.LoadSeed(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMockStorage_Errors(t *testing.T) {
	m := NewMockStorage()
	m.SetPingError(errors.New("down"))
	if err := m.Ping(context.Background()); err == nil {
		t.Error("Expected ping error")
	}
	m.SetSaveError(errors.New("full"))
	if err := m.SaveGame(context.Background(), &Save{ID: uuid.New()}); err == nil {
		t.Error("Expected save error")
	}
	if err := m.SaveGame(context.Background(), nil); err == nil {
		t.Error("Expected error for nil save")
	}
}
