package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/saga-engine/internal/config"
	"github.com/jwebster45206/saga-engine/internal/services"
)

func TestNew_WiresComponents(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "village.json"),
		[]byte(`{"turn":0,"player":{"name":"Lâm Phong"}}`), 0o644))

	cfg := &config.Config{
		RedisURL:         "redis://" + mr.Addr(),
		SeedDir:          dir,
		JournalPath:      filepath.Join(t.TempDir(), "journal.db"),
		LLMMock:          true,
		KeyframeInterval: 5,
		HistoryMax:       10,
		TickCandidates:   3,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := New(context.Background(), cfg, "saga-engine-test", log)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close(context.Background())) })

	assert.NotNil(t, a.Journal)
	assert.IsType(t, &services.MockPlanner{}, a.Planner)

	save, err := a.Processor.CreateGame(context.Background(), "village")
	require.NoError(t, err)
	loaded, err := a.Storage.LoadGame(context.Background(), save.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Lâm Phong", loaded.World.Player.Name)

	res, err := a.Processor.ProcessTurn(context.Background(), save.ID, "", `[ITEM_ACQUIRED: name="Bánh Bao"]`)
	require.NoError(t, err)
	entries, err := a.Journal.List(context.Background(), save.ID, 5)
	require.NoError(t, err)
	assert.Len(t, entries, len(res.Outcomes))
}

func TestNew_JournalDisabled(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		RedisURL:         "redis://" + mr.Addr(),
		LLMMock:          true,
		KeyframeInterval: 1,
		HistoryMax:       1,
		TickCandidates:   1,
	}
	a, err := New(context.Background(), cfg, "saga-engine-test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.Nil(t, a.Journal)
}
