package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T) *Broadcaster {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewBroadcaster(rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBroadcaster_PublishSubscribe(t *testing.T) {
	b := newTestBroadcaster(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gameID := uuid.New()

	sub, err := b.Subscribe(ctx, gameID)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.Publish(ctx, gameID, Event{
		Type:      EventTypeTurnApplied,
		RequestID: "req-1",
		Data:      map[string]any{"turn": 4},
	}))
	require.NoError(t, b.PublishRequestFailed(ctx, gameID, "req-2", "boom"))

	var got []Event
	for range 2 {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		assert.Equal(t, Channel(gameID), msg.Channel)
		var e Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &e))
		got = append(got, e)
	}
	assert.Equal(t, EventTypeTurnApplied, got[0].Type)
	assert.Equal(t, gameID.String(), got[0].GameID)
	assert.EqualValues(t, 4, got[0].Data["turn"])
	assert.Equal(t, EventTypeRequestFailed, got[1].Type)
	assert.Equal(t, "boom", got[1].Data["error"])
}

func TestBroadcaster_OtherGameIsolated(t *testing.T) {
	b := newTestBroadcaster(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	mine, other := uuid.New(), uuid.New()

	sub, err := b.Subscribe(ctx, mine)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.PublishRequestQueued(ctx, other, "r", "tick"))
	require.NoError(t, b.PublishRequestQueued(ctx, mine, "r", "turn"))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var e Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &e))
	assert.Equal(t, mine.String(), e.GameID)
	assert.Equal(t, "turn", e.Data["type"])
}
