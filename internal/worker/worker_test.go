package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/saga-engine/internal/services"
	"github.com/jwebster45206/saga-engine/internal/services/events"
	"github.com/jwebster45206/saga-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/saga-engine/pkg/queue"
)

type workerFixture struct {
	*fixture
	mr     *miniredis.Miniredis
	queue  *queue.RequestQueue
	worker *Worker
	events *events.Broadcaster
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	mr := miniredis.RunT(t)

	rs, err := services.NewRedisService("redis://"+mr.Addr(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })

	f := newFixture(t, WithLocker(rs))
	q := queue.NewRequestQueue(queue.NewClientFromRedis(rs.GetClient(), testLogger()))
	return &workerFixture{
		fixture: f,
		mr:      mr,
		queue:   q,
		worker:  New(q, f.processor, rs, f.store, testLogger(), "worker-test"),
		events:  events.NewBroadcaster(rs.GetClient(), testLogger()),
	}
}

func (wf *workerFixture) subscribe(t *testing.T, gameID uuid.UUID) <-chan *redis.Message {
	t.Helper()
	sub, err := wf.events.Subscribe(context.Background(), gameID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })
	return sub.Channel()
}

func nextEvent(t *testing.T, ch <-chan *redis.Message) events.Event {
	t.Helper()
	select {
	case msg := <-ch:
		var ev events.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

func TestWorker_HandleTurn(t *testing.T) {
	wf := newWorkerFixture(t)
	id := wf.newGame(t)
	ch := wf.subscribe(t, id)

	req := queuePkg.NewRequest(queuePkg.RequestTypeTurn, id)
	req.PlayerInput = "I look around"
	req.Response = `Mist drifts past. [ITEM_ACQUIRED: name="Linh Thạch"]`
	require.NoError(t, wf.worker.Handle(req))

	ev := nextEvent(t, ch)
	assert.Equal(t, events.EventTypeTurnApplied, ev.Type)
	assert.Equal(t, req.RequestID, ev.RequestID)
	assert.Equal(t, id.String(), ev.GameID)
	assert.EqualValues(t, 1, ev.Data["turn"])
	assert.Equal(t, "Mist drifts past.", ev.Data["prose"])

	assert.Equal(t, 1, wf.loadSave(t, id).World.Turn)
	assert.False(t, wf.mr.Exists(lockKey(id)), "lock released")
}

func TestWorker_LockedGameIsRequeued(t *testing.T) {
	wf := newWorkerFixture(t)
	id := wf.newGame(t)
	require.NoError(t, wf.mr.Set(lockKey(id), "other-worker"))

	req := queuePkg.NewRequest(queuePkg.RequestTypeTurn, id)
	req.Response = `[ITEM_ACQUIRED: name="Linh Thạch"]`
	require.NoError(t, wf.worker.Handle(req))

	depth, err := wf.queue.Depth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
	assert.Equal(t, 0, wf.loadSave(t, id).World.Turn)

	got, err := wf.mr.Get(lockKey(id))
	require.NoError(t, err)
	assert.Equal(t, "other-worker", got)
}

func TestWorker_TickDiscarded(t *testing.T) {
	wf := newWorkerFixture(t)
	id := wf.newGame(t)
	ch := wf.subscribe(t, id)
	wf.planner.SetResponse(`{"npcs": "sleeping"}`)

	require.NoError(t, wf.worker.Handle(queuePkg.NewRequest(queuePkg.RequestTypeTick, id)))

	ev := nextEvent(t, ch)
	assert.Equal(t, events.EventTypeTickDiscarded, ev.Type)
	assert.Contains(t, ev.Data["reason"], "invalid NPC plan")
}

func TestWorker_TickCompleted(t *testing.T) {
	wf := newWorkerFixture(t)
	id := wf.newGame(t)
	ch := wf.subscribe(t, id)

	require.NoError(t, wf.worker.Handle(queuePkg.NewRequest(queuePkg.RequestTypeTick, id)))

	ev := nextEvent(t, ch)
	assert.Equal(t, events.EventTypeTickCompleted, ev.Type)
	assert.Equal(t, 1, wf.planner.CallCount())
}

func TestWorker_Rollback(t *testing.T) {
	wf := newWorkerFixture(t)
	id := wf.newGame(t)
	_, err := wf.processor.ProcessTurn(context.Background(), id, "", `[ITEM_ACQUIRED: name="Linh Thạch"]`)
	require.NoError(t, err)
	ch := wf.subscribe(t, id)

	req := queuePkg.NewRequest(queuePkg.RequestTypeRollback, id)
	req.Turn = 0
	require.NoError(t, wf.worker.Handle(req))

	ev := nextEvent(t, ch)
	assert.Equal(t, events.EventTypeRollbackCompleted, ev.Type)
	assert.EqualValues(t, 0, ev.Data["turn"])
	assert.Empty(t, wf.loadSave(t, id).World.Inventory)
}

func TestWorker_FailurePublished(t *testing.T) {
	wf := newWorkerFixture(t)
	id := uuid.New()
	ch := wf.subscribe(t, id)

	req := queuePkg.NewRequest(queuePkg.RequestTypeTurn, id)
	req.Response = "nothing"
	require.Error(t, wf.worker.Handle(req))

	ev := nextEvent(t, ch)
	assert.Equal(t, events.EventTypeRequestFailed, ev.Type)
	assert.Contains(t, ev.Data["error"], "not found")
	assert.False(t, wf.mr.Exists(lockKey(id)))
}

func TestWorker_EnqueueTicks(t *testing.T) {
	wf := newWorkerFixture(t)
	ctx := context.Background()
	autonomous := wf.newGame(t)
	manual := wf.newGame(t)

	save := wf.loadSave(t, manual)
	save.World.Config.Autonomy.Enabled = false
	require.NoError(t, wf.store.SaveGame(ctx, save))

	n, err := wf.worker.EnqueueTicks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	req, err := wf.queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, queuePkg.RequestTypeTick, req.Type)
	assert.Equal(t, autonomous, req.GameID)
}

func TestWorker_StartStop(t *testing.T) {
	wf := newWorkerFixture(t)
	id := wf.newGame(t)
	ch := wf.subscribe(t, id)

	req := queuePkg.NewRequest(queuePkg.RequestTypeTurn, id)
	req.Response = "The wind howls."
	require.NoError(t, wf.queue.Enqueue(context.Background(), req))

	done := make(chan error, 1)
	go func() { done <- wf.worker.Start() }()

	ev := nextEvent(t, ch)
	assert.Equal(t, events.EventTypeTurnApplied, ev.Type)

	wf.worker.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}
}
