package history

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/saga-engine/pkg/chat"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

func testManager(interval, max int) *Manager {
	return NewManager(interval, max, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// play records turns 1..n, changing the world a little every turn.
func play(t *testing.T, m *Manager, n int) ([]Entry, []*world.State) {
	t.Helper()
	ws := world.New()
	ws.Locations = []world.Location{{ID: "loc_1", Name: "Thanh Vân Sơn"}}
	var hist []Entry
	var msgs []chat.ChatMessage
	var states []*world.State
	for turn := 1; turn <= n; turn++ {
		next, err := ws.DeepCopy()
		require.NoError(t, err)
		next.Turn = turn
		next.Calendar = next.Calendar.Advance(3)
		next.Player.Stats.LinhThach += turn
		if turn%3 == 0 {
			next.NPCs = append(next.NPCs, world.NPC{ID: next.NewID("npc"), Name: fmt.Sprintf("Đệ tử %d", turn), Status: world.NPCStatusAlive})
		}
		if turn%4 == 0 && len(next.NPCs) > 0 {
			next.NPCs = next.NPCs[1:]
		}
		msgs = append(msgs, chat.Messages(fmt.Sprintf("turn %d", turn), fmt.Sprintf("Narration <%d> & more", turn))...)

		hist, err = m.Record(hist, turn, next, msgs)
		require.NoError(t, err)
		states = append(states, next)
		ws = next
	}
	return hist, states
}

func TestRecord_KeyframeSchedule(t *testing.T) {
	hist, _ := play(t, testManager(5, 100), 12)
	require.Len(t, hist, 12)
	for _, e := range hist {
		want := Delta
		if e.Turn == 1 || e.Turn%5 == 0 {
			want = Keyframe
		}
		assert.Equal(t, want, e.Kind, "turn %d", e.Turn)
		assert.True(t, e.HasSnapshot(), "every entry keeps its snapshot")
		if e.Kind == Delta {
			assert.NotEmpty(t, e.WorldDelta)
			assert.NotEmpty(t, e.MessagesDelta)
		}
	}
}

func TestRecord_FirstEntryIsKeyframe(t *testing.T) {
	m := testManager(10, 100)
	ws := world.New()
	hist, err := m.Record(nil, 7, ws, nil)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, Keyframe, hist[0].Kind)
	assert.JSONEq(t, `[]`, string(hist[0].Messages))
}

func TestRecord_UpgradesWithoutPreviousSnapshot(t *testing.T) {
	m := testManager(10, 100)
	hist, _ := play(t, m, 3)
	hist = m.Compact(hist)
	require.False(t, hist[2].HasSnapshot())

	ws := world.New()
	hist, err := m.Record(hist, 4, ws, nil)
	require.NoError(t, err)
	assert.Equal(t, Keyframe, hist[3].Kind)
}

func TestRecord_DoesNotModifyInput(t *testing.T) {
	m := testManager(10, 3)
	hist, _ := play(t, m, 3)
	before := append([]Entry(nil), hist...)

	_, err := m.Record(hist, 4, world.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, before, hist)
}

func TestRecord_Bound(t *testing.T) {
	hist, _ := play(t, testManager(4, 5), 23)
	require.Len(t, hist, 5)
	for i, e := range hist {
		assert.Equal(t, 19+i, e.Turn)
	}
}

func TestRecord_NilWorld(t *testing.T) {
	_, err := testManager(10, 10).Record(nil, 1, nil, nil)
	assert.Error(t, err)
}

func TestReconstruct_MatchesStoredSnapshots(t *testing.T) {
	m := testManager(5, 100)
	hist, _ := play(t, m, 17)
	for _, e := range hist {
		w, msg, err := m.Reconstruct(hist, e.Turn)
		require.NoError(t, err, "turn %d", e.Turn)
		assert.Equal(t, string(e.World), string(w), "world bytes for turn %d", e.Turn)
		assert.Equal(t, string(e.Messages), string(msg), "message bytes for turn %d", e.Turn)
	}
}

func TestReconstruct_SurvivesEviction(t *testing.T) {
	m := testManager(5, 8)
	hist, _ := play(t, m, 20)
	hist = m.Compact(hist)

	// Turns 13 and 14 precede the first retained keyframe (15).
	_, _, err := m.Reconstruct(hist, 14)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, _, err = m.Reconstruct(hist, 18)
	assert.NoError(t, err)
}

func TestRecord_CompactDeltas(t *testing.T) {
	m := testManager(5, 8)
	m.CompactDeltas = true
	hist, states := play(t, m, 20)
	require.Len(t, hist, 8)
	assert.Equal(t, 13, hist[0].Turn)

	for i, e := range hist {
		switch {
		case i == 0:
			assert.Equal(t, Keyframe, e.Kind, "oldest entry is rebased")
			assert.True(t, e.HasSnapshot())
		case i == len(hist)-1, e.Kind == Keyframe:
			assert.True(t, e.HasSnapshot(), "turn %d", e.Turn)
		default:
			assert.False(t, e.HasSnapshot(), "turn %d", e.Turn)
		}
	}

	for _, e := range hist {
		ws, _, err := m.Rollback(hist, e.Turn)
		require.NoError(t, err, "turn %d", e.Turn)
		want, err := json.Marshal(states[e.Turn-1])
		require.NoError(t, err)
		got, err := json.Marshal(ws)
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got), "turn %d", e.Turn)
	}
}

func TestRollback(t *testing.T) {
	m := testManager(5, 100)
	hist, states := play(t, m, 9)

	ws, msgs, err := m.Rollback(hist, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, ws.Turn)
	assert.Equal(t, states[6].Player.Stats.LinhThach, ws.Player.Stats.LinhThach)
	assert.Len(t, msgs, 14)

	ws.Player.Name = "changed"
	again, _, err := m.Rollback(hist, 7)
	require.NoError(t, err)
	assert.Equal(t, "Player", again.Player.Name, "rollback returns fresh copies")

	_, _, err = m.Rollback(hist, 42)
	assert.ErrorIs(t, err, ErrTurnNotFound)
}

func TestRollback_CompactedHistory(t *testing.T) {
	m := testManager(5, 100)
	hist, states := play(t, m, 9)
	compact := m.Compact(hist)

	ws, _, err := m.Rollback(compact, 8)
	require.NoError(t, err)
	want, err := json.Marshal(states[7])
	require.NoError(t, err)
	got, err := json.Marshal(ws)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestTruncate(t *testing.T) {
	m := testManager(5, 100)
	hist, _ := play(t, m, 9)
	kept := m.Truncate(hist, 6)
	require.Len(t, kept, 6)
	assert.Equal(t, 6, kept[len(kept)-1].Turn)
	assert.Len(t, hist, 9)
}

func TestEntry_JSONRoundTrip(t *testing.T) {
	m := testManager(3, 100)
	hist, _ := play(t, m, 4)
	data, err := json.Marshal(hist)
	require.NoError(t, err)

	var back []Entry
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 4)
	for i := range hist {
		assert.Equal(t, hist[i].Turn, back[i].Turn)
		assert.Equal(t, hist[i].Kind, back[i].Kind)
	}
	w, _, err := m.Reconstruct(m.Compact(back), 4)
	require.NoError(t, err)
	assert.JSONEq(t, string(hist[3].World), string(w))
}
