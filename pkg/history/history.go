// Package history records one entry per turn so the game can be rolled back.
// Every entry keeps a full snapshot of the world and the conversation. Delta
// entries also carry an RFC 6902 patch against the previous entry, which
// lets Compact drop their snapshots and still reconstruct any turn from the
// nearest keyframe.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/saga-engine/pkg/chat"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

const (
	DefaultKeyframeInterval = 10
	DefaultMaxEntries       = 50
)

var (
	ErrTurnNotFound = errors.New("turn not found in history")
	ErrNoSnapshot   = errors.New("no snapshot to restore from")
)

type EntryKind string

const (
	Keyframe EntryKind = "keyframe"
	Delta    EntryKind = "delta"
)

// Entry is one recorded turn. Entries are never modified after Record
// returns them, except by Compact.
type Entry struct {
	Turn          int             `json:"turn"`
	Kind          EntryKind       `json:"kind"`
	World         json.RawMessage `json:"world,omitempty"`
	WorldDelta    json.RawMessage `json:"world_delta,omitempty"`
	Messages      json.RawMessage `json:"messages,omitempty"`
	MessagesDelta json.RawMessage `json:"messages_delta,omitempty"`
	RecordedAt    time.Time       `json:"recorded_at"`
}

// HasSnapshot reports whether the entry can be restored without replay.
func (e Entry) HasSnapshot() bool {
	return len(e.World) > 0 && len(e.Messages) > 0
}

type Manager struct {
	KeyframeInterval int
	MaxEntries       int
	// CompactDeltas makes Record drop the snapshots of every delta entry
	// except the newest, which the next Record diffs against.
	CompactDeltas bool
	Logger        *slog.Logger
}

func NewManager(keyframeInterval, maxEntries int, logger *slog.Logger) *Manager {
	if keyframeInterval <= 0 {
		keyframeInterval = DefaultKeyframeInterval
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{KeyframeInterval: keyframeInterval, MaxEntries: maxEntries, Logger: logger}
}

func (m *Manager) keyframeDue(hist []Entry, turn int) bool {
	return len(hist) == 0 || turn <= 1 || (m.KeyframeInterval > 0 && turn%m.KeyframeInterval == 0)
}

// Record appends the entry for turn and evicts the oldest entries beyond
// MaxEntries. The input slice is not modified. A delta that cannot be
// computed is recorded as a keyframe instead.
func (m *Manager) Record(hist []Entry, turn int, ws *world.State, messages []chat.ChatMessage) ([]Entry, error) {
	if ws == nil {
		return hist, fmt.Errorf("cannot record nil world")
	}
	worldJSON, err := json.Marshal(ws)
	if err != nil {
		return hist, fmt.Errorf("failed to marshal world: %w", err)
	}
	if messages == nil {
		messages = []chat.ChatMessage{}
	}
	msgJSON, err := json.Marshal(messages)
	if err != nil {
		return hist, fmt.Errorf("failed to marshal messages: %w", err)
	}

	entry := Entry{
		Turn:       turn,
		Kind:       Keyframe,
		World:      worldJSON,
		Messages:   msgJSON,
		RecordedAt: time.Now().UTC(),
	}
	if !m.keyframeDue(hist, turn) {
		prev := hist[len(hist)-1]
		if !prev.HasSnapshot() {
			m.logger().Warn("Previous history entry has no snapshot, recording keyframe", "turn", turn, "previous_turn", prev.Turn)
		} else if wd, md, err := diff(prev, worldJSON, msgJSON); err != nil {
			m.logger().Warn("Failed to diff turn, recording keyframe", "turn", turn, "error", err)
		} else {
			entry.Kind = Delta
			entry.WorldDelta = wd
			entry.MessagesDelta = md
		}
	}

	out := make([]Entry, 0, len(hist)+1)
	out = append(out, hist...)
	if m.CompactDeltas {
		out = m.Compact(out)
	}
	out = append(out, entry)
	if m.MaxEntries > 0 && len(out) > m.MaxEntries {
		kept := append([]Entry(nil), out[len(out)-m.MaxEntries:]...)
		if !kept[0].HasSnapshot() {
			// The oldest retained entry becomes the base keyframe.
			w, msgs, err := m.Reconstruct(out, kept[0].Turn)
			if err != nil {
				return hist, fmt.Errorf("failed to rebase history at turn %d: %w", kept[0].Turn, err)
			}
			kept[0].Kind, kept[0].World, kept[0].Messages = Keyframe, w, msgs
			kept[0].WorldDelta, kept[0].MessagesDelta = nil, nil
		}
		out = kept
	}
	return out, nil
}

// Rollback returns fresh copies of the world and messages recorded for turn.
// Entries without a snapshot are reconstructed from the nearest keyframe.
func (m *Manager) Rollback(hist []Entry, turn int) (*world.State, []chat.ChatMessage, error) {
	i := find(hist, turn)
	if i < 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrTurnNotFound, turn)
	}

	worldJSON, msgJSON := hist[i].World, hist[i].Messages
	if !hist[i].HasSnapshot() {
		var err error
		if worldJSON, msgJSON, err = m.Reconstruct(hist, turn); err != nil {
			return nil, nil, err
		}
	}

	var ws world.State
	if err := json.Unmarshal(worldJSON, &ws); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal world for turn %d: %w", turn, err)
	}
	var messages []chat.ChatMessage
	if err := json.Unmarshal(msgJSON, &messages); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal messages for turn %d: %w", turn, err)
	}
	return &ws, messages, nil
}

// Truncate drops every entry recorded after turn.
func (m *Manager) Truncate(hist []Entry, turn int) []Entry {
	out := make([]Entry, 0, len(hist))
	for _, e := range hist {
		if e.Turn <= turn {
			out = append(out, e)
		}
	}
	return out
}

// Compact drops the snapshots of delta entries. Keyframes keep theirs.
func (m *Manager) Compact(hist []Entry) []Entry {
	out := make([]Entry, len(hist))
	for i, e := range hist {
		if e.Kind == Delta && len(e.WorldDelta) > 0 && len(e.MessagesDelta) > 0 {
			e.World, e.Messages = nil, nil
		}
		out[i] = e
	}
	return out
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func find(hist []Entry, turn int) int {
	for i := len(hist) - 1; i >= 0; i-- {
		if hist[i].Turn == turn {
			return i
		}
	}
	return -1
}
