package history

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/wI2L/jsondiff"

	"github.com/jwebster45206/saga-engine/pkg/chat"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// diff computes the world and message patches from prev's snapshot to the
// current one.
func diff(prev Entry, worldJSON, msgJSON []byte) (json.RawMessage, json.RawMessage, error) {
	wp, err := jsondiff.CompareJSON(prev.World, worldJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to diff world: %w", err)
	}
	mp, err := jsondiff.CompareJSON(prev.Messages, msgJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to diff messages: %w", err)
	}
	wd, err := marshalPatch(wp)
	if err != nil {
		return nil, nil, err
	}
	md, err := marshalPatch(mp)
	if err != nil {
		return nil, nil, err
	}
	return wd, md, nil
}

func marshalPatch(p jsondiff.Patch) (json.RawMessage, error) {
	if len(p) == 0 {
		return json.RawMessage("[]"), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch: %w", err)
	}
	return b, nil
}

// Reconstruct rebuilds the snapshots for turn by replaying deltas forward
// from the nearest preceding keyframe. The result is byte-identical to what
// Record stored for that turn.
func (m *Manager) Reconstruct(hist []Entry, turn int) ([]byte, []byte, error) {
	end := find(hist, turn)
	if end < 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrTurnNotFound, turn)
	}
	start := end
	for start >= 0 && !(hist[start].Kind == Keyframe && hist[start].HasSnapshot()) {
		start--
	}
	if start < 0 {
		return nil, nil, fmt.Errorf("%w: no keyframe at or before turn %d", ErrNoSnapshot, turn)
	}

	worldJSON := []byte(hist[start].World)
	msgJSON := []byte(hist[start].Messages)
	for i := start + 1; i <= end; i++ {
		e := hist[i]
		if e.Kind == Keyframe {
			if !e.HasSnapshot() {
				return nil, nil, fmt.Errorf("%w: keyframe for turn %d is empty", ErrNoSnapshot, e.Turn)
			}
			worldJSON, msgJSON = e.World, e.Messages
			continue
		}
		var err error
		if worldJSON, err = applyPatch(worldJSON, e.WorldDelta); err != nil {
			return nil, nil, fmt.Errorf("failed to replay world delta for turn %d: %w", e.Turn, err)
		}
		if msgJSON, err = applyPatch(msgJSON, e.MessagesDelta); err != nil {
			return nil, nil, fmt.Errorf("failed to replay message delta for turn %d: %w", e.Turn, err)
		}
	}
	return canonical(worldJSON, msgJSON)
}

func applyPatch(doc []byte, delta json.RawMessage) ([]byte, error) {
	if len(delta) == 0 {
		return nil, fmt.Errorf("%w: missing delta", ErrNoSnapshot)
	}
	patch, err := jsonpatch.DecodePatch(delta)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch: %w", err)
	}
	if len(patch) == 0 {
		return doc, nil
	}
	return patch.Apply(doc)
}

// canonical re-encodes replayed documents through their Go types so that key
// order and escaping match json.Marshal.
func canonical(worldJSON, msgJSON []byte) ([]byte, []byte, error) {
	var ws world.State
	if err := json.Unmarshal(worldJSON, &ws); err != nil {
		return nil, nil, fmt.Errorf("failed to decode replayed world: %w", err)
	}
	var messages []chat.ChatMessage
	if err := json.Unmarshal(msgJSON, &messages); err != nil {
		return nil, nil, fmt.Errorf("failed to decode replayed messages: %w", err)
	}
	if messages == nil {
		messages = []chat.ChatMessage{}
	}
	w, err := json.Marshal(&ws)
	if err != nil {
		return nil, nil, err
	}
	msg, err := json.Marshal(messages)
	if err != nil {
		return nil, nil, err
	}
	return w, msg, nil
}
