package mutator

import (
	"fmt"

	"github.com/jwebster45206/saga-engine/pkg/world"
)

// SweepEffects runs the end-of-turn bookkeeping on a copy of ws: effect
// durations tick down, the combat round and the auction clock advance.
func SweepEffects(ws *world.State) (*world.State, []string, error) {
	next, err := ws.DeepCopy()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to copy world: %w", err)
	}

	var notes []string
	var expired []string
	next.Player.StatusEffects, expired = tickEffects(next.Player.StatusEffects)
	for _, name := range expired {
		notes = append(notes, fmt.Sprintf("%s has worn off.", name))
	}
	for i := range next.NPCs {
		next.NPCs[i].StatusEffects, _ = tickEffects(next.NPCs[i].StatusEffects)
	}

	if next.Combat != nil {
		next.Combat.Round++
	}
	if a := next.Auction; a != nil && a.RoundsLeft > 0 {
		a.RoundsLeft--
		if a.RoundsLeft == 0 {
			notes = append(notes, fmt.Sprintf("Final call for %s.", a.ItemName))
		}
	}
	return next, notes, nil
}

func tickEffects(effects []world.StatusEffect) (kept []world.StatusEffect, expired []string) {
	for _, e := range effects {
		e.TurnsRemaining--
		if e.TurnsRemaining <= 0 {
			expired = append(expired, e.Name)
			continue
		}
		kept = append(kept, e)
	}
	return kept, expired
}
