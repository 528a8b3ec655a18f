package world

import "fmt"

// Integrity returns one error per foreign reference that does not resolve
// inside the same snapshot. An empty result means the world is consistent.
func (s *State) Integrity() []error {
	var errs []error
	missing := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	locs := make(map[string]bool, len(s.Locations))
	for _, l := range s.Locations {
		locs[l.ID] = true
	}
	npcs := make(map[string]bool, len(s.NPCs))
	for _, n := range s.NPCs {
		npcs[n.ID] = true
	}
	factions := make(map[string]bool, len(s.Factions))
	for _, f := range s.Factions {
		factions[f.ID] = true
	}
	items := make(map[string]bool, len(s.Inventory))
	for _, i := range s.Inventory {
		items[i.ID] = true
	}

	if s.Player.LocationID != "" && !locs[s.Player.LocationID] {
		missing("player.location_id %q not found", s.Player.LocationID)
	}
	for slot, id := range s.Player.Equipment {
		if !items[id] {
			missing("player.equipment[%s] %q not found", slot, id)
		}
	}
	for _, n := range s.NPCs {
		if n.LocationID != "" && !locs[n.LocationID] {
			missing("npc %s location_id %q not found", n.ID, n.LocationID)
		}
		if n.FactionID != "" && !factions[n.FactionID] {
			missing("npc %s faction_id %q not found", n.ID, n.FactionID)
		}
		for other := range n.Relationships {
			if !npcs[other] && !factions[other] {
				missing("npc %s relationship %q not found", n.ID, other)
			}
		}
	}
	for _, l := range s.Locations {
		if l.ParentID != "" && !locs[l.ParentID] {
			missing("location %s parent_id %q not found", l.ID, l.ParentID)
		}
		for _, c := range l.Connections {
			if !locs[c] {
				missing("location %s connection %q not found", l.ID, c)
			}
		}
	}
	for _, f := range s.Factions {
		for _, m := range f.MemberIDs {
			if !npcs[m] {
				missing("faction %s member %q not found", f.ID, m)
			}
		}
	}
	for _, q := range s.Quests {
		if q.GiverID != "" && !npcs[q.GiverID] {
			missing("quest %s giver_id %q not found", q.ID, q.GiverID)
		}
		if q.TargetNPCID != "" && !npcs[q.TargetNPCID] {
			missing("quest %s target_npc_id %q not found", q.ID, q.TargetNPCID)
		}
	}
	for _, e := range s.Events {
		if e.LocationID != "" && !locs[e.LocationID] {
			missing("event %s location_id %q not found", e.ID, e.LocationID)
		}
	}
	for _, c := range s.Hostiles {
		if c.LocationID != "" && !locs[c.LocationID] {
			missing("hostile %s location_id %q not found", c.ID, c.LocationID)
		}
	}
	if s.Combat != nil {
		hostiles := make(map[string]bool, len(s.Hostiles))
		for _, c := range s.Hostiles {
			hostiles[c.ID] = true
		}
		for _, id := range s.Combat.OpponentIDs {
			if !hostiles[id] {
				missing("combat opponent %q not found", id)
			}
		}
	}
	return errs
}

// ForgetNPC clears every reference to the given NPC id.
func (s *State) ForgetNPC(id string) {
	for i := range s.NPCs {
		delete(s.NPCs[i].Relationships, id)
	}
	for i := range s.Factions {
		s.Factions[i].MemberIDs = RemoveID(s.Factions[i].MemberIDs, id)
	}
	for i := range s.Quests {
		if s.Quests[i].GiverID == id {
			s.Quests[i].GiverID = ""
		}
		if s.Quests[i].TargetNPCID == id {
			s.Quests[i].TargetNPCID = ""
		}
	}
}

// RemoveID returns ids without id. It reuses the backing array.
func RemoveID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
