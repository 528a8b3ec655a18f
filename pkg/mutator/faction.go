package mutator

import (
	"fmt"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

func (m *Mutator) factionCreate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	factionName := cleanName(cmd.Args.String("name"))
	if _, ok := m.findFaction(ws, factionName); ok {
		return nil, nil, command.Duplicate("faction", factionName)
	}
	ws.Factions = append(ws.Factions, world.Faction{
		ID:          ws.NewID("faction"),
		Name:        factionName,
		Description: cmd.Args.String("description"),
		Alignment:   cmd.Args.String("alignment"),
		Reputation:  clamp(cmd.Args.Int("reputation"), -100, 100),
	})
	return ws, []string{fmt.Sprintf("You learn of %s.", factionName)}, nil
}

func (m *Mutator) factionUpdate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	factionName := cmd.Args.String("name")
	fi, ok := m.findFaction(ws, factionName)
	if !ok {
		return nil, nil, command.NotFound("faction", factionName)
	}
	f := &ws.Factions[fi]
	if n := cleanName(cmd.Args.String("newName")); n != "" {
		f.Name = n
	}
	setString(cmd.Args, "description", &f.Description)
	setString(cmd.Args, "alignment", &f.Alignment)

	var notes []string
	if amt, ok := cmd.Args.Amount("reputation"); ok {
		before := f.Reputation
		f.Reputation = clamp(amt.Resolve(f.Reputation, 100), -100, 100)
		if f.Reputation != before {
			notes = append(notes, fmt.Sprintf("Reputation with %s: %d → %d", f.Name, before, f.Reputation))
		}
	}
	return ws, notes, nil
}

func (m *Mutator) factionMember(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	factionName := cmd.Args.String("faction")
	fi, ok := m.findFaction(ws, factionName)
	if !ok {
		return nil, nil, command.NotFound("faction", factionName)
	}
	who := cmd.Args.String("npc")
	i, ok := m.findNPC(ws, who)
	if !ok {
		return nil, nil, command.NotFound("NPC", who)
	}

	n, f := &ws.NPCs[i], &ws.Factions[fi]
	if cmd.Args.String("action") == "leave" {
		f.MemberIDs = world.RemoveID(f.MemberIDs, n.ID)
		if n.FactionID == f.ID {
			n.FactionID = ""
		}
		return ws, []string{fmt.Sprintf("%s has left %s.", n.Name, f.Name)}, nil
	}
	m.joinFaction(ws, i, fi)
	return ws, []string{fmt.Sprintf("%s has joined %s.", n.Name, f.Name)}, nil
}
