package mutator

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/resolve"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

func (m *Mutator) npcCreate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	npcName := cleanName(cmd.Args.String("name"))
	if _, ok := resolve.Find(m.resolver, npcName, ws.NPCs, aliveNPC); ok {
		return nil, nil, command.Duplicate("NPC", npcName)
	}

	n := world.NPC{
		ID:            ws.NewID("npc"),
		Name:          npcName,
		Status:        world.NPCStatusAlive,
		Title:         cmd.Args.String("title"),
		Description:   cmd.Args.String("description"),
		Gender:        cmd.Args.String("gender"),
		Realm:         cmd.Args.String("realm"),
		Mood:          cmd.Args.String("mood"),
		Relationship:  cmd.Args.String("relationship"),
		ShortTermGoal: cmd.Args.String("goal"),
		LongTermGoal:  cmd.Args.String("longGoal"),
		LocationID:    m.locationID(ws, cmd.Args.String("location"), cmd.Kind),
		LastTickTurn:  ws.Turn,
	}
	if faction := cmd.Args.String("faction"); faction != "" {
		if fi, ok := m.findFaction(ws, faction); ok {
			n.FactionID = ws.Factions[fi].ID
			ws.Factions[fi].MemberIDs = append(ws.Factions[fi].MemberIDs, n.ID)
		} else {
			m.logger.Warn("Ignoring unknown faction reference", "kind", cmd.Kind, "faction", faction)
		}
	}
	ws.NPCs = append(ws.NPCs, n)
	return ws, []string{fmt.Sprintf("You meet %s.", npcName)}, nil
}

// npcUpdate applies only the fields present in the tag.
func (m *Mutator) npcUpdate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	who := cmd.Args.String("name")
	i, ok := m.findNPC(ws, who)
	if !ok {
		return nil, nil, command.NotFound("NPC", who)
	}
	n := &ws.NPCs[i]
	var notes []string

	if newName := cleanName(cmd.Args.String("newName")); newName != "" && newName != n.Name {
		notes = append(notes, fmt.Sprintf("%s is now known as %s.", n.Name, newName))
		n.Name = newName
	}
	for param, dst := range map[string]*string{
		"title":       &n.Title,
		"description": &n.Description,
		"gender":      &n.Gender,
		"realm":       &n.Realm,
		"mood":        &n.Mood,
		"goal":        &n.ShortTermGoal,
		"longGoal":    &n.LongTermGoal,
	} {
		setString(cmd.Args, param, dst)
	}
	if setString(cmd.Args, "relationship", &n.Relationship) && n.Relationship != "" {
		notes = append(notes, fmt.Sprintf("%s is now your %s.", n.Name, n.Relationship))
	}
	if cmd.Args.Has("plan") {
		n.CurrentPlan = cmd.Args.List("plan")
	}
	if amt, ok := cmd.Args.Amount("affinity"); ok {
		n.Affinity = clamp(amt.Resolve(n.Affinity, 100), -100, 100)
	}
	if where := cmd.Args.String("location"); where != "" {
		if id := m.locationID(ws, where, cmd.Kind); id != "" {
			n.LocationID = id
		}
	}
	if faction := cmd.Args.String("faction"); faction != "" {
		if fi, ok := m.findFaction(ws, faction); ok {
			m.joinFaction(ws, i, fi)
		}
	}
	if cmd.Args.Has("status") && cmd.Args.String("status") != n.Status {
		n.Status = cmd.Args.String("status")
		if n.Status == world.NPCStatusDead {
			notes = append(notes, fmt.Sprintf("%s has died.", n.Name))
		}
	}
	return ws, notes, nil
}

func (m *Mutator) npcRemove(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	who := cmd.Args.String("name")
	i, ok := m.findNPC(ws, who)
	if !ok {
		return nil, nil, command.NotFound("NPC", who)
	}
	removed := ws.NPCs[i]
	ws.NPCs = append(ws.NPCs[:i], ws.NPCs[i+1:]...)
	ws.ForgetNPC(removed.ID)

	note := fmt.Sprintf("%s has left the story.", removed.Name)
	if reason := cmd.Args.String("reason"); reason != "" {
		note = fmt.Sprintf("%s has left the story (%s).", removed.Name, reason)
	}
	return ws, []string{note}, nil
}

func (m *Mutator) npcRelationship(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	who := cmd.Args.String("npc")
	i, ok := m.findNPC(ws, who)
	if !ok {
		return nil, nil, command.NotFound("NPC", who)
	}
	n := &ws.NPCs[i]
	relType := strings.ToLower(cmd.Args.String("type"))
	amt, hasAffinity := cmd.Args.Amount("affinity")

	target := cmd.Args.String("target")
	if isPlayer(target) {
		if relType != "" {
			n.Relationship = relType
		}
		if hasAffinity {
			n.Affinity = clamp(amt.Resolve(n.Affinity, 100), -100, 100)
		}
		return ws, []string{fmt.Sprintf("%s regards you as: %s (%d).", n.Name, n.Relationship, n.Affinity)}, nil
	}

	var otherID, otherName string
	if j, ok := m.findNPC(ws, target); ok && j != i {
		otherID, otherName = ws.NPCs[j].ID, ws.NPCs[j].Name
	} else if fi, ok := m.findFaction(ws, target); ok {
		otherID, otherName = ws.Factions[fi].ID, ws.Factions[fi].Name
	} else {
		return nil, nil, command.NotFound("NPC or faction", target)
	}

	if n.Relationships == nil {
		n.Relationships = make(map[string]world.Relationship)
	}
	rel := n.Relationships[otherID]
	if relType != "" {
		rel.Type = relType
	}
	if hasAffinity {
		rel.Affinity = clamp(amt.Resolve(rel.Affinity, 100), -100, 100)
	}
	n.Relationships[otherID] = rel
	m.logger.Debug("NPC relationship changed", "npc", n.ID, "other", otherID, "other_name", otherName, "type", rel.Type, "affinity", rel.Affinity)
	return ws, nil, nil
}

func (m *Mutator) npcNeed(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	who := cmd.Args.String("npc")
	i, ok := m.findNPC(ws, who)
	if !ok {
		return nil, nil, command.NotFound("NPC", who)
	}
	need := strings.ToLower(strings.TrimSpace(cmd.Args.String("need")))
	amt, _ := cmd.Args.Amount("value")

	n := &ws.NPCs[i]
	if n.Needs == nil {
		n.Needs = make(map[string]int)
	}
	n.Needs[need] = clamp(amt.Resolve(n.Needs[need], 100), 0, 100)
	return ws, nil, nil
}

func (m *Mutator) npcMemory(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	who := cmd.Args.String("npc")
	i, ok := m.findNPC(ws, who)
	if !ok {
		return nil, nil, command.NotFound("NPC", who)
	}
	ws.NPCs[i].Remember(cmd.Args.String("entry"), m.activityCap)
	return ws, nil, nil
}

// joinFaction moves NPC i into faction fi, leaving any previous faction.
func (m *Mutator) joinFaction(ws *world.State, i, fi int) {
	n := &ws.NPCs[i]
	f := &ws.Factions[fi]
	if n.FactionID == f.ID && slices.Contains(f.MemberIDs, n.ID) {
		return
	}
	if prev := ws.FactionByID(n.FactionID); prev != nil {
		prev.MemberIDs = world.RemoveID(prev.MemberIDs, n.ID)
	}
	n.FactionID = f.ID
	if !slices.Contains(f.MemberIDs, n.ID) {
		f.MemberIDs = append(f.MemberIDs, n.ID)
		sort.Strings(f.MemberIDs)
	}
}
