package mutator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/resolve"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// hostileCreate spawns a creature. Hostiles are never deduplicated: two
// wolves with the same name are two wolves.
func (m *Mutator) hostileCreate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	c := world.Creature{
		ID:          ws.NewID("hostile"),
		Name:        cleanName(cmd.Args.String("name")),
		Description: cmd.Args.String("description"),
		AC:          cmd.Args.Int("ac"),
		HP:          cmd.Args.Int("hp"),
		MaxHP:       cmd.Args.Int("hp"),
		Attack:      cmd.Args.Int("attack"),
		LocationID:  ws.Player.LocationID,
	}
	if where := cmd.Args.String("location"); where != "" {
		if id := m.locationID(ws, where, cmd.Kind); id != "" {
			c.LocationID = id
		}
	}

	sheet, err := c.Sheet()
	if err != nil {
		return nil, nil, command.Skip(fmt.Errorf("%w: %w", command.ErrRejected, err), "%s cannot take the field.", c.Name)
	}
	ws.Hostiles = append(ws.Hostiles, c)
	return ws, []string{fmt.Sprintf("A hostile appears: %s (HP %d, AC %d).", c.Name, sheet.HP(), sheet.AC())}, nil
}

func (m *Mutator) combatStart(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	if !ws.Config.Combat.Enabled {
		return nil, nil, command.Skip(command.ErrDisabled, "Combat is disabled in this world.")
	}

	var ids, names []string
	for _, who := range cmd.Args.List("opponents") {
		match, ok := resolve.Find(m.resolver, who, ws.Hostiles, standing)
		if !ok {
			m.logger.Warn("Ignoring unknown opponent", "opponent", who)
			continue
		}
		h := ws.Hostiles[match.Index]
		if slices.Contains(ids, h.ID) {
			continue
		}
		ids = append(ids, h.ID)
		names = append(names, h.Name)
	}
	if len(ids) == 0 {
		return nil, nil, command.Skip(command.ErrNotFound, "None of the named opponents are present.")
	}

	if ws.Combat == nil {
		ws.Combat = &world.Combat{Round: 1, StartedTurn: ws.Turn}
	}
	for _, id := range ids {
		if !slices.Contains(ws.Combat.OpponentIDs, id) {
			ws.Combat.OpponentIDs = append(ws.Combat.OpponentIDs, id)
		}
	}
	return ws, []string{fmt.Sprintf("Combat begins against %s.", strings.Join(names, ", "))}, nil
}

func (m *Mutator) combatDamage(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	dmg := cmd.Args.Int("amount")
	if dmg < 0 {
		return nil, nil, command.Skip(command.ErrRejected, "Damage cannot be negative.")
	}

	target := cmd.Args.String("target")
	if isPlayer(target) {
		hp, _ := ws.Player.Stat("sinhLuc")
		before := *hp.Value
		*hp.Value = hp.Clamp(before - dmg)
		return ws, []string{fmt.Sprintf("You take %d damage (sinhLuc %d → %d).", dmg, before, *hp.Value)}, nil
	}

	match, ok := resolve.Find(m.resolver, target, ws.Hostiles, standing)
	if !ok {
		return nil, nil, command.NotFound("hostile", target)
	}
	h := &ws.Hostiles[match.Index]
	h.TakeDamage(dmg)
	notes := []string{fmt.Sprintf("%s takes %d damage (%d/%d).", h.Name, dmg, h.HP, h.MaxHP)}
	if !h.Defeated() {
		return ws, notes, nil
	}

	notes = append(notes, fmt.Sprintf("%s is defeated.", h.Name))
	if ws.Combat != nil {
		ws.Combat.OpponentIDs = world.RemoveID(ws.Combat.OpponentIDs, h.ID)
		if len(ws.Combat.OpponentIDs) == 0 {
			ws.Combat = nil
			notes = append(notes, "Combat is over.")
		}
	}
	return ws, notes, nil
}

func (m *Mutator) combatEnd(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	if ws.Combat == nil {
		return nil, nil, command.Skip(command.ErrRejected, "There is no combat to end.")
	}
	outcome := cmd.Args.String("outcome")

	if outcome == "victory" {
		opponents := ws.Combat.OpponentIDs
		ws.Hostiles = slices.DeleteFunc(ws.Hostiles, func(c world.Creature) bool {
			return c.Defeated() || slices.Contains(opponents, c.ID)
		})
	}
	ws.Combat = nil

	switch outcome {
	case "defeat":
		return ws, []string{"You have been defeated."}, nil
	case "flee":
		return ws, []string{"You escape the fight."}, nil
	default:
		return ws, []string{"Victory!"}, nil
	}
}
