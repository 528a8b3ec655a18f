package mutator

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/resolve"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// statsUpdate applies every stat key in written order, so a tag may raise a
// maximum and then fill the stat to it with MAX.
func (m *Mutator) statsUpdate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	var notes []string
	applied := 0

	if cmd.Args.Has("canhGioi") {
		if realm := cmd.Args.String("canhGioi"); realm != "" && realm != ws.Player.Realm {
			ws.Player.Realm = realm
			notes = append(notes, fmt.Sprintf("Cultivation realm is now %s.", realm))
		}
		applied++
	}

	for _, key := range cmd.Args.Extras() {
		ref, ok := ws.Player.Stat(key)
		if !ok {
			m.logger.Warn("Ignoring unknown stat", "stat", key)
			continue
		}
		amt := cmd.Args.Extra(key).Amount
		before := *ref.Value
		*ref.Value = ref.Clamp(amt.Resolve(before, ref.Max))
		ws.Player.Reclamp()
		applied++
		if after := *ref.Value; after != before {
			notes = append(notes, fmt.Sprintf("%s: %d → %d", ref.Key, before, after))
		}
	}

	if applied == 0 {
		return nil, nil, command.Skip(command.ErrRejected, "No known stats to update.")
	}
	return ws, notes, nil
}

func (m *Mutator) itemAcquired(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	itemName := cleanName(cmd.Args.String("name"))
	qty := cmd.Args.Int("quantity")
	if qty <= 0 {
		return nil, nil, command.Skip(command.ErrRejected, "Cannot acquire %d of %s.", qty, itemName)
	}

	if match, ok := resolve.Find(m.resolver, itemName, ws.Inventory, nil); ok {
		it := &ws.Inventory[match.Index]
		it.Quantity += qty
		fillEmpty(cmd.Args, "category", &it.Category)
		fillEmpty(cmd.Args, "description", &it.Description)
		fillEmpty(cmd.Args, "rarity", &it.Rarity)
		fillEmpty(cmd.Args, "slot", &it.Slot)
		return ws, []string{fmt.Sprintf("Acquired %dx %s (now %d).", qty, it.Name, it.Quantity)}, nil
	}

	ws.Inventory = append(ws.Inventory, world.Item{
		ID:          ws.NewID("item"),
		Name:        itemName,
		Category:    cmd.Args.String("category"),
		Description: cmd.Args.String("description"),
		Rarity:      cmd.Args.String("rarity"),
		Quantity:    qty,
		Value:       cmd.Args.Int("value"),
		Slot:        cmd.Args.String("slot"),
	})
	return ws, []string{fmt.Sprintf("Acquired %dx %s.", qty, itemName)}, nil
}

func fillEmpty(args command.Args, param string, dst *string) {
	if *dst == "" && args.Has(param) {
		*dst = args.String(param)
	}
}

func (m *Mutator) itemConsumed(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	itemName := cmd.Args.String("name")
	match, ok := resolve.Find(m.resolver, itemName, ws.Inventory, nil)
	if !ok {
		return nil, nil, command.NotFound("item", itemName)
	}
	qty := cmd.Args.Int("quantity")
	if qty <= 0 {
		return nil, nil, command.Skip(command.ErrRejected, "Cannot use %d of %s.", qty, itemName)
	}

	it := ws.Inventory[match.Index]
	if qty < it.Quantity {
		ws.Inventory[match.Index].Quantity -= qty
		return ws, []string{fmt.Sprintf("Used %dx %s (%d left).", qty, it.Name, it.Quantity-qty)}, nil
	}

	ws.Inventory = append(ws.Inventory[:match.Index], ws.Inventory[match.Index+1:]...)
	if slot, equipped := ws.Player.EquippedSlot(it.ID); equipped {
		delete(ws.Player.Equipment, slot)
	}
	return ws, []string{fmt.Sprintf("Used up %s.", it.Name)}, nil
}

func (m *Mutator) itemUpdate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	itemName := cmd.Args.String("name")
	match, ok := resolve.Find(m.resolver, itemName, ws.Inventory, nil)
	if !ok {
		return nil, nil, command.NotFound("item", itemName)
	}
	it := &ws.Inventory[match.Index]
	if cmd.Args.Has("newName") {
		if n := cleanName(cmd.Args.String("newName")); n != "" {
			it.Name = n
		}
	}
	setString(cmd.Args, "description", &it.Description)
	setString(cmd.Args, "rarity", &it.Rarity)
	setString(cmd.Args, "category", &it.Category)
	setString(cmd.Args, "slot", &it.Slot)
	if cmd.Args.Has("value") {
		it.Value = cmd.Args.Int("value")
	}
	return ws, []string{fmt.Sprintf("%s has changed.", it.Name)}, nil
}

func (m *Mutator) itemEquip(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	itemName := cmd.Args.String("name")
	match, ok := resolve.Find(m.resolver, itemName, ws.Inventory, nil)
	if !ok {
		return nil, nil, command.NotFound("item", itemName)
	}
	it := ws.Inventory[match.Index]

	slot := strings.ToLower(cmd.Args.String("slot"))
	if slot == "" {
		slot = strings.ToLower(it.Slot)
	}
	if slot == "" {
		slot = strings.ToLower(it.Category)
	}
	if slot == "" {
		slot = "main"
	}

	if ws.Player.Equipment == nil {
		ws.Player.Equipment = make(map[string]string)
	}
	if prev, equipped := ws.Player.EquippedSlot(it.ID); equipped {
		delete(ws.Player.Equipment, prev)
	}
	ws.Player.Equipment[slot] = it.ID
	return ws, []string{fmt.Sprintf("Equipped %s (%s).", it.Name, slot)}, nil
}

func (m *Mutator) itemUnequip(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	slot := strings.ToLower(cmd.Args.String("slot"))
	if itemName := cmd.Args.String("name"); itemName != "" {
		match, ok := resolve.Find(m.resolver, itemName, ws.Inventory, nil)
		if !ok {
			return nil, nil, command.NotFound("item", itemName)
		}
		s, equipped := ws.Player.EquippedSlot(ws.Inventory[match.Index].ID)
		if !equipped {
			return nil, nil, command.Skip(command.ErrRejected, "%s is not equipped.", ws.Inventory[match.Index].Name)
		}
		slot = s
	}
	if slot == "" {
		return nil, nil, command.Skip(command.ErrMalformed, "Nothing to unequip.")
	}
	id, ok := ws.Player.Equipment[slot]
	if !ok {
		return nil, nil, command.Skip(command.ErrRejected, "Nothing is equipped in %s.", slot)
	}
	delete(ws.Player.Equipment, slot)

	label := id
	if it := ws.ItemByID(id); it != nil {
		label = it.Name
	}
	return ws, []string{fmt.Sprintf("Unequipped %s.", label)}, nil
}

func (m *Mutator) skillLearned(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	skillName := cleanName(cmd.Args.String("name"))
	if _, ok := resolve.Find(m.resolver, skillName, ws.Skills, nil); ok {
		return nil, nil, command.Duplicate("skill", skillName)
	}
	level := cmd.Args.Int("level")
	if level < 1 {
		level = 1
	}
	ws.Skills = append(ws.Skills, world.Skill{
		ID:          ws.NewID("skill"),
		Name:        skillName,
		Description: cmd.Args.String("description"),
		Kind:        cmd.Args.String("kind"),
		Level:       level,
	})
	return ws, []string{fmt.Sprintf("Learned %s.", skillName)}, nil
}

func (m *Mutator) skillUpdate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	skillName := cmd.Args.String("name")
	match, ok := resolve.Find(m.resolver, skillName, ws.Skills, nil)
	if !ok {
		return nil, nil, command.NotFound("skill", skillName)
	}
	sk := &ws.Skills[match.Index]
	var notes []string
	if amt, ok := cmd.Args.Amount("level"); ok {
		before := sk.Level
		sk.Level = max(1, amt.Resolve(sk.Level, -1))
		if sk.Level > before {
			notes = append(notes, fmt.Sprintf("%s reached level %d.", sk.Name, sk.Level))
		}
	}
	if amt, ok := cmd.Args.Amount("proficiency"); ok {
		sk.Proficiency = clamp(amt.Resolve(sk.Proficiency, 100), 0, 100)
	}
	setString(cmd.Args, "description", &sk.Description)
	return ws, notes, nil
}

// effectsFor returns the effect list of the player or the named NPC.
func (m *Mutator) effectsFor(ws *world.State, target string) (*[]world.StatusEffect, string, error) {
	if isPlayer(target) {
		return &ws.Player.StatusEffects, "You", nil
	}
	i, ok := m.findNPC(ws, target)
	if !ok {
		return nil, "", command.NotFound("NPC", target)
	}
	return &ws.NPCs[i].StatusEffects, ws.NPCs[i].Name, nil
}

func (m *Mutator) statusEffectApply(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	effects, who, err := m.effectsFor(ws, cmd.Args.String("target"))
	if err != nil {
		return nil, nil, err
	}
	effectName := cleanName(cmd.Args.String("name"))
	duration := cmd.Args.Int("duration")
	if duration <= 0 {
		return nil, nil, command.Skip(command.ErrRejected, "%s needs a positive duration.", effectName)
	}

	if match, ok := resolve.Find(m.resolver, effectName, *effects, nil); ok {
		e := &(*effects)[match.Index]
		e.TurnsRemaining = duration
		setString(cmd.Args, "description", &e.Description)
		return ws, []string{fmt.Sprintf("%s: %s refreshed for %d turns.", who, e.Name, duration)}, nil
	}

	*effects = append(*effects, world.StatusEffect{
		Name:           effectName,
		Kind:           cmd.Args.String("kind"),
		Description:    cmd.Args.String("description"),
		TurnsRemaining: duration,
	})
	return ws, []string{fmt.Sprintf("%s: %s for %d turns.", who, effectName, duration)}, nil
}

func (m *Mutator) statusEffectRemove(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	effects, who, err := m.effectsFor(ws, cmd.Args.String("target"))
	if err != nil {
		return nil, nil, err
	}
	effectName := cmd.Args.String("name")
	match, ok := resolve.Find(m.resolver, effectName, *effects, nil)
	if !ok {
		return nil, nil, command.NotFound("effect", effectName)
	}
	removed := (*effects)[match.Index].Name
	*effects = append((*effects)[:match.Index], (*effects)[match.Index+1:]...)
	return ws, []string{fmt.Sprintf("%s: %s removed.", who, removed)}, nil
}
