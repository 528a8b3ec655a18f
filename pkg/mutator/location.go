package mutator

import (
	"fmt"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/resolve"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// locationChange moves the player, or an NPC when npc is set. NPC moves are
// silent and only ever target existing locations. Player moves may discover
// a new location and trigger the yearly vendor restock.
func (m *Mutator) locationChange(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	dest := cmd.Args.String("destination")

	if who := cmd.Args.String("npc"); who != "" {
		i, ok := m.findNPC(ws, who)
		if !ok {
			return nil, nil, command.NotFound("NPC", who)
		}
		li, ok := m.findLocation(ws, dest)
		if !ok {
			return nil, nil, &command.SkipError{Err: fmt.Errorf("%w: location %q", command.ErrNotFound, dest)}
		}
		m.logger.Debug("NPC moved", "npc", ws.NPCs[i].ID, "from", ws.NPCs[i].LocationID, "to", ws.Locations[li].ID)
		ws.NPCs[i].LocationID = ws.Locations[li].ID
		return ws, nil, nil
	}

	var notes []string
	li, ok := m.findLocation(ws, dest)
	if !ok {
		loc := world.Location{ID: ws.NewID("loc"), Name: cleanName(dest)}
		if from := ws.LocationByID(ws.Player.LocationID); from != nil {
			loc.Connections = []string{from.ID}
			from.Connect(loc.ID)
		}
		ws.Locations = append(ws.Locations, loc)
		li = len(ws.Locations) - 1
		m.logger.Info("Created location on player arrival", "location", loc.ID, "name", loc.Name)
	}

	loc := &ws.Locations[li]
	if !loc.Discovered {
		loc.Discovered = true
		notes = append(notes, fmt.Sprintf("Discovered %s.", loc.Name))
	}
	ws.Player.LocationID = loc.ID
	notes = append(notes, fmt.Sprintf("You arrive at %s.", loc.Name))
	notes = append(notes, restockVendors(ws, loc.ID)...)
	return ws, notes, nil
}

// restockVendors refills the shops of NPCs at locationID whose last restock
// was in an earlier calendar year.
func restockVendors(ws *world.State, locationID string) []string {
	if !ws.Config.Economy.RestockEnabled {
		return nil
	}
	var notes []string
	for i := range ws.NPCs {
		n := &ws.NPCs[i]
		if n.LocationID != locationID || n.Vendor == nil || !n.Alive() {
			continue
		}
		if ws.Calendar.Year <= n.Vendor.LastRestockYear {
			continue
		}
		n.Vendor.Stock = append([]world.Item(nil), n.Vendor.Catalog...)
		n.Vendor.LastRestockYear = ws.Calendar.Year
		notes = append(notes, fmt.Sprintf("%s has restocked their wares.", n.Name))
	}
	return notes
}

func (m *Mutator) locationCreate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	locName := cleanName(cmd.Args.String("name"))
	if _, ok := m.findLocation(ws, locName); ok {
		return nil, nil, command.Duplicate("location", locName)
	}

	loc := world.Location{
		ID:          ws.NewID("loc"),
		Name:        locName,
		Description: cmd.Args.String("description"),
		Kind:        cmd.Args.String("kind"),
		ParentID:    m.locationID(ws, cmd.Args.String("parent"), cmd.Kind),
		SafeZone:    cmd.Args.Bool("safe"),
	}
	for _, c := range cmd.Args.List("connections") {
		if id := m.locationID(ws, c, cmd.Kind); id != "" {
			loc.Connect(id)
			ws.LocationByID(id).Connect(loc.ID)
		}
	}
	ws.Locations = append(ws.Locations, loc)
	return ws, []string{fmt.Sprintf("New location: %s.", locName)}, nil
}

func (m *Mutator) locationUpdate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	locName := cmd.Args.String("name")
	i, ok := m.findLocation(ws, locName)
	if !ok {
		return nil, nil, command.NotFound("location", locName)
	}
	loc := &ws.Locations[i]
	if n := cleanName(cmd.Args.String("newName")); n != "" {
		loc.Name = n
	}
	setString(cmd.Args, "description", &loc.Description)
	setString(cmd.Args, "kind", &loc.Kind)
	if cmd.Args.Has("safe") {
		loc.SafeZone = cmd.Args.Bool("safe")
	}
	if parent := cmd.Args.String("parent"); parent != "" {
		if id := m.locationID(ws, parent, cmd.Kind); id != "" && id != loc.ID {
			ws.Locations[i].ParentID = id
		}
	}
	return ws, nil, nil
}

func (m *Mutator) locationConnection(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	from, to := cmd.Args.String("from"), cmd.Args.String("to")
	fi, ok := m.findLocation(ws, from)
	if !ok {
		return nil, nil, command.NotFound("location", from)
	}
	ti, ok := m.findLocation(ws, to)
	if !ok {
		return nil, nil, command.NotFound("location", to)
	}
	if fi == ti {
		return nil, nil, command.Skip(command.ErrRejected, "A location cannot connect to itself.")
	}
	ws.Locations[fi].Connect(ws.Locations[ti].ID)
	if cmd.Args.Bool("bidirectional") {
		ws.Locations[ti].Connect(ws.Locations[fi].ID)
	}
	return ws, []string{fmt.Sprintf("%s now connects to %s.", ws.Locations[fi].Name, ws.Locations[ti].Name)}, nil
}

func (m *Mutator) vendorStock(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	who := cmd.Args.String("npc")
	i, ok := m.findNPC(ws, who)
	if !ok {
		return nil, nil, command.NotFound("NPC", who)
	}
	qty := cmd.Args.Int("quantity")
	if qty < 0 {
		qty = 0
	}
	n := &ws.NPCs[i]
	if n.Vendor == nil {
		n.Vendor = &world.Vendor{LastRestockYear: ws.Calendar.Year}
	}

	itemName := cleanName(cmd.Args.String("item"))
	upsert := func(items []world.Item) []world.Item {
		if match, ok := resolve.Find(m.resolver, itemName, items, nil); ok {
			items[match.Index].Quantity = qty
			if cmd.Args.Has("value") {
				items[match.Index].Value = cmd.Args.Int("value")
			}
			return items
		}
		return append(items, world.Item{ID: ws.NewID("item"), Name: itemName, Quantity: qty, Value: cmd.Args.Int("value")})
	}
	n.Vendor.Stock = upsert(n.Vendor.Stock)
	n.Vendor.Catalog = upsert(n.Vendor.Catalog)
	return ws, nil, nil
}
