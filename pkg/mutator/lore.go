package mutator

import (
	"fmt"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/resolve"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

func (m *Mutator) loreCreate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	title := cleanName(cmd.Args.String("title"))
	if _, ok := resolve.Find(m.resolver, title, ws.Lore, nil); ok {
		return nil, nil, command.Duplicate("lore", title)
	}
	ws.Lore = append(ws.Lore, world.LoreEntry{
		ID:       ws.NewID("lore"),
		Title:    title,
		Category: cmd.Args.String("category"),
		Content:  cmd.Args.String("content"),
	})
	return ws, []string{fmt.Sprintf("Lore recorded: %s.", title)}, nil
}

func (m *Mutator) loreUpdate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	title := cmd.Args.String("title")
	match, ok := resolve.Find(m.resolver, title, ws.Lore, nil)
	if !ok {
		return nil, nil, command.NotFound("lore entry", title)
	}
	l := &ws.Lore[match.Index]
	setString(cmd.Args, "content", &l.Content)
	setString(cmd.Args, "category", &l.Category)
	return ws, nil, nil
}

// eventCreate refuses a title that matches an event which has not ended.
// Ended events may recur under the same title.
func (m *Mutator) eventCreate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	title := cleanName(cmd.Args.String("title"))
	if _, ok := resolve.Find(m.resolver, title, ws.Events, openEvent); ok {
		return nil, nil, command.Duplicate("event", title)
	}
	e := world.WorldEvent{
		ID:          ws.NewID("event"),
		Title:       title,
		Description: cmd.Args.String("description"),
		LocationID:  m.locationID(ws, cmd.Args.String("location"), cmd.Kind),
		Status:      cmd.Args.String("status"),
	}
	ws.Events = append(ws.Events, e)
	if e.Status == world.EventEnded {
		return ws, nil, nil
	}
	return ws, []string{fmt.Sprintf("World event (%s): %s.", e.Status, title)}, nil
}

func (m *Mutator) eventUpdate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	title := cmd.Args.String("title")
	match, ok := resolve.Find(m.resolver, title, ws.Events, openEvent)
	if !ok {
		match, ok = resolve.Find(m.resolver, title, ws.Events, nil)
	}
	if !ok {
		return nil, nil, command.NotFound("event", title)
	}
	e := &ws.Events[match.Index]
	if n := cleanName(cmd.Args.String("newTitle")); n != "" {
		e.Title = n
	}
	setString(cmd.Args, "description", &e.Description)
	if where := cmd.Args.String("location"); where != "" {
		if id := m.locationID(ws, where, cmd.Kind); id != "" {
			e.LocationID = id
		}
	}

	var notes []string
	if cmd.Args.Has("status") && cmd.Args.String("status") != e.Status {
		e.Status = cmd.Args.String("status")
		switch e.Status {
		case world.EventActive:
			notes = append(notes, fmt.Sprintf("%s has begun.", e.Title))
		case world.EventEnded:
			notes = append(notes, fmt.Sprintf("%s has ended.", e.Title))
		}
	}
	return ws, notes, nil
}
