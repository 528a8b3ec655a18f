package mutator

import (
	"fmt"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/resolve"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

func objectives(texts []string) []world.Objective {
	if len(texts) == 0 {
		return nil
	}
	out := make([]world.Objective, 0, len(texts))
	for _, t := range texts {
		if t = cleanName(t); t != "" {
			out = append(out, world.Objective{Text: t})
		}
	}
	return out
}

func (m *Mutator) questCreate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	title := cleanName(cmd.Args.String("title"))
	if _, ok := resolve.Find(m.resolver, title, ws.Quests, activeQuest); ok {
		return nil, nil, command.Duplicate("quest", title)
	}
	ws.Quests = append(ws.Quests, world.Quest{
		ID:          ws.NewID("quest"),
		Title:       title,
		Description: cmd.Args.String("description"),
		Status:      world.QuestActive,
		GiverID:     m.npcID(ws, cmd.Args.String("giver"), cmd.Kind),
		TargetNPCID: m.npcID(ws, cmd.Args.String("target"), cmd.Kind),
		Objectives:  objectives(cmd.Args.List("objectives")),
	})
	return ws, []string{fmt.Sprintf("New quest: %s.", title)}, nil
}

func (m *Mutator) findQuest(ws *world.State, title string) (int, bool) {
	if match, ok := resolve.Find(m.resolver, title, ws.Quests, activeQuest); ok {
		return match.Index, true
	}
	match, ok := resolve.Find(m.resolver, title, ws.Quests, nil)
	return match.Index, ok
}

func (m *Mutator) questUpdate(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	title := cmd.Args.String("title")
	qi, ok := m.findQuest(ws, title)
	if !ok {
		return nil, nil, command.NotFound("quest", title)
	}
	q := &ws.Quests[qi]
	if n := cleanName(cmd.Args.String("newTitle")); n != "" {
		q.Title = n
	}
	setString(cmd.Args, "description", &q.Description)
	if cmd.Args.Has("objectives") {
		q.Objectives = objectives(cmd.Args.List("objectives"))
	}

	var notes []string
	if cmd.Args.Has("status") && cmd.Args.String("status") != q.Status {
		q.Status = cmd.Args.String("status")
		switch q.Status {
		case world.QuestCompleted:
			notes = append(notes, fmt.Sprintf("Quest completed: %s.", q.Title))
		case world.QuestFailed:
			notes = append(notes, fmt.Sprintf("Quest failed: %s.", q.Title))
		default:
			notes = append(notes, fmt.Sprintf("Quest resumed: %s.", q.Title))
		}
	}
	return ws, notes, nil
}

func (m *Mutator) questObjectiveComplete(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	title := cmd.Args.String("title")
	qi, ok := m.findQuest(ws, title)
	if !ok {
		return nil, nil, command.NotFound("quest", title)
	}
	q := &ws.Quests[qi]

	texts := make([]string, len(q.Objectives))
	for i, o := range q.Objectives {
		texts[i] = o.Text
	}
	objective := cmd.Args.String("objective")
	match, ok := m.resolver.FindString(objective, texts)
	if !ok {
		return nil, nil, command.NotFound("objective", objective)
	}
	if q.Objectives[match.Index].Done {
		return nil, nil, command.Duplicate("objective", objective)
	}
	q.Objectives[match.Index].Done = true

	notes := []string{fmt.Sprintf("Objective complete: %s.", q.Objectives[match.Index].Text)}
	remaining := 0
	for _, o := range q.Objectives {
		if !o.Done {
			remaining++
		}
	}
	if remaining == 0 {
		notes = append(notes, fmt.Sprintf("All objectives of %s are complete.", q.Title))
	}
	return ws, notes, nil
}
