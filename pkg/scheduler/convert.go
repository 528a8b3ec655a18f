package scheduler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/tags"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// Convert turns a validated plan into tags. Movement and goal or plan
// changes become mutations; every action also leaves an NPC_MEMORY entry.
func Convert(ws *world.State, plan NPCPlan) []tags.Tag {
	var out []tags.Tag
	add := func(kind command.Kind, p tags.Params) {
		out = append(out, tags.Tag{Name: string(kind), Body: tags.FormatParams(p)})
	}

	for _, a := range plan.Actions {
		switch a.Type {
		case ActionMove:
			add(command.LocationChange, tags.Params{
				{Key: "npc", Value: plan.NPCID},
				{Key: "destination", Value: a.Param("destination")},
			})
		case ActionUpdateGoal:
			p := tags.Params{{Key: "name", Value: plan.NPCID}}
			if g := a.Param("goal"); g != "" {
				p = append(p, tags.Param{Key: "goal", Value: g})
			}
			if g := a.Param("longGoal"); g != "" {
				p = append(p, tags.Param{Key: "longGoal", Value: g})
			}
			add(command.NPCUpdate, p)
		case ActionUpdatePlan:
			steps, _ := json.Marshal(a.ListParam("plan"))
			add(command.NPCUpdate, tags.Params{
				{Key: "name", Value: plan.NPCID},
				{Key: "plan", Value: string(steps)},
			})
		}
		add(command.NPCMemory, tags.Params{
			{Key: "npc", Value: plan.NPCID},
			{Key: "entry", Value: Narrate(ws, a)},
		})
	}
	return out
}

// Narrate renders an action as an activity-log line.
func Narrate(ws *world.State, a Action) string {
	var what string
	switch a.Type {
	case ActionMove:
		what = "Traveled to " + locationName(ws, a.Param("destination"))
	case ActionInteractNPC:
		what = "Spent time with " + npcName(ws, a.Param("target"))
	case ActionConverse:
		what = "Talked with " + npcName(ws, a.Param("target"))
		if topic := a.Param("topic"); topic != "" {
			what += " about " + topic
		}
	case ActionUpdateGoal:
		what = "Set a new goal: " + firstNonEmpty(a.Param("goal"), a.Param("longGoal"))
	case ActionUpdatePlan:
		what = "Made a plan: " + strings.Join(a.ListParam("plan"), "; ")
	case ActionAcquireItem:
		what = "Sought " + firstNonEmpty(a.Param("item"), "supplies")
	case ActionPracticeSkill:
		what = "Practiced " + firstNonEmpty(a.Param("skill"), "cultivation")
	case ActionUseSkill:
		what = "Used " + firstNonEmpty(a.Param("skill"), "a technique")
	case ActionInteractObject:
		what = "Examined " + firstNonEmpty(a.Param("object"), "something")
	default:
		what = "Rested"
	}
	return fmt.Sprintf("%s. (%s)", what, strings.TrimSpace(a.Reason))
}

func locationName(ws *world.State, id string) string {
	if l := ws.LocationByID(id); l != nil {
		return l.Name
	}
	return id
}

func npcName(ws *world.State, id string) string {
	if n := ws.NPCByID(id); n != nil {
		return n.Name
	}
	return id
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
