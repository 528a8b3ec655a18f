package scheduler

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/world"
)

// Drop records an action or plan that failed validation. Action is -1 when
// the whole plan was dropped.
type Drop struct {
	NPCID  string `json:"npc_id"`
	Action int    `json:"action"`
	Reason string `json:"reason"`
}

func (d Drop) String() string {
	if d.Action < 0 {
		return fmt.Sprintf("%s: plan dropped: %s", d.NPCID, d.Reason)
	}
	return fmt.Sprintf("%s: action %d dropped: %s", d.NPCID, d.Action, d.Reason)
}

// Validate checks every plan against ws. Invalid actions are dropped one by
// one; a plan is dropped when its NPC is unknown, dead, not among
// candidates, already planned, or when no action survives. candidates may be
// nil to accept any living NPC.
func Validate(ws *world.State, plans []NPCPlan, candidates map[string]bool) ([]NPCPlan, []Drop) {
	var valid []NPCPlan
	var drops []Drop
	seen := make(map[string]bool)

	for _, p := range plans {
		npc := ws.NPCByID(p.NPCID)
		switch {
		case npc == nil:
			drops = append(drops, Drop{NPCID: p.NPCID, Action: -1, Reason: "unknown npcId"})
			continue
		case !npc.Alive():
			drops = append(drops, Drop{NPCID: p.NPCID, Action: -1, Reason: "NPC is dead"})
			continue
		case candidates != nil && !candidates[p.NPCID]:
			drops = append(drops, Drop{NPCID: p.NPCID, Action: -1, Reason: "NPC was not selected this tick"})
			continue
		case seen[p.NPCID]:
			drops = append(drops, Drop{NPCID: p.NPCID, Action: -1, Reason: "duplicate plan"})
			continue
		}
		seen[p.NPCID] = true

		kept := NPCPlan{NPCID: p.NPCID}
		for i, a := range p.Actions {
			if reason := checkAction(ws, npc, a); reason != "" {
				drops = append(drops, Drop{NPCID: p.NPCID, Action: i, Reason: reason})
				continue
			}
			kept.Actions = append(kept.Actions, a)
		}
		if len(kept.Actions) == 0 {
			drops = append(drops, Drop{NPCID: p.NPCID, Action: -1, Reason: "no valid actions"})
			continue
		}
		valid = append(valid, kept)
	}
	return valid, drops
}

// checkAction returns why a is invalid, or "" when it may be applied.
func checkAction(ws *world.State, npc *world.NPC, a Action) string {
	if strings.TrimSpace(a.Reason) == "" {
		return "missing reason"
	}
	if !a.Type.Valid() {
		return fmt.Sprintf("unknown action type %q", a.Type)
	}

	switch a.Type {
	case ActionMove:
		dest := a.Param("destination")
		if dest == "" {
			return "MOVE without destination"
		}
		if ws.LocationByID(dest) == nil {
			return fmt.Sprintf("destination %q does not exist", dest)
		}
	case ActionInteractNPC, ActionConverse:
		target := a.Param("target")
		if target == "" {
			return fmt.Sprintf("%s without target", a.Type)
		}
		other := ws.NPCByID(target)
		if other == nil || !other.Alive() {
			return fmt.Sprintf("target %q does not exist", target)
		}
		if other.ID == npc.ID {
			return "NPC cannot target itself"
		}
	case ActionUpdateGoal:
		if a.Param("goal") == "" && a.Param("longGoal") == "" {
			return "UPDATE_GOAL without goal"
		}
	case ActionUpdatePlan:
		if len(a.ListParam("plan")) == 0 {
			return "UPDATE_PLAN without plan"
		}
	}
	return ""
}
