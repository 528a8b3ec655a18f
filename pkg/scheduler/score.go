package scheduler

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/textfilter"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

const (
	WeightCoLocated    = 100
	WeightPrivileged   = 80
	WeightQuest        = 70
	WeightNeed         = 50
	WeightStalePerTurn = 2
	WeightStaleCap     = 60
	WeightEventGoal    = 90
	WeightUnsafe       = 30

	needComfortLow  = 10
	needComfortHigh = 90
)

// privileged holds folded relationship labels that make an NPC matter to
// the player regardless of distance.
var privileged = map[string]bool{
	"spouse": true, "master": true, "disciple": true, "enemy": true,
	"rival": true, "lover": true, "parent": true, "child": true,
	"sworn sibling": true, "su phu": true, "de tu": true, "dao lu": true,
	"ke thu": true, "nghia huynh": true,
}

// Scored is one NPC with its relevance score. Index is the NPC's position in
// the world it was scored against.
type Scored struct {
	Index int    `json:"-"`
	NPCID string `json:"npc_id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Score rates how much the NPC's next move matters to the player. Dead NPCs
// score zero.
func Score(ws *world.State, n world.NPC) int {
	if !n.Alive() {
		return 0
	}
	score := 0
	if n.LocationID != "" && n.LocationID == ws.Player.LocationID {
		score += WeightCoLocated
	}
	if privileged[textfilter.Fold(n.Relationship)] {
		score += WeightPrivileged
	}
	if questReferences(ws, n) {
		score += WeightQuest
	}
	for _, v := range n.Needs {
		if v < needComfortLow || v > needComfortHigh {
			score += WeightNeed
			break
		}
	}
	if idle := ws.Turn - n.LastTickTurn; idle > 0 {
		score += min(WeightStaleCap, WeightStalePerTurn*idle)
	}
	if goalMentionsEvent(ws, n) {
		score += WeightEventGoal
	}
	if loc := ws.LocationByID(n.LocationID); loc != nil && !loc.SafeZone {
		score += WeightUnsafe
	}
	return score
}

func questReferences(ws *world.State, n world.NPC) bool {
	name := textfilter.Fold(n.Name)
	for _, q := range ws.Quests {
		if q.Status != world.QuestActive && q.Status != "" {
			continue
		}
		if q.GiverID == n.ID || q.TargetNPCID == n.ID {
			return true
		}
		if name == "" {
			continue
		}
		text := []string{q.Title, q.Description}
		for _, o := range q.Objectives {
			text = append(text, o.Text)
		}
		if containsFolded(textfilter.Fold(strings.Join(text, " ")), name) {
			return true
		}
	}
	return false
}

func goalMentionsEvent(ws *world.State, n world.NPC) bool {
	goals := textfilter.Fold(n.ShortTermGoal + " " + n.LongTermGoal)
	if goals == "" {
		return false
	}
	for _, e := range ws.Events {
		if e.Status != world.EventActive && e.Status != world.EventUpcoming {
			continue
		}
		if title := textfilter.Fold(e.Title); title != "" && containsFolded(goals, title) {
			return true
		}
	}
	return false
}

// containsFolded reports whether needle occurs in haystack on word
// boundaries. Both are already folded, so words are separated by one space.
func containsFolded(haystack, needle string) bool {
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

// ScoreAll scores every living NPC in world order.
func ScoreAll(ws *world.State) []Scored {
	out := make([]Scored, 0, len(ws.NPCs))
	for i, n := range ws.NPCs {
		if !n.Alive() {
			continue
		}
		out = append(out, Scored{Index: i, NPCID: n.ID, Name: n.Name, Score: Score(ws, n)})
	}
	return out
}

// Select returns the k highest scores. Ties keep their input order.
func Select(scored []Scored, k int) []Scored {
	if k <= 0 || len(scored) == 0 {
		return nil
	}
	sorted := slices.Clone(scored)
	slices.SortStableFunc(sorted, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
