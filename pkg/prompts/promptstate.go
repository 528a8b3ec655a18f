package prompts

import (
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// PromptState is the reduced world view sent to the planner model.
type PromptState struct {
	Calendar       string           `json:"calendar"`
	Turn           int              `json:"turn"`
	PlayerLocation string           `json:"player_location,omitempty"`
	Locations      []PromptLocation `json:"locations"`
	Events         []PromptEvent    `json:"events,omitempty"`
	NPCs           []PromptNPC      `json:"npcs"`
}

type PromptLocation struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	SafeZone    bool     `json:"safe_zone,omitempty"`
	Connections []string `json:"connections,omitempty"`
}

type PromptEvent struct {
	Title      string `json:"title"`
	Status     string `json:"status"`
	LocationID string `json:"location_id,omitempty"`
}

// PromptNPC is an NPC profile plus its recent memory.
type PromptNPC struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Title          string         `json:"title,omitempty"`
	Realm          string         `json:"realm,omitempty"`
	LocationID     string         `json:"location_id,omitempty"`
	FactionID      string         `json:"faction_id,omitempty"`
	Mood           string         `json:"mood,omitempty"`
	Needs          map[string]int `json:"needs,omitempty"`
	ShortTermGoal  string         `json:"short_term_goal,omitempty"`
	LongTermGoal   string         `json:"long_term_goal,omitempty"`
	CurrentPlan    []string       `json:"current_plan,omitempty"`
	Relationship   string         `json:"relationship_to_player,omitempty"`
	RecentActivity []string       `json:"recent_activity,omitempty"`
}

// ToPromptState builds the planner view of ws for the given candidates,
// keeping the last depth activity entries of each.
func ToPromptState(ws *world.State, candidates []world.NPC, depth int) *PromptState {
	ps := &PromptState{
		Calendar:       ws.Calendar.String(),
		Turn:           ws.Turn,
		PlayerLocation: ws.Player.LocationID,
		Locations:      make([]PromptLocation, 0, len(ws.Locations)),
		NPCs:           make([]PromptNPC, 0, len(candidates)),
	}
	for _, l := range ws.Locations {
		ps.Locations = append(ps.Locations, PromptLocation{
			ID:          l.ID,
			Name:        l.Name,
			SafeZone:    l.SafeZone,
			Connections: l.Connections,
		})
	}
	for _, e := range ws.Events {
		if e.Status == world.EventActive || e.Status == world.EventUpcoming {
			ps.Events = append(ps.Events, PromptEvent{Title: e.Title, Status: e.Status, LocationID: e.LocationID})
		}
	}
	for _, n := range candidates {
		ps.NPCs = append(ps.NPCs, PromptNPC{
			ID:             n.ID,
			Name:           n.Name,
			Title:          n.Title,
			Realm:          n.Realm,
			LocationID:     n.LocationID,
			FactionID:      n.FactionID,
			Mood:           n.Mood,
			Needs:          n.Needs,
			ShortTermGoal:  n.ShortTermGoal,
			LongTermGoal:   n.LongTermGoal,
			CurrentPlan:    n.CurrentPlan,
			Relationship:   n.Relationship,
			RecentActivity: n.RecentActivity(depth),
		})
	}
	return ps
}
