package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPlan means the model's response could not be trusted at all.
// The whole tick is discarded.
var ErrInvalidPlan = errors.New("invalid NPC plan")

type ActionType string

const (
	ActionMove           ActionType = "MOVE"
	ActionInteractNPC    ActionType = "INTERACT_NPC"
	ActionUpdateGoal     ActionType = "UPDATE_GOAL"
	ActionUpdatePlan     ActionType = "UPDATE_PLAN"
	ActionIdle           ActionType = "IDLE"
	ActionAcquireItem    ActionType = "ACQUIRE_ITEM"
	ActionPracticeSkill  ActionType = "PRACTICE_SKILL"
	ActionUseSkill       ActionType = "USE_SKILL"
	ActionInteractObject ActionType = "INTERACT_OBJECT"
	ActionConverse       ActionType = "CONVERSE"
)

var ActionTypes = []ActionType{
	ActionMove, ActionInteractNPC, ActionUpdateGoal, ActionUpdatePlan, ActionIdle,
	ActionAcquireItem, ActionPracticeSkill, ActionUseSkill, ActionInteractObject, ActionConverse,
}

func (t ActionType) Valid() bool {
	for _, a := range ActionTypes {
		if a == t {
			return true
		}
	}
	return false
}

type Action struct {
	Type       ActionType     `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Reason     string         `json:"reason"`
}

// Param returns a scalar parameter as a trimmed string.
func (a Action) Param(key string) string {
	switch v := a.Parameters[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// ListParam returns a list parameter. A JSON array of strings and a
// "|"-separated string are both accepted.
func (a Action) ListParam(key string) []string {
	var out []string
	switch v := a.Parameters[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(v, "|") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// NPCPlan is the model's plan for one NPC.
type NPCPlan struct {
	NPCID   string   `json:"npcId"`
	Actions []Action `json:"actions"`
}

type planResponse struct {
	NPCUpdates *[]NPCPlan `json:"npcUpdates"`
}

// ParsePlans decodes the planner response. Markdown code fences around the
// JSON are tolerated; anything else that is not the expected object fails
// with ErrInvalidPlan.
func ParsePlans(raw string) ([]NPCPlan, error) {
	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	var resp planResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if resp.NPCUpdates == nil {
		return nil, fmt.Errorf("%w: missing npcUpdates", ErrInvalidPlan)
	}
	plans := *resp.NPCUpdates
	for i := range plans {
		for j := range plans[i].Actions {
			a := &plans[i].Actions[j]
			a.Type = ActionType(strings.ToUpper(strings.TrimSpace(string(a.Type))))
		}
	}
	return plans, nil
}
