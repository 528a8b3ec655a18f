package world

import (
	"fmt"

	"github.com/jwebster45206/d20"
)

// Creature is a hostile on the combat roster.
type Creature struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LocationID  string `json:"location_id,omitempty"`

	AC     int `json:"ac"`
	HP     int `json:"hp"`
	MaxHP  int `json:"max_hp"`
	Attack int `json:"attack,omitempty"`

	Attributes map[string]int `json:"attributes,omitempty"`
	CombatMods map[string]int `json:"combat_modifiers,omitempty"`
}

func (c Creature) EntityID() string   { return c.ID }
func (c Creature) EntityName() string { return c.Name }

// Defeated reports whether the creature is out of the fight.
func (c Creature) Defeated() bool { return c.HP <= 0 }

// TakeDamage reduces HP, never below zero.
func (c *Creature) TakeDamage(amount int) {
	if amount < 0 {
		return
	}
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
}

// Heal restores HP up to MaxHP.
func (c *Creature) Heal(amount int) {
	if amount < 0 {
		return
	}
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

// Sheet builds a d20 actor from the creature's stat block. It fails when the
// stat block is not a valid combatant.
func (c Creature) Sheet() (*d20.Actor, error) {
	attrs := c.Attributes
	if attrs == nil {
		attrs = map[string]int{}
	}
	mods := c.CombatMods
	if mods == nil {
		mods = map[string]int{}
	}
	actor, err := d20.NewActor(c.ID).
		WithHP(c.MaxHP).
		WithAC(c.AC).
		WithAttributes(attrs).
		WithCombatModifiers(mods).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}
	if c.HP != c.MaxHP && c.HP > 0 {
		if err := actor.SetHP(c.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return actor, nil
}
