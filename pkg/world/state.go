package world

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// State is the single aggregate holding every persistent entity of a game.
// Handlers never mutate a State they were given; they work on a DeepCopy.
type State struct {
	ID   uuid.UUID `json:"id"`
	Turn int       `json:"turn"`
	Seq  int       `json:"seq"` // id allocator, monotonic

	Player    Player       `json:"player"`
	Inventory []Item       `json:"inventory,omitempty"`
	Skills    []Skill      `json:"skills,omitempty"`
	Quests    []Quest      `json:"quests,omitempty"`
	NPCs      []NPC        `json:"npcs,omitempty"`
	Locations []Location   `json:"locations,omitempty"`
	Factions  []Faction    `json:"factions,omitempty"`
	Lore      []LoreEntry  `json:"lore,omitempty"`
	Events    []WorldEvent `json:"events,omitempty"`
	Hostiles  []Creature   `json:"hostiles,omitempty"`

	Combat  *Combat  `json:"combat,omitempty"`
	Auction *Auction `json:"auction,omitempty"`

	Calendar Calendar `json:"calendar"`
	Config   Config   `json:"config"`
}

// Config holds the feature flags a world is created with.
type Config struct {
	Autonomy AutonomyConfig `json:"autonomy"`
	Combat   CombatConfig   `json:"combat"`
	Economy  EconomyConfig  `json:"economy"`
}

type AutonomyConfig struct {
	Enabled bool `json:"enabled"`
}

type CombatConfig struct {
	Enabled bool `json:"enabled"`
}

type EconomyConfig struct {
	AuctionsEnabled bool `json:"auctions_enabled"`
	RestockEnabled  bool `json:"restock_enabled"`
}

// New returns an empty world with a fresh id and default flags.
func New() *State {
	return &State{
		ID:       uuid.New(),
		Player:   NewPlayer("Player"),
		Calendar: Calendar{Year: 1, Month: 1, Day: 1},
		Config: Config{
			Autonomy: AutonomyConfig{Enabled: true},
			Combat:   CombatConfig{Enabled: true},
			Economy:  EconomyConfig{AuctionsEnabled: true, RestockEnabled: true},
		},
	}
}

// Parse decodes a world document over the defaults of New, so a seed only
// has to list what differs. Seq is raised past every numeric id suffix
// already present.
func Parse(data []byte) (*State, error) {
	ws := New()
	if err := json.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("failed to parse world: %w", err)
	}
	for _, id := range ws.entityIDs() {
		i := strings.LastIndexByte(id, '_')
		if i < 0 {
			continue
		}
		if n, err := strconv.Atoi(id[i+1:]); err == nil && n > ws.Seq {
			ws.Seq = n
		}
	}
	return ws, nil
}

func (s *State) entityIDs() []string {
	var ids []string
	for _, n := range s.NPCs {
		ids = append(ids, n.ID)
		if n.Vendor != nil {
			for _, it := range n.Vendor.Stock {
				ids = append(ids, it.ID)
			}
			for _, it := range n.Vendor.Catalog {
				ids = append(ids, it.ID)
			}
		}
	}
	for _, l := range s.Locations {
		ids = append(ids, l.ID)
	}
	for _, f := range s.Factions {
		ids = append(ids, f.ID)
	}
	for _, it := range s.Inventory {
		ids = append(ids, it.ID)
	}
	for _, sk := range s.Skills {
		ids = append(ids, sk.ID)
	}
	for _, q := range s.Quests {
		ids = append(ids, q.ID)
	}
	for _, l := range s.Lore {
		ids = append(ids, l.ID)
	}
	for _, e := range s.Events {
		ids = append(ids, e.ID)
	}
	for _, h := range s.Hostiles {
		ids = append(ids, h.ID)
	}
	return ids
}

// NewID allocates the next entity id for the given prefix, e.g. "npc_4".
// Ids are never reused, even after the entity is removed.
func (s *State) NewID(prefix string) string {
	s.Seq++
	return fmt.Sprintf("%s_%d", prefix, s.Seq)
}

// DeepCopy creates a deep copy of the world via a JSON round trip.
func (s *State) DeepCopy() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("cannot copy nil world")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal world: %w", err)
	}
	var out State
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal world: %w", err)
	}
	return &out, nil
}

// NPCIndex returns the slice index of the NPC with the given id, or -1.
func (s *State) NPCIndex(id string) int {
	for i := range s.NPCs {
		if s.NPCs[i].ID == id {
			return i
		}
	}
	return -1
}

// NPCByID returns a pointer into the NPC slice, or nil.
func (s *State) NPCByID(id string) *NPC {
	if i := s.NPCIndex(id); i >= 0 {
		return &s.NPCs[i]
	}
	return nil
}

func (s *State) LocationIndex(id string) int {
	for i := range s.Locations {
		if s.Locations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) LocationByID(id string) *Location {
	if i := s.LocationIndex(id); i >= 0 {
		return &s.Locations[i]
	}
	return nil
}

func (s *State) FactionByID(id string) *Faction {
	for i := range s.Factions {
		if s.Factions[i].ID == id {
			return &s.Factions[i]
		}
	}
	return nil
}

func (s *State) ItemByID(id string) *Item {
	for i := range s.Inventory {
		if s.Inventory[i].ID == id {
			return &s.Inventory[i]
		}
	}
	return nil
}

// NPCsAt returns the alive NPCs whose location is locationID.
func (s *State) NPCsAt(locationID string) []NPC {
	var out []NPC
	for _, n := range s.NPCs {
		if n.LocationID == locationID && n.Alive() {
			out = append(out, n)
		}
	}
	return out
}
