package world

// Entity is implemented by every named world entity so the resolver can
// match against any of them.
type Entity interface {
	EntityID() string
	EntityName() string
}

const (
	NPCStatusAlive = "alive"
	NPCStatusDead  = "dead"

	QuestActive    = "active"
	QuestCompleted = "completed"
	QuestFailed    = "failed"

	EventUpcoming = "upcoming"
	EventActive   = "active"
	EventEnded    = "ended"
)

// ActivityLogCap bounds NPC.ActivityLog.
const ActivityLogCap = 10

// NPC is a non-player character together with its behavior profile.
type NPC struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Realm       string `json:"realm,omitempty"`
	LocationID  string `json:"location_id,omitempty"`
	FactionID   string `json:"faction_id,omitempty"`
	Status      string `json:"status"`

	Mood          string                  `json:"mood,omitempty"`
	Needs         map[string]int          `json:"needs,omitempty"` // 0..100 per need
	ShortTermGoal string                  `json:"short_term_goal,omitempty"`
	LongTermGoal  string                  `json:"long_term_goal,omitempty"`
	CurrentPlan   []string                `json:"current_plan,omitempty"`
	Relationship  string                  `json:"relationship,omitempty"` // toward the player
	Affinity      int                     `json:"affinity,omitempty"`     // toward the player, -100..100
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	ActivityLog   []string                `json:"activity_log,omitempty"`

	LastTickTurn  int `json:"last_tick_turn"`
	PriorityScore int `json:"priority_score,omitempty"`

	Vendor        *Vendor        `json:"vendor,omitempty"`
	StatusEffects []StatusEffect `json:"status_effects,omitempty"`
}

func (n NPC) EntityID() string   { return n.ID }
func (n NPC) EntityName() string { return n.Name }

// Alive reports whether the NPC is still in play. An empty status counts
// as alive so hand-written seeds do not need to spell it out.
func (n NPC) Alive() bool { return n.Status != NPCStatusDead }

// Remember appends an activity entry, dropping the oldest beyond the cap.
func (n *NPC) Remember(entry string, limit int) {
	if limit <= 0 {
		limit = ActivityLogCap
	}
	n.ActivityLog = append(n.ActivityLog, entry)
	if over := len(n.ActivityLog) - limit; over > 0 {
		n.ActivityLog = append([]string(nil), n.ActivityLog[over:]...)
	}
}

// RecentActivity returns up to the last n activity entries, oldest first.
func (n NPC) RecentActivity(count int) []string {
	if count <= 0 || len(n.ActivityLog) == 0 {
		return nil
	}
	if count > len(n.ActivityLog) {
		count = len(n.ActivityLog)
	}
	return n.ActivityLog[len(n.ActivityLog)-count:]
}

type Relationship struct {
	Type     string `json:"type,omitempty"`
	Affinity int    `json:"affinity,omitempty"`
}

// Vendor is an NPC's shop. Catalog is what a restock refills Stock to.
type Vendor struct {
	Stock           []Item `json:"stock,omitempty"`
	Catalog         []Item `json:"catalog,omitempty"`
	LastRestockYear int    `json:"last_restock_year"`
}

type Location struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	SafeZone    bool     `json:"safe_zone,omitempty"`
	Connections []string `json:"connections,omitempty"`
	Discovered  bool     `json:"discovered,omitempty"`
}

func (l Location) EntityID() string   { return l.ID }
func (l Location) EntityName() string { return l.Name }

// Connect adds id to the connection list once.
func (l *Location) Connect(id string) bool {
	for _, c := range l.Connections {
		if c == id {
			return false
		}
	}
	l.Connections = append(l.Connections, id)
	return true
}

type Faction struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Alignment   string   `json:"alignment,omitempty"`
	Reputation  int      `json:"reputation"` // -100..100
	MemberIDs   []string `json:"member_ids,omitempty"`
}

func (f Faction) EntityID() string   { return f.ID }
func (f Faction) EntityName() string { return f.Name }

type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Rarity      string `json:"rarity,omitempty"`
	Quantity    int    `json:"quantity"`
	Value       int    `json:"value,omitempty"`
	Slot        string `json:"slot,omitempty"`
}

func (i Item) EntityID() string   { return i.ID }
func (i Item) EntityName() string { return i.Name }

type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Level       int    `json:"level"`
	Proficiency int    `json:"proficiency"` // 0..100
}

func (s Skill) EntityID() string   { return s.ID }
func (s Skill) EntityName() string { return s.Name }

type Objective struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type Quest struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      string      `json:"status"`
	GiverID     string      `json:"giver_id,omitempty"`
	TargetNPCID string      `json:"target_npc_id,omitempty"`
	Objectives  []Objective `json:"objectives,omitempty"`
}

func (q Quest) EntityID() string   { return q.ID }
func (q Quest) EntityName() string { return q.Title }

type LoreEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Content  string `json:"content"`
}

func (l LoreEntry) EntityID() string   { return l.ID }
func (l LoreEntry) EntityName() string { return l.Title }

type WorldEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	LocationID  string `json:"location_id,omitempty"`
	Status      string `json:"status"`
}

func (e WorldEvent) EntityID() string   { return e.ID }
func (e WorldEvent) EntityName() string { return e.Title }

// Open reports whether the event has not ended yet.
func (e WorldEvent) Open() bool { return e.Status != EventEnded }

// StatusEffect is a time-boxed effect on the player or an NPC.
type StatusEffect struct {
	Name           string `json:"name"`
	Kind           string `json:"kind,omitempty"` // buff or debuff
	Description    string `json:"description,omitempty"`
	TurnsRemaining int    `json:"turns_remaining"`
}

func (e StatusEffect) EntityID() string   { return e.Name }
func (e StatusEffect) EntityName() string { return e.Name }

type Combat struct {
	OpponentIDs []string `json:"opponent_ids"`
	Round       int      `json:"round"`
	StartedTurn int      `json:"started_turn"`
}

type Auction struct {
	ItemName      string `json:"item_name"`
	StartingBid   int    `json:"starting_bid"`
	CurrentBid    int    `json:"current_bid"`
	HighestBidder string `json:"highest_bidder,omitempty"`
	RoundsLeft    int    `json:"rounds_left"`
}
