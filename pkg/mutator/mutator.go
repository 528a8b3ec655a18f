// Package mutator implements one handler per command kind. Every handler
// receives a private copy of the world from the dispatcher and returns it
// with its changes applied.
package mutator

import (
	"log/slog"
	"strings"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/resolve"
	"github.com/jwebster45206/saga-engine/pkg/textfilter"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// PlayerTarget is the name tags use for the player character.
const PlayerTarget = "player"

type Mutator struct {
	resolver    *resolve.Resolver
	logger      *slog.Logger
	activityCap int
}

type Option func(*Mutator)

// WithActivityCap overrides world.ActivityLogCap.
func WithActivityCap(n int) Option {
	return func(m *Mutator) { m.activityCap = n }
}

func New(resolver *resolve.Resolver, logger *slog.Logger, opts ...Option) *Mutator {
	if resolver == nil {
		resolver = resolve.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Mutator{resolver: resolver, logger: logger, activityCap: world.ActivityLogCap}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewRegistry returns the full command vocabulary bound to m.
func NewRegistry(m *Mutator) *command.Registry {
	return command.NewRegistry().MustRegister(m.Definitions()...)
}

// NewDispatcher wires a default mutator into a dispatcher.
func NewDispatcher(logger *slog.Logger) *command.Dispatcher {
	return command.NewDispatcher(NewRegistry(New(resolve.New(), logger)), logger)
}

func str(name string) command.ParamSpec {
	return command.ParamSpec{Name: name, Type: command.TypeString}
}

func req(name string) command.ParamSpec {
	return command.ParamSpec{Name: name, Type: command.TypeString, Required: true}
}

func integer(name, def string) command.ParamSpec {
	return command.ParamSpec{Name: name, Type: command.TypeInt, Default: def}
}

func amount(name string) command.ParamSpec {
	return command.ParamSpec{Name: name, Type: command.TypeAmount}
}

func boolean(name, def string) command.ParamSpec {
	return command.ParamSpec{Name: name, Type: command.TypeBool, Default: def}
}

func list(name string) command.ParamSpec {
	return command.ParamSpec{Name: name, Type: command.TypeList}
}

func enum(name, def string, values ...string) command.ParamSpec {
	return command.ParamSpec{Name: name, Type: command.TypeEnum, Default: def, Enum: values}
}

// Definitions lists every command kind with its parameter contract.
func (m *Mutator) Definitions() []command.Definition {
	npcFields := []command.ParamSpec{
		str("title"), str("description"), str("gender"), str("realm"),
		str("location"), str("faction"), str("mood"), str("relationship"),
		str("goal"), str("longGoal"),
	}
	return []command.Definition{
		{Kind: command.StatsUpdate, Summary: "change player stats", Extra: command.TypeAmount,
			Params: []command.ParamSpec{str("canhGioi")}, Handler: m.statsUpdate},
		{Kind: command.ItemAcquired, Summary: "add an item to the inventory",
			Params: []command.ParamSpec{req("name"), integer("quantity", "1"), str("category"), str("description"),
				str("rarity"), integer("value", ""), str("slot")}, Handler: m.itemAcquired},
		{Kind: command.ItemConsumed, Summary: "use up an item",
			Params: []command.ParamSpec{req("name"), integer("quantity", "1")}, Handler: m.itemConsumed},
		{Kind: command.ItemUpdate, Summary: "change an item",
			Params: []command.ParamSpec{req("name"), str("newName"), str("description"), str("rarity"),
				integer("value", ""), str("category"), str("slot")}, Handler: m.itemUpdate},
		{Kind: command.ItemEquip, Summary: "equip an item",
			Params: []command.ParamSpec{req("name"), str("slot")}, Handler: m.itemEquip},
		{Kind: command.ItemUnequip, Summary: "unequip an item or slot",
			Params: []command.ParamSpec{str("name"), str("slot")}, Handler: m.itemUnequip},
		{Kind: command.SkillLearned, Summary: "learn a skill",
			Params: []command.ParamSpec{req("name"), str("description"), str("kind"), integer("level", "1")}, Handler: m.skillLearned},
		{Kind: command.SkillUpdate, Summary: "change a skill",
			Params: []command.ParamSpec{req("name"), amount("level"), amount("proficiency"), str("description")}, Handler: m.skillUpdate},
		{Kind: command.StatusEffectApply, Summary: "apply a timed effect",
			Params: []command.ParamSpec{req("name"), integer("duration", "3"), enum("kind", "buff", "buff", "debuff"),
				str("description"), str("target")}, Handler: m.statusEffectApply},
		{Kind: command.StatusEffectRemove, Summary: "remove a timed effect",
			Params: []command.ParamSpec{req("name"), str("target")}, Handler: m.statusEffectRemove},

		{Kind: command.LocationChange, Summary: "move the player or an NPC",
			Params: []command.ParamSpec{req("destination"), str("npc")}, Handler: m.locationChange},
		{Kind: command.LocationCreate, Summary: "create a location",
			Params: []command.ParamSpec{req("name"), str("description"), str("kind"), str("parent"),
				boolean("safe", "false"), list("connections")}, Handler: m.locationCreate},
		{Kind: command.LocationUpdate, Summary: "change a location",
			Params: []command.ParamSpec{req("name"), str("newName"), str("description"), str("kind"),
				{Name: "safe", Type: command.TypeBool}, str("parent")}, Handler: m.locationUpdate},
		{Kind: command.LocationConnection, Summary: "connect two locations",
			Params: []command.ParamSpec{req("from"), req("to"), boolean("bidirectional", "true")}, Handler: m.locationConnection},
		{Kind: command.VendorStock, Summary: "stock an NPC's shop",
			Params: []command.ParamSpec{req("npc"), req("item"), integer("quantity", "1"), integer("value", "")}, Handler: m.vendorStock},

		{Kind: command.NPCCreate, Summary: "introduce an NPC",
			Params: append([]command.ParamSpec{req("name")}, npcFields...), Handler: m.npcCreate},
		{Kind: command.NPCUpdate, Summary: "change an NPC",
			Params: append([]command.ParamSpec{req("name"), str("newName"), list("plan"),
				enum("status", "", world.NPCStatusAlive, world.NPCStatusDead), amount("affinity")}, npcFields...),
			Handler: m.npcUpdate},
		{Kind: command.NPCRemove, Summary: "remove an NPC",
			Params: []command.ParamSpec{req("name"), str("reason")}, Handler: m.npcRemove},
		{Kind: command.NPCRelationship, Summary: "set an NPC relationship",
			Params: []command.ParamSpec{req("npc"), req("target"), str("type"), amount("affinity")}, Handler: m.npcRelationship},
		{Kind: command.NPCNeed, Summary: "set an NPC need",
			Params: []command.ParamSpec{req("npc"), req("need"), {Name: "value", Type: command.TypeAmount, Required: true}},
			Handler: m.npcNeed},
		{Kind: command.NPCMemory, Summary: "append to an NPC's activity log",
			Params: []command.ParamSpec{req("npc"), req("entry")}, Handler: m.npcMemory},

		{Kind: command.FactionCreate, Summary: "create a faction",
			Params: []command.ParamSpec{req("name"), str("description"), str("alignment"), integer("reputation", "0")},
			Handler: m.factionCreate},
		{Kind: command.FactionUpdate, Summary: "change a faction",
			Params: []command.ParamSpec{req("name"), str("newName"), str("description"), str("alignment"), amount("reputation")},
			Handler: m.factionUpdate},
		{Kind: command.FactionMember, Summary: "add or remove a faction member",
			Params: []command.ParamSpec{req("faction"), req("npc"), enum("action", "join", "join", "leave")},
			Handler: m.factionMember},

		{Kind: command.LoreCreate, Summary: "record lore",
			Params: []command.ParamSpec{req("title"), req("content"), str("category")}, Handler: m.loreCreate},
		{Kind: command.LoreUpdate, Summary: "change lore",
			Params: []command.ParamSpec{req("title"), str("content"), str("category")}, Handler: m.loreUpdate},
		{Kind: command.EventCreate, Summary: "announce a world event",
			Params: []command.ParamSpec{req("title"), str("description"), str("location"),
				enum("status", world.EventUpcoming, world.EventUpcoming, world.EventActive, world.EventEnded)},
			Handler: m.eventCreate},
		{Kind: command.EventUpdate, Summary: "change a world event",
			Params: []command.ParamSpec{req("title"), str("newTitle"), str("description"), str("location"),
				enum("status", "", world.EventUpcoming, world.EventActive, world.EventEnded)},
			Handler: m.eventUpdate},

		{Kind: command.QuestCreate, Summary: "start a quest",
			Params: []command.ParamSpec{req("title"), str("description"), str("giver"), str("target"), list("objectives")},
			Handler: m.questCreate},
		{Kind: command.QuestUpdate, Summary: "change a quest",
			Params: []command.ParamSpec{req("title"), str("newTitle"), str("description"), list("objectives"),
				enum("status", "", world.QuestActive, world.QuestCompleted, world.QuestFailed)},
			Handler: m.questUpdate},
		{Kind: command.QuestObjectiveComplete, Summary: "tick off a quest objective",
			Params: []command.ParamSpec{req("title"), req("objective")}, Handler: m.questObjectiveComplete},

		{Kind: command.HostileCreate, Summary: "spawn a hostile creature",
			Params: []command.ParamSpec{req("name"), {Name: "hp", Type: command.TypeInt, Required: true},
				integer("ac", "10"), integer("attack", "0"), str("location"), str("description")},
			Handler: m.hostileCreate},
		{Kind: command.CombatStart, Summary: "begin combat",
			Params: []command.ParamSpec{{Name: "opponents", Type: command.TypeList, Required: true}}, Handler: m.combatStart},
		{Kind: command.CombatDamage, Summary: "deal damage",
			Params: []command.ParamSpec{req("target"), {Name: "amount", Type: command.TypeInt, Required: true}},
			Handler: m.combatDamage},
		{Kind: command.CombatEnd, Summary: "end combat",
			Params: []command.ParamSpec{enum("outcome", "victory", "victory", "defeat", "flee")}, Handler: m.combatEnd},

		{Kind: command.AuctionStart, Summary: "open an auction",
			Params: []command.ParamSpec{req("item"), {Name: "startingBid", Type: command.TypeInt, Required: true},
				integer("rounds", "3")}, Handler: m.auctionStart},
		{Kind: command.AuctionBid, Summary: "bid in the auction",
			Params: []command.ParamSpec{req("bidder"), {Name: "amount", Type: command.TypeInt, Required: true}},
			Handler: m.auctionBid},
		{Kind: command.AuctionEnd, Summary: "close the auction", Handler: m.auctionEnd},

		{Kind: command.TimeAdvance, Summary: "advance the calendar",
			Params: []command.ParamSpec{integer("hours", ""), integer("days", ""), integer("years", "")},
			Handler: m.timeAdvance},
	}
}

// cleanName tidies an entity name supplied by the narrator.
func cleanName(s string) string {
	return textfilter.CollapseSpace(s)
}

func isPlayer(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, PlayerTarget) || strings.EqualFold(s, "you")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// setString copies an optional string parameter onto dst when present.
func setString(args command.Args, param string, dst *string) bool {
	if !args.Has(param) {
		return false
	}
	v := args.String(param)
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func aliveNPC(n world.NPC) bool { return n.Alive() }

func activeQuest(q world.Quest) bool { return q.Status == world.QuestActive || q.Status == "" }

func standing(c world.Creature) bool { return !c.Defeated() }

func openEvent(e world.WorldEvent) bool { return e.Open() }

// findNPC prefers living NPCs and falls back to the dead.
func (m *Mutator) findNPC(ws *world.State, who string) (int, bool) {
	if match, ok := resolve.Find(m.resolver, who, ws.NPCs, aliveNPC); ok {
		return match.Index, true
	}
	match, ok := resolve.Find(m.resolver, who, ws.NPCs, nil)
	return match.Index, ok
}

func (m *Mutator) findLocation(ws *world.State, where string) (int, bool) {
	match, ok := resolve.Find(m.resolver, where, ws.Locations, nil)
	return match.Index, ok
}

func (m *Mutator) findFaction(ws *world.State, faction string) (int, bool) {
	match, ok := resolve.Find(m.resolver, faction, ws.Factions, nil)
	return match.Index, ok
}

// locationID resolves an optional location reference. Unknown names are
// logged and dropped so the world never references a missing location.
func (m *Mutator) locationID(ws *world.State, where string, kind command.Kind) string {
	if where == "" {
		return ""
	}
	if i, ok := m.findLocation(ws, where); ok {
		return ws.Locations[i].ID
	}
	m.logger.Warn("Ignoring unknown location reference", "kind", kind, "location", where)
	return ""
}

func (m *Mutator) npcID(ws *world.State, who string, kind command.Kind) string {
	if who == "" {
		return ""
	}
	if i, ok := m.findNPC(ws, who); ok {
		return ws.NPCs[i].ID
	}
	m.logger.Warn("Ignoring unknown NPC reference", "kind", kind, "npc", who)
	return ""
}
