package command

import "strings"

// Kind names one command in the closed vocabulary.
type Kind string

const (
	StatsUpdate        Kind = "STATS_UPDATE"
	ItemAcquired       Kind = "ITEM_ACQUIRED"
	ItemConsumed       Kind = "ITEM_CONSUMED"
	ItemUpdate         Kind = "ITEM_UPDATE"
	ItemEquip          Kind = "ITEM_EQUIP"
	ItemUnequip        Kind = "ITEM_UNEQUIP"
	SkillLearned       Kind = "SKILL_LEARNED"
	SkillUpdate        Kind = "SKILL_UPDATE"
	StatusEffectApply  Kind = "STATUS_EFFECT_APPLY"
	StatusEffectRemove Kind = "STATUS_EFFECT_REMOVE"

	LocationChange     Kind = "LOCATION_CHANGE"
	LocationCreate     Kind = "LOCATION"
	LocationUpdate     Kind = "LOCATION_UPDATE"
	LocationConnection Kind = "LOCATION_CONNECTION"
	VendorStock        Kind = "VENDOR_STOCK"

	NPCCreate       Kind = "NPC"
	NPCUpdate       Kind = "NPC_UPDATE"
	NPCRemove       Kind = "NPC_REMOVE"
	NPCRelationship Kind = "NPC_RELATIONSHIP"
	NPCNeed         Kind = "NPC_NEED"
	NPCMemory       Kind = "NPC_MEMORY"

	FactionCreate Kind = "FACTION"
	FactionUpdate Kind = "FACTION_UPDATE"
	FactionMember Kind = "FACTION_MEMBER"

	LoreCreate  Kind = "LORE"
	LoreUpdate  Kind = "LORE_UPDATE"
	EventCreate Kind = "EVENT"
	EventUpdate Kind = "EVENT_UPDATE"

	QuestCreate            Kind = "QUEST"
	QuestUpdate            Kind = "QUEST_UPDATE"
	QuestObjectiveComplete Kind = "QUEST_OBJECTIVE_COMPLETE"

	HostileCreate Kind = "HOSTILE"
	CombatStart   Kind = "COMBAT_START"
	CombatDamage  Kind = "COMBAT_DAMAGE"
	CombatEnd     Kind = "COMBAT_END"

	AuctionStart Kind = "AUCTION_START"
	AuctionBid   Kind = "AUCTION_BID"
	AuctionEnd   Kind = "AUCTION_END"

	TimeAdvance Kind = "TIME_ADVANCE"
)

// Kinds lists the whole vocabulary in a stable order.
var Kinds = []Kind{
	StatsUpdate, ItemAcquired, ItemConsumed, ItemUpdate, ItemEquip, ItemUnequip,
	SkillLearned, SkillUpdate, StatusEffectApply, StatusEffectRemove,
	LocationChange, LocationCreate, LocationUpdate, LocationConnection, VendorStock,
	NPCCreate, NPCUpdate, NPCRemove, NPCRelationship, NPCNeed, NPCMemory,
	FactionCreate, FactionUpdate, FactionMember,
	LoreCreate, LoreUpdate, EventCreate, EventUpdate,
	QuestCreate, QuestUpdate, QuestObjectiveComplete,
	HostileCreate, CombatStart, CombatDamage, CombatEnd,
	AuctionStart, AuctionBid, AuctionEnd,
	TimeAdvance,
}

var known = func() map[Kind]bool {
	m := make(map[Kind]bool, len(Kinds))
	for _, k := range Kinds {
		m[k] = true
	}
	return m
}()

// ParseKind matches a tag name case-insensitively against the vocabulary.
func ParseKind(name string) (Kind, bool) {
	k := Kind(strings.ToUpper(strings.TrimSpace(name)))
	return k, known[k]
}
