package mutator

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

func testDispatcher() *command.Dispatcher {
	return NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testWorld() *world.State {
	ws := world.New()
	ws.Seq = 100
	ws.Player.LocationID = "loc_1"
	ws.Player.Stats.SinhLuc = 50
	ws.Player.Stats.LinhThach = 200
	ws.Locations = []world.Location{
		{ID: "loc_1", Name: "Thanh Vân Sơn", Discovered: true, SafeZone: true, Connections: []string{"loc_2"}},
		{ID: "loc_2", Name: "Lạc Dương", Connections: []string{"loc_1"}},
	}
	ws.NPCs = []world.NPC{
		{ID: "npc_1", Name: "Lý Tiêu Dao", Status: world.NPCStatusAlive, LocationID: "loc_1", FactionID: "faction_1"},
		{ID: "npc_2", Name: "Triệu Linh Nhi", Status: world.NPCStatusAlive, LocationID: "loc_2"},
	}
	ws.Factions = []world.Faction{{ID: "faction_1", Name: "Thanh Vân Môn", MemberIDs: []string{"npc_1"}}}
	return ws
}

func apply(t *testing.T, ws *world.State, text string) command.Result {
	t.Helper()
	res := testDispatcher().ApplyText(ws, text)
	require.NotNil(t, res.World)
	return res
}

func TestRegistry_CoversEveryKind(t *testing.T) {
	r := NewRegistry(New(nil, nil))
	assert.Len(t, r.Definitions(), len(command.Kinds))
	for _, k := range command.Kinds {
		_, ok := r.Lookup(string(k))
		assert.True(t, ok, "kind %s", k)
	}
}

func TestStatsUpdate(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		check func(t *testing.T, s world.Stats)
	}{
		{"health floor", `[STATS_UPDATE: sinhLuc=-=9999]`, func(t *testing.T, s world.Stats) {
			assert.Equal(t, world.HealthFloor, s.SinhLuc)
		}},
		{"health ceiling", `[STATS_UPDATE: sinhLuc=+=500]`, func(t *testing.T, s world.Stats) {
			assert.Equal(t, 100, s.SinhLuc)
		}},
		{"raise max then fill", `[STATS_UPDATE: sinhLucToiDa=150, sinhLuc=MAX]`, func(t *testing.T, s world.Stats) {
			assert.Equal(t, 150, s.SinhLucToiDa)
			assert.Equal(t, 150, s.SinhLuc)
		}},
		{"lower max reclamps", `[STATS_UPDATE: sinhLucToiDa=40]`, func(t *testing.T, s world.Stats) {
			assert.Equal(t, 40, s.SinhLuc)
		}},
		{"spirit stones never negative", `[STATS_UPDATE: linhThach=-=500]`, func(t *testing.T, s world.Stats) {
			assert.Equal(t, 0, s.LinhThach)
		}},
		{"case insensitive keys", `[STATS_UPDATE: LINHTHACH=+=5]`, func(t *testing.T, s world.Stats) {
			assert.Equal(t, 205, s.LinhThach)
		}},
		{"huge heal fills to max", `[STATS_UPDATE: sinhLuc=+=1e19]`, func(t *testing.T, s world.Stats) {
			assert.Equal(t, 100, s.SinhLuc)
		}},
		{"huge gain saturates", `[STATS_UPDATE: linhThach=+=9223372036854775807]`, func(t *testing.T, s world.Stats) {
			assert.Equal(t, math.MaxInt, s.LinhThach)
		}},
		{"huge loss hits the floor", `[STATS_UPDATE: sinhLuc=-=1e19, linhThach=-=1e19]`, func(t *testing.T, s world.Stats) {
			assert.Equal(t, world.HealthFloor, s.SinhLuc)
			assert.Equal(t, 0, s.LinhThach)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := apply(t, testWorld(), tt.tag)
			require.Equal(t, 1, res.Count(command.StatusApplied), res.Outcomes)
			tt.check(t, res.World.Player.Stats)
		})
	}
}

func TestStatsUpdate_Realm(t *testing.T) {
	res := apply(t, testWorld(), `[STATS_UPDATE: canhGioi="Trúc Cơ", kinhNghiem=+=30]`)
	assert.Equal(t, "Trúc Cơ", res.World.Player.Realm)
	assert.Equal(t, 30, res.World.Player.Stats.KinhNghiem)
	assert.Len(t, res.Notifications, 2)
}

func TestStatsUpdate_NothingKnown(t *testing.T) {
	ws := testWorld()
	res := apply(t, ws, `[STATS_UPDATE: charisma=5]`)
	assert.Equal(t, 1, res.Count(command.StatusSkipped))
	assert.Same(t, ws, res.World)
}

func TestItems(t *testing.T) {
	ws := testWorld()
	res := apply(t, ws, `
		[ITEM_ACQUIRED: name="Hồi Khí Đan", quantity=3, category=pill]
		[ITEM_ACQUIRED: name="hoi khi dan", quantity=2]
		[ITEM_ACQUIRED: name="Thanh Phong Kiếm", category=weapon]
		[ITEM_EQUIP: name="Thanh Phong Kiếm"]`)
	require.Equal(t, 4, res.Count(command.StatusApplied), res.Outcomes)
	require.Len(t, res.World.Inventory, 2)
	assert.Equal(t, 5, res.World.Inventory[0].Quantity)
	sword := res.World.Inventory[1]
	assert.Equal(t, sword.ID, res.World.Player.Equipment["weapon"])

	res = apply(t, res.World, `[ITEM_CONSUMED: name="Hồi Khí Đan", quantity=5][ITEM_CONSUMED: name="Thanh Phong Kiếm"]`)
	assert.Empty(t, res.World.Inventory)
	assert.Empty(t, res.World.Player.Equipment)
	assert.Empty(t, ws.Inventory, "caller snapshot untouched")
}

func TestItemConsumed_Unknown(t *testing.T) {
	res := apply(t, testWorld(), `[ITEM_CONSUMED: name="Phantom Pill"]`)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, command.StatusSkipped, res.Outcomes[0].Status)
	assert.Equal(t, []string{`No item named "Phantom Pill" was found.`}, res.Notifications)
}

func TestSkills(t *testing.T) {
	res := apply(t, testWorld(), `
		[SKILL_LEARNED: name="Ngự Kiếm Thuật", kind=movement]
		[SKILL_LEARNED: name="Ngự Kiếm  Thuật"]
		[SKILL_UPDATE: name="Ngự Kiếm Thuật", level=+=2, proficiency=150]`)
	require.Len(t, res.World.Skills, 1)
	sk := res.World.Skills[0]
	assert.Equal(t, 3, sk.Level)
	assert.Equal(t, 100, sk.Proficiency)
	assert.Equal(t, command.StatusSkipped, res.Outcomes[1].Status)
	assert.Empty(t, res.Outcomes[1].Notifications)
}

func TestStatusEffects(t *testing.T) {
	res := apply(t, testWorld(), `
		[STATUS_EFFECT_APPLY: name=Poisoned, duration=2, kind=debuff]
		[STATUS_EFFECT_APPLY: name=Blessed, target="Lý Tiêu Dao"]
		[STATUS_EFFECT_APPLY: name=poisoned, duration=4]`)
	require.Len(t, res.World.Player.StatusEffects, 1)
	assert.Equal(t, 4, res.World.Player.StatusEffects[0].TurnsRemaining)
	require.Len(t, res.World.NPCs[0].StatusEffects, 1)

	res = apply(t, res.World, `[STATUS_EFFECT_REMOVE: name=Blessed, target="Lý Tiêu Dao"]`)
	assert.Empty(t, res.World.NPCs[0].StatusEffects)
}

func TestLocationChange_Player(t *testing.T) {
	ws := testWorld()
	ws.Calendar.Year = 3
	ws.NPCs[1].Vendor = &world.Vendor{
		Catalog:         []world.Item{{ID: "item_9", Name: "Linh Thảo", Quantity: 5}},
		LastRestockYear: 2,
	}

	res := apply(t, ws, `[LOCATION_CHANGE: destination="Lạc Dương"]`)
	require.Equal(t, 1, res.Count(command.StatusApplied))
	got := res.World
	assert.Equal(t, "loc_2", got.Player.LocationID)
	assert.True(t, got.Locations[1].Discovered)
	require.Len(t, got.NPCs[1].Vendor.Stock, 1)
	assert.Equal(t, 3, got.NPCs[1].Vendor.LastRestockYear)
	assert.Contains(t, res.Notifications, "Triệu Linh Nhi has restocked their wares.")

	res = apply(t, got, `[LOCATION_CHANGE: destination="Thanh Vân Sơn"][LOCATION_CHANGE: destination="Lạc Dương"]`)
	assert.NotContains(t, res.Notifications, "Triệu Linh Nhi has restocked their wares.", "one restock per year")
}

func TestLocationChange_CreatesUnknownDestination(t *testing.T) {
	res := apply(t, testWorld(), `[LOCATION_CHANGE: destination="Vạn Kiếm Cốc"]`)
	got := res.World
	require.Len(t, got.Locations, 3)
	loc := got.Locations[2]
	assert.Equal(t, loc.ID, got.Player.LocationID)
	assert.Equal(t, []string{"loc_1"}, loc.Connections)
	assert.Contains(t, got.Locations[0].Connections, loc.ID)
	assert.Empty(t, got.Integrity())
}

func TestLocationChange_NPC(t *testing.T) {
	ws := testWorld()
	res := apply(t, ws, `[LOCATION_CHANGE: npc="Lý Tiêu Dao", destination="Lạc Dương"]`)
	assert.Equal(t, "loc_2", res.World.NPCs[0].LocationID)
	assert.Empty(t, res.Notifications)

	res = apply(t, ws, `[LOCATION_CHANGE: npc="Lý Tiêu Dao", destination="Nowhere"]`)
	assert.Equal(t, command.StatusSkipped, res.Outcomes[0].Status)
	assert.Empty(t, res.Notifications)
	assert.Len(t, res.World.Locations, 2)
}

func TestLocations(t *testing.T) {
	res := apply(t, testWorld(), `
		[LOCATION: name="Tàng Kinh Các", parent="Thanh Vân Sơn", safe=true, connections="Thanh Vân Sơn"]
		[LOCATION: name="Tàng Kinh Các"]
		[LOCATION_UPDATE: name="Tàng Kinh Các", description="Rows of jade slips."]
		[LOCATION_CONNECTION: from="Lạc Dương", to="Tàng Kinh Các", bidirectional=false]`)
	got := res.World
	require.Len(t, got.Locations, 3)
	lib := got.Locations[2]
	assert.Equal(t, "loc_1", lib.ParentID)
	assert.True(t, lib.SafeZone)
	assert.Equal(t, "Rows of jade slips.", lib.Description)
	assert.Contains(t, got.Locations[1].Connections, lib.ID)
	assert.NotContains(t, lib.Connections, "loc_2")
	assert.Empty(t, got.Integrity())
}

func TestNPCCreate_Dedup(t *testing.T) {
	ws := testWorld()
	res := apply(t, ws, `[NPC: name="Lâm Kinh Vũ", realm="Kim Đan"][NPC: name="Lâm Kinh  Vũ"][NPC: name="Lý Tiêu Dao"]`)
	assert.Len(t, res.World.NPCs, 3)
	assert.Equal(t, 1, res.Count(command.StatusApplied))
	assert.Equal(t, 2, res.Count(command.StatusSkipped))
	assert.Equal(t, []string{"You meet Lâm Kinh Vũ."}, res.Notifications)
}

func TestNPCCreate_DeadNameCanReturn(t *testing.T) {
	ws := testWorld()
	ws.NPCs[0].Status = world.NPCStatusDead
	res := apply(t, ws, `[NPC: name="Lý Tiêu Dao"]`)
	assert.Len(t, res.World.NPCs, 3)
}

func TestNPCUpdate_Partial(t *testing.T) {
	ws := testWorld()
	ws.NPCs[0].Mood = "calm"
	ws.NPCs[0].Description = "A wandering swordsman."
	res := apply(t, ws, `[NPC_UPDATE: name="ly tieu dao", mood=angry, affinity=+=15, plan="train|rest"]`)
	n := res.World.NPCs[0]
	assert.Equal(t, "angry", n.Mood)
	assert.Equal(t, "A wandering swordsman.", n.Description)
	assert.Equal(t, 15, n.Affinity)
	assert.Equal(t, []string{"train", "rest"}, n.CurrentPlan)
}

func TestNPCUpdate_FactionMove(t *testing.T) {
	ws := testWorld()
	ws.Factions = append(ws.Factions, world.Faction{ID: "faction_2", Name: "Hợp Hoan Tông"})
	res := apply(t, ws, `[NPC_UPDATE: name="Lý Tiêu Dao", faction="Hợp Hoan Tông"]`)
	got := res.World
	assert.Equal(t, "faction_2", got.NPCs[0].FactionID)
	assert.Empty(t, got.Factions[0].MemberIDs)
	assert.Equal(t, []string{"npc_1"}, got.Factions[1].MemberIDs)
	assert.Empty(t, got.Integrity())
}

func TestNPCRemove_ClearsReferences(t *testing.T) {
	ws := testWorld()
	ws.NPCs[1].Relationships = map[string]world.Relationship{"npc_1": {Type: "rival", Affinity: -20}}
	ws.Quests = []world.Quest{{ID: "quest_1", Title: "Find the sword", GiverID: "npc_1", Status: world.QuestActive}}

	res := apply(t, ws, `[NPC_REMOVE: name="Lý Tiêu Dao", reason="left to seclusion"]`)
	got := res.World
	require.Len(t, got.NPCs, 1)
	assert.Empty(t, got.NPCs[0].Relationships)
	assert.Empty(t, got.Factions[0].MemberIDs)
	assert.Empty(t, got.Quests[0].GiverID)
	assert.Empty(t, got.Integrity())
	assert.Equal(t, []string{"Lý Tiêu Dao has left the story (left to seclusion)."}, res.Notifications)
}

func TestNPCRelationship(t *testing.T) {
	res := apply(t, testWorld(), `
		[NPC_RELATIONSHIP: npc="Lý Tiêu Dao", target=player, type=Master, affinity=60]
		[NPC_RELATIONSHIP: npc="Lý Tiêu Dao", target="Triệu Linh Nhi", type=lover, affinity=+=30]
		[NPC_RELATIONSHIP: npc="Lý Tiêu Dao", target="Nobody"]`)
	n := res.World.NPCs[0]
	assert.Equal(t, "master", n.Relationship)
	assert.Equal(t, 60, n.Affinity)
	assert.Equal(t, world.Relationship{Type: "lover", Affinity: 30}, n.Relationships["npc_2"])
	assert.Equal(t, command.StatusSkipped, res.Outcomes[2].Status)
}

func TestNPCNeedAndMemory(t *testing.T) {
	m := New(nil, nil, WithActivityCap(2))
	d := command.NewDispatcher(NewRegistry(m), nil)
	res := d.ApplyText(testWorld(), `
		[NPC_NEED: npc="Lý Tiêu Dao", need=Hunger, value=120]
		[NPC_MEMORY: npc="Lý Tiêu Dao", entry="one"]
		[NPC_MEMORY: npc="Lý Tiêu Dao", entry="two"]
		[NPC_MEMORY: npc="Lý Tiêu Dao", entry="three"]`)
	n := res.World.NPCs[0]
	assert.Equal(t, 100, n.Needs["hunger"])
	assert.Equal(t, []string{"two", "three"}, n.ActivityLog)
	assert.Empty(t, res.Notifications)
}

func TestFactions(t *testing.T) {
	res := apply(t, testWorld(), `
		[FACTION: name="Hợp Hoan Tông", alignment=evil, reputation=-150]
		[FACTION: name="Hop Hoan Tong"]
		[FACTION_UPDATE: name="Hợp Hoan Tông", reputation=+=30]
		[FACTION_MEMBER: faction="Hợp Hoan Tông", npc="Triệu Linh Nhi"]
		[FACTION_MEMBER: faction="Thanh Vân Môn", npc="Lý Tiêu Dao", action=leave]`)
	got := res.World
	require.Len(t, got.Factions, 2)
	assert.Equal(t, -70, got.Factions[1].Reputation)
	assert.Equal(t, []string{"npc_2"}, got.Factions[1].MemberIDs)
	assert.Equal(t, got.Factions[1].ID, got.NPCs[1].FactionID)
	assert.Empty(t, got.NPCs[0].FactionID)
	assert.Empty(t, got.Factions[0].MemberIDs)
	assert.Empty(t, got.Integrity())
}

func TestLoreAndEvents(t *testing.T) {
	res := apply(t, testWorld(), `
		[LORE: title="Cửu Thiên Huyền Nữ", content="An ancient goddess."]
		[LORE: title="Cửu Thiên Huyền Nữ", content="Again."]
		[LORE_UPDATE: title="Cửu Thiên Huyền Nữ", category=legend]
		[EVENT: title="Tông Môn Đại Bỉ", location="Thanh Vân Sơn"]
		[EVENT: title="Tông Môn Đại Bỉ"]
		[EVENT_UPDATE: title="Tông Môn Đại Bỉ", status=ended]
		[EVENT: title="Tông Môn Đại Bỉ"]`)
	got := res.World
	require.Len(t, got.Lore, 1)
	assert.Equal(t, "An ancient goddess.", got.Lore[0].Content)
	assert.Equal(t, "legend", got.Lore[0].Category)
	require.Len(t, got.Events, 2, "an ended event may recur")
	assert.Equal(t, world.EventEnded, got.Events[0].Status)
	assert.Equal(t, "loc_1", got.Events[0].LocationID)
	assert.Equal(t, world.EventUpcoming, got.Events[1].Status)
}

func TestQuests(t *testing.T) {
	res := apply(t, testWorld(), `
		[QUEST: title="Tìm Kiếm Thần Binh", giver="Lý Tiêu Dao", objectives="Reach Lạc Dương|Find the smith"]
		[QUEST_OBJECTIVE_COMPLETE: title="Tìm Kiếm Thần Binh", objective="reach lac duong"]
		[QUEST_OBJECTIVE_COMPLETE: title="Tìm Kiếm Thần Binh", objective="Find the smith"]
		[QUEST_UPDATE: title="Tìm Kiếm Thần Binh", status=completed]`)
	require.Equal(t, 4, res.Count(command.StatusApplied), res.Outcomes)
	q := res.World.Quests[0]
	assert.Equal(t, "npc_1", q.GiverID)
	assert.Equal(t, world.QuestCompleted, q.Status)
	for _, o := range q.Objectives {
		assert.True(t, o.Done)
	}
	assert.Contains(t, res.Notifications, "All objectives of Tìm Kiếm Thần Binh are complete.")
	assert.Contains(t, res.Notifications, "Quest completed: Tìm Kiếm Thần Binh.")
}

func TestCombat(t *testing.T) {
	res := apply(t, testWorld(), `
		[HOSTILE: name="Huyết Lang", hp=12, ac=13]
		[HOSTILE: name="Huyết Lang", hp=12]
		[COMBAT_START: opponents="Huyết Lang"]
		[COMBAT_DAMAGE: target=player, amount=500]`)
	require.Equal(t, 4, res.Count(command.StatusApplied), res.Outcomes)
	got := res.World
	assert.Len(t, got.Hostiles, 2, "hostiles are not deduplicated")
	require.NotNil(t, got.Combat)
	assert.Equal(t, []string{got.Hostiles[0].ID}, got.Combat.OpponentIDs)
	assert.Equal(t, world.HealthFloor, got.Player.Stats.SinhLuc)

	res = apply(t, got, `[COMBAT_DAMAGE: target="Huyết Lang", amount=20]`)
	got = res.World
	assert.True(t, got.Hostiles[0].Defeated())
	assert.Equal(t, 0, got.Hostiles[0].HP)
	assert.Nil(t, got.Combat, "last opponent down ends combat")
	assert.Contains(t, res.Notifications, "Combat is over.")
}

func TestCombatEnd_Victory(t *testing.T) {
	ws := testWorld()
	ws.Hostiles = []world.Creature{
		{ID: "hostile_1", Name: "Huyết Lang", HP: 5, MaxHP: 12, AC: 10},
		{ID: "hostile_2", Name: "Bandit", HP: 8, MaxHP: 8, AC: 10},
	}
	ws.Combat = &world.Combat{OpponentIDs: []string{"hostile_1"}, Round: 2}
	res := apply(t, ws, `[COMBAT_END: outcome=victory]`)
	assert.Nil(t, res.World.Combat)
	require.Len(t, res.World.Hostiles, 1)
	assert.Equal(t, "hostile_2", res.World.Hostiles[0].ID)
}

func TestCombat_Disabled(t *testing.T) {
	ws := testWorld()
	ws.Config.Combat.Enabled = false
	ws.Hostiles = []world.Creature{{ID: "hostile_1", Name: "Bandit", HP: 8, MaxHP: 8, AC: 10}}
	res := apply(t, ws, `[COMBAT_START: opponents=Bandit]`)
	assert.Equal(t, command.StatusSkipped, res.Outcomes[0].Status)
	assert.Nil(t, res.World.Combat)
}

func TestAuction(t *testing.T) {
	res := apply(t, testWorld(), `
		[AUCTION_START: item="Tử Kim Hồ Lô", startingBid=50]
		[AUCTION_START: item="Other", startingBid=5]
		[AUCTION_BID: bidder="Lý Tiêu Dao", amount=60]
		[AUCTION_BID: bidder=player, amount=60]
		[AUCTION_BID: bidder=player, amount=900]
		[AUCTION_BID: bidder=player, amount=80]
		[AUCTION_END]`)
	statuses := make([]command.Status, len(res.Outcomes))
	for i, o := range res.Outcomes {
		statuses[i] = o.Status
	}
	assert.Equal(t, []command.Status{
		command.StatusApplied, command.StatusSkipped, command.StatusApplied,
		command.StatusSkipped, command.StatusSkipped, command.StatusApplied, command.StatusApplied,
	}, statuses)

	got := res.World
	assert.Nil(t, got.Auction)
	assert.Equal(t, 120, got.Player.Stats.LinhThach)
	require.Len(t, got.Inventory, 1)
	assert.Equal(t, "Tử Kim Hồ Lô", got.Inventory[0].Name)
}

func TestAuction_Disabled(t *testing.T) {
	ws := testWorld()
	ws.Config.Economy.AuctionsEnabled = false
	res := apply(t, ws, `[AUCTION_START: item=Sword, startingBid=10]`)
	assert.Equal(t, command.StatusSkipped, res.Outcomes[0].Status)
}

func TestTimeAdvance(t *testing.T) {
	ws := testWorld()
	ws.Calendar = world.Calendar{Year: 1, Month: 12, Day: 30, Hour: 20}
	res := apply(t, ws, `[TIME_ADVANCE: hours=5]`)
	assert.Equal(t, world.Calendar{Year: 2, Month: 1, Day: 1, Hour: 1}, res.World.Calendar)
	assert.Contains(t, res.Notifications, "A new year begins: year 2.")

	res = apply(t, ws, `[TIME_ADVANCE]`)
	assert.Equal(t, 21, res.World.Calendar.Hour)
}

func TestSweepEffects(t *testing.T) {
	ws := testWorld()
	ws.Player.StatusEffects = []world.StatusEffect{{Name: "Poisoned", TurnsRemaining: 1}, {Name: "Blessed", TurnsRemaining: 3}}
	ws.NPCs[0].StatusEffects = []world.StatusEffect{{Name: "Stunned", TurnsRemaining: 1}}
	ws.Combat = &world.Combat{Round: 1}
	ws.Auction = &world.Auction{ItemName: "Hồ Lô", RoundsLeft: 1}

	got, notes, err := SweepEffects(ws)
	require.NoError(t, err)
	require.Len(t, got.Player.StatusEffects, 1)
	assert.Equal(t, 2, got.Player.StatusEffects[0].TurnsRemaining)
	assert.Empty(t, got.NPCs[0].StatusEffects)
	assert.Equal(t, 2, got.Combat.Round)
	assert.Equal(t, 0, got.Auction.RoundsLeft)
	assert.Equal(t, []string{"Poisoned has worn off.", "Final call for Hồ Lô."}, notes)

	assert.Len(t, ws.Player.StatusEffects, 2, "input untouched")
}

func TestDispatch_BatchIsolation(t *testing.T) {
	ws := testWorld()
	res := apply(t, ws, `The wind howls. [ITEM_ACQUIRED: name=Pill] [DANCE: style=wild] [NPC_UPDATE: mood=sad] [ITEM_ACQUIRED: name=Pill]`)
	assert.Equal(t, 2, res.Count(command.StatusApplied))
	assert.Equal(t, 2, res.Count(command.StatusSkipped))
	require.Len(t, res.World.Inventory, 1)
	assert.Equal(t, 2, res.World.Inventory[0].Quantity)
	assert.Empty(t, ws.Inventory)
}
