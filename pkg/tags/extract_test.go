package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	text := `You open the chest. [ITEM_ACQUIRED: name="Jade Slip", quantity=2]
The elder nods. [npc_update: name="Elder Mo", plan=["rest", "teach [basics]"]] Then silence.
[TIME_ADVANCE] A bracketed aside [like this] stays.`

	got := Extract(text)
	require.Len(t, got, 3)

	assert.Equal(t, "ITEM_ACQUIRED", got[0].Name)
	assert.Equal(t, ` name="Jade Slip", quantity=2`, got[0].Body)
	assert.Equal(t, "npc_update", got[1].Name)
	assert.Equal(t, ` name="Elder Mo", plan=["rest", "teach [basics]"]`, got[1].Body)
	assert.Equal(t, "TIME_ADVANCE", got[2].Name)
	assert.Empty(t, got[2].Body)
	assert.Equal(t, "[TIME_ADVANCE]", text[got[2].Start:got[2].End])
}

func TestExtract_ProseBrackets(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"no tags", "Plain prose, nothing else.", 0},
		{"number in brackets", "He lost [3] teeth.", 0},
		{"unterminated", `[NPC: name="Mo"`, 0},
		{"quoted bracket", `[LORE: title="A]B", content="x"]`, 1},
		{"adjacent", `[A: x=1][B: y=2]`, 2},
		{"bracket without colon", "[Mo smiles]", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Extract(tt.text), tt.want)
		})
	}
}

func TestStrip(t *testing.T) {
	text := "The wind howls. [STATS_UPDATE: sinhLuc=-=5]  You shiver.\n\n\n\n[TIME_ADVANCE: hours=2]Dawn breaks."
	assert.Equal(t, "The wind howls. You shiver.\n\nDawn breaks.", Strip(text))
	assert.Equal(t, "nothing here", Strip("  nothing here "))
}

func TestFormat(t *testing.T) {
	got := Format("LOCATION_CHANGE", Params{{Key: "npc", Value: "npc_3"}, {Key: "destination", Value: "loc_2"}})
	assert.Equal(t, `[LOCATION_CHANGE: npc="npc_3", destination="loc_2"]`, got)

	extracted := Extract(got)
	require.Len(t, extracted, 1)
	params, _ := ParseParams(extracted[0].Body)
	assert.Equal(t, map[string]string{"npc": "npc_3", "destination": "loc_2"}, params.Map())

	assert.Equal(t, "[COMBAT_END]", Format("COMBAT_END", nil))
}
