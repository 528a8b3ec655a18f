package world

import (
	"sort"
	"strings"
)

// HealthFloor is the lowest health ordinary stat changes can leave the
// player at.
const HealthFloor = 1

// Stats are the player's numeric attributes. JSON names match the keys the
// narrator uses in STATS_UPDATE tags.
type Stats struct {
	SinhLuc         int `json:"sinhLuc"`         // health
	SinhLucToiDa    int `json:"sinhLucToiDa"`    // max health
	LinhLuc         int `json:"linhLuc"`         // spiritual energy
	LinhLucToiDa    int `json:"linhLucToiDa"`    // max spiritual energy
	KinhNghiem      int `json:"kinhNghiem"`      // experience
	KinhNghiemToiDa int `json:"kinhNghiemToiDa"` // experience to next realm
	SucTanCong      int `json:"sucTanCong"`      // attack
	PhongThu        int `json:"phongThu"`        // defense
	LinhThach       int `json:"linhThach"`       // currency
}

type Player struct {
	Name          string            `json:"name"`
	Realm         string            `json:"realm,omitempty"` // canhGioi
	LocationID    string            `json:"location_id,omitempty"`
	Stats         Stats             `json:"stats"`
	Equipment     map[string]string `json:"equipment,omitempty"` // slot -> item id
	StatusEffects []StatusEffect    `json:"status_effects,omitempty"`
}

func NewPlayer(name string) Player {
	return Player{
		Name: name,
		Stats: Stats{
			SinhLuc: 100, SinhLucToiDa: 100,
			LinhLuc: 50, LinhLucToiDa: 50,
			KinhNghiemToiDa: 100,
		},
	}
}

// StatRef points at one stat and carries its valid range. Max is -1 when
// the stat has no upper bound.
type StatRef struct {
	Key   string
	Value *int
	Min   int
	Max   int
}

// Clamp bounds v to the stat's range.
func (r StatRef) Clamp(v int) int {
	if v < r.Min {
		v = r.Min
	}
	if r.Max >= 0 && v > r.Max {
		v = r.Max
	}
	return v
}

// Stat resolves a stat key case-insensitively.
func (p *Player) Stat(key string) (StatRef, bool) {
	s := &p.Stats
	switch strings.ToLower(key) {
	case "sinhluc":
		return StatRef{"sinhLuc", &s.SinhLuc, HealthFloor, s.SinhLucToiDa}, true
	case "sinhluctoida":
		return StatRef{"sinhLucToiDa", &s.SinhLucToiDa, 1, -1}, true
	case "linhluc":
		return StatRef{"linhLuc", &s.LinhLuc, 0, s.LinhLucToiDa}, true
	case "linhluctoida":
		return StatRef{"linhLucToiDa", &s.LinhLucToiDa, 0, -1}, true
	case "kinhnghiem":
		return StatRef{"kinhNghiem", &s.KinhNghiem, 0, -1}, true
	case "kinhnghiemtoida":
		return StatRef{"kinhNghiemToiDa", &s.KinhNghiemToiDa, 1, -1}, true
	case "suctancong":
		return StatRef{"sucTanCong", &s.SucTanCong, 0, -1}, true
	case "phongthu":
		return StatRef{"phongThu", &s.PhongThu, 0, -1}, true
	case "linhthach":
		return StatRef{"linhThach", &s.LinhThach, 0, -1}, true
	}
	return StatRef{}, false
}

// Reclamp re-applies the current/max pairing after a max changes.
func (p *Player) Reclamp() {
	s := &p.Stats
	if s.SinhLuc > s.SinhLucToiDa {
		s.SinhLuc = s.SinhLucToiDa
	}
	if s.LinhLuc > s.LinhLucToiDa {
		s.LinhLuc = s.LinhLucToiDa
	}
}

// EquippedSlot returns the slot an item is equipped in, if any.
func (p Player) EquippedSlot(itemID string) (string, bool) {
	slots := make([]string, 0, len(p.Equipment))
	for slot := range p.Equipment {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		if p.Equipment[slot] == itemID {
			return slot, true
		}
	}
	return "", false
}
