package session

import (
	"strings"

	"github.com/cory-johannsen/dmengine/internal/game/combat"
	"github.com/cory-johannsen/dmengine/internal/game/resolve"
)

// Speeds holds movement speeds in feet.
type Speeds struct {
	Walk  int `json:"walk" yaml:"walk"`
	Fly   int `json:"fly,omitempty" yaml:"fly,omitempty"`
	Swim  int `json:"swim,omitempty" yaml:"swim,omitempty"`
	Climb int `json:"climb,omitempty" yaml:"climb,omitempty"`
}

// Token is a creature or object placed on a map grid.
//
// Invariant: CurrentHP >= 0.
type Token struct {
	ID         string            `json:"id" yaml:"id"`
	EntityID   string            `json:"entityId" yaml:"entity_id"`
	Label      string            `json:"label" yaml:"label"`
	X          int               `json:"gridX" yaml:"x"`
	Y          int               `json:"gridY" yaml:"y"`
	Size       int               `json:"sizeX" yaml:"size"`
	CurrentHP  int               `json:"currentHP" yaml:"current_hp"`
	MaxHP      int               `json:"maxHP" yaml:"max_hp"`
	AC         int               `json:"ac" yaml:"ac"`
	Speeds     Speeds            `json:"speeds" yaml:"speeds"`
	Conditions []string          `json:"conditions" yaml:"conditions"`
	Visible    bool              `json:"visibleToPlayers" yaml:"visible"`
	MonsterRef string            `json:"monsterStatBlockId,omitempty" yaml:"monster_ref,omitempty"`
	EntityType combat.EntityType `json:"entityType" yaml:"entity_type"`
}

// SetHP stores hp, flooring at zero. A value above MaxHP raises MaxHP to
// match.
//
// Postcondition: CurrentHP >= 0 and CurrentHP <= MaxHP.
func (t *Token) SetHP(hp int) {
	if hp < 0 {
		hp = 0
	}
	if hp > t.MaxHP {
		t.MaxHP = hp
	}
	t.CurrentHP = hp
}

// Damage subtracts amount from CurrentHP, flooring at zero, and returns the
// damage actually taken.
func (t *Token) Damage(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := t.CurrentHP
	t.CurrentHP -= amount
	if t.CurrentHP < 0 {
		t.CurrentHP = 0
	}
	return before - t.CurrentHP
}

// Bloodied reports whether the token is at or below half its maximum HP.
func (t *Token) Bloodied() bool {
	return t.MaxHP > 0 && t.CurrentHP*2 <= t.MaxHP
}

// Footprint returns the token's size in cells, never less than 1.
func (t *Token) Footprint() int {
	if t.Size < 1 {
		return 1
	}
	return t.Size
}

// HasCondition reports whether tag is present, ignoring case.
func (t *Token) HasCondition(tag string) bool {
	for _, c := range t.Conditions {
		if strings.EqualFold(c, tag) {
			return true
		}
	}
	return false
}

// AddCondition records tag once.
func (t *Token) AddCondition(tag string) {
	if !t.HasCondition(tag) {
		t.Conditions = append(t.Conditions, tag)
	}
}

// RemoveCondition drops tag, ignoring case.
func (t *Token) RemoveCondition(tag string) {
	kept := t.Conditions[:0]
	for _, c := range t.Conditions {
		if !strings.EqualFold(c, tag) {
			kept = append(kept, c)
		}
	}
	t.Conditions = kept
}

// Cell is a grid coordinate.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Map is a battle map with its tokens and the cells revealed through fog.
type Map struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Width    int      `json:"width" yaml:"width"`
	Height   int      `json:"height" yaml:"height"`
	Tokens   []*Token `json:"tokens" yaml:"tokens"`
	Revealed []Cell   `json:"revealedCells" yaml:"revealed"`
}

// FindToken resolves label to a token, exact match first.
func (m *Map) FindToken(label string) (*Token, bool) {
	return resolve.ByLabel(m.Tokens, func(t *Token) string { return t.Label }, label)
}

// TokenByEntity returns the token bound to entityID.
func (m *Map) TokenByEntity(entityID string) (*Token, bool) {
	for _, t := range m.Tokens {
		if t.EntityID == entityID {
			return t, true
		}
	}
	return nil, false
}

// RemoveToken deletes the token with id and reports whether it existed.
func (m *Map) RemoveToken(id string) bool {
	for i, t := range m.Tokens {
		if t.ID == id {
			m.Tokens = append(m.Tokens[:i], m.Tokens[i+1:]...)
			return true
		}
	}
	return false
}

// IsRevealed reports whether c has been revealed.
func (m *Map) IsRevealed(c Cell) bool {
	for _, r := range m.Revealed {
		if r == c {
			return true
		}
	}
	return false
}

// Reveal adds cells to the revealed set and returns how many were new.
func (m *Map) Reveal(cells []Cell) int {
	added := 0
	for _, c := range cells {
		if !m.IsRevealed(c) {
			m.Revealed = append(m.Revealed, c)
			added++
		}
	}
	return added
}

// Hide removes cells from the revealed set and returns how many were removed.
func (m *Map) Hide(cells []Cell) int {
	drop := make(map[Cell]bool, len(cells))
	for _, c := range cells {
		drop[c] = true
	}
	kept := m.Revealed[:0]
	for _, r := range m.Revealed {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	removed := len(m.Revealed) - len(kept)
	m.Revealed = kept
	return removed
}
