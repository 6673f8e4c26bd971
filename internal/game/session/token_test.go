package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dmengine/internal/game/session"
)

func TestToken_SetHP_RaisesMax(t *testing.T) {
	tok := &session.Token{CurrentHP: 10, MaxHP: 20}
	tok.SetHP(25)
	assert.Equal(t, 25, tok.CurrentHP)
	assert.Equal(t, 25, tok.MaxHP)

	tok.SetHP(5)
	assert.Equal(t, 5, tok.CurrentHP)
	assert.Equal(t, 25, tok.MaxHP)

	tok.SetHP(-3)
	assert.Equal(t, 0, tok.CurrentHP)
}

func TestToken_Bloodied(t *testing.T) {
	assert.True(t, (&session.Token{CurrentHP: 10, MaxHP: 20}).Bloodied())
	assert.False(t, (&session.Token{CurrentHP: 11, MaxHP: 20}).Bloodied())
	assert.False(t, (&session.Token{}).Bloodied())
}

func TestToken_Conditions(t *testing.T) {
	tok := &session.Token{}
	tok.AddCondition("prone")
	tok.AddCondition("Prone")
	assert.Equal(t, []string{"prone"}, tok.Conditions)
	tok.RemoveCondition("PRONE")
	assert.Empty(t, tok.Conditions)
}

func TestMap_FindTokenExactFirst(t *testing.T) {
	m := &session.Map{Tokens: []*session.Token{{ID: "1", Label: "Goblin King"}, {ID: "2", Label: "Goblin"}}}
	tok, ok := m.FindToken("goblin")
	require.True(t, ok)
	assert.Equal(t, "2", tok.ID)

	tok, ok = m.FindToken("gob")
	require.True(t, ok)
	assert.Equal(t, "1", tok.ID)
}

func TestMap_RevealHide(t *testing.T) {
	m := &session.Map{}
	assert.Equal(t, 2, m.Reveal([]session.Cell{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 1}}))
	assert.True(t, m.IsRevealed(session.Cell{X: 2, Y: 1}))
	assert.Equal(t, 1, m.Hide([]session.Cell{{X: 2, Y: 1}, {X: 9, Y: 9}}))
	assert.False(t, m.IsRevealed(session.Cell{X: 2, Y: 1}))
}

// TestProperty_Token_HPNeverNegative verifies damage and SetHP never store a
// negative value and never leave CurrentHP above MaxHP.
func TestProperty_Token_HPNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		max := rapid.IntRange(1, 300).Draw(rt, "max")
		tok := &session.Token{CurrentHP: max, MaxHP: max}
		for i := 0; i < 5; i++ {
			if rapid.Bool().Draw(rt, "set") {
				tok.SetHP(rapid.IntRange(-50, 400).Draw(rt, "hp"))
			} else {
				tok.Damage(rapid.IntRange(-10, 400).Draw(rt, "dmg"))
			}
			assert.GreaterOrEqual(rt, tok.CurrentHP, 0)
			assert.LessOrEqual(rt, tok.CurrentHP, tok.MaxHP)
		}
	})
}
