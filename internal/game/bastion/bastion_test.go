package bastion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dmengine/internal/game/bastion"
)

type seqRoller struct{ faces []int }

func (r *seqRoller) D(sides int) int {
	if len(r.faces) == 0 {
		return 1
	}
	f := r.faces[0]
	r.faces = r.faces[1:]
	return f
}

func newKeep() *bastion.Stronghold {
	return &bastion.Stronghold{
		ID:                "b1",
		Name:              "Ravenhold Keep",
		OwnerID:           "char-7",
		Linked:            true,
		Treasury:          500,
		TurnFrequencyDays: 7,
		BasicFacilities:   []*bastion.Facility{{ID: "f-bed", Type: "Bedroom", Space: "cramped"}},
		SpecialFacilities: []*bastion.Facility{{ID: "f-smith", Type: "Smithy", Space: "roomy"}, {ID: "f-lib", Type: "Library", Name: "Old Stacks", Space: "roomy"}},
	}
}

func TestFind_NameSubstringOrOwner(t *testing.T) {
	all := []*bastion.Stronghold{newKeep(), {Name: "Tower", OwnerID: "char-9"}}

	s, ok := bastion.Find(all, "raven")
	require.True(t, ok)
	assert.Equal(t, "b1", s.ID)

	s, ok = bastion.Find(all, "char-9")
	require.True(t, ok)
	assert.Equal(t, "Tower", s.Name)

	_, ok = bastion.Find(all, "CHAR-9X")
	assert.False(t, ok)
}

func TestAdvanceDays_DoesNotTakeTurn(t *testing.T) {
	s := newKeep()
	assert.False(t, s.AdvanceDays(1))
	assert.Equal(t, 1, s.CurrentDay)
	assert.Empty(t, s.Turns)

	assert.True(t, s.AdvanceDays(6))
	assert.Equal(t, 7, s.CurrentDay)
	assert.Empty(t, s.Turns)
}

func TestIssueOrder(t *testing.T) {
	s := newKeep()
	f, err := s.IssueOrder("smithy", "craft", "longsword")
	require.NoError(t, err)
	assert.Equal(t, "craft", f.Order.Type)

	_, err = s.IssueOrder("Smithy", "trade", "")
	assert.ErrorContains(t, err, "already executing a craft order")

	_, err = s.IssueOrder("Bedroom", "research", "")
	assert.ErrorContains(t, err, "basic facility")

	_, err = s.IssueOrder("Stables", "trade", "")
	assert.ErrorContains(t, err, "Facility not found: Stables")

	f, err = s.IssueOrder("old stacks", "research", "")
	require.NoError(t, err)
	assert.Equal(t, "f-lib", f.ID)
}

func TestDefenders(t *testing.T) {
	s := newKeep()
	d, err := s.AddDefender("Bren", "Smithy")
	require.NoError(t, err)
	assert.Equal(t, "f-smith", d.FacilityID)

	_, err = s.AddDefender("Nobody", "Moat")
	assert.Error(t, err)

	removed, err := s.RemoveDefender("bren")
	require.NoError(t, err)
	assert.Equal(t, d.ID, removed.ID)
	assert.Empty(t, s.Defenders)

	_, err = s.RemoveDefender("Bren")
	assert.ErrorContains(t, err, "Defender not found")
}

func TestAdjustTreasury_NeverNegative(t *testing.T) {
	s := newKeep()
	_, err := s.AdjustTreasury(-600)
	require.ErrorIs(t, err, bastion.ErrInsufficientFunds)
	assert.Equal(t, 500, s.Treasury)

	total, err := s.AdjustTreasury(-500)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestStartConstruction_ChargesTreasury(t *testing.T) {
	s := newKeep()
	p, err := s.StartConstruction("Garden", "roomy", 250, 14)
	require.NoError(t, err)
	assert.Equal(t, 250, s.Treasury)
	assert.Equal(t, 14, p.DaysRequired)

	_, err = s.StartConstruction("Vault", "vast", 1000, 30)
	assert.ErrorIs(t, err, bastion.ErrInsufficientFunds)
	assert.Len(t, s.Construction, 1)
}

func TestTakeTurn(t *testing.T) {
	s := newKeep()
	_, err := s.StartConstruction("Garden", "roomy", 100, 7)
	require.NoError(t, err)
	_, err = s.IssueOrder("Smithy", "craft", "")
	require.NoError(t, err)
	s.AdvanceDays(7)

	rec := s.TakeTurn(&seqRoller{faces: []int{12}})
	assert.Equal(t, 7, rec.Day)
	assert.Equal(t, "All Is Well", rec.EventOutcome)
	assert.Equal(t, []string{"Smithy: craft"}, rec.Orders)
	assert.Equal(t, []string{"Garden"}, rec.Completed)
	assert.Empty(t, s.Construction)
	assert.Nil(t, s.SpecialFacilities[0].Order)
	assert.Len(t, s.SpecialFacilities, 3)
	assert.Equal(t, 7, s.LastTurnDay)
	assert.False(t, s.TurnDue())
}

func TestTakeTurn_AttackCostsDefenders(t *testing.T) {
	s := newKeep()
	for _, n := range []string{"A", "B", "C"} {
		_, err := s.AddDefender(n, "")
		require.NoError(t, err)
	}
	rec := s.TakeTurn(&seqRoller{faces: []int{53, 1, 4, 1, 6, 2, 3}})
	assert.Equal(t, "Attack", rec.EventOutcome)
	assert.Len(t, rec.Lost, 2)
	assert.Len(t, s.Defenders, 1)
}

func TestEventFor_Boundaries(t *testing.T) {
	assert.Equal(t, "All Is Well", bastion.EventFor(1))
	assert.Equal(t, "All Is Well", bastion.EventFor(50))
	assert.Equal(t, "Attack", bastion.EventFor(51))
	assert.Equal(t, "Treasure", bastion.EventFor(100))
}

// TestProperty_TurnLogAppendOnly verifies each turn adds exactly one record
// and never rewrites earlier ones.
func TestProperty_TurnLogAppendOnly(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newKeep()
		n := rapid.IntRange(1, 8).Draw(rt, "turns")
		var seen []*bastion.TurnRecord
		for i := 0; i < n; i++ {
			s.AdvanceDays(rapid.IntRange(1, 10).Draw(rt, "days"))
			roll := rapid.IntRange(1, 100).Draw(rt, "roll")
			rec := s.TakeTurn(&seqRoller{faces: []int{roll}})
			seen = append(seen, rec)
			require.Len(rt, s.Turns, i+1)
			for j, r := range seen {
				assert.Same(rt, r, s.Turns[j])
			}
		}
	})
}
