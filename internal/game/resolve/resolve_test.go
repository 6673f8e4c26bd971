package resolve_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dmengine/internal/game/resolve"
)

type named struct {
	name  string
	owner string
	char  string
}

func label(n named) string { return n.name }
func owner(n named) string { return n.owner }
func char(n named) string  { return n.char }

func TestByLabel_ExactBeatsPrefix(t *testing.T) {
	cands := []named{{name: "Goblin King"}, {name: "Goblin"}}
	got, ok := resolve.ByLabel(cands, label, "Goblin")
	require.True(t, ok)
	assert.Equal(t, "Goblin", got.name)
}

func TestByLabel_CaseInsensitive(t *testing.T) {
	cands := []named{{name: "Ancient Red Dragon"}}
	got, ok := resolve.ByLabel(cands, label, "ancient red dragon")
	require.True(t, ok)
	assert.Equal(t, "Ancient Red Dragon", got.name)
}

func TestByLabel_PrefixFallbackReturnsFirst(t *testing.T) {
	cands := []named{{name: "Orc Archer"}, {name: "Orc Brute"}}
	got, ok := resolve.ByLabel(cands, label, "orc")
	require.True(t, ok)
	assert.Equal(t, "Orc Archer", got.name)
}

func TestByLabel_NoSubstringMatch(t *testing.T) {
	cands := []named{{name: "Big Goblin"}}
	_, ok := resolve.ByLabel(cands, label, "Goblin")
	assert.False(t, ok)
}

func TestByLabel_BlankQuery(t *testing.T) {
	_, ok := resolve.ByLabel([]named{{name: "A"}}, label, "  ")
	assert.False(t, ok)
}

func TestByName_ContainsFallback(t *testing.T) {
	cands := []named{{name: "Tavern Cellar"}, {name: "Dragon Lair"}}
	got, ok := resolve.ByName(cands, label, "lair")
	require.True(t, ok)
	assert.Equal(t, "Dragon Lair", got.name)

	got, ok = resolve.ByName(cands, label, "tavern cellar")
	require.True(t, ok)
	assert.Equal(t, "Tavern Cellar", got.name)
}

func TestByNameOrOwner(t *testing.T) {
	cands := []named{
		{name: "Ironhold Keep", owner: "char-1"},
		{name: "Willow Manor", owner: "char-2"},
	}
	got, ok := resolve.ByNameOrOwner(cands, label, owner, "willow")
	require.True(t, ok)
	assert.Equal(t, "char-2", got.owner)

	got, ok = resolve.ByNameOrOwner(cands, label, owner, "char-1")
	require.True(t, ok)
	assert.Equal(t, "Ironhold Keep", got.name)

	_, ok = resolve.ByNameOrOwner(cands, label, owner, "CHAR-1x")
	assert.False(t, ok)
}

func TestByEitherName_PrefersDisplayName(t *testing.T) {
	cands := []named{
		{name: "Sam", char: "Thorin"},
		{name: "Thorin", char: "Gimli"},
	}
	got, ok := resolve.ByEitherName(cands, label, char, "thorin")
	require.True(t, ok)
	assert.Equal(t, "Gimli", got.char, "display-name match must win")

	got, ok = resolve.ByEitherName(cands, label, char, "Gimli")
	require.True(t, ok)
	assert.Equal(t, "Thorin", got.name)
}

// TestByLabel_Property_ExactAlwaysWins verifies that a present exact label is
// returned regardless of how many prefix-matching labels precede it.
func TestByLabel_Property_ExactAlwaysWins(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.StringMatching(`[A-Za-z]{1,8}`).Draw(rt, "base")
		n := rapid.IntRange(0, 5).Draw(rt, "decoys")
		var cands []named
		for i := 0; i < n; i++ {
			cands = append(cands, named{name: base + strings.Repeat("x", i+1)})
		}
		cands = append(cands, named{name: base})
		got, ok := resolve.ByLabel(cands, label, strings.ToUpper(base))
		require.True(rt, ok)
		assert.Equal(rt, base, got.name)
	})
}
