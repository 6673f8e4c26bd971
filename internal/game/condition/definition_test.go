package condition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dmengine/internal/game/condition"
)

func TestRegistry_Get_Found(t *testing.T) {
	reg := condition.NewRegistry()
	def := &condition.Def{ID: "prone", Name: "Prone"}
	reg.Register(def)
	got, ok := reg.Get("prone")
	require.True(t, ok)
	assert.Equal(t, def, got)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	reg := condition.NewRegistry()
	_, ok := reg.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_Lookup_ByNameAndID(t *testing.T) {
	reg := condition.NewRegistry()
	reg.Register(&condition.Def{ID: "heat_exhaustion", Name: "Heat Exhaustion"})

	d, ok := reg.Lookup("  Heat Exhaustion ")
	require.True(t, ok)
	assert.Equal(t, "heat_exhaustion", d.ID)

	d, ok = reg.Lookup("HEAT_EXHAUSTION")
	require.True(t, ok)
	assert.Equal(t, "heat_exhaustion", d.ID)
}

func TestDefaultRegistry_ContainsCoreConditions(t *testing.T) {
	reg := condition.DefaultRegistry()
	for _, id := range []string{"blinded", "frightened", "prone", "stunned", "unconscious"} {
		_, ok := reg.Get(id)
		assert.True(t, ok, "missing %s", id)
	}
	ex, ok := reg.Get("exhaustion")
	require.True(t, ok)
	assert.True(t, ex.HasValue)
	assert.Equal(t, 6, ex.MaxValue)
}

func TestRegistry_All_SortedByID(t *testing.T) {
	all := condition.DefaultRegistry().All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestLoadDirectory_LayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "homebrew.yaml"), []byte(`
- id: hexed
  name: Hexed
  description: Marked by a hex.
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	reg, err := condition.LoadDirectory(dir)
	require.NoError(t, err)
	_, ok := reg.Get("hexed")
	assert.True(t, ok)
	_, ok = reg.Get("prone")
	assert.True(t, ok)
}

func TestLoadDirectory_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`
- id: hexed
  colour: purple
`), 0o644))
	_, err := condition.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := condition.LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
