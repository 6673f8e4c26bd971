package plugin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dmengine/internal/plugin"
)

func nopAction(context.Context, plugin.ActionCall) error { return nil }

func TestActions_Register(t *testing.T) {
	a := plugin.NewActions()
	require.NoError(t, a.Register("weather", "plugin:weather:storm", nopAction))
	require.NoError(t, a.Register("weather", "plugin:weather:fog", nopAction))

	assert.ErrorIs(t, a.Register("weather", "move_token", nopAction), plugin.ErrNotNamespaced)
	assert.ErrorIs(t, a.Register("weather", "plugin:", nopAction), plugin.ErrNotNamespaced)
	assert.Error(t, a.Register("weather", "plugin:weather:rain", nil))
	assert.Error(t, a.Register("other", "plugin:weather:storm", nopAction))

	assert.Equal(t, []string{"plugin:weather:fog", "plugin:weather:storm"}, a.Kinds("weather"))
	_, ok := a.Lookup("plugin:weather:storm")
	assert.True(t, ok)

	assert.Equal(t, 2, a.RemovePlugin("weather"))
	_, ok = a.Lookup("plugin:weather:storm")
	assert.False(t, ok)
	assert.Empty(t, a.Kinds("weather"))
}

func TestUI_ContributionsSortedAndReplaced(t *testing.T) {
	u := plugin.NewUI()
	u.Add(plugin.Contribution{PluginID: "b", Slot: "sidebar", ID: "x", Label: "B"})
	u.Add(plugin.Contribution{PluginID: "a", Slot: "sidebar", ID: "y", Label: "A"})
	u.Add(plugin.Contribution{PluginID: "b", Slot: "sidebar", ID: "x", Label: "B2"})
	u.Add(plugin.Contribution{PluginID: "a", Slot: "toolbar", ID: "z"})

	got := u.Slot("sidebar")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].PluginID)
	assert.Equal(t, "B2", got[1].Label)

	assert.Equal(t, 2, u.RemovePlugin("a"))
	assert.Len(t, u.Slot("sidebar"), 1)
	assert.Empty(t, u.Slot("toolbar"))
}
