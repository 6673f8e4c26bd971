package plugin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dmengine/internal/plugin"
)

func TestCapabilities_GlobGrants(t *testing.T) {
	c := plugin.NewCapabilities()
	require.NoError(t, c.SetGrants("weather", []string{"events.*", "storage.read"}))

	assert.True(t, c.Check("weather", plugin.CapEventsSubscribe))
	assert.True(t, c.Check("weather", plugin.CapEventsEmit))
	assert.True(t, c.Check("weather", plugin.CapStorageRead))
	assert.False(t, c.Check("weather", plugin.CapStorageWrite))
	assert.False(t, c.Check("unknown", plugin.CapStorageRead))
	assert.False(t, c.Check("weather", ""))
}

func TestCapabilities_SuperWildcard(t *testing.T) {
	c := plugin.NewCapabilities()
	require.NoError(t, c.SetGrants("admin", []string{"**"}))
	assert.True(t, c.Check("admin", plugin.CapActionsRegister))
}

func TestCapabilities_InvalidPatternIsAtomic(t *testing.T) {
	c := plugin.NewCapabilities()
	require.NoError(t, c.SetGrants("p", []string{"ui.notify"}))
	assert.Error(t, c.SetGrants("p", []string{"sounds.play", "[unclosed"}))
	assert.Equal(t, []string{"ui.notify"}, c.Grants("p"))
	assert.Error(t, c.SetGrants("", nil))

	c.RemoveGrants("p")
	assert.Nil(t, c.Grants("p"))
}
