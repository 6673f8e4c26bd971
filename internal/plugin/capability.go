package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gobwas/glob"
)

// Capability names checked by the plugin API. Grants are glob patterns
// with '.' as the segment separator: "storage.*" grants storage.read and
// storage.write; "**" grants everything.
const (
	CapEventsSubscribe  = "events.subscribe"
	CapEventsEmit       = "events.emit"
	CapCommandsRegister = "commands.register"
	CapStorageRead      = "storage.read"
	CapStorageWrite     = "storage.write"
	CapUINotify         = "ui.notify"
	CapUIContribute     = "ui.contribute"
	CapSoundsPlay       = "sounds.play"
	CapActionsRegister  = "actions.register"
)

// ErrPermissionDenied is returned by API methods the plugin was not granted.
var ErrPermissionDenied = errors.New("permission denied")

type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

// Capabilities records the grants of every loaded plugin.
// All methods are safe for concurrent use.
type Capabilities struct {
	mu     sync.RWMutex
	grants map[string][]compiledGrant
}

// NewCapabilities returns an empty grant table.
func NewCapabilities() *Capabilities {
	return &Capabilities{grants: make(map[string][]compiledGrant)}
}

// SetGrants replaces the grants of pluginID. Nothing changes if any pattern
// fails to compile.
func (c *Capabilities) SetGrants(pluginID string, patterns []string) error {
	if pluginID == "" {
		return errors.New("plugin id cannot be empty")
	}
	compiled := make([]compiledGrant, len(patterns))
	for i, p := range patterns {
		if p == "" {
			return fmt.Errorf("permission %d: empty pattern", i)
		}
		g, err := glob.Compile(p, '.')
		if err != nil {
			return fmt.Errorf("permission %d (%q): %w", i, p, err)
		}
		compiled[i] = compiledGrant{pattern: p, glob: g}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grants[pluginID] = compiled
	return nil
}

// RemoveGrants forgets pluginID. Unknown ids are ignored.
func (c *Capabilities) RemoveGrants(pluginID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.grants, pluginID)
}

// Check reports whether pluginID holds capability. Unknown plugins hold
// nothing.
func (c *Capabilities) Check(pluginID, capability string) bool {
	if capability == "" {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.grants[pluginID] {
		if g.glob.Match(capability) {
			return true
		}
	}
	return false
}

// Grants returns a copy of pluginID's patterns, or nil.
func (c *Capabilities) Grants(pluginID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	gs, ok := c.grants[pluginID]
	if !ok {
		return nil
	}
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.pattern
	}
	return out
}

// require returns ErrPermissionDenied unless pluginID holds capability.
func (c *Capabilities) require(pluginID, capability string) error {
	if c.Check(pluginID, capability) {
		return nil
	}
	return fmt.Errorf("%w: plugin %s lacks %s", ErrPermissionDenied, pluginID, capability)
}
