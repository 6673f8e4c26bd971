package plugin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// ErrNotNamespaced is returned when a plugin registers a directive kind
// outside the "plugin:" namespace.
var ErrNotNamespaced = errors.New("plugin directive kinds must start with \"plugin:\"")

// ActionCall is what a plugin action handler receives.
type ActionCall struct {
	Directive directive.Opaque
	State     *session.State
	// ActiveMap is nil when no map is active.
	ActiveMap *session.Map
	Sync      *broadcast.Synchronizer
}

// ActionHandler executes a plugin directive. A returned error fails the
// directive with the error's message.
type ActionHandler func(ctx context.Context, call ActionCall) error

type action struct {
	pluginID string
	handler  ActionHandler
}

// Actions maps namespaced directive kinds to plugin handlers.
// All methods are safe for concurrent use.
type Actions struct {
	mu     sync.RWMutex
	byKind map[string]action
}

// NewActions returns an empty registry.
func NewActions() *Actions {
	return &Actions{byKind: make(map[string]action)}
}

// Register binds kind to handler on behalf of pluginID.
//
// Postcondition: returns ErrNotNamespaced for kinds without the "plugin:"
// prefix and an error if kind is already registered.
func (a *Actions) Register(pluginID, kind string, handler ActionHandler) error {
	if !strings.HasPrefix(kind, directive.PluginPrefix) || len(kind) == len(directive.PluginPrefix) {
		return fmt.Errorf("%w: %q", ErrNotNamespaced, kind)
	}
	if handler == nil {
		return fmt.Errorf("nil handler for %q", kind)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.byKind[kind]; ok {
		return fmt.Errorf("directive kind %q already registered by %s", kind, existing.pluginID)
	}
	a.byKind[kind] = action{pluginID: pluginID, handler: handler}
	return nil
}

// Lookup returns the handler for kind.
func (a *Actions) Lookup(kind string) (ActionHandler, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	act, ok := a.byKind[kind]
	return act.handler, ok
}

// Kinds returns the kinds registered by pluginID in sorted order.
func (a *Actions) Kinds(pluginID string) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []string
	for k, act := range a.byKind {
		if act.pluginID == pluginID {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// RemovePlugin unregisters every kind owned by pluginID.
func (a *Actions) RemovePlugin(pluginID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	removed := 0
	for k, act := range a.byKind {
		if act.pluginID == pluginID {
			delete(a.byKind, k)
			removed++
		}
	}
	return removed
}
