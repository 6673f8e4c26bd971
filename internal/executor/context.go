package executor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/catalog"
	"github.com/cory-johannsen/dmengine/internal/game/condition"
	"github.com/cory-johannsen/dmengine/internal/game/dice"
	"github.com/cory-johannsen/dmengine/internal/game/lighting"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// Context is everything a handler may touch while applying one directive.
// Outbound messages and chat notices are buffered and released only if the
// directive succeeds.
type Context struct {
	State      *session.State
	Map        *session.Map
	Roller     *dice.Roller
	Out        *broadcast.Outbox
	Sync       *broadcast.Synchronizer
	Catalog    *catalog.Lazy
	Lights     *lighting.Catalog
	Conditions *condition.Registry
	Logger     *zap.Logger

	ctx     context.Context
	notices []string
}

// Notice queues a narrative line for the chat sink and the chat channel.
func (c *Context) Notice(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	c.notices = append(c.notices, text)
	c.Sync.Chat(text)
}

// requireMap returns the active map or errNoActiveMap.
func (c *Context) requireMap() (*session.Map, error) {
	if c.Map == nil {
		return nil, errNoActiveMap
	}
	return c.Map, nil
}

// token resolves label on the active map.
func (c *Context) token(label string) (*session.Token, error) {
	m, err := c.requireMap()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(label) == "" {
		return nil, validationf("Missing label")
	}
	t, ok := m.FindToken(label)
	if !ok {
		return nil, notFoundf("Token not found: %s", label)
	}
	return t, nil
}

// entity resolves label to an entity id and display name, trying
// tokens on the active map first and then connected players.
func (c *Context) entity(label string) (id, name string, err error) {
	if strings.TrimSpace(label) == "" {
		return "", "", validationf("Missing entityLabel")
	}
	if c.Map != nil {
		if t, ok := c.Map.FindToken(label); ok {
			return t.EntityID, t.Label, nil
		}
	}
	if p, ok := c.State.FindPlayer(label); ok {
		name := p.CharacterName
		if name == "" {
			name = p.DisplayName
		}
		id := p.CharacterID
		if id == "" {
			id = p.PeerID
		}
		return id, name, nil
	}
	return "", "", notFoundf("Entity not found: %s", label)
}

// monster looks up a catalog entry, loading the catalog on first use.
func (c *Context) monster(ref string) (*catalog.Monster, error) {
	if c.Catalog == nil {
		return nil, notFoundf("Monster not found: %s", ref)
	}
	cat, err := c.Catalog.Get(c.ctx)
	if err != nil {
		return nil, classify(ErrPrecondition, err)
	}
	m, ok := cat.Monster(ref)
	if !ok {
		return nil, notFoundf("Monster not found: %s", ref)
	}
	return m, nil
}

// walkSpeed returns the walking speed of the token bound to entityID on
// the active map, or 0.
func (c *Context) walkSpeed(entityID string) int {
	if c.Map == nil {
		return 0
	}
	if t, ok := c.Map.TokenByEntity(entityID); ok {
		return t.Speeds.Walk
	}
	return 0
}
