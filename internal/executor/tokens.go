package executor

import (
	"strings"

	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/combat"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

func placeToken(c *Context, d *directive.PlaceToken) error {
	m, err := c.requireMap()
	if err != nil {
		return err
	}
	if strings.TrimSpace(d.Label) == "" {
		return validationf("Missing label")
	}
	if d.GridX == nil || d.GridY == nil {
		return validationf("Missing gridX/gridY")
	}

	t := &session.Token{
		ID:         session.NewID(),
		EntityID:   session.NewID(),
		Label:      strings.TrimSpace(d.Label),
		X:          *d.GridX,
		Y:          *d.GridY,
		Size:       d.Size,
		Visible:    true,
		EntityType: combat.ParseEntityType(d.EntityType),
		Speeds:     session.Speeds{Fly: d.FlySpeed, Swim: d.SwimSpeed, Climb: d.ClimbSpeed},
	}
	if d.MonsterID != "" {
		mon, err := c.monster(d.MonsterID)
		if err != nil {
			return err
		}
		t.MonsterRef = mon.ID
		t.MaxHP, t.AC = mon.HP, mon.AC
		t.Speeds = session.Speeds{Walk: mon.Speed.Walk, Fly: mon.Speed.Fly, Swim: mon.Speed.Swim, Climb: mon.Speed.Climb}
		if t.Size == 0 {
			t.Size = mon.Size
		}
		if d.EntityType == "" {
			t.EntityType = combat.EntityEnemy
		}
	}
	if d.MaxHP != nil {
		t.MaxHP = *d.MaxHP
	}
	if d.AC != nil {
		t.AC = *d.AC
	}
	if d.Speed != nil {
		t.Speeds.Walk = *d.Speed
	}
	if d.Visible != nil {
		t.Visible = *d.Visible
	}
	if t.Size < 1 {
		t.Size = 1
	}
	hp := t.MaxHP
	if d.HP != nil {
		hp = *d.HP
	}
	t.SetHP(hp)

	m.Tokens = append(m.Tokens, t)
	c.Sync.PushTokens(c.State, m.ID)
	return nil
}

func moveToken(c *Context, d *directive.MoveToken) error {
	t, err := c.token(d.Label)
	if err != nil {
		return err
	}
	if d.GridX == nil || d.GridY == nil {
		return validationf("Missing gridX/gridY")
	}
	t.X, t.Y = *d.GridX, *d.GridY
	c.Sync.PushTokens(c.State, c.Map.ID)
	return nil
}

func removeToken(c *Context, d *directive.RemoveToken) error {
	t, err := c.token(d.Label)
	if err != nil {
		return err
	}
	c.Map.RemoveToken(t.ID)
	c.State.Conditions.RemoveTarget(t.EntityID)
	c.Sync.PushTokenRemoved(c.Map.ID, t.ID)
	return nil
}

// updateToken applies only the fields present. A blank newLabel is
// ignored. MaxHP is applied before HP so an HP above the old maximum
// raises it.
func updateToken(c *Context, d *directive.UpdateToken) error {
	t, err := c.token(d.Label)
	if err != nil {
		return err
	}
	if d.MaxHP != nil && *d.MaxHP < 0 {
		return validationf("maxHp must not be negative")
	}
	if d.Size != nil && *d.Size < 1 {
		return validationf("size must be at least 1")
	}
	if label := strings.TrimSpace(d.NewLabel); label != "" {
		t.Label = label
	}
	if d.MaxHP != nil {
		t.MaxHP = *d.MaxHP
		if t.CurrentHP > t.MaxHP {
			t.CurrentHP = t.MaxHP
		}
	}
	if d.HP != nil {
		t.SetHP(*d.HP)
	}
	if d.AC != nil {
		t.AC = *d.AC
	}
	if d.Speed != nil {
		t.Speeds.Walk = *d.Speed
	}
	if d.Size != nil {
		t.Size = *d.Size
	}
	if d.Visible != nil {
		t.Visible = *d.Visible
	}
	c.Sync.PushTokens(c.State, c.Map.ID)
	return nil
}
