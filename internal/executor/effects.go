package executor

import (
	"strings"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/resolve"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// advanceTime moves the clock. Advancing by days also advances every
// linked stronghold's calendar by the same count and announces any bastion
// turn that falls due; the turn itself is never taken here.
func advanceTime(c *Context, d *directive.AdvanceTime) error {
	delta := session.Delta(d.Seconds, d.Minutes, d.Hours, d.Days)
	if delta <= 0 {
		return validationf("Time advance must be positive")
	}
	c.State.Time.Advance(delta)
	c.Sync.PushTime(c.State)

	if d.Days > 0 {
		for _, s := range c.State.Strongholds {
			if !s.Linked {
				continue
			}
			if s.AdvanceDays(d.Days) {
				c.Notice("%s: a bastion turn is due (day %d)", s.Name, s.CurrentDay)
			}
		}
	}
	for _, l := range c.State.ExpireLights() {
		c.Notice("%s's %s burns out", l.EntityName, l.SourceName)
	}
	t := c.State.Time
	c.Notice("Time passes. It is now %s (%s).", t, t.Phase())
	return nil
}

func startTimer(c *Context, d *directive.StartTimer) error {
	if d.Seconds <= 0 {
		return validationf("Timer seconds must be positive")
	}
	timer := &session.Timer{
		ID:        session.NewID(),
		Label:     strings.TrimSpace(d.Label),
		Seconds:   d.Seconds,
		StartedAt: c.State.Time.Seconds,
	}
	if d.TargetName != "" {
		p, ok := c.State.FindPlayer(d.TargetName)
		if !ok {
			return notFoundf("Player not found: %s", d.TargetName)
		}
		timer.TargetID = p.PeerID
	}
	c.State.Timers = append(c.State.Timers, timer)
	c.Out.Push(broadcast.ChannelTimerStart, broadcast.TimerStartPayload{
		ID:           timer.ID,
		Seconds:      timer.Seconds,
		Label:        timer.Label,
		TargetPeerID: timer.TargetID,
	})
	return nil
}

// stopTimer stops every timer whose label matches, or every timer when
// no label is given.
func stopTimer(c *Context, d *directive.StopTimer) error {
	label := strings.TrimSpace(d.Label)
	kept := c.State.Timers[:0]
	stopped := 0
	for _, t := range c.State.Timers {
		if label == "" || strings.EqualFold(t.Label, label) {
			c.Out.Push(broadcast.ChannelTimerStop, broadcast.TimerStopPayload{ID: t.ID, Label: t.Label})
			stopped++
			continue
		}
		kept = append(kept, t)
	}
	c.State.Timers = kept
	if stopped == 0 && label != "" {
		return notFoundf("Timer not found: %s", label)
	}
	return nil
}

func addEnvironmentalEffect(c *Context, d *directive.AddEnvironmentalEffect) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return validationf("Missing name")
	}
	for _, e := range c.State.Effects {
		if strings.EqualFold(e.Name, name) {
			e.Description = d.Description
			return nil
		}
	}
	c.State.Effects = append(c.State.Effects, &session.Effect{ID: session.NewID(), Name: name, Description: d.Description})
	c.Notice("Environmental effect: %s", name)
	return nil
}

func removeEnvironmentalEffect(c *Context, d *directive.RemoveEnvironmentalEffect) error {
	if strings.TrimSpace(d.Name) == "" {
		return validationf("Missing name")
	}
	e, ok := resolve.ByName(c.State.Effects, func(e *session.Effect) string { return e.Name }, d.Name)
	if !ok {
		return notFoundf("Effect not found: %s", d.Name)
	}
	c.State.Effects = removePtr(c.State.Effects, e)
	c.Notice("%s ends.", e.Name)
	return nil
}

func addAffliction(c *Context, list *[]*session.Affliction, what string, d directive.Affliction) error {
	if strings.TrimSpace(d.Name) == "" {
		return validationf("Missing name")
	}
	id, name, err := c.entity(d.EntityLabel)
	if err != nil {
		return err
	}
	*list = append(*list, &session.Affliction{
		ID:          session.NewID(),
		Name:        strings.TrimSpace(d.Name),
		TargetID:    id,
		TargetName:  name,
		Description: d.Description,
	})
	c.Notice("%s is afflicted with the %s %s", name, what, d.Name)
	return nil
}

// removeAffliction removes the first affliction whose name matches and,
// when an entity is given, whose target name matches too.
func removeAffliction(c *Context, list *[]*session.Affliction, what string, d directive.Affliction) error {
	if strings.TrimSpace(d.Name) == "" {
		return validationf("Missing name")
	}
	var candidates []*session.Affliction
	for _, a := range *list {
		if d.EntityLabel == "" || strings.EqualFold(a.TargetName, strings.TrimSpace(d.EntityLabel)) {
			candidates = append(candidates, a)
		}
	}
	a, ok := resolve.ByName(candidates, func(a *session.Affliction) string { return a.Name }, d.Name)
	if !ok {
		if d.EntityLabel != "" {
			return notFoundf("%s %s not found on %s", strings.ToUpper(what[:1])+what[1:], d.Name, d.EntityLabel)
		}
		return notFoundf("%s not found: %s", strings.ToUpper(what[:1])+what[1:], d.Name)
	}
	*list = removePtr(*list, a)
	c.Notice("%s is freed of the %s %s", a.TargetName, what, a.Name)
	return nil
}

func placeTrap(c *Context, d *directive.PlaceTrap) error {
	m, err := c.requireMap()
	if err != nil {
		return err
	}
	if strings.TrimSpace(d.Name) == "" {
		return validationf("Missing name")
	}
	if d.GridX == nil || d.GridY == nil {
		return validationf("Missing gridX/gridY")
	}
	if d.Damage != "" {
		if _, err := c.Roller.RollExpr(d.Damage); err != nil {
			return validationf("Invalid damage formula %q: %v", d.Damage, err)
		}
	}
	c.State.Traps = append(c.State.Traps, &session.Trap{
		ID:     session.NewID(),
		Name:   strings.TrimSpace(d.Name),
		MapID:  m.ID,
		X:      *d.GridX,
		Y:      *d.GridY,
		DC:     d.DC,
		Damage: d.Damage,
	})
	return nil
}

func (c *Context) trap(name string) (*session.Trap, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationf("Missing name")
	}
	t, ok := resolve.ByName(c.State.Traps, func(t *session.Trap) string { return t.Name }, name)
	if !ok {
		return nil, notFoundf("Trap not found: %s", name)
	}
	return t, nil
}

func revealTrap(c *Context, d *directive.RevealTrap) error {
	t, err := c.trap(d.Name)
	if err != nil {
		return err
	}
	t.Revealed = true
	c.Notice("A trap is revealed: %s", t.Name)
	return nil
}

func disarmTrap(c *Context, d *directive.DisarmTrap) error {
	t, err := c.trap(d.Name)
	if err != nil {
		return err
	}
	if t.Disarmed {
		return preconditionf("Trap already disarmed: %s", t.Name)
	}
	t.Disarmed = true
	c.Notice("%s is disarmed.", t.Name)
	return nil
}

func removePtr[T any](list []*T, target *T) []*T {
	for i, x := range list {
		if x == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
