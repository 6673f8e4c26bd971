package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/combat"
	"github.com/cory-johannsen/dmengine/internal/game/resolve"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

func (c *Context) speed() combat.SpeedFunc {
	return func(e *combat.Entry) int { return c.walkSpeed(e.EntityID) }
}

func (c *Context) requireInitiative() (*combat.Sequence, error) {
	if c.State.Initiative == nil {
		return nil, preconditionf("No active initiative")
	}
	return c.State.Initiative, nil
}

// initiativeEntry builds an Entry, binding it to a token with the same
// label on the active map when one exists. A bound token's monster stat
// block supplies legendary budgets and recharge abilities the submission
// leaves out.
func (c *Context) initiativeEntry(in directive.InitiativeEntry) (*combat.Entry, error) {
	name := strings.TrimSpace(in.Label)
	if name == "" {
		return nil, validationf("Missing label on initiative entry")
	}
	var roll int
	if in.Roll != nil {
		roll = *in.Roll
	} else {
		roll = c.Roller.D(20)
	}
	e := &combat.Entry{
		ID:         session.NewID(),
		EntityID:   in.EntityID,
		Name:       name,
		Roll:       roll,
		Modifier:   in.Modifier,
		Total:      roll + in.Modifier,
		EntityType: combat.ParseEntityType(in.EntityType),
	}

	legendary, resist := in.LegendaryActions, in.LegendaryResistances
	if c.Map != nil {
		if t, ok := c.Map.FindToken(name); ok {
			if e.EntityID == "" {
				e.EntityID = t.EntityID
			}
			if in.EntityType == "" {
				e.EntityType = t.EntityType
			}
			if t.MonsterRef != "" && c.Catalog != nil {
				if mon, err := c.monster(t.MonsterRef); err == nil {
					if legendary == 0 {
						legendary = mon.LegendaryActions
					}
					if resist == 0 {
						resist = mon.LegendaryResistances
					}
					for _, r := range mon.Recharge {
						combat.SetRecharge(e, r.Name, r.On, true)
					}
				}
			}
		}
	}
	if e.EntityID == "" {
		e.EntityID = session.NewID()
	}
	if legendary > 0 {
		e.Legendary = &combat.LegendaryActions{Maximum: legendary}
	}
	if resist > 0 {
		e.Resistances = &combat.LegendaryResistances{Max: resist, Remaining: resist}
	}
	return e, nil
}

func startInitiative(c *Context, d *directive.StartInitiative) error {
	if len(d.Entries) == 0 {
		return classify(ErrValidation, combat.ErrNoEntries)
	}
	entries := make([]*combat.Entry, 0, len(d.Entries))
	for _, in := range d.Entries {
		e, err := c.initiativeEntry(in)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	seq, err := combat.NewSequence(entries, c.speed())
	if err != nil {
		return classify(ErrValidation, err)
	}
	c.State.Initiative = seq

	order := make([]string, len(seq.Entries))
	for i, e := range seq.Entries {
		order[i] = fmt.Sprintf("%s (%d)", e.Name, e.Total)
	}
	c.Sync.PushInitiative(c.State)
	c.Notice("Roll for initiative! Order: %s", strings.Join(order, ", "))
	return nil
}

// nextTurn advances the order. Recharge abilities are rolled only for
// enemies.
func nextTurn(c *Context) error {
	seq, err := c.requireInitiative()
	if err != nil {
		return err
	}
	next, newRound := seq.Advance(c.speed())
	if next == nil {
		return preconditionf("No initiative entries")
	}
	if newRound {
		for _, ex := range c.State.Conditions.Expire(seq.Round) {
			if c.Map != nil {
				if t, ok := c.Map.TokenByEntity(ex.TargetID); ok {
					t.RemoveCondition(ex.Tag)
				}
			}
			c.Sync.PushConditionCleared(ex.TargetID, ex.Tag)
			c.Notice("%s is no longer %s", ex.TargetName, ex.Tag)
		}
	}
	for _, r := range combat.RollRecharges(next, func() int { return c.Roller.D(6) }) {
		c.Notice("%s's %s recharges (rolled %d)", next.Name, r.Ability.Name, r.Roll)
	}
	c.Sync.PushInitiative(c.State)
	if newRound {
		c.Notice("Round %d begins. %s's turn.", seq.Round, next.Name)
	} else {
		c.Notice("%s's turn.", next.Name)
	}
	return nil
}

func addToInitiative(c *Context, d *directive.AddToInitiative) error {
	seq, err := c.requireInitiative()
	if err != nil {
		return err
	}
	e, err := c.initiativeEntry(d.InitiativeEntry)
	if err != nil {
		return err
	}
	seq.Add(e, c.speed())
	c.Sync.PushInitiative(c.State)
	c.Notice("%s joins the fight (initiative %d)", e.Name, e.Total)
	return nil
}

func removeFromInitiative(c *Context, d *directive.RemoveFromInitiative) error {
	seq, err := c.requireInitiative()
	if err != nil {
		return err
	}
	if _, err := seq.RemoveByName(d.Label); err != nil {
		return classify(ErrNotFound, err)
	}
	c.Sync.PushInitiative(c.State)
	return nil
}

func endInitiative(c *Context) error {
	if _, err := c.requireInitiative(); err != nil {
		return err
	}
	c.State.Initiative = nil
	c.Sync.PushInitiativeEnded()
	c.Notice("Combat ends.")
	return nil
}

// initiativeEntryByLabel resolves label among the running entries.
func (c *Context) initiativeEntryByLabel(label string) (*combat.Entry, error) {
	seq, err := c.requireInitiative()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(label) == "" {
		return nil, validationf("Missing entityLabel")
	}
	e, ok := resolve.ByLabel(seq.Entries, func(e *combat.Entry) string { return e.Name }, label)
	if !ok {
		return nil, notFoundf("Initiative entry not found: %s", label)
	}
	return e, nil
}

func useLegendaryAction(c *Context, d *directive.UseLegendaryAction) error {
	e, err := c.initiativeEntryByLabel(d.EntityLabel)
	if err != nil {
		return err
	}
	cost := d.Cost
	if cost == 0 {
		cost = 1
	}
	if err := combat.UseLegendaryAction(e, cost); err != nil {
		if errors.Is(err, combat.ErrInvalidCost) {
			return classify(ErrValidation, err)
		}
		return classify(ErrPrecondition, err)
	}
	c.Sync.PushInitiative(c.State)
	action := d.ActionName
	if action == "" {
		action = "a legendary action"
	}
	c.Notice("%s uses %s (%d/%d legendary actions left)", e.Name, action, e.Legendary.Remaining(), e.Legendary.Maximum)
	return nil
}

func useLegendaryResistance(c *Context, d *directive.UseLegendaryResistance) error {
	e, err := c.initiativeEntryByLabel(d.EntityLabel)
	if err != nil {
		return err
	}
	if err := combat.UseLegendaryResistance(e); err != nil {
		return classify(ErrPrecondition, err)
	}
	c.Sync.PushInitiative(c.State)
	c.Notice("%s uses a legendary resistance to succeed instead (%d left)", e.Name, e.Resistances.Remaining)
	return nil
}

func rechargeRoll(c *Context, d *directive.RechargeRoll) error {
	e, err := c.initiativeEntryByLabel(d.EntityLabel)
	if err != nil {
		return err
	}
	if strings.TrimSpace(d.AbilityName) == "" {
		return validationf("Missing abilityName")
	}
	if d.RechargeOn < 1 || d.RechargeOn > 6 {
		return validationf("rechargeOn must be between 1 and 6, got %d", d.RechargeOn)
	}
	roll := c.Roller.D(6)
	ok := roll >= d.RechargeOn
	combat.SetRecharge(e, d.AbilityName, d.RechargeOn, ok)
	c.Sync.PushInitiative(c.State)
	if ok {
		c.Notice("%s's %s recharges (rolled %d, needed %d+)", e.Name, d.AbilityName, roll, d.RechargeOn)
	} else {
		c.Notice("%s's %s does not recharge (rolled %d, needed %d+)", e.Name, d.AbilityName, roll, d.RechargeOn)
	}
	return nil
}
