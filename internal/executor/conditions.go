package executor

import (
	"strings"

	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/condition"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// conditionTag resolves free text to a registered tag id. Unregistered
// conditions are kept under their normalized text.
func (c *Context) conditionTag(text string) (string, *condition.Def, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil, validationf("Missing condition")
	}
	if def, ok := c.Conditions.Lookup(text); ok {
		return def.ID, def, nil
	}
	return condition.Normalize(text), nil, nil
}

// applyCondition records tag on t and mirrors it on the token.
func (c *Context) applyCondition(t *session.Token, tag string, value *int, duration int, source string) {
	c.State.Conditions.Add(&condition.Active{
		ID:           session.NewID(),
		TargetID:     t.EntityID,
		TargetName:   t.Label,
		Tag:          tag,
		Value:        value,
		Duration:     duration,
		Source:       source,
		RoundApplied: c.State.Round(),
	})
	t.AddCondition(tag)
}

func addCondition(c *Context, d *directive.AddCondition) error {
	t, err := c.token(d.EntityLabel)
	if err != nil {
		return err
	}
	tag, def, err := c.conditionTag(d.Condition)
	if err != nil {
		return err
	}
	if d.Duration < 0 {
		return validationf("duration must not be negative")
	}
	if def != nil && d.Value != nil {
		if !def.HasValue {
			return validationf("%s does not take a value", def.Name)
		}
		if def.MaxValue > 0 && (*d.Value < 1 || *d.Value > def.MaxValue) {
			return validationf("%s value must be between 1 and %d", def.Name, def.MaxValue)
		}
	}
	c.applyCondition(t, tag, d.Value, d.Duration, d.Source)
	c.Sync.PushConditions(c.State)
	if d.Value != nil {
		c.Notice("%s is now %s %d", t.Label, tag, *d.Value)
	} else {
		c.Notice("%s is now %s", t.Label, tag)
	}
	return nil
}

func removeCondition(c *Context, d *directive.RemoveCondition) error {
	t, err := c.token(d.EntityLabel)
	if err != nil {
		return err
	}
	tag, _, err := c.conditionTag(d.Condition)
	if err != nil {
		return err
	}
	removed := c.State.Conditions.Remove(t.EntityID, tag)
	if removed == 0 && !t.HasCondition(tag) {
		return notFoundf("%s does not have condition %s", t.Label, tag)
	}
	t.RemoveCondition(tag)
	c.Sync.PushConditionCleared(t.EntityID, tag)
	c.Notice("%s is no longer %s", t.Label, tag)
	return nil
}
