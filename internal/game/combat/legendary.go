package combat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCost is returned when a legendary action costs less than 1.
var ErrInvalidCost = errors.New("legendary action cost must be at least 1")

// UseLegendaryAction spends cost actions from e's budget.
//
// Postcondition: on success Used increases by exactly cost; on failure the
// budget is unchanged and the error names the exact remaining count.
func UseLegendaryAction(e *Entry, cost int) error {
	if cost < 1 {
		return ErrInvalidCost
	}
	if e.Legendary == nil || e.Legendary.Maximum == 0 {
		return fmt.Errorf("%s has no legendary actions", e.Name)
	}
	if remaining := e.Legendary.Remaining(); remaining < cost {
		return fmt.Errorf("%s has only %d legendary action(s) remaining (needs %d)", e.Name, remaining, cost)
	}
	e.Legendary.Used += cost
	return nil
}

// UseLegendaryResistance spends one legendary resistance.
func UseLegendaryResistance(e *Entry) error {
	if e.Resistances == nil {
		return fmt.Errorf("%s has no legendary resistances", e.Name)
	}
	if e.Resistances.Remaining <= 0 {
		return fmt.Errorf("%s has no legendary resistances remaining", e.Name)
	}
	e.Resistances.Remaining--
	return nil
}

// SetRecharge creates or updates the named recharge ability on e.
func SetRecharge(e *Entry, name string, rechargeOn int, available bool) *RechargeAbility {
	for _, r := range e.Recharge {
		if strings.EqualFold(r.Name, name) {
			r.RechargeOn = rechargeOn
			r.Available = available
			return r
		}
	}
	r := &RechargeAbility{Name: name, RechargeOn: rechargeOn, Available: available}
	e.Recharge = append(e.Recharge, r)
	return r
}

// RechargeOutcome records one recharge check made at the start of a turn.
type RechargeOutcome struct {
	Ability *RechargeAbility
	Roll    int
}

// RollRecharges checks every unavailable recharge ability of e against d6
// and marks it available when the roll meets its threshold. Only rolls that
// succeeded are returned.
//
// Only enemy entries are checked; players and NPC allies manage their own
// recharge abilities.
func RollRecharges(e *Entry, d6 func() int) []RechargeOutcome {
	if !e.IsEnemy() {
		return nil
	}
	var out []RechargeOutcome
	for _, r := range e.Recharge {
		if r.Available {
			continue
		}
		roll := d6()
		if roll >= r.RechargeOn {
			r.Available = true
			out = append(out, RechargeOutcome{Ability: r, Roll: roll})
		}
	}
	return out
}
