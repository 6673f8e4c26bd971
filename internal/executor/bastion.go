package executor

import (
	"strconv"
	"strings"

	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/bastion"
)

func (c *Context) stronghold(ref string) (*bastion.Stronghold, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, validationf("Missing stronghold")
	}
	s, ok := c.State.FindStronghold(ref)
	if !ok {
		return nil, notFoundf("Stronghold not found: %s", ref)
	}
	return s, nil
}

func bastionIssueOrder(c *Context, d *directive.BastionIssueOrder) error {
	s, err := c.stronghold(d.Stronghold)
	if err != nil {
		return err
	}
	f, err := s.IssueOrder(d.Facility, d.Order, d.Details)
	if err != nil {
		return classify(ErrPrecondition, err)
	}
	c.Notice("%s: %s ordered to %s", s.Name, f.Label(), f.Order.Type)
	return nil
}

func bastionAddDefender(c *Context, d *directive.BastionAddDefender) error {
	s, err := c.stronghold(d.Stronghold)
	if err != nil {
		return err
	}
	def, err := s.AddDefender(d.Name, d.Facility)
	if err != nil {
		return classify(ErrPrecondition, err)
	}
	c.Notice("%s recruits %s (%d defenders)", s.Name, def.Name, len(s.Defenders))
	return nil
}

func bastionRemoveDefender(c *Context, d *directive.BastionRemoveDefender) error {
	s, err := c.stronghold(d.Stronghold)
	if err != nil {
		return err
	}
	def, err := s.RemoveDefender(d.Name)
	if err != nil {
		return classify(ErrNotFound, err)
	}
	c.Notice("%s loses %s (%d defenders)", s.Name, def.Name, len(s.Defenders))
	return nil
}

func bastionAdjustTreasury(c *Context, d *directive.BastionAdjustTreasury) error {
	if d.Amount == 0 {
		return validationf("Treasury adjustment must be non-zero")
	}
	s, err := c.stronghold(d.Stronghold)
	if err != nil {
		return err
	}
	total, err := s.AdjustTreasury(d.Amount)
	if err != nil {
		return classify(ErrPrecondition, err)
	}
	verb := "gains"
	amount := d.Amount
	if amount < 0 {
		verb, amount = "spends", -amount
	}
	if d.Reason != "" {
		c.Notice("%s %s %d gp (%s). Treasury: %d gp", s.Name, verb, amount, d.Reason, total)
		return nil
	}
	c.Notice("%s %s %d gp. Treasury: %d gp", s.Name, verb, amount, total)
	return nil
}

func bastionStartConstruction(c *Context, d *directive.BastionStartConstruction) error {
	s, err := c.stronghold(d.Stronghold)
	if err != nil {
		return err
	}
	p, err := s.StartConstruction(d.Project, d.Space, d.Cost, d.Days)
	if err != nil {
		return classify(ErrPrecondition, err)
	}
	c.Notice("%s begins construction of %s (%d days, %d gp)", s.Name, p.Type, p.DaysRequired, p.Cost)
	return nil
}

func bastionTakeTurn(c *Context, d *directive.BastionTakeTurn) error {
	s, err := c.stronghold(d.Stronghold)
	if err != nil {
		return err
	}
	rec := s.TakeTurn(c.Roller)
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(" bastion turn (day ")
	b.WriteString(strconv.Itoa(rec.Day))
	b.WriteString("): ")
	b.WriteString(rec.EventOutcome)
	b.WriteString(" (rolled ")
	b.WriteString(strconv.Itoa(rec.EventRoll))
	b.WriteString(")")
	if len(rec.Orders) > 0 {
		b.WriteString("; orders: ")
		b.WriteString(strings.Join(rec.Orders, ", "))
	}
	if len(rec.Completed) > 0 {
		b.WriteString("; completed: ")
		b.WriteString(strings.Join(rec.Completed, ", "))
	}
	if len(rec.Lost) > 0 {
		b.WriteString("; defenders lost: ")
		b.WriteString(strings.Join(rec.Lost, ", "))
	}
	c.Notice("%s", b.String())
	return nil
}
