package bastion

import "github.com/google/uuid"

// Roller rolls a single die.
type Roller interface {
	D(sides int) int
}

type event struct {
	max     int
	outcome string
}

// events is the d100 bastion event table; the first row whose max is at
// least the roll applies.
var events = []event{
	{50, "All Is Well"},
	{55, "Attack"},
	{58, "Criminal Hireling"},
	{63, "Extraordinary Opportunity"},
	{72, "Friendly Visitors"},
	{76, "Guest"},
	{79, "Lost Hirelings"},
	{83, "Magical Discovery"},
	{91, "Refugees"},
	{98, "Request for Aid"},
	{100, "Treasure"},
}

// EventFor maps a d100 roll to its event outcome.
func EventFor(roll int) string {
	for _, e := range events {
		if roll <= e.max {
			return e.outcome
		}
	}
	return events[len(events)-1].outcome
}

// TakeTurn resolves a bastion turn on the current day: construction
// progresses by the days elapsed since the last turn, a d100 event is
// rolled, the turn is logged, and every order is cleared.
//
// An Attack rolls 6d6; each 1 costs the stronghold a defender.
//
// Postcondition: LastTurnDay == CurrentDay and len(Turns) grows by one.
func (s *Stronghold) TakeTurn(r Roller) *TurnRecord {
	elapsed := s.CurrentDay - s.LastTurnDay
	if elapsed < 1 {
		elapsed = 1
	}
	rec := &TurnRecord{Day: s.CurrentDay}

	for _, f := range s.SpecialFacilities {
		if f.Order != nil {
			rec.Orders = append(rec.Orders, f.Label()+": "+f.Order.Type)
			f.Order = nil
		}
	}

	var pending []*Project
	for _, p := range s.Construction {
		p.DaysCompleted += elapsed
		if p.Done() {
			s.SpecialFacilities = append(s.SpecialFacilities, &Facility{ID: uuid.NewString(), Type: p.Type, Space: p.Space})
			rec.Completed = append(rec.Completed, p.Type)
			continue
		}
		pending = append(pending, p)
	}
	s.Construction = pending

	rec.EventRoll = r.D(100)
	rec.EventOutcome = EventFor(rec.EventRoll)
	if rec.EventOutcome == "Attack" {
		for i := 0; i < 6 && len(s.Defenders) > 0; i++ {
			if r.D(6) == 1 {
				lost := s.Defenders[len(s.Defenders)-1]
				s.dropDefender(lost)
				rec.Lost = append(rec.Lost, lost.Name)
			}
		}
	}

	s.Turns = append(s.Turns, rec)
	s.LastTurnDay = s.CurrentDay
	return rec
}
