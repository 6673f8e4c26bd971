// Package bastion models player strongholds: facilities with orders,
// defenders, a treasury, a construction queue, and the turn log driven by the
// in-game calendar.
package bastion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/dmengine/internal/game/resolve"
)

// DefaultTurnFrequencyDays is the calendar interval between bastion turns.
const DefaultTurnFrequencyDays = 7

// ErrInsufficientFunds is returned when a withdrawal would overdraw the treasury.
var ErrInsufficientFunds = errors.New("insufficient treasury")

// Order is an instruction issued to a special facility for the next turn.
type Order struct {
	Type      string `json:"type" yaml:"type"`
	Details   string `json:"details,omitempty" yaml:"details,omitempty"`
	IssuedDay int    `json:"issuedDay" yaml:"issued_day"`
}

// Facility is a room or structure inside a stronghold.
type Facility struct {
	ID    string `json:"id" yaml:"id"`
	Type  string `json:"type" yaml:"type"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Space string `json:"space" yaml:"space"`
	Order *Order `json:"order,omitempty" yaml:"order,omitempty"`
}

// Label returns Name when set, otherwise Type.
func (f *Facility) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Type
}

// Defender is a bastion defender stationed at a facility.
type Defender struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	FacilityID string `json:"facilityId,omitempty" yaml:"facility_id,omitempty"`
}

// Project is a queued construction job.
type Project struct {
	ID            string `json:"id" yaml:"id"`
	Type          string `json:"type" yaml:"type"`
	Space         string `json:"space,omitempty" yaml:"space,omitempty"`
	Cost          int    `json:"cost" yaml:"cost"`
	DaysRequired  int    `json:"daysRequired" yaml:"days_required"`
	DaysCompleted int    `json:"daysCompleted" yaml:"days_completed"`
}

// Done reports whether the project has accumulated its required days.
func (p *Project) Done() bool { return p.DaysCompleted >= p.DaysRequired }

// TurnRecord is one entry of a stronghold's append-only turn history.
type TurnRecord struct {
	Day          int      `json:"day" yaml:"day"`
	Orders       []string `json:"orders" yaml:"orders"`
	EventRoll    int      `json:"eventRoll" yaml:"event_roll"`
	EventOutcome string   `json:"eventOutcome" yaml:"event_outcome"`
	Completed    []string `json:"completed,omitempty" yaml:"completed,omitempty"`
	Lost         []string `json:"lost,omitempty" yaml:"lost,omitempty"`
}

// Stronghold is a player-owned bastion.
//
// Invariant: Treasury >= 0; Turns only ever grows.
type Stronghold struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	OwnerID string `json:"ownerId" yaml:"owner_id"`
	// Linked strongholds follow the session calendar when time advances.
	Linked bool `json:"linked" yaml:"linked"`

	Treasury          int           `json:"treasury" yaml:"treasury"`
	BasicFacilities   []*Facility   `json:"basicFacilities" yaml:"basic_facilities"`
	SpecialFacilities []*Facility   `json:"specialFacilities" yaml:"special_facilities"`
	Defenders         []*Defender   `json:"defenders" yaml:"defenders"`
	Construction      []*Project    `json:"construction" yaml:"construction"`
	Turns             []*TurnRecord `json:"turns" yaml:"turns"`

	CurrentDay        int `json:"currentDay" yaml:"current_day"`
	LastTurnDay       int `json:"lastBastionTurnDay" yaml:"last_turn_day"`
	TurnFrequencyDays int `json:"turnFrequencyDays" yaml:"turn_frequency_days"`
}

// Find resolves ref to a stronghold by name substring or exact owner id.
func Find(all []*Stronghold, ref string) (*Stronghold, bool) {
	return resolve.ByNameOrOwner(all,
		func(s *Stronghold) string { return s.Name },
		func(s *Stronghold) string { return s.OwnerID },
		ref)
}

// AdvanceDays moves the calendar forward by n days and reports whether a
// turn is now due. It never takes the turn itself.
//
// Precondition: n > 0.
func (s *Stronghold) AdvanceDays(n int) bool {
	if n > 0 {
		s.CurrentDay += n
	}
	return s.TurnDue()
}

// TurnDue reports whether at least TurnFrequencyDays have elapsed since the
// last turn.
func (s *Stronghold) TurnDue() bool {
	freq := s.TurnFrequencyDays
	if freq <= 0 {
		freq = DefaultTurnFrequencyDays
	}
	return s.CurrentDay-s.LastTurnDay >= freq
}

// Facility resolves ref against special then basic facilities by id, name,
// or type.
func (s *Stronghold) Facility(ref string) (*Facility, bool) {
	all := make([]*Facility, 0, len(s.SpecialFacilities)+len(s.BasicFacilities))
	all = append(all, s.SpecialFacilities...)
	all = append(all, s.BasicFacilities...)
	for _, f := range all {
		if f.ID == ref {
			return f, true
		}
	}
	if f, ok := resolve.ByLabel(all, (*Facility).Label, ref); ok {
		return f, true
	}
	return resolve.ByLabel(all, func(f *Facility) string { return f.Type }, ref)
}

// IssueOrder assigns an order to the special facility matching facilityRef.
//
// Postcondition: returns an error if the facility is unknown, is a basic
// facility, or is already executing an order.
func (s *Stronghold) IssueOrder(facilityRef, orderType, details string) (*Facility, error) {
	orderType = strings.TrimSpace(orderType)
	if orderType == "" {
		return nil, errors.New("Missing order type")
	}
	f, ok := s.Facility(facilityRef)
	if !ok {
		return nil, fmt.Errorf("Facility not found: %s", facilityRef)
	}
	if !s.isSpecial(f) {
		return nil, fmt.Errorf("%s is a basic facility and cannot take orders", f.Label())
	}
	if f.Order != nil {
		return nil, fmt.Errorf("%s is already executing a %s order", f.Label(), f.Order.Type)
	}
	f.Order = &Order{Type: orderType, Details: details, IssuedDay: s.CurrentDay}
	return f, nil
}

func (s *Stronghold) isSpecial(f *Facility) bool {
	for _, sf := range s.SpecialFacilities {
		if sf == f {
			return true
		}
	}
	return false
}

// AddDefender recruits a defender, optionally stationed at facilityRef.
func (s *Stronghold) AddDefender(name, facilityRef string) (*Defender, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("Missing defender name")
	}
	d := &Defender{ID: uuid.NewString(), Name: name}
	if facilityRef != "" {
		f, ok := s.Facility(facilityRef)
		if !ok {
			return nil, fmt.Errorf("Facility not found: %s", facilityRef)
		}
		d.FacilityID = f.ID
	}
	s.Defenders = append(s.Defenders, d)
	return d, nil
}

// RemoveDefender removes the defender whose name resolves from name.
func (s *Stronghold) RemoveDefender(name string) (*Defender, error) {
	d, ok := resolve.ByLabel(s.Defenders, func(d *Defender) string { return d.Name }, name)
	if !ok {
		return nil, fmt.Errorf("Defender not found: %s", name)
	}
	s.dropDefender(d)
	return d, nil
}

func (s *Stronghold) dropDefender(d *Defender) {
	for i, x := range s.Defenders {
		if x == d {
			s.Defenders = append(s.Defenders[:i], s.Defenders[i+1:]...)
			return
		}
	}
}

// AdjustTreasury adds delta (which may be negative) to the treasury.
//
// Postcondition: returns ErrInsufficientFunds and leaves the treasury
// unchanged if the result would be negative.
func (s *Stronghold) AdjustTreasury(delta int) (int, error) {
	if s.Treasury+delta < 0 {
		return s.Treasury, fmt.Errorf("%w: %s has %d gp, needs %d", ErrInsufficientFunds, s.Name, s.Treasury, -delta)
	}
	s.Treasury += delta
	return s.Treasury, nil
}

// StartConstruction pays cost from the treasury and queues a project.
//
// Precondition: daysRequired > 0; cost >= 0.
func (s *Stronghold) StartConstruction(projectType, space string, cost, daysRequired int) (*Project, error) {
	projectType = strings.TrimSpace(projectType)
	if projectType == "" {
		return nil, errors.New("Missing project type")
	}
	if daysRequired <= 0 {
		return nil, errors.New("Construction must take at least one day")
	}
	if cost < 0 {
		return nil, errors.New("Construction cost cannot be negative")
	}
	if _, err := s.AdjustTreasury(-cost); err != nil {
		return nil, err
	}
	p := &Project{ID: uuid.NewString(), Type: projectType, Space: space, Cost: cost, DaysRequired: daysRequired}
	s.Construction = append(s.Construction, p)
	return p, nil
}
