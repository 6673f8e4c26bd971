package combat

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoEntries is returned when combat is started without participants.
var ErrNoEntries = errors.New("No initiative entries")

// SpeedFunc returns the walking speed used to seed an entity's movement for
// a turn. Entities not bound to a token report 0.
type SpeedFunc func(e *Entry) int

// Sequence is the live initiative order of an encounter.
type Sequence struct {
	Entries      []*Entry              `json:"entries" yaml:"entries"`
	CurrentIndex int                   `json:"currentTurnIndex" yaml:"current_index"`
	Round        int                   `json:"round" yaml:"round"`
	TurnStates   map[string]*TurnState `json:"turnStates" yaml:"turn_states"`
}

// NewSequence orders entries by Total (highest first; ties broken by
// Modifier) and starts round 1 on the first entry.
//
// Precondition: every entry has Total already computed.
// Postcondition: returns ErrNoEntries if entries is empty; otherwise every
// entry has a TurnState keyed by EntityID.
func NewSequence(entries []*Entry, speed SpeedFunc) (*Sequence, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	sorted := make([]*Entry, len(entries))
	copy(sorted, entries)
	sortByInitiativeDesc(sorted)

	s := &Sequence{
		Entries:    sorted,
		Round:      1,
		TurnStates: make(map[string]*TurnState, len(sorted)),
	}
	for _, e := range sorted {
		s.TurnStates[e.EntityID] = freshTurn(e.EntityID, speedOf(speed, e))
	}
	return s, nil
}

// Current returns the entry whose turn it is, or nil for an empty sequence.
func (s *Sequence) Current() *Entry {
	if len(s.Entries) == 0 {
		return nil
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Entries) {
		s.CurrentIndex = 0
	}
	return s.Entries[s.CurrentIndex]
}

// Advance moves to the next entry, wrapping into a new round. The upcoming
// entity's turn state is refreshed and its legendary-action budget resets
// to {Maximum, 0}.
//
// Postcondition: returns the new current entry and whether a new round began.
func (s *Sequence) Advance(speed SpeedFunc) (*Entry, bool) {
	if len(s.Entries) == 0 {
		return nil, false
	}
	s.CurrentIndex++
	wrapped := false
	if s.CurrentIndex >= len(s.Entries) {
		s.CurrentIndex = 0
		s.Round++
		wrapped = true
	}
	next := s.Entries[s.CurrentIndex]
	if next.Legendary != nil {
		next.Legendary.Used = 0
	}
	s.TurnStates[next.EntityID] = freshTurn(next.EntityID, speedOf(speed, next))
	return next, wrapped
}

// Add inserts e at its initiative position without changing whose turn it is.
func (s *Sequence) Add(e *Entry, speed SpeedFunc) {
	current := s.Current()
	s.Entries = append(s.Entries, e)
	sortByInitiativeDesc(s.Entries)
	if current != nil {
		s.CurrentIndex = s.indexOf(current)
	}
	if s.TurnStates == nil {
		s.TurnStates = make(map[string]*TurnState)
	}
	s.TurnStates[e.EntityID] = freshTurn(e.EntityID, speedOf(speed, e))
}

// RemoveByName removes the entry whose name equals name, ignoring case.
// If the removed entry held the turn, the turn passes to the entry that
// followed it.
func (s *Sequence) RemoveByName(name string) (*Entry, error) {
	idx := -1
	for i, e := range s.Entries {
		if strings.EqualFold(e.Name, strings.TrimSpace(name)) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("Initiative entry not found: %s", name)
	}
	removed := s.Entries[idx]
	s.Entries = append(s.Entries[:idx], s.Entries[idx+1:]...)
	delete(s.TurnStates, removed.EntityID)

	switch {
	case len(s.Entries) == 0:
		s.CurrentIndex = 0
	case idx < s.CurrentIndex:
		s.CurrentIndex--
	case s.CurrentIndex >= len(s.Entries):
		s.CurrentIndex = 0
	}
	return removed, nil
}

// Turn returns the TurnState of entityID, or nil.
func (s *Sequence) Turn(entityID string) *TurnState {
	return s.TurnStates[entityID]
}

func (s *Sequence) indexOf(e *Entry) int {
	for i, x := range s.Entries {
		if x == e {
			return i
		}
	}
	return 0
}

func speedOf(speed SpeedFunc, e *Entry) int {
	if speed == nil {
		return 0
	}
	return speed(e)
}

// sortByInitiativeDesc sorts entries in place, highest total first. The
// sort is stable so equal rolls keep submission order.
func sortByInitiativeDesc(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Modifier > entries[j].Modifier
	})
}
