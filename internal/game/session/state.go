// Package session holds the shared mutable state of a running game session
// and the store that serialises access to it.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/dmengine/internal/game/bastion"
	"github.com/cory-johannsen/dmengine/internal/game/combat"
	"github.com/cory-johannsen/dmengine/internal/game/condition"
	"github.com/cory-johannsen/dmengine/internal/game/resolve"
)

// State is everything a directive may read or change.
type State struct {
	Maps        []*Map           `json:"maps" yaml:"maps"`
	ActiveMapID string           `json:"activeMapId" yaml:"active_map_id"`
	Initiative  *combat.Sequence `json:"initiative,omitempty" yaml:"initiative,omitempty"`
	Conditions  condition.Set    `json:"conditions" yaml:"conditions"`
	Environment Environment      `json:"environment" yaml:"environment"`
	Shop        Shop             `json:"shop" yaml:"shop"`
	Sidebar     []*SidebarEntry  `json:"sidebar" yaml:"sidebar"`
	Journal     []*JournalEntry  `json:"journal" yaml:"journal"`
	Time        Clock            `json:"inGameTime" yaml:"time"`
	Lights      []*LightSource   `json:"activeLightSources" yaml:"lights"`
	Players     []*Player        `json:"players" yaml:"players"`
	Timers      []*Timer         `json:"timers" yaml:"timers"`
	Effects     []*Effect        `json:"environmentalEffects" yaml:"effects"`
	Diseases    []*Affliction    `json:"diseases" yaml:"diseases"`
	Curses      []*Affliction    `json:"curses" yaml:"curses"`
	Traps       []*Trap          `json:"traps" yaml:"traps"`

	Strongholds []*bastion.Stronghold `json:"strongholds" yaml:"strongholds"`
}

// New returns an empty state with default environment flags.
func New() *State {
	return &State{Environment: DefaultEnvironment()}
}

// NewID returns a fresh random identifier.
func NewID() string { return uuid.NewString() }

// ActiveMap returns the active map, or nil when none is active.
func (s *State) ActiveMap() *Map {
	for _, m := range s.Maps {
		if m.ID == s.ActiveMapID {
			return m
		}
	}
	return nil
}

// MapByID returns the map with id.
func (s *State) MapByID(id string) (*Map, bool) {
	for _, m := range s.Maps {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// FindMap resolves name to a map: exact first, then the first containing it.
func (s *State) FindMap(name string) (*Map, bool) {
	return resolve.ByName(s.Maps, func(m *Map) string { return m.Name }, name)
}

// FindPlayer resolves name to a player by display or character name.
func (s *State) FindPlayer(name string) (*Player, bool) {
	return resolve.ByEitherName(s.Players,
		func(p *Player) string { return p.DisplayName },
		func(p *Player) string { return p.CharacterName },
		name)
}

// FindStronghold resolves ref by stronghold name substring or owner id.
func (s *State) FindStronghold(ref string) (*bastion.Stronghold, bool) {
	return bastion.Find(s.Strongholds, ref)
}

// AddPlayer registers a connected peer.
//
// Precondition: p.PeerID must be non-empty.
// Postcondition: Returns an error if the peer is already registered.
func (s *State) AddPlayer(p *Player) error {
	for _, existing := range s.Players {
		if existing.PeerID == p.PeerID {
			return fmt.Errorf("player %q already connected", p.PeerID)
		}
	}
	s.Players = append(s.Players, p)
	return nil
}

// RemovePlayer unregisters a peer.
//
// Postcondition: Returns an error if the peer is not found.
func (s *State) RemovePlayer(peerID string) error {
	for i, p := range s.Players {
		if p.PeerID == peerID {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("player %q not found", peerID)
}

// ExpireLights removes every timed light source burned out at the current
// clock and returns them.
func (s *State) ExpireLights() []*LightSource {
	now := s.Time.Seconds
	var expired []*LightSource
	kept := s.Lights[:0]
	for _, l := range s.Lights {
		if l.Expired(now) {
			expired = append(expired, l)
			continue
		}
		kept = append(kept, l)
	}
	s.Lights = kept
	return expired
}

// Round returns the current initiative round, or 0 outside combat.
func (s *State) Round() int {
	if s.Initiative == nil {
		return 0
	}
	return s.Initiative.Round
}
