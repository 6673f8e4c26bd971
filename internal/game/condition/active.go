// Package condition models status conditions (prone, frightened, exhaustion
// 2, ...) applied to tokens during a session.
package condition

import "strconv"

// Permanent is the Duration of a condition that never expires on its own.
const Permanent = 0

// Active tracks one applied condition on an entity.
type Active struct {
	ID         string `json:"id" yaml:"id"`
	TargetID   string `json:"targetId" yaml:"target_id"`
	TargetName string `json:"targetName" yaml:"target_name"`
	Tag        string `json:"condition" yaml:"tag"`
	Value      *int   `json:"value,omitempty" yaml:"value,omitempty"`
	// Duration is in rounds; Permanent (0) never expires.
	Duration     int    `json:"duration" yaml:"duration"`
	Source       string `json:"source,omitempty" yaml:"source,omitempty"`
	RoundApplied int    `json:"roundApplied" yaml:"round_applied"`
}

// DurationLabel renders the duration for humans: "permanent" or "3 rounds".
func (a *Active) DurationLabel() string {
	if a.Duration == Permanent {
		return "permanent"
	}
	if a.Duration == 1 {
		return "1 round"
	}
	return strconv.Itoa(a.Duration) + " rounds"
}

// ExpiredAt reports whether a timed condition has run out by round.
func (a *Active) ExpiredAt(round int) bool {
	return a.Duration != Permanent && round-a.RoundApplied >= a.Duration
}

// Set is the ordered collection of conditions recorded for a session.
// It is not safe for concurrent use; the caller must serialise access.
type Set []*Active

// Add appends c, replacing any existing record for the same target and tag.
//
// Postcondition: exactly one record exists for (c.TargetID, c.Tag).
func (s *Set) Add(c *Active) {
	s.Remove(c.TargetID, c.Tag)
	*s = append(*s, c)
}

// Remove deletes every record matching targetID and tag (tag compared
// case-insensitively) and returns how many were removed.
func (s *Set) Remove(targetID, tag string) int {
	key := Normalize(tag)
	kept := (*s)[:0]
	removed := 0
	for _, c := range *s {
		if c.TargetID == targetID && Normalize(c.Tag) == key {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	clearTail(*s, len(kept))
	*s = kept
	return removed
}

// RemoveTarget deletes every record for targetID.
func (s *Set) RemoveTarget(targetID string) {
	kept := (*s)[:0]
	for _, c := range *s {
		if c.TargetID != targetID {
			kept = append(kept, c)
		}
	}
	clearTail(*s, len(kept))
	*s = kept
}

// ForTarget returns the records applied to targetID in insertion order.
func (s Set) ForTarget(targetID string) []*Active {
	var out []*Active
	for _, c := range s {
		if c.TargetID == targetID {
			out = append(out, c)
		}
	}
	return out
}

// Expire removes and returns every timed condition that has run out by round.
func (s *Set) Expire(round int) []*Active {
	var expired []*Active
	kept := (*s)[:0]
	for _, c := range *s {
		if c.ExpiredAt(round) {
			expired = append(expired, c)
			continue
		}
		kept = append(kept, c)
	}
	clearTail(*s, len(kept))
	*s = kept
	return expired
}

// HasTag reports whether tags contains tag, case-insensitively.
func HasTag(tags []string, tag string) bool {
	key := Normalize(tag)
	for _, t := range tags {
		if Normalize(t) == key {
			return true
		}
	}
	return false
}

// WithoutTag returns tags minus every entry equal to tag (case-insensitive).
func WithoutTag(tags []string, tag string) []string {
	key := Normalize(tag)
	out := tags[:0]
	for _, t := range tags {
		if Normalize(t) != key {
			out = append(out, t)
		}
	}
	return out
}

// clearTail nils out pointers past n so removed records can be collected.
func clearTail(s Set, n int) {
	for i := n; i < len(s); i++ {
		s[i] = nil
	}
}
