// Package resolve matches free-text labels, as written by a DM or produced
// by an AI assistant, to concrete entities.
//
// Every lookup is two-tier: an exact case-insensitive match always wins over
// a partial match, so "Goblin" never resolves to "Goblin King" while a
// "Goblin" exists.
package resolve

import "strings"

// ByLabel returns the candidate whose label equals query (case-insensitive),
// or failing that the first candidate whose label starts with query.
//
// Postcondition: ok is false when no candidate matches or query is blank.
func ByLabel[T any](candidates []T, label func(T) string, query string) (match T, ok bool) {
	q := normalize(query)
	if q == "" {
		return match, false
	}
	for _, c := range candidates {
		if normalize(label(c)) == q {
			return c, true
		}
	}
	for _, c := range candidates {
		if strings.HasPrefix(normalize(label(c)), q) {
			return c, true
		}
	}
	return match, false
}

// ByName is the map-name variant of ByLabel: exact first, then the first
// candidate whose name contains query anywhere.
func ByName[T any](candidates []T, name func(T) string, query string) (match T, ok bool) {
	q := normalize(query)
	if q == "" {
		return match, false
	}
	for _, c := range candidates {
		if normalize(name(c)) == q {
			return c, true
		}
	}
	for _, c := range candidates {
		if strings.Contains(normalize(name(c)), q) {
			return c, true
		}
	}
	return match, false
}

// ByNameOrOwner resolves a stronghold-style reference: the first candidate
// whose name contains ref (case-insensitive) or whose owner id equals ref
// exactly.
func ByNameOrOwner[T any](candidates []T, name, owner func(T) string, ref string) (match T, ok bool) {
	q := normalize(ref)
	if q == "" {
		return match, false
	}
	for _, c := range candidates {
		if strings.Contains(normalize(name(c)), q) || owner(c) == ref {
			return c, true
		}
	}
	return match, false
}

// ByEitherName resolves a player by display name or character name. A
// display-name match is preferred when one candidate matches by display
// name and another by character name.
func ByEitherName[T any](candidates []T, display, character func(T) string, query string) (match T, ok bool) {
	q := normalize(query)
	if q == "" {
		return match, false
	}
	for _, c := range candidates {
		if normalize(display(c)) == q {
			return c, true
		}
	}
	for _, c := range candidates {
		if normalize(character(c)) == q {
			return c, true
		}
	}
	return match, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
