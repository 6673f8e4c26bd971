// Package dice evaluates dice formulas ("2d6+3", "1d20-1", "8d6") for the
// directive handlers: damage, saving throws, recharge checks, and free-form
// rolls requested by the DM.
package dice

import (
	"fmt"
	"strings"
)

// RollResult holds the full audit trail for a single formula evaluation.
//
// Dice from subtracted terms are stored negated so that
// Total() == sum(Dice) + Modifier always holds.
type RollResult struct {
	Expression string // original formula, e.g. "2d6+3"
	Dice       []int  // kept die results across all terms
	Modifier   int    // sum of flat constants (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("%s → [%s] %+d = %d", r.Expression, strings.Join(parts, " "), r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations used by the engine are only ever called from the executor
// goroutine, but the crypto-backed default is safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
