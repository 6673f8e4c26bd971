package dice

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxDiceCount bounds the number of dice in a single term.
	MaxDiceCount = 100
	// MaxDieSides bounds the faces of a single die.
	MaxDieSides = 1000
	// MaxModifier bounds each flat constant and their running sum.
	MaxModifier = 10000
)

// Term is one "NdS" (optionally "NdSkhK") component of a formula.
type Term struct {
	Count       int  // number of dice
	Sides       int  // faces per die
	KeepHighest int  // if > 0, keep only the N highest dice
	Negative    bool // term is subtracted
}

// Expression represents a parsed dice formula ready to be rolled.
//
// Invariant: every Term has Count >= 1 and Sides >= 2.
type Expression struct {
	Raw      string // original input string
	Terms    []Term
	Modifier int // sum of flat constants
}

// Die is the expression for a single die, e.g. Die(20) is "1d20".
func Die(sides int) Expression {
	return Expression{Raw: "1d" + strconv.Itoa(sides), Terms: []Term{{Count: 1, Sides: sides}}}
}

// Parse parses a dice formula into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2", "4d6kh3", "2d6+1d4+3",
// "1d20-1d4" and bare constants such as "5".
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns an Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	raw := expr
	s := strings.ToLower(strings.Join(strings.Fields(expr), ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	out := Expression{Raw: raw}
	for _, chunk := range splitSigned(s) {
		neg := chunk[0] == '-'
		body := strings.TrimLeft(chunk, "+-")
		if body == "" {
			return Expression{}, fmt.Errorf("dice: dangling operator in %q", raw)
		}
		if !strings.Contains(body, "d") {
			n, err := strconv.Atoi(body)
			if err != nil {
				return Expression{}, fmt.Errorf("dice: invalid constant %q in %q", body, raw)
			}
			if n > MaxModifier {
				return Expression{}, fmt.Errorf("dice: constant %d exceeds limit %d in %q", n, MaxModifier, raw)
			}
			if neg {
				n = -n
			}
			out.Modifier += n
			if out.Modifier > MaxModifier || out.Modifier < -MaxModifier {
				return Expression{}, fmt.Errorf("dice: modifier total exceeds limit %d in %q", MaxModifier, raw)
			}
			continue
		}
		term, err := parseTerm(body, raw)
		if err != nil {
			return Expression{}, err
		}
		term.Negative = neg
		out.Terms = append(out.Terms, term)
	}
	return out, nil
}

// splitSigned cuts s before every '+' or '-', keeping the sign with the chunk.
func splitSigned(s string) []string {
	var chunks []string
	start := 0
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			chunks = append(chunks, s[start:i])
			start = i
		}
	}
	return append(chunks, s[start:])
}

func parseTerm(body, raw string) (Term, error) {
	dIdx := strings.Index(body, "d")
	count := 1
	if countStr := body[:dIdx]; countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return Term{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		count = n
	}
	if count <= 0 {
		return Term{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
	}
	if count > MaxDiceCount {
		return Term{}, fmt.Errorf("dice: die count %d exceeds limit %d in %q", count, MaxDiceCount, raw)
	}

	rest := body[dIdx+1:]
	keep := 0
	if khIdx := strings.Index(rest, "kh"); khIdx >= 0 {
		kh, err := strconv.Atoi(rest[khIdx+2:])
		if err != nil {
			return Term{}, fmt.Errorf("dice: invalid kh value in %q: %w", raw, err)
		}
		if kh <= 0 || kh >= count {
			return Term{}, fmt.Errorf("dice: kh value %d must be > 0 and < count %d in %q", kh, count, raw)
		}
		keep = kh
		rest = rest[:khIdx]
	}

	sides, err := strconv.Atoi(rest)
	if err != nil {
		return Term{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Term{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}
	if sides > MaxDieSides {
		return Term{}, fmt.Errorf("dice: die sides %d exceed limit %d in %q", sides, MaxDieSides, raw)
	}
	return Term{Count: count, Sides: sides, KeepHighest: keep}, nil
}

// MustParse parses expr and panics on error. Useful for package-level constants.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
