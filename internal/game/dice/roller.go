package dice

import (
	"sort"

	"go.uber.org/zap"
)

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source) RollResult {
	var kept []int
	for _, t := range expr.Terms {
		rolled := make([]int, t.Count)
		for i := range rolled {
			rolled[i] = src.Intn(t.Sides) + 1
		}
		if t.KeepHighest > 0 {
			sort.Sort(sort.Reverse(sort.IntSlice(rolled)))
			rolled = rolled[:t.KeepHighest]
		}
		for _, v := range rolled {
			if t.Negative {
				v = -v
			}
			kept = append(kept, v)
		}
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       kept,
		Modifier:   expr.Modifier,
	}
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Postcondition: Returns a RollResult or a parse error.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// Roller rolls against a Source and traces every result at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller returns a Roller over src.
//
// Precondition: src and logger are non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll rolls a parsed expression.
func (r *Roller) Roll(expr Expression) RollResult {
	res := Roll(expr, r.src)
	if ce := r.logger.Check(zap.DebugLevel, "dice roll"); ce != nil {
		ce.Write(zap.Stringer("roll", res), zap.Int("total", res.Total()))
	}
	return res
}

// RollExpr parses and rolls a formula.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// D rolls one die of the given size.
//
// Precondition: sides >= 2.
// Postcondition: 1 <= result <= sides.
func (r *Roller) D(sides int) int {
	return r.Roll(Die(sides)).Total()
}
