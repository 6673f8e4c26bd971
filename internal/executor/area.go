package executor

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// FeetPerCell is the grid scale.
const FeetPerCell = 5

// Area shapes. Unknown shapes are treated as spheres.
const (
	ShapeSphere    = "sphere"
	ShapeEmanation = "emanation"
	ShapeCylinder  = "cylinder"
	ShapeCube      = "cube"
	ShapeCone      = "cone"
	ShapeLine      = "line"
)

// Area is a shaped region on the grid, measured in cells.
type Area struct {
	Shape  string
	Origin session.Cell
	Radius int
	// DirX, DirY is the unit aim vector of a line.
	DirX, DirY float64
	// HalfWidth is half a line's width.
	HalfWidth float64
}

// CellsFromFeet converts a distance in feet to whole cells, rounding up.
func CellsFromFeet(feet int) int {
	if feet <= 0 {
		return 0
	}
	return (feet + FeetPerCell - 1) / FeetPerCell
}

// Contains reports whether cell p lies in the area. Spheres, emanations,
// and cylinders use Euclidean distance; cubes and cones use Chebyshev
// distance; a line takes cells within Radius ahead of the origin and
// within HalfWidth of its axis.
func (a Area) Contains(p session.Cell) bool {
	dx, dy := p.X-a.Origin.X, p.Y-a.Origin.Y
	switch strings.ToLower(a.Shape) {
	case ShapeCube, ShapeCone:
		return max(abs(dx), abs(dy)) <= a.Radius
	case ShapeLine:
		fx, fy := float64(dx), float64(dy)
		forward := fx*a.DirX + fy*a.DirY
		perp := math.Abs(fx*a.DirY - fy*a.DirX)
		return forward >= 0 && forward <= float64(a.Radius) && perp <= a.HalfWidth
	default:
		return dx*dx+dy*dy <= a.Radius*a.Radius
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// area builds the Area described by d.
func (c *Context) area(d *directive.AreaEffect) (Area, error) {
	a := Area{Shape: strings.ToLower(strings.TrimSpace(d.Shape)), Radius: CellsFromFeet(d.Radius)}
	if a.Shape == "" {
		a.Shape = ShapeSphere
	}
	if d.Radius <= 0 {
		return a, validationf("Missing radiusFeet")
	}
	switch {
	case d.OriginLabel != "":
		t, err := c.token(d.OriginLabel)
		if err != nil {
			return a, err
		}
		a.Origin = session.Cell{X: t.X, Y: t.Y}
	case d.OriginX != nil && d.OriginY != nil:
		a.Origin = session.Cell{X: *d.OriginX, Y: *d.OriginY}
	default:
		return a, validationf("Missing originX/originY")
	}
	if a.Shape == ShapeLine {
		if d.TargetX == nil || d.TargetY == nil {
			return a, validationf("Missing targetX/targetY for line")
		}
		vx, vy := float64(*d.TargetX-a.Origin.X), float64(*d.TargetY-a.Origin.Y)
		length := math.Hypot(vx, vy)
		if length == 0 {
			return a, validationf("Line target must differ from its origin")
		}
		a.DirX, a.DirY = vx/length, vy/length
		width := d.Width
		if width <= 0 {
			width = FeetPerCell
		}
		a.HalfWidth = float64(CellsFromFeet(width)) / 2
	}
	return a, nil
}

// areaEffect damages and conditions every token in the area. Damage is
// rolled once; each token saves separately when a DC is given.
func areaEffect(c *Context, d *directive.AreaEffect) error {
	m, err := c.requireMap()
	if err != nil {
		return err
	}
	a, err := c.area(d)
	if err != nil {
		return err
	}

	var tag string
	if d.Condition != "" {
		if tag, _, err = c.conditionTag(d.Condition); err != nil {
			return err
		}
	}
	damage := 0
	var damageText string
	if d.Damage != "" {
		res, err := c.Roller.RollExpr(d.Damage)
		if err != nil {
			return validationf("Invalid damage formula %q: %v", d.Damage, err)
		}
		damage = res.Total()
		damageText = res.String()
	}

	name := d.Name
	if name == "" {
		name = "Area effect"
	}
	var lines []string
	for _, t := range m.Tokens {
		if !a.Contains(session.Cell{X: t.X, Y: t.Y}) {
			continue
		}
		saved := false
		outcome := ""
		if d.SaveDC > 0 {
			roll := c.Roller.D(20)
			saved = roll >= d.SaveDC
			verdict := "fails"
			if saved {
				verdict = "saves"
			}
			outcome = fmt.Sprintf(" %s (%d vs DC %d)", verdict, roll, d.SaveDC)
		}
		dealt := damage
		if saved {
			if d.HalfOnSave {
				dealt = damage / 2
			} else {
				dealt = 0
			}
		}
		taken := t.Damage(dealt)
		line := t.Label + outcome
		if d.Damage != "" {
			line += fmt.Sprintf(", takes %d %s", taken, strings.TrimSpace(d.DamageType+" damage"))
		}
		if tag != "" && !saved {
			c.applyCondition(t, tag, nil, d.ConditionDuration, name)
			line += ", " + tag
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		c.Notice("%s affects no one", name)
		return nil
	}
	c.Sync.PushTokens(c.State, m.ID)
	if tag != "" {
		c.Sync.PushConditions(c.State)
	}
	header := name
	if damageText != "" {
		header += " [" + damageText + "]"
	}
	c.Notice("%s: %s", header, strings.Join(lines, "; "))
	return nil
}
