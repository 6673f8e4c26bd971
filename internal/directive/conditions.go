package directive

func init() {
	register("add_condition", func() Directive { return &AddCondition{} })
	register("remove_condition", func() Directive { return &RemoveCondition{} })
	register("area_effect", func() Directive { return &AreaEffect{} })
}

// AddCondition applies a condition to a token. Duration is in rounds; 0 is
// permanent.
type AddCondition struct {
	EntityLabel string `json:"entityLabel"`
	Condition   string `json:"condition"`
	Value       *int   `json:"value"`
	Duration    int    `json:"duration"`
	Source      string `json:"source"`
}

func (*AddCondition) Kind() string { return "add_condition" }

// RemoveCondition removes a condition from a token.
type RemoveCondition struct {
	EntityLabel string `json:"entityLabel"`
	Condition   string `json:"condition"`
}

func (*RemoveCondition) Kind() string { return "remove_condition" }

// AreaEffect resolves a spell or hazard over a shaped area. Distances are
// in feet; one grid cell is five feet.
//
// Line and cone aim from the origin toward (TargetX, TargetY).
type AreaEffect struct {
	Name              string `json:"name"`
	Shape             string `json:"shape"`
	OriginX           *int   `json:"originX"`
	OriginY           *int   `json:"originY"`
	OriginLabel       string `json:"originLabel"`
	Radius            int    `json:"radiusFeet"`
	Width             int    `json:"widthFeet"`
	TargetX           *int   `json:"targetX"`
	TargetY           *int   `json:"targetY"`
	Damage            string `json:"damage"`
	DamageType        string `json:"damageType"`
	SaveAbility       string `json:"saveAbility"`
	SaveDC            int    `json:"saveDC"`
	HalfOnSave        bool   `json:"halfOnSave"`
	Condition         string `json:"condition"`
	ConditionDuration int    `json:"conditionDuration"`
}

func (*AreaEffect) Kind() string { return "area_effect" }
