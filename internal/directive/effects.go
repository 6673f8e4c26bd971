package directive

func init() {
	register("advance_time", func() Directive { return &AdvanceTime{} })
	register("start_timer", func() Directive { return &StartTimer{} })
	register("stop_timer", func() Directive { return &StopTimer{} })
	register("add_environmental_effect", func() Directive { return &AddEnvironmentalEffect{} })
	register("remove_environmental_effect", func() Directive { return &RemoveEnvironmentalEffect{} })
	register("add_disease", func() Directive { return &AddDisease{} })
	register("remove_disease", func() Directive { return &RemoveDisease{} })
	register("add_curse", func() Directive { return &AddCurse{} })
	register("remove_curse", func() Directive { return &RemoveCurse{} })
	register("place_trap", func() Directive { return &PlaceTrap{} })
	register("reveal_trap", func() Directive { return &RevealTrap{} })
	register("disarm_trap", func() Directive { return &DisarmTrap{} })
}

// AdvanceTime moves the in-game clock by the sum of its fields.
type AdvanceTime struct {
	Seconds int `json:"seconds"`
	Minutes int `json:"minutes"`
	Hours   int `json:"hours"`
	Days    int `json:"days"`
}

func (*AdvanceTime) Kind() string { return "advance_time" }

// StartTimer shows a countdown to everyone, or to one player.
type StartTimer struct {
	Seconds    int    `json:"seconds"`
	Label      string `json:"label"`
	TargetName string `json:"targetName"`
}

func (*StartTimer) Kind() string { return "start_timer" }

// StopTimer cancels timers matching Label, or all timers when empty.
type StopTimer struct {
	Label string `json:"label"`
}

func (*StopTimer) Kind() string { return "stop_timer" }

// AddEnvironmentalEffect records a scene-wide effect.
type AddEnvironmentalEffect struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (*AddEnvironmentalEffect) Kind() string { return "add_environmental_effect" }

// RemoveEnvironmentalEffect ends a scene-wide effect.
type RemoveEnvironmentalEffect struct {
	Name string `json:"name"`
}

func (*RemoveEnvironmentalEffect) Kind() string { return "remove_environmental_effect" }

// Affliction names a disease or curse on a creature.
type Affliction struct {
	EntityLabel string `json:"entityLabel"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddDisease infects a creature.
type AddDisease struct {
	Affliction `json:",squash"`
}

func (*AddDisease) Kind() string { return "add_disease" }

// RemoveDisease cures a creature.
type RemoveDisease struct {
	Affliction `json:",squash"`
}

func (*RemoveDisease) Kind() string { return "remove_disease" }

// AddCurse curses a creature.
type AddCurse struct {
	Affliction `json:",squash"`
}

func (*AddCurse) Kind() string { return "add_curse" }

// RemoveCurse lifts a curse.
type RemoveCurse struct {
	Affliction `json:",squash"`
}

func (*RemoveCurse) Kind() string { return "remove_curse" }

// PlaceTrap hides a trap on the active map.
type PlaceTrap struct {
	Name   string `json:"name"`
	GridX  *int   `json:"gridX"`
	GridY  *int   `json:"gridY"`
	DC     int    `json:"dc"`
	Damage string `json:"damage"`
}

func (*PlaceTrap) Kind() string { return "place_trap" }

// RevealTrap shows a trap to players.
type RevealTrap struct {
	Name string `json:"name"`
}

func (*RevealTrap) Kind() string { return "reveal_trap" }

// DisarmTrap disables a trap.
type DisarmTrap struct {
	Name string `json:"name"`
}

func (*DisarmTrap) Kind() string { return "disarm_trap" }
