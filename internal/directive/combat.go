package directive

func init() {
	register("start_initiative", func() Directive { return &StartInitiative{} })
	register("next_turn", func() Directive { return &NextTurn{} })
	register("add_to_initiative", func() Directive { return &AddToInitiative{} })
	register("remove_from_initiative", func() Directive { return &RemoveFromInitiative{} })
	register("end_initiative", func() Directive { return &EndInitiative{} })
	register("use_legendary_action", func() Directive { return &UseLegendaryAction{} })
	register("use_legendary_resistance", func() Directive { return &UseLegendaryResistance{} })
	register("recharge_roll", func() Directive { return &RechargeRoll{} })
}

// InitiativeEntry is one participant submitted to initiative. A nil Roll
// is rolled on a d20.
type InitiativeEntry struct {
	Label                string `json:"label"`
	EntityID             string `json:"entityId"`
	Roll                 *int   `json:"roll"`
	Modifier             int    `json:"modifier"`
	EntityType           string `json:"entityType"`
	LegendaryActions     int    `json:"legendaryActions"`
	LegendaryResistances int    `json:"legendaryResistances"`
}

// StartInitiative begins combat with the given entries.
type StartInitiative struct {
	Entries []InitiativeEntry `json:"entries"`
}

func (*StartInitiative) Kind() string { return "start_initiative" }

// NextTurn advances to the next participant.
type NextTurn struct{}

func (*NextTurn) Kind() string { return "next_turn" }

// AddToInitiative inserts a participant into running combat.
type AddToInitiative struct {
	InitiativeEntry `json:",squash"`
}

func (*AddToInitiative) Kind() string { return "add_to_initiative" }

// RemoveFromInitiative drops a participant by exact name.
type RemoveFromInitiative struct {
	Label string `json:"label"`
}

func (*RemoveFromInitiative) Kind() string { return "remove_from_initiative" }

// EndInitiative ends combat.
type EndInitiative struct{}

func (*EndInitiative) Kind() string { return "end_initiative" }

// UseLegendaryAction spends Cost legendary actions; 0 means 1.
type UseLegendaryAction struct {
	EntityLabel string `json:"entityLabel"`
	Cost        int    `json:"cost"`
	ActionName  string `json:"actionName"`
}

func (*UseLegendaryAction) Kind() string { return "use_legendary_action" }

// UseLegendaryResistance spends one legendary resistance.
type UseLegendaryResistance struct {
	EntityLabel string `json:"entityLabel"`
}

func (*UseLegendaryResistance) Kind() string { return "use_legendary_resistance" }

// RechargeRoll rolls a d6 for a recharge ability against RechargeOn.
type RechargeRoll struct {
	EntityLabel string `json:"entityLabel"`
	AbilityName string `json:"abilityName"`
	RechargeOn  int    `json:"rechargeOn"`
}

func (*RechargeRoll) Kind() string { return "recharge_roll" }
