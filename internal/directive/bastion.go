package directive

func init() {
	register("bastion_issue_order", func() Directive { return &BastionIssueOrder{} })
	register("bastion_add_defender", func() Directive { return &BastionAddDefender{} })
	register("bastion_remove_defender", func() Directive { return &BastionRemoveDefender{} })
	register("bastion_adjust_treasury", func() Directive { return &BastionAdjustTreasury{} })
	register("bastion_start_construction", func() Directive { return &BastionStartConstruction{} })
	register("bastion_take_turn", func() Directive { return &BastionTakeTurn{} })
}

// Stronghold directives name their bastion by a substring of its name or
// by the owning character id.

// BastionIssueOrder assigns an order to a special facility.
type BastionIssueOrder struct {
	Stronghold string `json:"stronghold"`
	Facility   string `json:"facility"`
	Order      string `json:"order"`
	Details    string `json:"details"`
}

func (*BastionIssueOrder) Kind() string { return "bastion_issue_order" }

// BastionAddDefender recruits a defender.
type BastionAddDefender struct {
	Stronghold string `json:"stronghold"`
	Name       string `json:"name"`
	Facility   string `json:"facility"`
}

func (*BastionAddDefender) Kind() string { return "bastion_add_defender" }

// BastionRemoveDefender removes a defender.
type BastionRemoveDefender struct {
	Stronghold string `json:"stronghold"`
	Name       string `json:"name"`
}

func (*BastionRemoveDefender) Kind() string { return "bastion_remove_defender" }

// BastionAdjustTreasury deposits (positive) or withdraws (negative) gold.
type BastionAdjustTreasury struct {
	Stronghold string `json:"stronghold"`
	Amount     int    `json:"amount"`
	Reason     string `json:"reason"`
}

func (*BastionAdjustTreasury) Kind() string { return "bastion_adjust_treasury" }

// BastionStartConstruction pays for and queues a new facility.
type BastionStartConstruction struct {
	Stronghold string `json:"stronghold"`
	Project    string `json:"project"`
	Space      string `json:"space"`
	Cost       int    `json:"cost"`
	Days       int    `json:"days"`
}

func (*BastionStartConstruction) Kind() string { return "bastion_start_construction" }

// BastionTakeTurn resolves a bastion turn immediately.
type BastionTakeTurn struct {
	Stronghold string `json:"stronghold"`
}

func (*BastionTakeTurn) Kind() string { return "bastion_take_turn" }
