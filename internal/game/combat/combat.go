// Package combat implements initiative order and the per-creature combat
// resources tracked during an encounter: legendary actions, legendary
// resistances, and recharge abilities.
package combat

// EntityType distinguishes which side an initiative participant is on.
type EntityType string

const (
	EntityPlayer EntityType = "player"
	EntityNPC    EntityType = "npc"
	EntityEnemy  EntityType = "enemy"
)

// ParseEntityType maps free text to an EntityType, defaulting to npc.
func ParseEntityType(s string) EntityType {
	switch EntityType(s) {
	case EntityPlayer, EntityEnemy:
		return EntityType(s)
	case "monster", "hostile":
		return EntityEnemy
	case "pc", "character":
		return EntityPlayer
	default:
		return EntityNPC
	}
}

// LegendaryActions is a per-round action budget.
//
// Invariant: 0 <= Used <= Maximum.
type LegendaryActions struct {
	Maximum int `json:"maximum" yaml:"maximum"`
	Used    int `json:"used" yaml:"used"`
}

// Remaining returns Maximum - Used.
func (l LegendaryActions) Remaining() int { return l.Maximum - l.Used }

// LegendaryResistances is a per-day budget of automatic save successes.
type LegendaryResistances struct {
	Max       int `json:"max" yaml:"max"`
	Remaining int `json:"remaining" yaml:"remaining"`
}

// RechargeAbility is an ability that becomes available again on a d6 roll
// of RechargeOn or higher.
type RechargeAbility struct {
	Name       string `json:"name" yaml:"name"`
	RechargeOn int    `json:"rechargeOn" yaml:"recharge_on"`
	Available  bool   `json:"available" yaml:"available"`
}

// Entry is one participant's turn-order record.
type Entry struct {
	ID         string     `json:"id" yaml:"id"`
	EntityID   string     `json:"entityId" yaml:"entity_id"`
	Name       string     `json:"name" yaml:"name"`
	Roll       int        `json:"roll" yaml:"roll"`
	Modifier   int        `json:"modifier" yaml:"modifier"`
	Total      int        `json:"total" yaml:"total"`
	EntityType EntityType `json:"entityType" yaml:"entity_type"`

	Legendary   *LegendaryActions     `json:"legendaryActions,omitempty" yaml:"legendary_actions,omitempty"`
	Resistances *LegendaryResistances `json:"legendaryResistances,omitempty" yaml:"legendary_resistances,omitempty"`
	Recharge    []*RechargeAbility    `json:"rechargeAbilities,omitempty" yaml:"recharge_abilities,omitempty"`
}

// IsEnemy reports whether the entry fights against the party.
func (e *Entry) IsEnemy() bool { return e.EntityType == EntityEnemy }

// Clone returns a deep copy of e sharing no pointers with it.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.Legendary != nil {
		l := *e.Legendary
		c.Legendary = &l
	}
	if e.Resistances != nil {
		r := *e.Resistances
		c.Resistances = &r
	}
	if e.Recharge != nil {
		c.Recharge = make([]*RechargeAbility, len(e.Recharge))
		for i, a := range e.Recharge {
			ra := *a
			c.Recharge[i] = &ra
		}
	}
	return &c
}

// TurnState tracks what an entity has spent during its current turn.
type TurnState struct {
	EntityID          string `json:"entityId" yaml:"entity_id"`
	MovementRemaining int    `json:"movementRemaining" yaml:"movement_remaining"`
	ActionUsed        bool   `json:"actionUsed" yaml:"action_used"`
	BonusActionUsed   bool   `json:"bonusActionUsed" yaml:"bonus_action_used"`
	ReactionUsed      bool   `json:"reactionUsed" yaml:"reaction_used"`
}

func freshTurn(entityID string, speed int) *TurnState {
	return &TurnState{EntityID: entityID, MovementRemaining: speed}
}
