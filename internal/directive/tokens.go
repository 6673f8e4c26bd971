package directive

func init() {
	register("place_token", func() Directive { return &PlaceToken{} })
	register("move_token", func() Directive { return &MoveToken{} })
	register("remove_token", func() Directive { return &RemoveToken{} })
	register("update_token", func() Directive { return &UpdateToken{} })
}

// PlaceToken puts a new token on the active map. When MonsterID names a
// catalog entry, its statistics fill any field left unset.
type PlaceToken struct {
	Label      string `json:"label"`
	EntityType string `json:"entityType"`
	GridX      *int   `json:"gridX"`
	GridY      *int   `json:"gridY"`
	Size       int    `json:"size"`
	HP         *int   `json:"hp"`
	MaxHP      *int   `json:"maxHp"`
	AC         *int   `json:"ac"`
	Speed      *int   `json:"speed"`
	FlySpeed   int    `json:"flySpeed"`
	SwimSpeed  int    `json:"swimSpeed"`
	ClimbSpeed int    `json:"climbSpeed"`
	Visible    *bool  `json:"visibleToPlayers"`
	MonsterID  string `json:"monsterId"`
}

func (*PlaceToken) Kind() string { return "place_token" }

// MoveToken moves an existing token.
type MoveToken struct {
	Label string `json:"label"`
	GridX *int   `json:"gridX"`
	GridY *int   `json:"gridY"`
}

func (*MoveToken) Kind() string { return "move_token" }

// RemoveToken deletes a token from the active map.
type RemoveToken struct {
	Label string `json:"label"`
}

func (*RemoveToken) Kind() string { return "remove_token" }

// UpdateToken changes token statistics. Only fields that are present are
// applied.
type UpdateToken struct {
	Label    string `json:"label"`
	NewLabel string `json:"newLabel"`
	HP       *int   `json:"hp"`
	MaxHP    *int   `json:"maxHp"`
	AC       *int   `json:"ac"`
	Speed    *int   `json:"speed"`
	Size     *int   `json:"size"`
	Visible  *bool  `json:"visibleToPlayers"`
}

func (*UpdateToken) Kind() string { return "update_token" }
