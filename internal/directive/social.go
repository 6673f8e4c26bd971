package directive

func init() {
	register("open_shop", func() Directive { return &OpenShop{} })
	register("close_shop", func() Directive { return &CloseShop{} })
	register("add_shop_item", func() Directive { return &AddShopItem{} })
	register("remove_shop_item", func() Directive { return &RemoveShopItem{} })
	register("add_sidebar_entry", func() Directive { return &AddSidebarEntry{} })
	register("remove_sidebar_entry", func() Directive { return &RemoveSidebarEntry{} })
	register("set_attitude", func() Directive { return &SetAttitude{} })
	register("add_journal_entry", func() Directive { return &AddJournalEntry{} })
	register("whisper", func() Directive { return &Whisper{} })
	register("narrate", func() Directive { return &Narrate{} })
	register("roll_dice", func() Directive { return &RollDice{} })
}

// ShopItem is one inventory line in shop directives.
type ShopItem struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// OpenShop presents a merchant to the players.
type OpenShop struct {
	Name  string     `json:"name"`
	Items []ShopItem `json:"items"`
}

func (*OpenShop) Kind() string { return "open_shop" }

// CloseShop hides the merchant.
type CloseShop struct{}

func (*CloseShop) Kind() string { return "close_shop" }

// AddShopItem adds or restocks an item.
type AddShopItem struct {
	ShopItem `json:",squash"`
}

func (*AddShopItem) Kind() string { return "add_shop_item" }

// RemoveShopItem removes an item.
type RemoveShopItem struct {
	Name string `json:"name"`
}

func (*RemoveShopItem) Kind() string { return "remove_shop_item" }

// AddSidebarEntry remembers an ally, enemy, or place.
type AddSidebarEntry struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Attitude    string `json:"attitude"`
}

func (*AddSidebarEntry) Kind() string { return "add_sidebar_entry" }

// RemoveSidebarEntry forgets a sidebar entry.
type RemoveSidebarEntry struct {
	Name string `json:"name"`
}

func (*RemoveSidebarEntry) Kind() string { return "remove_sidebar_entry" }

// SetAttitude changes a sidebar entry's attitude.
type SetAttitude struct {
	Name     string `json:"name"`
	Attitude string `json:"attitude"`
}

func (*SetAttitude) Kind() string { return "set_attitude" }

// AddJournalEntry writes a session log note.
type AddJournalEntry struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (*AddJournalEntry) Kind() string { return "add_journal_entry" }

// Whisper sends a private message to one player.
type Whisper struct {
	TargetName string `json:"targetName"`
	Message    string `json:"message"`
}

func (*Whisper) Kind() string { return "whisper" }

// Narrate posts narration to the table.
type Narrate struct {
	Text string `json:"text"`
}

func (*Narrate) Kind() string { return "narrate" }

// RollDice rolls a formula in the open.
type RollDice struct {
	Formula string `json:"formula"`
	Reason  string `json:"reason"`
}

func (*RollDice) Kind() string { return "roll_dice" }
