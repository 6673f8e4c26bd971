package executor

import (
	"strings"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/resolve"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// Sidebar categories.
const (
	CategoryAlly  = "ally"
	CategoryEnemy = "enemy"
	CategoryPlace = "place"
)

var categoryAliases = map[string]string{
	"ally": CategoryAlly, "allies": CategoryAlly, "friend": CategoryAlly, "npc": CategoryAlly,
	"enemy": CategoryEnemy, "enemies": CategoryEnemy, "foe": CategoryEnemy,
	"place": CategoryPlace, "places": CategoryPlace, "location": CategoryPlace,
}

var attitudes = map[string]bool{"friendly": true, "neutral": true, "hostile": true}

func sidebarCategory(s string) (string, error) {
	cat, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", validationf("Invalid category: %s (expected ally, enemy, or place)", s)
	}
	return cat, nil
}

func attitude(s string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(s))
	if a != "" && !attitudes[a] {
		return "", validationf("Invalid attitude: %s (expected friendly, neutral, or hostile)", s)
	}
	return a, nil
}

func shopItem(it directive.ShopItem) (*session.ShopItem, error) {
	name := strings.TrimSpace(it.Name)
	if name == "" {
		return nil, validationf("Missing item name")
	}
	if it.Price < 0 || it.Quantity < 0 {
		return nil, validationf("Invalid price or quantity for %s", name)
	}
	return &session.ShopItem{Name: name, Price: it.Price, Quantity: it.Quantity}, nil
}

func openShop(c *Context, d *directive.OpenShop) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return validationf("Missing name")
	}
	items := make([]*session.ShopItem, 0, len(d.Items))
	for _, raw := range d.Items {
		it, err := shopItem(raw)
		if err != nil {
			return err
		}
		items = append(items, it)
	}
	c.State.Shop = session.Shop{Open: true, Name: name, Items: items}
	c.Sync.PushShop(c.State)
	c.Notice("%s opens for business.", name)
	return nil
}

func closeShop(c *Context) error {
	if !c.State.Shop.Open {
		return preconditionf("No shop is open")
	}
	name := c.State.Shop.Name
	c.State.Shop.Open = false
	c.Sync.PushShop(c.State)
	c.Notice("%s closes.", name)
	return nil
}

// addShopItem restocks an existing line by name or appends a new one.
func addShopItem(c *Context, d *directive.AddShopItem) error {
	if !c.State.Shop.Open {
		return preconditionf("No shop is open")
	}
	it, err := shopItem(d.ShopItem)
	if err != nil {
		return err
	}
	shop := &c.State.Shop
	replaced := false
	for _, existing := range shop.Items {
		if strings.EqualFold(existing.Name, it.Name) {
			existing.Price = it.Price
			existing.Quantity += it.Quantity
			replaced = true
			break
		}
	}
	if !replaced {
		shop.Items = append(shop.Items, it)
	}
	c.Sync.PushShop(c.State)
	return nil
}

func removeShopItem(c *Context, d *directive.RemoveShopItem) error {
	if !c.State.Shop.Open {
		return preconditionf("No shop is open")
	}
	if strings.TrimSpace(d.Name) == "" {
		return validationf("Missing name")
	}
	shop := &c.State.Shop
	i, ok := shop.FindItem(d.Name)
	if !ok {
		return notFoundf("Shop item not found: %s", d.Name)
	}
	shop.Items = append(shop.Items[:i], shop.Items[i+1:]...)
	c.Sync.PushShop(c.State)
	return nil
}

func addSidebarEntry(c *Context, d *directive.AddSidebarEntry) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return validationf("Missing name")
	}
	cat, err := sidebarCategory(d.Category)
	if err != nil {
		return err
	}
	att, err := attitude(d.Attitude)
	if err != nil {
		return err
	}
	for _, e := range c.State.Sidebar {
		if strings.EqualFold(e.Name, name) {
			e.Category, e.Description = cat, d.Description
			if att != "" {
				e.Attitude = att
			}
			return nil
		}
	}
	c.State.Sidebar = append(c.State.Sidebar, &session.SidebarEntry{
		ID:          session.NewID(),
		Category:    cat,
		Name:        name,
		Description: d.Description,
		Attitude:    att,
	})
	c.Notice("New %s noted: %s", cat, name)
	return nil
}

func (c *Context) sidebarEntry(name string) (*session.SidebarEntry, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationf("Missing name")
	}
	e, ok := resolve.ByName(c.State.Sidebar, func(e *session.SidebarEntry) string { return e.Name }, name)
	if !ok {
		return nil, notFoundf("Sidebar entry not found: %s", name)
	}
	return e, nil
}

func removeSidebarEntry(c *Context, d *directive.RemoveSidebarEntry) error {
	e, err := c.sidebarEntry(d.Name)
	if err != nil {
		return err
	}
	c.State.Sidebar = removePtr(c.State.Sidebar, e)
	return nil
}

func setAttitude(c *Context, d *directive.SetAttitude) error {
	att, err := attitude(d.Attitude)
	if err != nil {
		return err
	}
	if att == "" {
		return validationf("Missing attitude")
	}
	e, err := c.sidebarEntry(d.Name)
	if err != nil {
		return err
	}
	e.Attitude = att
	c.Notice("%s is now %s.", e.Name, att)
	return nil
}

func addJournalEntry(c *Context, d *directive.AddJournalEntry) error {
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == "" {
		return validationf("Missing title/content")
	}
	c.State.Journal = append(c.State.Journal, &session.JournalEntry{
		ID:      session.NewID(),
		Title:   strings.TrimSpace(d.Title),
		Content: d.Content,
		Day:     c.State.Time.Day(),
	})
	return nil
}

func whisper(c *Context, d *directive.Whisper) error {
	if strings.TrimSpace(d.Message) == "" {
		return validationf("Missing message")
	}
	if strings.TrimSpace(d.TargetName) == "" {
		return validationf("Missing targetName")
	}
	p, ok := c.State.FindPlayer(d.TargetName)
	if !ok {
		return notFoundf("Player not found: %s", d.TargetName)
	}
	c.Out.Push(broadcast.ChannelWhisper, broadcast.WhisperPayload{TargetPeerID: p.PeerID, Message: d.Message})
	return nil
}

func narrate(c *Context, d *directive.Narrate) error {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return validationf("Missing text")
	}
	c.Notice("%s", text)
	return nil
}

func rollDice(c *Context, d *directive.RollDice) error {
	if strings.TrimSpace(d.Formula) == "" {
		return validationf("Missing formula")
	}
	res, err := c.Roller.RollExpr(d.Formula)
	if err != nil {
		return classify(ErrValidation, err)
	}
	if d.Reason != "" {
		c.Notice("%s: %s", d.Reason, res)
		return nil
	}
	c.Notice("Rolled %s", res)
	return nil
}
