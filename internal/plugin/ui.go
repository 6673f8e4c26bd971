package plugin

import (
	"sort"
	"sync"
)

// Contribution is a piece of UI a plugin adds to a named slot, such as a
// sidebar panel or a toolbar button.
type Contribution struct {
	PluginID string `json:"pluginId"`
	Slot     string `json:"slot"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Content  string `json:"content,omitempty"`
}

// UI tracks contributions so they can be listed and torn down per plugin.
// All methods are safe for concurrent use.
type UI struct {
	mu            sync.RWMutex
	contributions []Contribution
}

// NewUI returns an empty contribution table.
func NewUI() *UI { return &UI{} }

// Add records c, replacing an earlier contribution with the same plugin,
// slot, and id.
func (u *UI) Add(c Contribution) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, existing := range u.contributions {
		if existing.PluginID == c.PluginID && existing.Slot == c.Slot && existing.ID == c.ID {
			u.contributions[i] = c
			return
		}
	}
	u.contributions = append(u.contributions, c)
}

// Slot returns the contributions to slot ordered by plugin then id.
func (u *UI) Slot(slot string) []Contribution {
	u.mu.RLock()
	defer u.mu.RUnlock()
	var out []Contribution
	for _, c := range u.contributions {
		if c.Slot == slot {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PluginID != out[j].PluginID {
			return out[i].PluginID < out[j].PluginID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RemovePlugin deletes every contribution made by pluginID.
func (u *UI) RemovePlugin(pluginID string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	kept := u.contributions[:0]
	for _, c := range u.contributions {
		if c.PluginID != pluginID {
			kept = append(kept, c)
		}
	}
	removed := len(u.contributions) - len(kept)
	u.contributions = kept
	return removed
}

// Notifier delivers plugin notifications and sound cues to the table.
type Notifier interface {
	Notify(pluginID, message string)
	PlaySound(pluginID, sound string)
}
