package session

import "strings"

// Light levels accepted for ambient light.
const (
	LightBright   = "bright"
	LightDim      = "dim"
	LightDarkness = "darkness"
)

// ValidLight reports whether level is one of bright, dim, or darkness.
func ValidLight(level string) bool {
	switch level {
	case LightBright, LightDim, LightDarkness:
		return true
	}
	return false
}

// Environment holds the ambient flags of the current scene.
type Environment struct {
	AmbientLight string `json:"ambientLight" yaml:"ambient_light"`
	Weather      string `json:"weather,omitempty" yaml:"weather,omitempty"`
	MoonPhase    string `json:"moonPhase,omitempty" yaml:"moon_phase,omitempty"`
	Underwater   bool   `json:"underwater" yaml:"underwater"`
	TravelPace   string `json:"travelPace,omitempty" yaml:"travel_pace,omitempty"`
}

// DefaultEnvironment is bright light with every other flag unset.
func DefaultEnvironment() Environment {
	return Environment{AmbientLight: LightBright}
}

// IsDefault reports whether no flag differs from DefaultEnvironment.
func (e Environment) IsDefault() bool {
	return (e.AmbientLight == "" || e.AmbientLight == LightBright) &&
		e.Weather == "" && e.MoonPhase == "" && !e.Underwater && e.TravelPace == ""
}

// ShopItem is one line of a shop's inventory.
type ShopItem struct {
	Name string `json:"name" yaml:"name"`
	// Price is in gold pieces.
	Price int `json:"price" yaml:"price"`
	// Quantity of 0 means unlimited stock.
	Quantity int `json:"quantity" yaml:"quantity"`
}

// Shop is the merchant currently presented to players.
type Shop struct {
	Open  bool        `json:"open" yaml:"open"`
	Name  string      `json:"name" yaml:"name"`
	Items []*ShopItem `json:"items" yaml:"items"`
}

// FindItem resolves name against the inventory, exact match first.
func (s *Shop) FindItem(name string) (int, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	for i, it := range s.Items {
		if strings.ToLower(it.Name) == q {
			return i, true
		}
	}
	for i, it := range s.Items {
		if strings.HasPrefix(strings.ToLower(it.Name), q) {
			return i, true
		}
	}
	return -1, false
}

// SidebarEntry is a remembered ally, enemy, or place.
type SidebarEntry struct {
	ID          string `json:"id" yaml:"id"`
	Category    string `json:"category" yaml:"category"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Attitude    string `json:"attitude,omitempty" yaml:"attitude,omitempty"`
}

// JournalEntry is a session log note.
type JournalEntry struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Day     int    `json:"day" yaml:"day"`
}

// Timer is a countdown shown to players.
type Timer struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	Seconds   int    `json:"seconds" yaml:"seconds"`
	TargetID  string `json:"targetPeerId,omitempty" yaml:"target_id,omitempty"`
	StartedAt int64  `json:"startedAt" yaml:"started_at"`
}

// Effect is an environmental effect such as extreme cold or a wild magic
// zone.
type Effect struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Affliction is a disease or curse on a creature.
type Affliction struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	TargetID    string `json:"targetId,omitempty" yaml:"target_id,omitempty"`
	TargetName  string `json:"targetName" yaml:"target_name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Trap is a hazard placed on a map. Traps are DM-only until revealed.
type Trap struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	MapID    string `json:"mapId" yaml:"map_id"`
	X        int    `json:"gridX" yaml:"x"`
	Y        int    `json:"gridY" yaml:"y"`
	DC       int    `json:"dc,omitempty" yaml:"dc,omitempty"`
	Damage   string `json:"damage,omitempty" yaml:"damage,omitempty"`
	Revealed bool   `json:"revealed" yaml:"revealed"`
	Disarmed bool   `json:"disarmed" yaml:"disarmed"`
}

// Armed reports whether the trap is still hidden and live.
func (t *Trap) Armed() bool { return !t.Revealed && !t.Disarmed }

// LightSource is a lit torch, lantern, or spell carried by an entity.
type LightSource struct {
	ID           string `json:"id" yaml:"id"`
	EntityID     string `json:"entityId" yaml:"entity_id"`
	EntityName   string `json:"entityName" yaml:"entity_name"`
	SourceKey    string `json:"sourceName" yaml:"source_key"`
	SourceName   string `json:"displayName" yaml:"source_name"`
	BrightRadius int    `json:"brightRadius" yaml:"bright_radius"`
	DimRadius    int    `json:"dimRadius" yaml:"dim_radius"`
	LitAt        int64  `json:"startedAtSeconds" yaml:"lit_at"`
	// DurationSeconds of 0 means the light never expires.
	DurationSeconds int `json:"durationSeconds" yaml:"duration_seconds"`
}

// Remaining returns the seconds of light left at now, or -1 if permanent.
func (l *LightSource) Remaining(now int64) int64 {
	if l.DurationSeconds == 0 {
		return -1
	}
	left := l.LitAt + int64(l.DurationSeconds) - now
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether a timed light has burned out at now.
func (l *LightSource) Expired(now int64) bool {
	return l.DurationSeconds > 0 && l.Remaining(now) == 0
}

// Player is a connected peer and the character they play.
type Player struct {
	PeerID        string `json:"peerId" yaml:"peer_id"`
	DisplayName   string `json:"displayName" yaml:"display_name"`
	CharacterName string `json:"characterName,omitempty" yaml:"character_name,omitempty"`
	CharacterID   string `json:"characterId,omitempty" yaml:"character_id,omitempty"`
}
