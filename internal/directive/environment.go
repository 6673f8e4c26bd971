package directive

import "github.com/cory-johannsen/dmengine/internal/game/session"

func init() {
	register("reveal_fog", func() Directive { return &RevealFog{} })
	register("hide_fog", func() Directive { return &HideFog{} })
	register("set_ambient_light", func() Directive { return &SetAmbientLight{} })
	register("set_weather", func() Directive { return &SetWeather{} })
	register("set_moon_phase", func() Directive { return &SetMoonPhase{} })
	register("set_underwater", func() Directive { return &SetUnderwater{} })
	register("set_travel_pace", func() Directive { return &SetTravelPace{} })
	register("light_source", func() Directive { return &LightSource{} })
	register("extinguish_light", func() Directive { return &ExtinguishLight{} })
	register("switch_map", func() Directive { return &SwitchMap{} })
}

// RevealFog uncovers cells on the active map.
type RevealFog struct {
	Cells []session.Cell `json:"cells"`
}

func (*RevealFog) Kind() string { return "reveal_fog" }

// HideFog re-covers cells on the active map.
type HideFog struct {
	Cells []session.Cell `json:"cells"`
}

func (*HideFog) Kind() string { return "hide_fog" }

// SetAmbientLight sets the scene light to bright, dim, or darkness.
type SetAmbientLight struct {
	Level string `json:"level"`
}

func (*SetAmbientLight) Kind() string { return "set_ambient_light" }

// SetWeather sets or clears (empty) the weather.
type SetWeather struct {
	Weather string `json:"weather"`
}

func (*SetWeather) Kind() string { return "set_weather" }

// SetMoonPhase sets or clears the moon phase.
type SetMoonPhase struct {
	Phase string `json:"phase"`
}

func (*SetMoonPhase) Kind() string { return "set_moon_phase" }

// SetUnderwater toggles underwater rules.
type SetUnderwater struct {
	Underwater bool `json:"underwater"`
}

func (*SetUnderwater) Kind() string { return "set_underwater" }

// SetTravelPace sets the overland pace: fast, normal, or slow.
type SetTravelPace struct {
	Pace string `json:"pace"`
}

func (*SetTravelPace) Kind() string { return "set_travel_pace" }

// LightSource kindles a catalogued light carried by an entity.
type LightSource struct {
	EntityLabel string `json:"entityLabel"`
	SourceName  string `json:"sourceName"`
}

func (*LightSource) Kind() string { return "light_source" }

// ExtinguishLight puts out a light. SourceName may be a substring; empty
// matches any source carried by the entity.
type ExtinguishLight struct {
	EntityLabel string `json:"entityLabel"`
	SourceName  string `json:"sourceName"`
}

func (*ExtinguishLight) Kind() string { return "extinguish_light" }

// SwitchMap makes another map active.
type SwitchMap struct {
	MapName string `json:"mapName"`
}

func (*SwitchMap) Kind() string { return "switch_map" }
