package executor

import (
	"slices"
	"strings"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/lighting"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

func revealFog(c *Context, d *directive.RevealFog) error {
	m, err := c.requireMap()
	if err != nil {
		return err
	}
	if len(d.Cells) == 0 {
		return validationf("Missing cells")
	}
	m.Reveal(d.Cells)
	c.Out.Push(broadcast.ChannelFog, broadcast.FogPayload{MapID: m.ID, Cells: slices.Clone(d.Cells), Reveal: true})
	return nil
}

func hideFog(c *Context, d *directive.HideFog) error {
	m, err := c.requireMap()
	if err != nil {
		return err
	}
	if len(d.Cells) == 0 {
		return validationf("Missing cells")
	}
	m.Hide(d.Cells)
	c.Out.Push(broadcast.ChannelFog, broadcast.FogPayload{MapID: m.ID, Cells: slices.Clone(d.Cells), Reveal: false})
	return nil
}

func setAmbientLight(c *Context, d *directive.SetAmbientLight) error {
	level := strings.ToLower(strings.TrimSpace(d.Level))
	if !session.ValidLight(level) {
		return validationf("Invalid light level: %s (expected bright, dim, or darkness)", d.Level)
	}
	c.State.Environment.AmbientLight = level
	c.Notice("The light is now %s.", level)
	return nil
}

func setWeather(c *Context, d *directive.SetWeather) error {
	c.State.Environment.Weather = strings.TrimSpace(d.Weather)
	if c.State.Environment.Weather == "" {
		c.Notice("The weather clears.")
	} else {
		c.Notice("Weather: %s", c.State.Environment.Weather)
	}
	return nil
}

func setMoonPhase(c *Context, d *directive.SetMoonPhase) error {
	c.State.Environment.MoonPhase = strings.TrimSpace(d.Phase)
	return nil
}

func setUnderwater(c *Context, d *directive.SetUnderwater) error {
	c.State.Environment.Underwater = d.Underwater
	if d.Underwater {
		c.Notice("The party is now underwater.")
	} else {
		c.Notice("The party is out of the water.")
	}
	return nil
}

// Travel paces.
const (
	PaceFast   = "fast"
	PaceNormal = "normal"
	PaceSlow   = "slow"
)

func setTravelPace(c *Context, d *directive.SetTravelPace) error {
	pace := strings.ToLower(strings.TrimSpace(d.Pace))
	switch pace {
	case PaceFast, PaceNormal, PaceSlow:
	default:
		return validationf("Invalid travel pace: %s (expected fast, normal, or slow)", d.Pace)
	}
	c.State.Environment.TravelPace = pace
	c.Notice("Travel pace set to %s.", pace)
	return nil
}

func lightSource(c *Context, d *directive.LightSource) error {
	if strings.TrimSpace(d.SourceName) == "" {
		return validationf("Missing sourceName")
	}
	src, ok := c.Lights.Lookup(d.SourceName)
	if !ok {
		return notFoundf("Unknown light source: %s (known: %s)", d.SourceName, strings.Join(c.Lights.Keys(), ", "))
	}
	id, name, err := c.entity(d.EntityLabel)
	if err != nil {
		return err
	}
	c.State.Lights = append(c.State.Lights, &session.LightSource{
		ID:              session.NewID(),
		EntityID:        id,
		EntityName:      name,
		SourceKey:       src.Key,
		SourceName:      src.Name,
		BrightRadius:    src.BrightRadius,
		DimRadius:       src.DimRadius,
		LitAt:           c.State.Time.Seconds,
		DurationSeconds: src.DurationSeconds,
	})
	c.Notice("%s lights %s (%d ft bright, %d ft dim)", name, src.Name, src.BrightRadius, src.DimRadius)
	return nil
}

// extinguishLight removes the best-matching light: an exact entity name
// beats a prefix, and a named source beats any source.
func extinguishLight(c *Context, d *directive.ExtinguishLight) error {
	who := strings.ToLower(strings.TrimSpace(d.EntityLabel))
	if who == "" {
		return validationf("Missing entityLabel")
	}
	what := lighting.Normalize(d.SourceName)

	best, bestScore := -1, 0
	for i, l := range c.State.Lights {
		score := 0
		entity := strings.ToLower(l.EntityName)
		switch {
		case entity == who:
			score = 4
		case strings.HasPrefix(entity, who):
			score = 2
		default:
			continue
		}
		if what != "" {
			if !strings.Contains(l.SourceKey, what) && !strings.Contains(lighting.Normalize(l.SourceName), what) {
				continue
			}
			score++
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		if d.SourceName != "" {
			return notFoundf("No %s carried by %s", d.SourceName, d.EntityLabel)
		}
		return notFoundf("No light source carried by %s", d.EntityLabel)
	}
	l := c.State.Lights[best]
	c.State.Lights = append(c.State.Lights[:best], c.State.Lights[best+1:]...)
	c.Notice("%s's %s goes out", l.EntityName, l.SourceName)
	return nil
}

func switchMap(c *Context, d *directive.SwitchMap) error {
	if strings.TrimSpace(d.MapName) == "" {
		return validationf("Missing mapName")
	}
	m, ok := c.State.FindMap(d.MapName)
	if !ok {
		return notFoundf("Map not found: %s", d.MapName)
	}
	c.State.ActiveMapID = m.ID
	c.Map = m
	c.Out.Push(broadcast.ChannelMap, broadcast.MapPayload{MapID: m.ID, MapName: m.Name})
	c.Sync.PushTokens(c.State, m.ID)
	c.Notice("The scene shifts to %s.", m.Name)
	return nil
}
