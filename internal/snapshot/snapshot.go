// Package snapshot renders session state as a compact text block suitable
// for feeding back to whoever produces directives.
package snapshot

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dmengine/internal/game/combat"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// Header and Footer delimit every snapshot.
const (
	Header = "=== GAME STATE ==="
	Footer = "=== END GAME STATE ==="
)

// Build renders st. Sections whose collections are empty are omitted, so a
// fresh session yields only the header, the clock, and the footer.
//
// Precondition: st must be non-nil; the caller holds at least a read lock.
func Build(st *session.State) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')

	writeMap(&b, st)
	writeInitiative(&b, st)
	writeConditions(&b, st)
	writeEnvironment(&b, st.Environment)
	writeMaps(&b, st)
	writeTime(&b, st)
	writeShop(&b, st.Shop)
	writeEffects(&b, st)
	writeTraps(&b, st)

	b.WriteString(Footer)
	return b.String()
}

func writeMap(b *strings.Builder, st *session.State) {
	m := st.ActiveMap()
	if m == nil {
		return
	}
	fmt.Fprintf(b, "Active map: %s (%dx%d)\n", m.Name, m.Width, m.Height)
	if len(m.Tokens) == 0 {
		return
	}
	b.WriteString("Tokens:\n")
	for _, t := range m.Tokens {
		fmt.Fprintf(b, "- %s", t.Label)
		if t.EntityType != "" {
			fmt.Fprintf(b, " [%s]", t.EntityType)
		}
		fmt.Fprintf(b, " at (%d,%d)", t.X, t.Y)
		if t.Footprint() > 1 {
			fmt.Fprintf(b, " size %d", t.Footprint())
		}
		fmt.Fprintf(b, ", HP %d/%d", t.CurrentHP, t.MaxHP)
		if t.Bloodied() {
			b.WriteString(" [BLOODIED]")
		}
		if t.AC > 0 {
			fmt.Fprintf(b, ", AC %d", t.AC)
		}
		if s := speeds(t.Speeds); s != "" {
			fmt.Fprintf(b, ", speed %s", s)
		}
		if len(t.Conditions) > 0 {
			fmt.Fprintf(b, ", conditions: %s", strings.Join(t.Conditions, ", "))
		}
		if !t.Visible {
			b.WriteString(" (hidden)")
		}
		b.WriteByte('\n')
	}
}

func speeds(s session.Speeds) string {
	var parts []string
	if s.Walk > 0 {
		parts = append(parts, fmt.Sprintf("%d ft", s.Walk))
	}
	for _, x := range []struct {
		name string
		ft   int
	}{{"fly", s.Fly}, {"swim", s.Swim}, {"climb", s.Climb}} {
		if x.ft > 0 {
			parts = append(parts, fmt.Sprintf("%s %d ft", x.name, x.ft))
		}
	}
	return strings.Join(parts, ", ")
}

func writeInitiative(b *strings.Builder, st *session.State) {
	seq := st.Initiative
	if seq == nil || len(seq.Entries) == 0 {
		return
	}
	fmt.Fprintf(b, "Initiative (round %d):\n", seq.Round)
	current := seq.Current()
	for _, e := range seq.Entries {
		marker := "  "
		if e == current {
			marker = ">>"
		}
		fmt.Fprintf(b, "%s %s (%d)%s\n", marker, e.Name, e.Total, entryStatus(e))
	}
}

func entryStatus(e *combat.Entry) string {
	var b strings.Builder
	if e.Legendary != nil && e.Legendary.Maximum > 0 {
		fmt.Fprintf(&b, " [legendary actions %d/%d]", e.Legendary.Remaining(), e.Legendary.Maximum)
	}
	if e.Resistances != nil && e.Resistances.Max > 0 {
		fmt.Fprintf(&b, " [legendary resistances %d/%d]", e.Resistances.Remaining, e.Resistances.Max)
	}
	for _, r := range e.Recharge {
		state := "spent"
		if r.Available {
			state = "ready"
		}
		fmt.Fprintf(&b, " [%s %d-6: %s]", r.Name, r.RechargeOn, state)
	}
	return b.String()
}

func writeConditions(b *strings.Builder, st *session.State) {
	if len(st.Conditions) == 0 {
		return
	}
	b.WriteString("Active conditions:\n")
	for _, c := range st.Conditions {
		fmt.Fprintf(b, "- %s: %s", c.TargetName, c.Tag)
		if c.Value != nil {
			fmt.Fprintf(b, " %d", *c.Value)
		}
		fmt.Fprintf(b, " (%s)\n", c.DurationLabel())
	}
}

func writeEnvironment(b *strings.Builder, env session.Environment) {
	if env.IsDefault() {
		return
	}
	var parts []string
	if env.AmbientLight != "" && env.AmbientLight != session.LightBright {
		parts = append(parts, "light "+env.AmbientLight)
	}
	if env.Weather != "" {
		parts = append(parts, "weather "+env.Weather)
	}
	if env.MoonPhase != "" {
		parts = append(parts, "moon "+env.MoonPhase)
	}
	if env.Underwater {
		parts = append(parts, "underwater")
	}
	if env.TravelPace != "" {
		parts = append(parts, "pace "+env.TravelPace)
	}
	fmt.Fprintf(b, "Environment: %s\n", strings.Join(parts, ", "))
}

func writeMaps(b *strings.Builder, st *session.State) {
	if len(st.Maps) == 0 {
		return
	}
	names := make([]string, len(st.Maps))
	for i, m := range st.Maps {
		names[i] = m.Name
	}
	fmt.Fprintf(b, "Available maps: %s\n", strings.Join(names, ", "))
}

func writeTime(b *strings.Builder, st *session.State) {
	fmt.Fprintf(b, "Time: %s (%s)\n", st.Time, st.Time.Phase())
	if len(st.Lights) == 0 {
		return
	}
	b.WriteString("Light sources:\n")
	now := st.Time.Seconds
	for _, l := range st.Lights {
		left := "permanent"
		if r := l.Remaining(now); r >= 0 {
			left = remaining(r) + " left"
		}
		fmt.Fprintf(b, "- %s: %s (%s)\n", l.EntityName, l.SourceName, left)
	}
}

// remaining renders seconds as "45s", "12 min", or "5h 30m".
func remaining(sec int64) string {
	switch {
	case sec < 60:
		return fmt.Sprintf("%ds", sec)
	case sec < 3600:
		return fmt.Sprintf("%d min", sec/60)
	default:
		return fmt.Sprintf("%dh %02dm", sec/3600, (sec%3600)/60)
	}
}

func writeShop(b *strings.Builder, shop session.Shop) {
	if !shop.Open {
		return
	}
	fmt.Fprintf(b, "Shop open: %s (%d items)\n", shop.Name, len(shop.Items))
	for _, it := range shop.Items {
		stock := "unlimited"
		if it.Quantity > 0 {
			stock = fmt.Sprintf("%d in stock", it.Quantity)
		}
		fmt.Fprintf(b, "- %s: %d gp (%s)\n", it.Name, it.Price, stock)
	}
}

func writeEffects(b *strings.Builder, st *session.State) {
	if len(st.Effects) > 0 {
		names := make([]string, len(st.Effects))
		for i, e := range st.Effects {
			names[i] = e.Name
		}
		fmt.Fprintf(b, "Environmental effects: %s\n", strings.Join(names, ", "))
	}
	writeAfflictions(b, "Diseases", st.Diseases)
	writeAfflictions(b, "Curses", st.Curses)
}

func writeAfflictions(b *strings.Builder, title string, list []*session.Affliction) {
	if len(list) == 0 {
		return
	}
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = fmt.Sprintf("%s (%s)", a.TargetName, a.Name)
	}
	fmt.Fprintf(b, "%s: %s\n", title, strings.Join(parts, ", "))
}

func writeTraps(b *strings.Builder, st *session.State) {
	var armed []*session.Trap
	for _, t := range st.Traps {
		if t.Armed() {
			armed = append(armed, t)
		}
	}
	if len(armed) == 0 {
		return
	}
	b.WriteString("Armed traps (DM only):\n")
	for _, t := range armed {
		fmt.Fprintf(b, "- %s at (%d,%d)", t.Name, t.X, t.Y)
		if m, ok := st.MapByID(t.MapID); ok {
			fmt.Fprintf(b, " on %s", m.Name)
		}
		if t.DC > 0 {
			fmt.Fprintf(b, ", DC %d", t.DC)
		}
		if t.Damage != "" {
			fmt.Fprintf(b, ", %s", t.Damage)
		}
		b.WriteByte('\n')
	}
}
