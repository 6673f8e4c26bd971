package directive

import (
	"fmt"
	"strings"
)

// summaryFields are tried in order to name a directive's subject.
var summaryFields = []string{"label", "entityLabel", "name", "mapName", "stronghold", "targetName", "formula", "title"}

// Summarize renders a one-line human-readable description of raw, such as
// "move_token (Goblin)".
func Summarize(raw Raw) string {
	kind := raw.Kind()
	if kind == "" {
		kind = "(no kind)"
	}
	for _, f := range summaryFields {
		if v := strings.TrimSpace(fmt.Sprint(raw[f])); raw[f] != nil && v != "" {
			return fmt.Sprintf("%s (%s)", kind, v)
		}
	}
	return kind
}

// SummarizeBatch joins the summaries of every directive with "; ".
func SummarizeBatch(raws []Raw) string {
	parts := make([]string, len(raws))
	for i, r := range raws {
		parts[i] = Summarize(r)
	}
	return strings.Join(parts, "; ")
}
