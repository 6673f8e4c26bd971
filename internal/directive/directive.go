// Package directive defines the tagged instructions an external producer
// submits to change game state.
//
// On the wire a directive is a JSON object with a "kind" field and
// kind-specific fields. Decode turns that freeform form into one concrete
// struct per built-in kind, or an Opaque value for kinds it does not know
// (plugin kinds under "plugin:").
package directive

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// PluginPrefix namespaces every plugin-registered kind.
const PluginPrefix = "plugin:"

// ErrMissingKind is returned when a directive has no kind.
var ErrMissingKind = errors.New("Missing directive kind")

// Raw is the wire form of a directive.
type Raw map[string]any

// Kind returns the raw kind field, or "" when absent or not a string.
func (r Raw) Kind() string {
	k, _ := r["kind"].(string)
	return strings.TrimSpace(k)
}

// String returns a field as a string, or "".
func (r Raw) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Directive is implemented by every decoded directive.
type Directive interface {
	Kind() string
}

// Opaque carries a directive whose kind is not built in. Fields holds the
// complete raw payload, kind included.
type Opaque struct {
	Name   string
	Fields Raw
}

// Kind implements Directive.
func (o Opaque) Kind() string { return o.Name }

// IsPlugin reports whether the kind is namespaced under "plugin:".
func (o Opaque) IsPlugin() bool { return strings.HasPrefix(o.Name, PluginPrefix) }

var builtins = map[string]func() Directive{}

func register(kind string, ctor func() Directive) {
	if _, dup := builtins[kind]; dup {
		panic("directive: duplicate kind " + kind)
	}
	builtins[kind] = ctor
}

// IsBuiltin reports whether kind has a built-in decoder.
func IsBuiltin(kind string) bool {
	_, ok := builtins[kind]
	return ok
}

// Kinds returns every built-in kind in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(builtins))
	for k := range builtins {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Decode converts raw to its concrete directive type. Numbers given as
// strings and similar loose typing from generated payloads are accepted;
// unknown fields are ignored.
//
// Postcondition: returns ErrMissingKind when raw has no kind; returns an
// Opaque for non-built-in kinds; otherwise returns a pointer to the
// kind's struct.
func Decode(raw Raw) (Directive, error) {
	kind := raw.Kind()
	if kind == "" {
		return nil, ErrMissingKind
	}
	ctor, ok := builtins[kind]
	if !ok {
		return Opaque{Name: kind, Fields: raw}, nil
	}
	d := ctor()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           d,
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
	})
	if err != nil {
		return nil, fmt.Errorf("building decoder for %s: %w", kind, err)
	}
	if err := dec.Decode(map[string]any(raw)); err != nil {
		return nil, fmt.Errorf("Invalid %s directive: %w", kind, err)
	}
	return d, nil
}
