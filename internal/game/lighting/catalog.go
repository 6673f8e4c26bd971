// Package lighting holds the catalog of light sources a DM can kindle.
package lighting

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSources []byte

// Source describes one kind of light source.
type Source struct {
	Key          string `yaml:"key"`
	Name         string `yaml:"name"`
	BrightRadius int    `yaml:"bright_radius"`
	DimRadius    int    `yaml:"dim_radius"`
	// DurationSeconds of 0 means the light never burns out.
	DurationSeconds int `yaml:"duration_seconds"`
}

// Permanent reports whether the source never expires.
func (s Source) Permanent() bool { return s.DurationSeconds == 0 }

// Catalog maps normalized keys to light sources.
type Catalog struct {
	byKey map[string]Source
}

// Normalize lowercases s and joins its words with underscores, stripping
// parenthesised qualifiers: "Light (cantrip)" becomes "light".
func Normalize(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	s = strings.NewReplacer("-", " ", "'", "").Replace(strings.ToLower(s))
	return strings.Join(strings.Fields(s), "_")
}

// Parse decodes a YAML list of sources.
//
// Postcondition: every source has a non-empty key; duplicate keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var list []Source
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("parsing light sources: %w", err)
	}
	c := &Catalog{byKey: make(map[string]Source, len(list))}
	for _, s := range list {
		key := Normalize(s.Key)
		if key == "" {
			key = Normalize(s.Name)
		}
		if key == "" {
			return nil, fmt.Errorf("light source %q has no key", s.Name)
		}
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate light source %q", key)
		}
		s.Key = key
		c.byKey[key] = s
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultSources)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the source whose normalized key matches name.
func (c *Catalog) Lookup(name string) (Source, bool) {
	s, ok := c.byKey[Normalize(name)]
	return s, ok
}

// Keys returns every key in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
