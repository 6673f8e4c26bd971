package condition

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultDefs []byte

// Def is the static definition of a condition tag, loaded from YAML.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// HasValue marks leveled conditions such as exhaustion.
	HasValue bool `yaml:"has_value"`
	// MaxValue caps a leveled condition; 0 means uncapped.
	MaxValue int `yaml:"max_value"`
}

// Registry holds all known Defs keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Lookup resolves a free-text tag ("Frightened", "frightened", " PRONE ")
// against IDs and display names.
func (r *Registry) Lookup(tag string) (*Def, bool) {
	key := Normalize(tag)
	if d, ok := r.defs[key]; ok {
		return d, true
	}
	for _, d := range r.defs {
		if Normalize(d.Name) == key {
			return d, true
		}
	}
	return nil, false
}

// All returns the registered Defs sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Normalize lowercases tag, trims it, and joins inner words with underscores.
func Normalize(tag string) string {
	return strings.Join(strings.Fields(strings.ToLower(tag)), "_")
}

// DefaultRegistry returns the built-in 5e condition set.
func DefaultRegistry() *Registry {
	reg, err := parseDefs(defaultDefs, "defaults.yaml")
	if err != nil {
		panic(fmt.Sprintf("building default condition registry: %v", err))
	}
	return reg
}

// LoadDirectory reads every *.yaml file in dir, each holding a list of Defs,
// and returns a populated Registry layered over the defaults.
//
// Precondition: dir must be a readable directory.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := DefaultRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		extra, err := parseDefs(data, path)
		if err != nil {
			return nil, err
		}
		for _, d := range extra.defs {
			reg.Register(d)
		}
	}
	return reg, nil
}

func parseDefs(data []byte, origin string) (*Registry, error) {
	var defs []*Def
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", origin, err)
	}
	reg := NewRegistry()
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("parsing %q: condition with empty id", origin)
		}
		reg.Register(d)
	}
	return reg, nil
}
