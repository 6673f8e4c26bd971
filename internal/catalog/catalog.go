// Package catalog provides read access to game content the engine consumes
// but does not own. Content is reached through the Loader interface and
// loaded at most once per process.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dmengine/internal/game/resolve"
)

// Speeds are movement speeds in feet per round.
type Speeds struct {
	Walk  int `yaml:"walk"`
	Fly   int `yaml:"fly"`
	Swim  int `yaml:"swim"`
	Climb int `yaml:"climb"`
}

// Recharge is an ability that becomes available again on a d6 roll of On
// or higher.
type Recharge struct {
	Name string `yaml:"name"`
	On   int    `yaml:"on"`
}

// Monster is a stat block entry.
type Monster struct {
	ID                   string     `yaml:"id"`
	Name                 string     `yaml:"name"`
	HP                   int        `yaml:"hp"`
	AC                   int        `yaml:"ac"`
	Speed                Speeds     `yaml:"speed"`
	Size                 int        `yaml:"size"`
	InitiativeModifier   int        `yaml:"initiative_modifier"`
	LegendaryActions     int        `yaml:"legendary_actions"`
	LegendaryResistances int        `yaml:"legendary_resistances"`
	Recharge             []Recharge `yaml:"recharge"`
}

// Validate reports the first problem with m.
func (m *Monster) Validate() error {
	if m.ID == "" {
		return errors.New("monster id must not be empty")
	}
	if m.Name == "" {
		return fmt.Errorf("monster %s: name must not be empty", m.ID)
	}
	if m.HP < 0 || m.AC < 0 {
		return fmt.Errorf("monster %s: hp and ac must not be negative", m.ID)
	}
	if m.LegendaryActions < 0 || m.LegendaryResistances < 0 {
		return fmt.Errorf("monster %s: legendary counts must not be negative", m.ID)
	}
	for _, r := range m.Recharge {
		if r.Name == "" || r.On < 1 || r.On > 6 {
			return fmt.Errorf("monster %s: recharge %q must have a name and an on value of 1-6", m.ID, r.Name)
		}
	}
	return nil
}

// Loader supplies monsters.
type Loader interface {
	LoadMonsters(ctx context.Context) ([]*Monster, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]*Monster, error)

// LoadMonsters calls f.
func (f LoaderFunc) LoadMonsters(ctx context.Context) ([]*Monster, error) { return f(ctx) }

// Static returns a Loader over a fixed list.
func Static(monsters ...*Monster) Loader {
	return LoaderFunc(func(context.Context) ([]*Monster, error) { return monsters, nil })
}

// Catalog indexes monsters by id and name.
type Catalog struct {
	monsters []*Monster
	byID     map[string]*Monster
}

// New indexes monsters.
//
// Postcondition: returns an error on an invalid monster or a duplicate id.
func New(monsters []*Monster) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Monster, len(monsters))}
	for _, m := range monsters {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(m.ID)
		if _, dup := c.byID[key]; dup {
			return nil, fmt.Errorf("duplicate monster id %q", m.ID)
		}
		c.byID[key] = m
		c.monsters = append(c.monsters, m)
	}
	return c, nil
}

// Monster finds ref by case-insensitive id, then by name.
func (c *Catalog) Monster(ref string) (*Monster, bool) {
	if m, ok := c.byID[strings.ToLower(ref)]; ok {
		return m, true
	}
	return resolve.ByName(c.monsters, func(m *Monster) string { return m.Name }, ref)
}

// Len returns the number of monsters.
func (c *Catalog) Len() int { return len(c.monsters) }

// Lazy loads a Catalog on first use and caches the outcome, including a
// failure.
type Lazy struct {
	loader Loader
	once   sync.Once
	cat    *Catalog
	err    error
}

// NewLazy wraps loader. A nil loader yields an empty catalog.
func NewLazy(loader Loader) *Lazy {
	return &Lazy{loader: loader}
}

// Get returns the catalog, loading it on the first call.
func (l *Lazy) Get(ctx context.Context) (*Catalog, error) {
	l.once.Do(func() {
		if l.loader == nil {
			l.cat, l.err = New(nil)
			return
		}
		monsters, err := l.loader.LoadMonsters(ctx)
		if err != nil {
			l.err = fmt.Errorf("loading monster catalog: %w", err)
			return
		}
		l.cat, l.err = New(monsters)
	})
	return l.cat, l.err
}

type monsterFile struct {
	Monsters []*Monster `yaml:"monsters"`
}

// Parse decodes a YAML document with a top-level monsters list. Unknown
// fields are rejected.
func Parse(r io.Reader) ([]*Monster, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f monsterFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing monster catalog: %w", err)
	}
	return f.Monsters, nil
}

// File loads monsters from a YAML file.
type File string

// LoadMonsters reads and parses the file.
func (f File) LoadMonsters(context.Context) ([]*Monster, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}
