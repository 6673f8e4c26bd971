package session

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store owns a State and serialises access to it.
// All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state *State
}

// NewStore wraps st. A nil st starts from New().
func NewStore(st *State) *Store {
	if st == nil {
		st = New()
	}
	return &Store{state: st}
}

// Mutate runs fn with exclusive access to the state and returns its error.
// Changes made before fn fails are kept.
func (s *Store) Mutate(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// Read runs fn with shared access. fn must not modify the state.
func (s *Store) Read(fn func(*State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// LoadYAML decodes a state fixture.
//
// Postcondition: unknown fields are rejected; the returned state has a
// default ambient light when the fixture leaves it empty.
func LoadYAML(r io.Reader) (*State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}
	st := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return st, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(st); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	if st.Environment.AmbientLight == "" {
		st.Environment.AmbientLight = LightBright
	}
	return st, nil
}
