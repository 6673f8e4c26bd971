package command

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cory-johannsen/dmengine/internal/game/dice"
)

// ErrNameTaken is returned by Register when a name or alias is in use.
var ErrNameTaken = errors.New("command name taken")

// Registry maps command names and aliases to Commands. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	// index maps every name and alias to its command's canonical name.
	index map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: map[string]*Command{}, index: map[string]string{}}
}

// DefaultRegistry returns a Registry holding the built-in commands.
//
// Precondition: roller is non-nil.
func DefaultRegistry(roller *dice.Roller) *Registry {
	r := NewRegistry()
	for _, c := range BuiltinCommands(roller, r) {
		if err := r.Register(c); err != nil {
			panic(fmt.Sprintf("building default registry: %v", err))
		}
	}
	return r
}

// Register adds cmd under its name and aliases.
//
// Precondition: cmd.Name is non-empty and cmd.Run is non-nil.
// Postcondition: On error (including ErrNameTaken) the registry is unchanged.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" || cmd.Run == nil {
		return errors.New("command needs a name and a handler")
	}
	names := append([]string{cmd.Name}, cmd.Aliases...)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range names {
		if holder, ok := r.index[n]; ok {
			return fmt.Errorf("%w: /%s belongs to /%s", ErrNameTaken, n, holder)
		}
		if slices.Contains(names[:i], n) {
			return fmt.Errorf("%w: /%s repeated in /%s", ErrNameTaken, n, cmd.Name)
		}
	}
	c := cmd
	r.commands[c.Name] = &c
	for _, n := range names {
		r.index[n] = c.Name
	}
	return nil
}

// RemoveOwner unregisters every command owned by owner and reports how many
// were removed.
func (r *Registry) RemoveOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for name, c := range r.commands {
		if c.Owner != owner {
			continue
		}
		delete(r.index, name)
		for _, a := range c.Aliases {
			delete(r.index, a)
		}
		delete(r.commands, name)
		removed++
	}
	return removed
}

// Resolve finds a command by name or alias.
func (r *Registry) Resolve(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	canonical, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.commands[canonical], true
}

// Execute parses line and runs the matching command.
func (r *Registry) Execute(line string) (string, error) {
	in, err := Parse(line)
	if err != nil {
		return "", err
	}
	if in.Command == "" {
		return "", errors.New("empty command")
	}
	cmd, ok := r.Resolve(in.Command)
	if !ok {
		return "", fmt.Errorf("unknown command: /%s", in.Command)
	}
	return cmd.Run(in)
}

// Commands returns every command sorted by name.
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	out := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Command) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// CommandsByCategory groups Commands by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	out := map[string][]*Command{}
	for _, c := range r.Commands() {
		out[c.Category] = append(out[c.Category], c)
	}
	return out
}
