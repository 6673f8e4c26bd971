// Package command provides the chat command registry, parser, and built-in
// chat commands. Plugins add their own commands at runtime; each command
// records its owner so a plugin's commands can be removed together.
package command

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cory-johannsen/dmengine/internal/game/dice"
)

// Categories for organizing commands.
const (
	CategoryDice   = "dice"
	CategorySystem = "system"
	CategoryPlugin = "plugin"
)

// OwnerBuiltin owns every command registered by BuiltinCommands.
const OwnerBuiltin = "builtin"

// Func runs a command and returns the text to post to chat.
type Func func(in ParseResult) (string, error)

// Command defines a chat command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Owner is OwnerBuiltin or the id of the plugin that registered it.
	Owner string
	// Run executes the command.
	Run Func
}

// BuiltinCommands returns the built-in chat commands. roll uses roller;
// help lists reg.
//
// Precondition: roller and reg must be non-nil.
func BuiltinCommands(roller *dice.Roller, reg *Registry) []Command {
	return []Command{
		{
			Name: "roll", Aliases: []string{"r"}, Help: "Roll dice, e.g. /roll 2d6+3",
			Category: CategoryDice, Owner: OwnerBuiltin,
			Run: func(in ParseResult) (string, error) {
				if len(in.Args) == 0 {
					return "", errors.New("usage: /roll <formula>")
				}
				res, err := roller.RollExpr(in.Args[0])
				if err != nil {
					return "", err
				}
				return res.String(), nil
			},
		},
		{
			Name: "help", Aliases: []string{"?"}, Help: "List chat commands",
			Category: CategorySystem, Owner: OwnerBuiltin,
			Run: func(ParseResult) (string, error) {
				groups := reg.CommandsByCategory()
				var b strings.Builder
				for _, cat := range slices.Sorted(maps.Keys(groups)) {
					fmt.Fprintf(&b, "%s:\n", cat)
					for _, c := range groups[cat] {
						fmt.Fprintf(&b, "  /%s - %s\n", c.Name, c.Help)
					}
				}
				return strings.TrimSuffix(b.String(), "\n"), nil
			},
		},
	}
}
