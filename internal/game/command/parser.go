package command

import (
	"fmt"
	"strings"

	"github.com/buildkite/shellwords"
)

// ParseResult is a chat line split into a command and its arguments.
type ParseResult struct {
	// Command is the lowercased first word, without its slash.
	Command string
	// Args are the remaining words. Quoted runs stay together, so
	// `/hp "Goblin Boss" -5` yields ["Goblin Boss", "-5"].
	Args []string
	// RawArgs is the untouched text after the command, for free-text commands.
	RawArgs string
}

// Parse splits a chat line such as `/note "east door" is barred`. The
// leading slash is optional.
//
// Postcondition: An empty line yields a zero ParseResult and nil error; an
// unbalanced quote yields an error.
func Parse(line string) (ParseResult, error) {
	line = strings.TrimPrefix(strings.TrimSpace(line), "/")
	name, rest, _ := strings.Cut(line, " ")
	if name == "" {
		return ParseResult{}, nil
	}
	res := ParseResult{Command: strings.ToLower(name), RawArgs: strings.TrimSpace(rest)}
	if res.RawArgs == "" {
		return res, nil
	}
	args, err := shellwords.SplitPosix(res.RawArgs)
	if err != nil {
		return ParseResult{}, fmt.Errorf("/%s: %w", res.Command, err)
	}
	if len(args) > 0 {
		res.Args = args
	}
	return res, nil
}
