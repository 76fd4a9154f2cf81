// Package repl provides the interactive shell for keyden-cli.
package repl

import "strings"

// Completer matches partial input against the command vocabulary.
type Completer struct {
	commands []string
}

// NewCompleter builds a completer over the wire commands plus the
// shell's own local commands.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"create",
			"use",
			"drop",
			"SET(",
			"GET(",
			"DEL(",
			"exit",
			"help",
			"clear",
		},
	}
}

// Complete returns the commands starting with prefix. An empty prefix
// returns the full vocabulary.
func (c *Completer) Complete(prefix string) []string {
	if prefix == "" {
		return append([]string(nil), c.commands...)
	}

	var matches []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			matches = append(matches, cmd)
		}
	}
	return matches
}
