// Package repl provides the interactive shell for keyden-cli.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Sender delivers one command line to the server and returns its reply.
type Sender interface {
	Send(line string) (string, error)
}

const helpText = `Commands:
  create <db> [<user> <pass>]    create a database and select it
  use <db> [<user> <pass>]       select a database
  drop <db> [<user> <pass>]      delete a database
  SET("key","value"[,"<ttl>"])   store a value, TTL like "30s", "5m" or "1d"
  GET("key")                     read a value
  DEL("key")                     delete a key
  exit                           close the session
  help [prefix]                  show commands, optionally filtered
  clear                          clear the screen`

// REPL reads command lines, forwards them over one server session and
// prints the replies. help and clear are handled locally.
type REPL struct {
	input     io.Reader
	output    io.Writer
	client    Sender
	history   *History
	completer *Completer

	// selected mirrors the session's database, parsed from the
	// server's own create/use/drop confirmations.
	selected string
}

// New creates a shell over an established client session.
func New(client Sender, input io.Reader, output io.Writer, history *History) *REPL {
	return &REPL{
		input:     input,
		output:    output,
		client:    client,
		history:   history,
		completer: NewCompleter(),
	}
}

// Run drives the shell until EOF, exit or a connection failure.
// History loads before the first prompt and saves on the way out.
func (r *REPL) Run() error {
	_ = r.history.Load()
	defer func() { _ = r.history.Save() }()

	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, r.prompt())

		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.history.Add(line)

		if r.handleLocal(line) {
			continue
		}

		resp, err := r.client.Send(line)
		if err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}

		fmt.Fprintln(r.output, resp)
		r.track(line, resp)

		if resp == "bye" {
			return nil
		}
	}
}

func (r *REPL) prompt() string {
	if r.selected == "" {
		return "keyden> "
	}
	return fmt.Sprintf("keyden[%s]> ", r.selected)
}

// handleLocal reports whether line was a shell-only command.
func (r *REPL) handleLocal(line string) bool {
	switch {
	case line == "help":
		fmt.Fprintln(r.output, helpText)
		return true
	case strings.HasPrefix(line, "help "):
		prefix := strings.TrimSpace(strings.TrimPrefix(line, "help "))
		for _, cmd := range r.completer.Complete(prefix) {
			fmt.Fprintln(r.output, cmd)
		}
		return true
	case line == "clear":
		fmt.Fprint(r.output, "\033[2J\033[H")
		return true
	}
	return false
}

// track updates the prompt's database from a confirmation response.
// Parsing is gated on the command verb so a GET whose value happens to
// look like a confirmation cannot spoof the prompt.
func (r *REPL) track(line, resp string) {
	verb, _, _ := strings.Cut(line, " ")
	switch verb {
	case "create", "use":
		if name := selectedFrom(resp); name != "" {
			r.selected = name
		}
	case "drop":
		if name := droppedFrom(resp); name != "" && name == r.selected {
			r.selected = ""
		}
	}
}

func selectedFrom(resp string) string {
	if rest, ok := strings.CutPrefix(resp, "Using database '"); ok {
		if name, ok := strings.CutSuffix(rest, "'"); ok {
			return name
		}
	}
	if rest, ok := strings.CutPrefix(resp, "Database '"); ok {
		if name, ok := strings.CutSuffix(rest, "' created"); ok {
			return name
		}
	}
	return ""
}

func droppedFrom(resp string) string {
	if rest, ok := strings.CutPrefix(resp, "Database '"); ok {
		if name, ok := strings.CutSuffix(rest, "' deleted"); ok {
			return name
		}
	}
	return ""
}
