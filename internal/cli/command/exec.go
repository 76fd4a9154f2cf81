// Package command defines the commands for keyden-cli.
package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/keydenlabs/keyden/internal/cli/connection"
)

// ExecCommand returns the exec command.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Send one protocol command and print the response",
		ArgsUsage: "COMMAND...",
		Description: "Arguments are joined into a single protocol line, " +
			"so `exec create orders` and `exec 'SET(\"k\",\"v\")'` both work. " +
			"Exits nonzero when the server answers with an error line.",
		Action: execAction,
	}
}

func execAction(c *cli.Context) error {
	line := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if line == "" {
		return fmt.Errorf("command required, e.g. keyden-cli exec 'GET(\"key\")'")
	}

	s := ParseSettings(c)
	mgr := connection.NewManager(s.Server, s.Admin, s.Timeout)
	defer mgr.Close()

	client, err := mgr.Text()
	if err != nil {
		return fmt.Errorf("connect to %s: %w", s.Server, err)
	}

	resp, err := client.Send(line)
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	fmt.Fprintln(c.App.Writer, resp)
	if connection.IsError(resp) {
		return cli.Exit("", 1)
	}
	return nil
}
