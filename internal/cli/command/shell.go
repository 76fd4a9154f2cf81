// Package command defines the commands for keyden-cli.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/keydenlabs/keyden/internal/cli/connection"
	"github.com/keydenlabs/keyden/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Open an interactive shell",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "history file (default ~/.keyden/history)",
			},
		},
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	s := ParseSettings(c)
	mgr := connection.NewManager(s.Server, s.Admin, s.Timeout)
	defer mgr.Close()

	client, err := mgr.Text()
	if err != nil {
		return fmt.Errorf("connect to %s: %w", s.Server, err)
	}

	fmt.Fprintf(c.App.Writer, "Connected to %s. Type help for commands, exit to leave.\n", s.Server)

	history := repl.NewHistory(c.String("history"))
	return repl.New(client, c.App.Reader, c.App.Writer, history).Run()
}
