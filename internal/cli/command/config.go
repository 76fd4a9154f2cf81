// Package command defines the commands for keyden-cli.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/keydenlabs/keyden/internal/cli/config"
	"github.com/keydenlabs/keyden/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the CLI configuration file",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the resolved configuration",
				Action: configShow,
			},
			{
				Name:   "init",
				Usage:  "Write the current settings to the config file",
				Action: configInit,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

// resolvedConfig is what show and init operate on: the settings after
// flags, environment and file are merged.
func resolvedConfig(c *cli.Context) *cliconfig.CLIConfig {
	s := ParseSettings(c)
	return &cliconfig.CLIConfig{
		Server:  s.Server,
		Admin:   s.Admin,
		Timeout: s.Timeout,
		Output:  string(s.Output),
	}
}

func configShow(c *cli.Context) error {
	s := ParseSettings(c)
	return output.NewFormatter(s.Output).Format(c.App.Writer, resolvedConfig(c))
}

func configInit(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		path = cliconfig.DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("no home directory found, pass --config")
	}

	if err := cliconfig.Save(resolvedConfig(c), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func configPath(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		path = cliconfig.DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("no home directory found")
	}

	fmt.Fprintln(c.App.Writer, path)
	return nil
}
