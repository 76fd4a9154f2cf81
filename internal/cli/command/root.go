// Package command defines the commands for keyden-cli.
package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/keydenlabs/keyden/internal/cli/config"
	"github.com/keydenlabs/keyden/internal/cli/output"
	"github.com/keydenlabs/keyden/internal/infra/buildinfo"
)

// App builds the keyden-cli application.
func App() *cli.App {
	return &cli.App{
		Name:    "keyden-cli",
		Usage:   "command-line client for keyden",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ExecCommand(),
			ShellCommand(),
			StatsCommand(),
			PingCommand(),
			BackupCommand(),
			ConfigCommand(),
		},
		Before: loadFileConfig,
	}
}

// globalFlags returns the flags shared by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address for the data plane",
			EnvVars: []string{"KEYDEN_SERVER"},
			Value:   cliconfig.DefaultServer,
		},
		&cli.StringFlag{
			Name:    "admin",
			Aliases: []string{"a"},
			Usage:   "admin HTTP address for stats and backup",
			EnvVars: []string{"KEYDEN_ADMIN"},
			Value:   cliconfig.DefaultAdmin,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "per-request timeout",
			EnvVars: []string{"KEYDEN_TIMEOUT"},
			Value:   cliconfig.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			Value:   cliconfig.DefaultOutput,
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file (default ~/.keyden/config.yaml)",
			EnvVars: []string{"KEYDEN_CONFIG"},
		},
	}
}

// loadFileConfig reads the CLI config file before any command runs.
func loadFileConfig(c *cli.Context) error {
	cfg, err := cliconfig.Load(c.String("config"))
	if err != nil {
		return err
	}
	c.App.Metadata["cliConfig"] = cfg
	return nil
}

// Settings are the resolved connection options for one invocation.
type Settings struct {
	Server  string
	Admin   string
	Timeout time.Duration
	Output  output.Format
}

// ParseSettings resolves flags, environment and the config file.
// A flag set on the command line or through its KEYDEN_ variable wins;
// otherwise the config file value applies.
func ParseSettings(c *cli.Context) *Settings {
	cfg := fileConfig(c)

	s := &Settings{
		Server:  cfg.Server,
		Admin:   cfg.Admin,
		Timeout: cfg.Timeout,
		Output:  output.Format(cfg.Output),
	}

	if c.IsSet("server") {
		s.Server = c.String("server")
	}
	if c.IsSet("admin") {
		s.Admin = c.String("admin")
	}
	if c.IsSet("timeout") {
		s.Timeout = c.Duration("timeout")
	}
	if c.IsSet("output") {
		s.Output = output.Format(c.String("output"))
	}
	return s
}

// fileConfig returns the config loaded by the Before hook, falling
// back to defaults when the hook did not run.
func fileConfig(c *cli.Context) *cliconfig.CLIConfig {
	if cfg, ok := c.App.Metadata["cliConfig"].(*cliconfig.CLIConfig); ok {
		return cfg
	}
	return cliconfig.Default()
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
