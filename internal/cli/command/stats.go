// Package command defines the commands for keyden-cli.
package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/keydenlabs/keyden/internal/cli/connection"
	"github.com/keydenlabs/keyden/internal/cli/output"
)

// statsResponse mirrors the admin server's GET /v1/stats body.
type statsResponse struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	Backend       string `json:"backend"`
	Totals        struct {
		Databases int `json:"databases"`
		Protected int `json:"protected"`
		Keys      int `json:"keys"`
	} `json:"totals"`
	Databases []databaseStats `json:"databases"`
}

type databaseStats struct {
	Name      string `json:"name"`
	Keys      int    `json:"keys"`
	Protected bool   `json:"protected"`
}

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show server statistics from the admin endpoint",
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	s := ParseSettings(c)
	mgr := connection.NewManager(s.Server, s.Admin, s.Timeout)
	defer mgr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	resp, err := mgr.Admin().Get(ctx, "/v1/stats")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var stats statsResponse
	if err := connection.ParseResponse(resp, &stats); err != nil {
		return err
	}

	if s.Output != output.FormatTable {
		return output.NewFormatter(s.Output).Format(c.App.Writer, stats)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Backend:   %s\n", stats.Backend)
	fmt.Fprintf(w, "Uptime:    %s\n", time.Duration(stats.UptimeSeconds)*time.Second)
	fmt.Fprintf(w, "Databases: %d (%d protected)\n", stats.Totals.Databases, stats.Totals.Protected)
	fmt.Fprintf(w, "Keys:      %d\n", stats.Totals.Keys)

	if len(stats.Databases) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tbl := &output.Table{Headers: []string{"NAME", "KEYS", "PROTECTED"}}
	for _, db := range stats.Databases {
		tbl.AddRow(db.Name, strconv.Itoa(db.Keys), strconv.FormatBool(db.Protected))
	}
	return tbl.Render(w)
}
