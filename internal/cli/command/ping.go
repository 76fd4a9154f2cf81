// Package command defines the commands for keyden-cli.
package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/keydenlabs/keyden/internal/cli/connection"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Measure a round trip to the server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "number of round trips",
				Value:   1,
			},
		},
		Action: pingAction,
	}
}

func pingAction(c *cli.Context) error {
	s := ParseSettings(c)
	mgr := connection.NewManager(s.Server, s.Admin, s.Timeout)
	defer mgr.Close()

	client, err := mgr.Text()
	if err != nil {
		return fmt.Errorf("connect to %s: %w", s.Server, err)
	}

	count := c.Int("count")
	if count < 1 {
		count = 1
	}

	var total time.Duration
	for seq := 1; seq <= count; seq++ {
		start := time.Now()

		// Any reply proves the server is up. Without a selected
		// database this comes back as an error line, which is still a
		// full round trip.
		if _, err := client.Send(`GET("__ping__")`); err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}

		rtt := time.Since(start)
		total += rtt
		fmt.Fprintf(c.App.Writer, "reply from %s: seq=%d time=%s\n",
			s.Server, seq, rtt.Round(time.Microsecond))
	}

	if count > 1 {
		avg := (total / time.Duration(count)).Round(time.Microsecond)
		fmt.Fprintf(c.App.Writer, "avg %s over %d round trips\n", avg, count)
	}
	return nil
}
