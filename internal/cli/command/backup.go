// Package command defines the commands for keyden-cli.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/keydenlabs/keyden/internal/cli/connection"
	"github.com/keydenlabs/keyden/internal/cli/output"
)

// snapshotInfo mirrors the admin server's POST /v1/snapshot body.
type snapshotInfo struct {
	ID            string `json:"id"`
	DatabaseCount int64  `json:"database_count"`
	EntryCount    int64  `json:"entry_count"`
	CreatedAt     int64  `json:"created_at"`
	Size          int64  `json:"size"`
	Path          string `json:"path"`
	Checksum      string `json:"checksum"`
}

// BackupCommand returns the backup command.
func BackupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Trigger a snapshot on the server",
		Description: "Asks the server to write a snapshot now. The server " +
			"must run the snapshot storage backend.",
		Action: backupAction,
	}
}

func backupAction(c *cli.Context) error {
	s := ParseSettings(c)
	mgr := connection.NewManager(s.Server, s.Admin, s.Timeout)
	defer mgr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	sp := output.NewSpinner(c.App.ErrWriter, "Writing snapshot")
	sp.Start()

	resp, err := mgr.Admin().Post(ctx, "/v1/snapshot", nil)
	if err != nil {
		sp.Fail("Snapshot failed")
		return fmt.Errorf("request failed: %w", err)
	}

	var info snapshotInfo
	if err := connection.ParseResponse(resp, &info); err != nil {
		sp.Fail("Snapshot failed")
		return err
	}
	sp.Success("Snapshot written")

	if s.Output != output.FormatTable {
		return output.NewFormatter(s.Output).Format(c.App.Writer, info)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Snapshot:  %s\n", info.ID)
	fmt.Fprintf(w, "Created:   %s\n", time.Unix(info.CreatedAt, 0).UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Databases: %d\n", info.DatabaseCount)
	fmt.Fprintf(w, "Entries:   %d\n", info.EntryCount)
	fmt.Fprintf(w, "Size:      %s\n", output.FormatBytes(info.Size))
	fmt.Fprintf(w, "Path:      %s\n", info.Path)
	return nil
}
