package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay the buffered audit trail at the replay tick",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		dash := services.Dashboard
		if err := dash.Refresh(cmd.Context()); err != nil {
			services.Logger.Warn("snapshot refresh incomplete", "error", err)
		}
		out := cmd.OutOrStdout()

		cursors := make(chan replay.Cursor, audit.Capacity+1)
		stop := dash.Replay.OnChange(func(c replay.Cursor) { cursors <- c })
		defer stop()

		session := dash.StartReplay()
		if session.Cursor().Total == 0 {
			_, _ = fmt.Fprintln(out, "No audit events to replay.")
			return nil
		}
		printed := 0
		for {
			select {
			case c := <-cursors:
				visible := session.Visible()
				for ; printed < len(visible); printed++ {
					_, _ = fmt.Fprintf(out, "[%d/%d] %s\n", printed+1, c.Total, plainAuditLine(visible[printed]))
				}
				if c.Done() {
					_, _ = fmt.Fprintf(out, "Replayed %d events.\n", c.Total)
					return nil
				}
			case <-cmd.Context().Done():
				dash.StopReplay()
				return cmd.Context().Err()
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(replayCmd)
}
