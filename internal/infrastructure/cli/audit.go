package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

// errChainBroken is returned when a hash chain fails verification.
var errChainBroken = errors.New("audit chain broken")

var (
	auditRemote bool
	auditTailN  int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and verify the agent audit trail",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the hash chain of the audit trail",
	Long: `Verify walks the hash chain of the newest buffered audit events with the
configured signing secret. With --remote the backend verifies its full chain
instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		defer services.Close()
		out := cmd.OutOrStdout()

		if auditRemote {
			res, err := services.Dashboard.Audit.VerifyRemote(cmd.Context())
			if err != nil {
				return MapError(fmt.Errorf("remote verification failed: %w", err))
			}
			if res.OK {
				_, _ = fmt.Fprintf(out, "Backend audit chain is intact (%d events).\n", res.Count)
				return nil
			}
			at := -1
			if res.BrokenAt != nil {
				at = *res.BrokenAt
			}
			return chainBroken(at)
		}

		if err := loadAudit(cmd, services); err != nil {
			return MapError(err)
		}
		_, _ = fmt.Fprintln(out, "Verifying audit trail integrity...")
		report := services.Dashboard.Audit.VerifyIntegrity()
		if report.OK {
			_, _ = fmt.Fprintf(out, "Audit trail is intact and verified (%d events).\n", report.Count)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Found %d integrity violations:\n", len(report.Violations))
		for _, v := range report.Violations {
			_, _ = fmt.Fprintf(out, "  - %s\n", v)
		}
		return chainBroken(report.BrokenAt)
	},
}

// loadAudit refreshes the snapshot and fails only when the audit read did.
func loadAudit(cmd *cobra.Command, services *wiring.Services) error {
	err := services.Dashboard.Refresh(cmd.Context())
	if _, failed := services.Dashboard.Snapshot().Errors["audit"]; failed {
		return fmt.Errorf("load audit trail: %w", err)
	}
	if err != nil {
		services.Logger.Debug("snapshot refresh incomplete", "error", err)
	}
	return nil
}

func chainBroken(at int) error {
	e := NewCLIError(fmt.Sprintf("audit chain broken at index %d", at),
		"Check signing_secret matches the backend, then re-run with --remote", errChainBroken)
	e.ExitCode = 2
	return e
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the newest audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		if err := loadAudit(cmd, services); err != nil {
			return MapError(err)
		}
		events := services.Dashboard.Audit.Latest(auditTailN)
		slices.Reverse(events)
		for _, e := range events {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), plainAuditLine(e))
		}
		return nil
	},
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the buffered audit window",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		if err := loadAudit(cmd, services); err != nil {
			return MapError(err)
		}
		svc := services.Dashboard.Audit
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "events:     %d\n", len(svc.GetTimeline()))
		_, _ = fmt.Fprintf(out, "throughput: %.2f/min\n", svc.GetThroughput())
		_, _ = fmt.Fprintf(out, "cost:       $%.2f\n", svc.TotalCost())

		breakdown := svc.Breakdown()
		kinds := make([]audit.ActionKind, 0, len(breakdown))
		for k := range breakdown {
			kinds = append(kinds, k)
		}
		slices.Sort(kinds)
		for _, k := range kinds {
			_, _ = fmt.Fprintf(out, "  %-14s %d\n", k, breakdown[k])
		}
		return nil
	},
}

func init() {
	auditVerifyCmd.Flags().BoolVar(&auditRemote, "remote", false, "Ask the backend to verify its full chain")
	auditTailCmd.Flags().IntVarP(&auditTailN, "number", "n", 20, "Number of events")
	auditCmd.AddCommand(auditVerifyCmd, auditTailCmd, auditStatsCmd)
	RootCmd.AddCommand(auditCmd)
}
