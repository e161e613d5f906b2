package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/config"
	"github.com/felixgeelhaar/hireline/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

var (
	synthJobs       int
	synthCandidates int
	synthLive       bool
	synthJSON       bool
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Print the padded job and candidate lists",
	Long: `Synth prints jobs and candidates the way the dashboard shows them.
Without --live only deterministic demo records are produced, so the output
is identical on every run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return MapError(err)
		}
		jobsTarget, candidatesTarget := cfg.JobsTarget, cfg.CandidatesTarget
		if cmd.Flags().Changed("jobs") {
			jobsTarget = synthJobs
		}
		if cmd.Flags().Changed("candidates") {
			candidatesTarget = synthCandidates
		}

		var (
			liveJobs       []synth.Job
			liveCandidates []synth.Candidate
		)
		if synthLive {
			liveJobs, liveCandidates, err = fetchLive(cmd, cfg)
			if err != nil {
				return MapError(err)
			}
		}

		s := synth.Default()
		jobs := s.Jobs(liveJobs, jobsTarget)
		candidates := s.Candidates(liveCandidates, candidatesTarget)

		out := cmd.OutOrStdout()
		if synthJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"jobs": jobs, "candidates": candidates})
		}
		if len(jobs) > 0 {
			_, _ = fmt.Fprintf(out, "Jobs (%d)\n", len(jobs))
			for _, j := range jobs {
				_, _ = fmt.Fprintf(out, "  %-12s %-32s %-16s %-10s %s\n", j.ID, j.Title, j.Location, j.Shift, j.PayBand)
			}
		}
		if len(candidates) > 0 {
			_, _ = fmt.Fprintf(out, "Candidates (%d)\n", len(candidates))
			for _, c := range candidates {
				_, _ = fmt.Fprintf(out, "  %-12s %-24s %-10s %s\n", c.ID, c.Name, c.Status, c.Role)
			}
		}
		return nil
	},
}

func fetchLive(cmd *cobra.Command, cfg *config.Config) ([]synth.Job, []synth.Candidate, error) {
	api := backend.NewClient(cfg.APIBase,
		backend.WithTimeout(cfg.SnapshotTimeout),
		backend.WithTokenSource(wiring.TokenSource(cmd.Context(), cfg.Auth)),
		backend.WithLogger(newLogger(cfg)),
	)
	jobs, err := api.Jobs(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("fetch jobs: %w", err)
	}
	candidates, err := api.Candidates(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("fetch candidates: %w", err)
	}
	return jobs, candidates, nil
}

func init() {
	synthCmd.Flags().IntVar(&synthJobs, "jobs", 0, "Pad jobs to this many rows (default jobs_target)")
	synthCmd.Flags().IntVar(&synthCandidates, "candidates", 0, "Pad candidates to this many rows (default candidates_target)")
	synthCmd.Flags().BoolVar(&synthLive, "live", false, "Merge the backend's live records before padding")
	synthCmd.Flags().BoolVar(&synthJSON, "json", false, "Print JSON")
	RootCmd.AddCommand(synthCmd)
}
