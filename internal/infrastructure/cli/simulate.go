package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/hireline/pkg/backend"
)

var (
	jobTitle    string
	jobLocation string
	jobShift    string
	jobReqs     []string

	simJobID string
	hiring   backend.HiringParams

	sendTo      string
	sendBody    string
	sendLocale  string
	sendChannel string
)

// withServices runs fn on freshly wired services after a first refresh.
func withServices(cmd *cobra.Command, fn func(*wiring.Services) error) error {
	services, err := loadServices(cmd.Context())
	if err != nil {
		return MapError(err)
	}
	defer services.Close()
	if err := services.Dashboard.Refresh(cmd.Context()); err != nil {
		services.Logger.Debug("snapshot refresh incomplete", "error", err)
	}
	return MapError(fn(services))
}

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage job postings",
}

var jobCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Post a new job",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(s *wiring.Services) error {
			res, err := s.Dashboard.Commands.CreateJob(cmd.Context(), backend.CreateJobRequest{
				Title:    jobTitle,
				Location: jobLocation,
				Shift:    jobShift,
				Reqs:     jobReqs,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created job %s: %s (%s, %s)\n", res.JobID, res.Title, res.Location, res.Shift)
			return nil
		})
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive backend simulations",
}

var simulateOutreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Simulate candidate outreach for a job",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(s *wiring.Services) error {
			if err := s.Dashboard.Commands.SimulateOutreach(cmd.Context(), simJobID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Outreach simulated for %s\n", simJobID)
			return nil
		})
	},
}

var simulateFlowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Simulate the full candidate flow for a job",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(s *wiring.Services) error {
			if err := s.Dashboard.Commands.SimulateFlow(cmd.Context(), simJobID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Flow simulated for %s\n", simJobID)
			return nil
		})
	},
}

var simulateHiringCmd = &cobra.Command{
	Use:   "hiring",
	Short: "Project weekly hires from funnel rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(s *wiring.Services) error {
			p, err := s.Dashboard.Commands.SimulateHiring(cmd.Context(), hiring)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "replies:        %d\n", p.Replies)
			_, _ = fmt.Fprintf(out, "qualified:      %d\n", p.Qualified)
			_, _ = fmt.Fprintf(out, "scheduled:      %d\n", p.Scheduled)
			_, _ = fmt.Fprintf(out, "shows:          %d\n", p.Shows)
			_, _ = fmt.Fprintf(out, "hires per week: %d\n", p.HiresPerWeek)
			return nil
		})
	},
}

var autoPackCmd = &cobra.Command{
	Use:   "auto-pack",
	Short: "Confirm held interview slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(s *wiring.Services) error {
			c, err := s.Dashboard.Commands.AutoPack(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Capacity: %d available, %d held, %d confirmed\n", c.Available, c.Held, c.Confirmed)
			return nil
		})
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an outbound message to a candidate",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(s *wiring.Services) error {
			err := s.Dashboard.Commands.Send(cmd.Context(), backend.SendRequest{
				To:      sendTo,
				Body:    sendBody,
				Locale:  sendLocale,
				Channel: sendChannel,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent to %s\n", sendTo)
			return nil
		})
	},
}

func init() {
	jobCreateCmd.Flags().StringVar(&jobTitle, "title", "", "Job title")
	jobCreateCmd.Flags().StringVar(&jobLocation, "location", "", "Job location")
	jobCreateCmd.Flags().StringVar(&jobShift, "shift", "", "Shift (Morning, Afternoon, Evening)")
	jobCreateCmd.Flags().StringSliceVar(&jobReqs, "req", nil, "Requirement (repeatable)")
	jobCmd.AddCommand(jobCreateCmd)

	for _, c := range []*cobra.Command{simulateOutreachCmd, simulateFlowCmd} {
		c.Flags().StringVar(&simJobID, "job", "", "Job id")
	}
	simulateHiringCmd.Flags().IntVar(&hiring.VolPerDay, "vol-per-day", 0, "Outreach volume per day")
	simulateHiringCmd.Flags().Float64Var(&hiring.ReplyRate, "reply-rate", 0, "Reply rate (0-1)")
	simulateHiringCmd.Flags().Float64Var(&hiring.QualRate, "qual-rate", 0, "Qualification rate (0-1)")
	simulateHiringCmd.Flags().Float64Var(&hiring.ShowRate, "show-rate", 0, "Show rate (0-1)")
	simulateHiringCmd.Flags().IntVar(&hiring.InterviewerCapacity, "interviewer-capacity", 0, "Interviews per day")
	simulateCmd.AddCommand(simulateOutreachCmd, simulateFlowCmd, simulateHiringCmd)

	sendCmd.Flags().StringVar(&sendTo, "to", "", "Recipient")
	sendCmd.Flags().StringVar(&sendBody, "body", "", "Message body")
	sendCmd.Flags().StringVar(&sendLocale, "locale", "", "Message locale")
	sendCmd.Flags().StringVar(&sendChannel, "channel", "", "Delivery channel")

	RootCmd.AddCommand(jobCmd, simulateCmd, autoPackCmd, sendCmd)
}
