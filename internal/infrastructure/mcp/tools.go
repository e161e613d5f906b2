package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

const maxAuditTail = audit.Capacity

type AuditTailArgs struct {
	Limit int    `json:"limit,omitempty" jsonschema:"description=Number of newest events to return (default 20, max 250)"`
	Kind  string `json:"kind,omitempty" jsonschema:"description=Only events of this action family, e.g. outreach or scheduling"`
}

type VerifyArgs struct {
	Remote bool `json:"remote,omitempty" jsonschema:"description=Ask the backend to verify its full chain instead of the local window"`
}

type SynthArgs struct {
	Target int `json:"target" jsonschema:"description=Number of rows to produce"`
}

type AskArgs struct {
	Message string `json:"message" jsonschema:"description=Question for the recruiting assistant"`
}

type JobArgs struct {
	JobID string `json:"job_id" jsonschema:"description=Backend job id"`
}

type HiringArgs struct {
	VolPerDay           int     `json:"vol_per_day,omitempty" jsonschema:"description=Outreach volume per day"`
	ReplyRate           float64 `json:"reply_rate,omitempty" jsonschema:"description=Reply rate between 0 and 1"`
	QualRate            float64 `json:"qual_rate,omitempty" jsonschema:"description=Qualification rate between 0 and 1"`
	ShowRate            float64 `json:"show_rate,omitempty" jsonschema:"description=Interview show rate between 0 and 1"`
	InterviewerCapacity int     `json:"interviewer_capacity,omitempty" jsonschema:"description=Interview slots per day"`
}

// AuditEntry is an audit event with its display glyph.
type AuditEntry struct {
	audit.Event
	Kind  string `json:"kind"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type snapshotView struct {
	Health     *backend.Health   `json:"health,omitempty"`
	KPI        []synth.KPITile   `json:"kpi"`
	Funnel     []synth.FunnelRow `json:"funnel"`
	Capacity   synth.Capacity    `json:"capacity"`
	Jobs       int               `json:"jobs"`
	Candidates int               `json:"candidates"`
	AuditCount int               `json:"audit_count"`
	Push       string            `json:"push"`
	UpdatedAt  string            `json:"updated_at,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("hireline_snapshot").
		Description("Current KPIs, funnel, capacity and row counts as last polled").
		Handler(s.handleSnapshot)

	s.mcpServer.Tool("hireline_audit_tail").
		Description("Newest audit events, newest first").
		Handler(s.handleAuditTail)

	s.mcpServer.Tool("hireline_audit_verify").
		Description("Verify the audit hash chain").
		Handler(s.handleAuditVerify)

	s.mcpServer.Tool("hireline_synth_jobs").
		Description("Live jobs padded with deterministic synthetic postings").
		Handler(s.handleSynthJobs)

	s.mcpServer.Tool("hireline_synth_candidates").
		Description("Live candidates padded with deterministic synthetic rows").
		Handler(s.handleSynthCandidates)

	s.mcpServer.Tool("hireline_ask").
		Description("Ask the recruiting assistant; returns the full streamed reply").
		Handler(s.handleAsk)

	s.mcpServer.Tool("hireline_simulate_outreach").
		Description("Seed demo candidates for a job").
		Handler(s.handleSimulateOutreach)

	s.mcpServer.Tool("hireline_simulate_hiring").
		Description("Project weekly hires from funnel rates").
		Handler(s.handleSimulateHiring)

	s.mcpServer.Tool("hireline_auto_pack").
		Description("Confirm held interview slots").
		Handler(s.handleAutoPack)
}

func (s *Server) handleSnapshot(_ context.Context, _ struct{}) (any, error) {
	snap := s.dash.Snapshot()
	view := snapshotView{
		Health:     snap.Health,
		KPI:        snap.KPI,
		Funnel:     snap.Funnel,
		Capacity:   snap.Capacity,
		Jobs:       len(snap.Jobs),
		Candidates: len(snap.Candidates),
		AuditCount: len(s.dash.Audit.GetTimeline()),
		Push:       string(s.dash.PushState()),
		Errors:     snap.Errors,
	}
	if !snap.UpdatedAt.IsZero() {
		view.UpdatedAt = snap.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return view, nil
}

func (s *Server) handleAuditTail(_ context.Context, args AuditTailArgs) (any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	limit = min(limit, maxAuditTail)
	kind := strings.ToLower(strings.TrimSpace(args.Kind))

	source := s.dash.Audit.Latest(maxAuditTail)
	out := make([]AuditEntry, 0, limit)
	for _, e := range source {
		k := audit.Classify(e.Action)
		if kind != "" && k.String() != kind {
			continue
		}
		g := e.Glyph()
		out = append(out, AuditEntry{Event: e, Kind: k.String(), Icon: g.Icon, Color: g.Color})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Server) handleAuditVerify(ctx context.Context, args VerifyArgs) (any, error) {
	if !args.Remote {
		return s.dash.Audit.VerifyIntegrity(), nil
	}
	res, err := s.dash.Audit.VerifyRemote(ctx)
	if err != nil {
		return nil, mcpErr("Backend audit verification failed. Check that the backend is reachable.")
	}
	return res, nil
}

func (s *Server) handleSynthJobs(_ context.Context, args SynthArgs) (any, error) {
	if args.Target < 0 || args.Target > 10000 {
		return nil, mcpErr("target must be between 0 and 10000")
	}
	return s.synth.Jobs(s.liveJobs(), args.Target), nil
}

func (s *Server) handleSynthCandidates(_ context.Context, args SynthArgs) (any, error) {
	if args.Target < 0 || args.Target > 10000 {
		return nil, mcpErr("target must be between 0 and 10000")
	}
	return s.synth.Candidates(s.liveCandidates(), args.Target), nil
}

// liveJobs returns the non-synthetic rows of the snapshot.
func (s *Server) liveJobs() []synth.Job {
	var live []synth.Job
	for _, j := range s.dash.Snapshot().Jobs {
		if !strings.HasPrefix(j.ID, "demo-") {
			live = append(live, j)
		}
	}
	return live
}

func (s *Server) liveCandidates() []synth.Candidate {
	var live []synth.Candidate
	for _, c := range s.dash.Snapshot().Candidates {
		if !strings.HasPrefix(c.ID, "cand-") {
			live = append(live, c)
		}
	}
	return live
}

func (s *Server) handleAsk(ctx context.Context, args AskArgs) (string, error) {
	if strings.TrimSpace(args.Message) == "" {
		return "", mcpErr("message is required")
	}
	deltas, err := s.dash.Ask(ctx, args.Message)
	if err != nil {
		return "", mcpErr("The assistant is not available.")
	}
	var b strings.Builder
	for d := range deltas {
		b.WriteString(d)
	}
	return b.String(), nil
}

func (s *Server) handleSimulateOutreach(ctx context.Context, args JobArgs) (string, error) {
	if err := s.dash.Commands.SimulateOutreach(ctx, args.JobID); err != nil {
		if errors.Is(err, application.ErrNoSelection) {
			return "", mcpErr("job_id is required")
		}
		return "", mcpErr("Outreach simulation failed.")
	}
	return "Outreach simulated for job " + args.JobID, nil
}

func (s *Server) handleSimulateHiring(ctx context.Context, args HiringArgs) (any, error) {
	proj, err := s.dash.Commands.SimulateHiring(ctx, backend.HiringParams(args))
	if err != nil {
		return nil, mcpErr("Hiring simulation failed.")
	}
	return proj, nil
}

func (s *Server) handleAutoPack(ctx context.Context, _ struct{}) (any, error) {
	capacity, err := s.dash.Commands.AutoPack(ctx)
	if err != nil {
		return nil, mcpErr("Auto-pack failed; the capacity shown is the local estimate.")
	}
	return capacity, nil
}
