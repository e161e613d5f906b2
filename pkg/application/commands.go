package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

// ErrNoSelection is returned by job commands when no job is selected.
var ErrNoSelection = errors.New("no job selected")

// ErrNoBackend is returned by commands on a dashboard without a backend.
var ErrNoBackend = errors.New("no backend configured")

// CommandService issues backend commands. Every successful command is
// followed by a snapshot refresh; command responses carry no state of their
// own beyond what the caller shows.
type CommandService struct {
	api  *backend.Client
	dash *Dashboard
}

// NewCommandService binds commands to a dashboard.
func NewCommandService(api *backend.Client, dash *Dashboard) *CommandService {
	return &CommandService{api: api, dash: dash}
}

// CreateJob posts a job. Title, location and shift are required.
func (s *CommandService) CreateJob(ctx context.Context, req backend.CreateJobRequest) (*backend.CreateJobResponse, error) {
	if s.api == nil {
		return nil, ErrNoBackend
	}
	var missing []string
	for _, f := range [][2]string{{"title", req.Title}, {"location", req.Location}, {"shift", req.Shift}} {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("create job: missing %s", strings.Join(missing, ", "))
	}
	resp, err := s.api.CreateJob(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.refresh(ctx)
	return resp, nil
}

// SimulateOutreach seeds candidates for jobID.
func (s *CommandService) SimulateOutreach(ctx context.Context, jobID string) error {
	return s.jobCommand(ctx, "simulate outreach", jobID, s.apiCall(func(ctx context.Context) error {
		return s.api.SimulateOutreach(ctx, jobID)
	}))
}

// SimulateFlow advances jobID's candidates through the funnel.
func (s *CommandService) SimulateFlow(ctx context.Context, jobID string) error {
	return s.jobCommand(ctx, "simulate flow", jobID, s.apiCall(func(ctx context.Context) error {
		return s.api.SimulateFlow(ctx, jobID)
	}))
}

// SimulateHiring returns the backend's weekly projection.
func (s *CommandService) SimulateHiring(ctx context.Context, p backend.HiringParams) (*backend.HiringProjection, error) {
	if s.api == nil {
		return nil, ErrNoBackend
	}
	proj, err := s.api.SimulateHiring(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("simulate hiring: %w", err)
	}
	return proj, nil
}

// AutoPack confirms held slots. The capacity panel moves optimistically and
// keeps the packed figures until the backend reports at least as many
// confirmations.
func (s *CommandService) AutoPack(ctx context.Context) (synth.Capacity, error) {
	d := s.dash
	d.mu.Lock()
	next := d.snap.Capacity.AutoPack()
	d.capacityOverride = &next
	d.snap.Capacity = next
	d.mu.Unlock()
	d.notify()

	if s.api == nil {
		return next, nil
	}
	if err := s.api.AutoPackSlots(ctx); err != nil && !backend.IsNotFound(err) {
		return next, fmt.Errorf("auto-pack: %w", err)
	}
	s.refresh(ctx)
	return d.Snapshot().Capacity, nil
}

// Send dispatches an outbound message.
func (s *CommandService) Send(ctx context.Context, req backend.SendRequest) error {
	if s.api == nil {
		return ErrNoBackend
	}
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Body) == "" {
		return errors.New("send: recipient and body are required")
	}
	if err := s.api.Send(ctx, req); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	s.refresh(ctx)
	return nil
}

func (s *CommandService) apiCall(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if s.api == nil {
			return ErrNoBackend
		}
		return fn(ctx)
	}
}

func (s *CommandService) jobCommand(ctx context.Context, name, jobID string, fn func(context.Context) error) error {
	if strings.TrimSpace(jobID) == "" {
		return fmt.Errorf("%s: %w", name, ErrNoSelection)
	}
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	s.refresh(ctx)
	return nil
}

func (s *CommandService) refresh(ctx context.Context) {
	if err := s.dash.Refresh(ctx); err != nil {
		s.dash.logger.Debug("refresh after command incomplete", "error", err)
	}
}
