package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"

	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

// Client is a typed Go client for the hireline MCP server.
type Client struct {
	mcp      *client.Client
	retryCfg retry.Config
	timeout  time.Duration
}

// NewClient creates a new SDK client wrapping the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		mcp:     client.New(transport, client.WithTimeout(o.callTimeout)),
		timeout: o.callTimeout,
		retryCfg: retry.Config{
			MaxAttempts:   o.attempts,
			InitialDelay:  o.firstDelay,
			MaxDelay:      o.maxDelay,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
		},
	}
}

// Initialize performs the MCP initialize handshake.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	return c.mcp.Initialize(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// call invokes a tool with retry. Error results are not retried.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

// unmarshalText extracts Content[0].Text from a tool result and unmarshals it as JSON.
func unmarshalText[T any](result *client.ToolResult) (*T, error) {
	text, err := textResult(result)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &v, nil
}

// textResult extracts Content[0].Text from a tool result.
func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

// --- Schema ---

// GetSchema reads the hireline://schema resource from the server.
func (c *Client) GetSchema(ctx context.Context) (*SchemaInfo, error) {
	rc, err := c.mcp.ReadResource(ctx, "hireline://schema")
	if err != nil {
		return nil, fmt.Errorf("read schema resource: %w", err)
	}
	var info SchemaInfo
	if err := json.Unmarshal([]byte(rc.Text), &info); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return &info, nil
}

// Compatible checks if the server schema is compatible with this SDK version.
// Returns nil if compatible, error with details if not.
func (c *Client) Compatible(ctx context.Context) error {
	info, err := c.GetSchema(ctx)
	if err != nil {
		return fmt.Errorf("check compatibility: %w", err)
	}
	serverMajor := majorVersion(info.SchemaVersion)
	if serverMajor != SupportedSchemaMajor {
		return fmt.Errorf("incompatible schema: server=%s (major %s), sdk supports major %s",
			info.SchemaVersion, serverMajor, SupportedSchemaMajor)
	}
	return nil
}

// majorVersion extracts the major version from a semver string.
func majorVersion(v string) string {
	major, _, _ := strings.Cut(v, ".")
	return major
}

// --- Dashboard ---

// Snapshot returns the dashboard state as last polled by the server.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	res, err := c.call(ctx, "hireline_snapshot", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalText[Snapshot](res)
}

// AuditTail returns the newest audit events, newest first.
func (c *Client) AuditTail(ctx context.Context, req AuditTailRequest) ([]AuditEntry, error) {
	args := map[string]any{}
	if req.Limit > 0 {
		args["limit"] = req.Limit
	}
	if req.Kind != "" {
		args["kind"] = req.Kind
	}
	res, err := c.call(ctx, "hireline_audit_tail", args)
	if err != nil {
		return nil, err
	}
	v, err := unmarshalText[[]AuditEntry](res)
	if err != nil {
		return nil, err
	}
	return *v, nil
}

// VerifyAudit checks the hash chain of the server's audit window, or of the
// backend's full chain when remote is set.
func (c *Client) VerifyAudit(ctx context.Context, remote bool) (*VerifyResult, error) {
	args := map[string]any{}
	if remote {
		args["remote"] = true
	}
	res, err := c.call(ctx, "hireline_audit_verify", args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[VerifyResult](res)
}

// SynthJobs returns live jobs padded to target rows.
func (c *Client) SynthJobs(ctx context.Context, target int) ([]synth.Job, error) {
	res, err := c.call(ctx, "hireline_synth_jobs", map[string]any{"target": target})
	if err != nil {
		return nil, err
	}
	v, err := unmarshalText[[]synth.Job](res)
	if err != nil {
		return nil, err
	}
	return *v, nil
}

// SynthCandidates returns live candidates padded to target rows.
func (c *Client) SynthCandidates(ctx context.Context, target int) ([]synth.Candidate, error) {
	res, err := c.call(ctx, "hireline_synth_candidates", map[string]any{"target": target})
	if err != nil {
		return nil, err
	}
	v, err := unmarshalText[[]synth.Candidate](res)
	if err != nil {
		return nil, err
	}
	return *v, nil
}

// Ask sends message to the recruiting assistant and returns the full reply.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	res, err := c.call(ctx, "hireline_ask", map[string]any{"message": message})
	if err != nil {
		return "", err
	}
	return textResult(res)
}

// --- Commands ---

// SimulateOutreach seeds demo candidates for jobID.
func (c *Client) SimulateOutreach(ctx context.Context, jobID string) (string, error) {
	res, err := c.call(ctx, "hireline_simulate_outreach", map[string]any{"job_id": jobID})
	if err != nil {
		return "", err
	}
	return textResult(res)
}

// SimulateHiring projects weekly hires from req.
func (c *Client) SimulateHiring(ctx context.Context, req HiringRequest) (*HiringProjection, error) {
	args := map[string]any{}
	if req.VolPerDay > 0 {
		args["vol_per_day"] = req.VolPerDay
	}
	if req.ReplyRate > 0 {
		args["reply_rate"] = req.ReplyRate
	}
	if req.QualRate > 0 {
		args["qual_rate"] = req.QualRate
	}
	if req.ShowRate > 0 {
		args["show_rate"] = req.ShowRate
	}
	if req.InterviewerCapacity > 0 {
		args["interviewer_capacity"] = req.InterviewerCapacity
	}
	res, err := c.call(ctx, "hireline_simulate_hiring", args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[HiringProjection](res)
}

// AutoPack confirms held interview slots and returns the resulting capacity.
func (c *Client) AutoPack(ctx context.Context) (*synth.Capacity, error) {
	res, err := c.call(ctx, "hireline_auto_pack", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalText[synth.Capacity](res)
}
