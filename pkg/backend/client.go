package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

const tracerName = "github.com/felixgeelhaar/hireline/pkg/backend"

// Client talks to the orchestrator REST API.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{}
	}
	if o.tokenSource != nil {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		authed := *hc
		authed.Transport = &oauth2.Transport{Source: o.tokenSource, Base: base}
		hc = &authed
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := o.tracer
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    hc,
		timeout: o.timeout,
		logger:  logger,
		tracer:  tp.Tracer(tracerName),
	}
}

// HTTPClient returns the authenticated HTTP client, for streaming endpoints
// that must not carry the per-call timeout.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// URL resolves path against the API base.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "ws://") || strings.HasPrefix(path, "wss://") {
		return path
	}
	return c.base + "/" + strings.TrimLeft(path, "/")
}

// do runs one request under the per-call timeout and decodes a JSON body into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "backend "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.method", method), attribute.String("http.path", path))

	t := timeout.New[struct{}](timeout.Config{DefaultTimeout: c.timeout})
	_, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.roundTrip(ctx, method, path, query, body, out)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("backend request failed", "method", method, "path", path, "error", err)
		return err
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.URL(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

// --- Snapshots ---

// Health reads /health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// KPI reads the raw KPI map.
func (c *Client) KPI(ctx context.Context) (map[string]any, error) {
	kpi := map[string]any{}
	if err := c.get(ctx, "/kpi", &kpi); err != nil {
		return nil, err
	}
	return kpi, nil
}

// Audit reads the newest audit events, oldest first.
func (c *Client) Audit(ctx context.Context) ([]audit.Event, error) {
	var r auditResponse
	if err := c.get(ctx, "/audit", &r); err != nil {
		return nil, err
	}
	return r.Events, nil
}

// VerifyAudit asks the backend to verify its full chain.
func (c *Client) VerifyAudit(ctx context.Context) (*VerifyResult, error) {
	var r VerifyResult
	if err := c.get(ctx, "/audit/verify", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Funnel reads the live funnel counts. A missing endpoint yields nil, nil.
func (c *Client) Funnel(ctx context.Context) (map[string]int, error) {
	funnel := map[string]int{}
	if err := c.get(ctx, "/funnel", &funnel); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return funnel, nil
}

// Capacity reads today's slot capacity. Nil means the backend had none.
func (c *Client) Capacity(ctx context.Context) (*synth.Capacity, error) {
	var r capacityResponse
	if err := c.get(ctx, "/metrics/capacity", &r); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return r.Today, nil
}

// Heatmap reads the SLA heatmap values.
func (c *Client) Heatmap(ctx context.Context) (synth.HeatmapInput, error) {
	var r heatmapResponse
	if err := c.get(ctx, "/metrics/sla-heatmap", &r); err != nil {
		if IsNotFound(err) {
			return synth.HeatmapInput{}, nil
		}
		return synth.HeatmapInput{}, err
	}
	return synth.HeatmapInput{
		Days:      r.Bins.Days,
		Hours:     r.Bins.Hours,
		ReplyRate: r.ReplyRate,
		TTFT:      r.TTFT,
	}, nil
}

// Jobs reads the live job postings.
func (c *Client) Jobs(ctx context.Context) ([]synth.Job, error) {
	var r jobsResponse
	if err := c.get(ctx, "/jobs", &r); err != nil {
		return nil, err
	}
	return r.Jobs, nil
}

// Candidates reads the live candidates.
func (c *Client) Candidates(ctx context.Context) ([]synth.Candidate, error) {
	var r candidatesResponse
	if err := c.get(ctx, "/candidates", &r); err != nil {
		return nil, err
	}
	return r.Candidates, nil
}

// --- Commands ---

// CreateJob posts a new job.
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*CreateJobResponse, error) {
	var r CreateJobResponse
	if err := c.do(ctx, http.MethodPost, "/jobs", nil, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SimulateOutreach seeds demo candidates for jobID.
func (c *Client) SimulateOutreach(ctx context.Context, jobID string) error {
	if jobID == "" {
		return ErrEmptyJobID
	}
	return c.do(ctx, http.MethodPost, "/simulate/outreach", url.Values{"job_id": {jobID}}, nil, nil)
}

// SimulateFlow moves candidates of jobID through the funnel.
func (c *Client) SimulateFlow(ctx context.Context, jobID string) error {
	if jobID == "" {
		return ErrEmptyJobID
	}
	return c.do(ctx, http.MethodPost, "/simulate/flow", url.Values{"job_id": {jobID}}, nil, nil)
}

// SimulateHiring runs the backend's weekly hiring projection.
func (c *Client) SimulateHiring(ctx context.Context, p HiringParams) (*HiringProjection, error) {
	q := url.Values{}
	if p.VolPerDay > 0 {
		q.Set("vol_per_day", strconv.Itoa(p.VolPerDay))
	}
	if p.ReplyRate > 0 {
		q.Set("reply_rate", strconv.FormatFloat(p.ReplyRate, 'f', -1, 64))
	}
	if p.QualRate > 0 {
		q.Set("qual_rate", strconv.FormatFloat(p.QualRate, 'f', -1, 64))
	}
	if p.ShowRate > 0 {
		q.Set("show_rate", strconv.FormatFloat(p.ShowRate, 'f', -1, 64))
	}
	if p.InterviewerCapacity > 0 {
		q.Set("interviewer_capacity", strconv.Itoa(p.InterviewerCapacity))
	}
	var r HiringProjection
	if err := c.do(ctx, http.MethodPost, "/simulate/hiring", q, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// AutoPackSlots asks the backend to confirm held slots.
func (c *Client) AutoPackSlots(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/actions/auto-pack-slots", nil, nil, nil)
}

// Send dispatches an outbound message through the channel connector.
func (c *Client) Send(ctx context.Context, req SendRequest) error {
	if req.Channel == "" {
		req.Channel = "sms"
	}
	return c.do(ctx, http.MethodPost, "/send", nil, req, nil)
}
