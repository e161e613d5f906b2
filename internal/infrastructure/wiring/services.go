// Package wiring builds the hireline object graph from configuration.
package wiring

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/config"
	"github.com/felixgeelhaar/hireline/internal/infrastructure/metrics"
	"github.com/felixgeelhaar/hireline/internal/infrastructure/sse"
	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/chat"
	"github.com/felixgeelhaar/hireline/pkg/clock"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
	"github.com/felixgeelhaar/hireline/pkg/push"
)

// Services is the wired application.
type Services struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	API       *backend.Client
	Push      *push.Client
	Chat      *chat.Client
	Synth     *synth.Synthesizer
	Dashboard *application.Dashboard
	Mirror    *sse.Mirror
}

// Option adjusts Build.
type Option func(*buildOptions)

type buildOptions struct {
	clock      clock.Clock
	httpClient *http.Client
	tracer     trace.TracerProvider
}

// WithClock replaces the real clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(o *buildOptions) { o.clock = c }
}

// WithHTTPClient sets the base HTTP client for every transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *buildOptions) { o.httpClient = c }
}

// WithTracerProvider sets the provider for backend and chat spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *buildOptions) { o.tracer = tp }
}

// Build wires every component from cfg. Nothing is started; call
// Dashboard.Start and Close on the result.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) *Services {
	o := buildOptions{clock: clock.Real(), httpClient: &http.Client{}, tracer: otel.GetTracerProvider()}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	ts := TokenSource(ctx, cfg.Auth)
	m := metrics.New()

	streamClient := o.httpClient
	if ts != nil {
		streamClient = &http.Client{Transport: &oauth2.Transport{Source: ts, Base: baseTransport(o.httpClient)}}
	}

	api := backend.NewClient(cfg.APIBase,
		backend.WithTimeout(cfg.SnapshotTimeout),
		backend.WithHTTPClient(o.httpClient),
		backend.WithTokenSource(ts),
		backend.WithLogger(logger.With("component", "backend")),
		backend.WithTracerProvider(o.tracer),
	)
	pushClient := push.NewClient(
		push.WithHTTPClient(o.httpClient),
		push.WithTokenSource(ts),
		push.WithRetry(cfg.StreamRetry),
		push.WithObserver(m),
		push.WithLogger(logger.With("component", "push")),
	)
	chatClient := chat.NewClient(cfg.ChatURL(),
		chat.WithHTTPClient(streamClient),
		chat.WithEvents(cfg.ContentEvent, cfg.TerminalEvent),
		chat.WithLogger(logger.With("component", "chat")),
		chat.WithTracerProvider(o.tracer),
	)
	synthesizer := synth.Default()

	dash := application.NewDashboard(application.Deps{
		API:      api,
		Push:     pushClient,
		Chat:     chatClient,
		Clock:    o.clock,
		Synth:    synthesizer,
		Logger:   logger.With("component", "dashboard"),
		Observer: m,
	}, Settings(cfg))

	mirror := sse.NewMirror(dash.Audit.GetTimeline, logger.With("component", "mirror"))
	dash.OnAudit(mirror.Publish)

	return &Services{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		API:       api,
		Push:      pushClient,
		Chat:      chatClient,
		Synth:     synthesizer,
		Dashboard: dash,
		Mirror:    mirror,
	}
}

// Settings maps cfg onto dashboard settings.
func Settings(cfg *config.Config) application.Settings {
	return application.Settings{
		StreamURL:        cfg.StreamURL(),
		PollInterval:     cfg.PollInterval,
		ReplayTick:       cfg.ReplayTick,
		JobsTarget:       cfg.JobsTarget,
		CandidatesTarget: cfg.CandidatesTarget,
		SigningSecret:    cfg.SigningSecret,
	}
}

// Router mounts the mirror, audit and metrics endpoints.
func (s *Services) Router() http.Handler {
	return sse.NewRouter(sse.Routes{
		Mirror:  s.Mirror,
		Audit:   s.Dashboard.Audit,
		Metrics: s.Metrics.Handler(),
	})
}

// TrackChat records the outcome of a chat reply once its stream is drained.
func (s *Services) TrackChat() {
	if s.Dashboard.Chat == nil {
		return
	}
	msgs := s.Dashboard.Chat.Transcript()
	if len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]
	if last.Role == chat.RoleAssistant {
		s.Metrics.ChatFinished(last.Failed)
	}
}

// Close stops the dashboard.
func (s *Services) Close() {
	s.Dashboard.Close()
}

func baseTransport(c *http.Client) http.RoundTripper {
	if c != nil && c.Transport != nil {
		return c.Transport
	}
	return http.DefaultTransport
}
