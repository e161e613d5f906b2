package backend

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

type options struct {
	timeout     time.Duration
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	tracer      trace.TracerProvider
}

func defaultOptions() options {
	return options{
		timeout: 5 * time.Second,
	}
}

// Option configures the backend client.
type Option func(*options)

// WithTimeout sets the per-call timeout of snapshot reads and commands.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTokenSource presents a bearer token from ts on every request.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) { o.tokenSource = ts }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracerProvider sets the provider request spans are started from. It
// defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}
