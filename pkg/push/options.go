package push

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/oauth2"
)

// DefaultRetry is the reconnection delay until the server sends its own.
const DefaultRetry = 3 * time.Second

type options struct {
	httpClient  *http.Client
	dialer      *websocket.Dialer
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	observer    Observer
	retry       time.Duration
}

func defaultOptions() options {
	return options{
		httpClient: &http.Client{},
		dialer:     websocket.DefaultDialer,
		logger:     slog.Default(),
		observer:   nopObserver{},
		retry:      DefaultRetry,
	}
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sets the client used by the SSE transport. It must not
// carry a request timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithDialer sets the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

// WithTokenSource presents a bearer token when connecting.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) { o.tokenSource = ts }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the telemetry observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithRetry sets the initial reconnection delay.
func WithRetry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retry = d
		}
	}
}
