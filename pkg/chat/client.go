package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/hireline/pkg/backend"
)

const tracerName = "github.com/felixgeelhaar/hireline/pkg/chat"

// Client posts a conversation to the streaming chat endpoint.
type Client struct {
	url    string
	http   *http.Client
	stream StreamOptions
	logger *slog.Logger
	tp     trace.TracerProvider
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client. It must not carry a request timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithEvents overrides the content and terminal frame names.
func WithEvents(content, terminal string) ClientOption {
	return func(c *Client) {
		c.stream.ContentEvent = content
		c.stream.TerminalEvent = terminal
	}
}

// WithFallback overrides FallbackMessage.
func WithFallback(text string) ClientOption {
	return func(c *Client) { c.stream.Fallback = text }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithTracerProvider sets the provider chat spans are started from. It
// defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) { c.tp = tp }
}

// NewClient returns a client for the chat endpoint at url.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{url: url, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	c.stream = c.stream.withDefaults()
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tp == nil {
		c.tp = otel.GetTracerProvider()
	}
	return c
}

// Send posts history and streams the reply into sink. Any failure, whether
// transport, status or stream, reaches sink as exactly one fallback message
// and is returned.
func (c *Client) Send(ctx context.Context, history []Message, sink Sink) (err error) {
	ctx, span := c.tp.Tracer(tracerName).Start(ctx, "chat.stream", trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("chat.history", len(history)))

	fail := func(e error) error {
		sink.Fail(c.stream.Fallback)
		c.logger.Warn("chat stream failed", "error", e)
		return e
	}

	req := wireRequest{Messages: make([]wireMessage, 0, len(history))}
	for _, m := range history {
		if m.Pending || m.Failed {
			continue
		}
		req.Messages = append(req.Messages, wireMessage{Role: m.Role, Text: m.Text})
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return fail(fmt.Errorf("encode chat request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return fail(fmt.Errorf("build chat request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fail(fmt.Errorf("post chat: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return fail(&backend.StatusError{
			Method: http.MethodPost,
			Path:   resp.Request.URL.Path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		})
	}

	res, err := Stream(ctx, resp.Body, sink, c.stream)
	span.SetAttributes(
		attribute.Int("chat.frames", res.Frames),
		attribute.Int("chat.content_frames", res.Content),
		attribute.Bool("chat.terminal", res.Terminal),
	)
	if err != nil {
		c.logger.Warn("chat stream failed", "error", err, "frames", res.Frames)
		return fmt.Errorf("read chat stream: %w", err)
	}
	return nil
}
