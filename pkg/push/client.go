package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

// Client owns at most one live push subscription.
type Client struct {
	opts options

	subscribeMu sync.Mutex
	mu          sync.Mutex
	current     *subscription
}

// NewClient returns a client with no subscription.
func NewClient(opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{opts: o}
}

// Subscribe opens rawURL and delivers its frames to handler until the
// returned Disposer runs or Subscribe is called again. An invalid URL yields
// a subscription that is already closed.
func (c *Client) Subscribe(rawURL string, handler Handler) Disposer {
	c.subscribeMu.Lock()
	defer c.subscribeMu.Unlock()

	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.mu.Unlock()
	if prev != nil {
		prev.dispose()
	}

	s, err := c.open(rawURL, handler)
	if err != nil {
		c.opts.logger.Error("push subscribe failed", "url", rawURL, "error", err)
		return func() {}
	}

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()

	return func() {
		s.dispose()
		c.mu.Lock()
		if c.current == s {
			c.current = nil
		}
		c.mu.Unlock()
	}
}

// State returns the state of the live subscription, StateClosed if none.
func (c *Client) State() State {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s == nil {
		return StateClosed
	}
	return s.fsm.state()
}

// Close disposes the live subscription.
func (c *Client) Close() {
	c.subscribeMu.Lock()
	defer c.subscribeMu.Unlock()
	c.mu.Lock()
	s := c.current
	c.current = nil
	c.mu.Unlock()
	if s != nil {
		s.dispose()
	}
}

func (c *Client) open(rawURL string, handler Handler) (*subscription, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse push url: %w", err)
	}
	var t transport
	switch u.Scheme {
	case "http", "https":
		t = &sseTransport{client: c.opts.httpClient}
	case "ws", "wss":
		t = &wsTransport{dialer: c.opts.dialer}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	fsm, err := newChannelFSM()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &subscription{
		opts:      c.opts,
		url:       u.String(),
		handler:   handler,
		transport: t,
		fsm:       fsm,
		retry:     c.opts.retry,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	if err := s.start(); err != nil {
		cancel()
		return nil, err
	}
	go s.run(ctx)
	return s, nil
}

// transport runs one connection attempt, calling opened once connected and
// frame for every received frame. It returns when the connection ends.
type transport interface {
	connect(ctx context.Context, c *conn) error
}

// conn is the per-attempt view a transport works against.
type conn struct {
	url         string
	header      http.Header
	lastEventID string
	opened      func()
	frame       func(kind, id string, data []byte)
	retry       func(time.Duration)
}

type subscription struct {
	opts      options
	url       string
	handler   Handler
	transport transport
	fsm       *channelFSM

	retry       time.Duration
	lastEventID string

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) run(ctx context.Context) {
	defer close(s.done)
	logger := s.opts.logger.With("url", s.url)

	for {
		header, err := s.authHeader(ctx)
		if err == nil {
			err = s.transport.connect(ctx, &conn{
				url:         s.url,
				header:      header,
				lastEventID: s.lastEventID,
				opened:      func() { s.transition(evOpened) },
				frame:       s.deliver,
				retry:       func(d time.Duration) { s.retry = d },
			})
		}
		if ctx.Err() != nil {
			return
		}
		s.transition(evError)
		logger.Warn("push channel error, reconnecting", "error", err, "retry", s.retry)
		s.opts.observer.Reconnecting()

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retry):
		}
	}
}

func (s *subscription) authHeader(ctx context.Context) (http.Header, error) {
	h := http.Header{}
	if s.opts.tokenSource == nil {
		return h, nil
	}
	tok, err := s.opts.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("push token: %w", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	h.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	return h, nil
}

func (s *subscription) start() error {
	before, after, err := s.fsm.open()
	if before != after {
		s.opts.observer.StateChanged(before, after)
	}
	return err
}

func (s *subscription) transition(event string) {
	before, after := s.fsm.fire(event)
	if before != after {
		s.opts.observer.StateChanged(before, after)
	}
}

// deliver decodes one frame and hands it to the handler. Undecodable frames
// are dropped.
func (s *subscription) deliver(kind, id string, data []byte) {
	if id != "" {
		s.lastEventID = id
	}
	if s.fsm.state() == StateClosed {
		return
	}

	payload, err := decodePayload(kind, data)
	if err != nil {
		de := &DecodeError{Kind: kind, Err: err}
		s.opts.logger.Warn("push frame dropped", "kind", kind, "error", de)
		s.opts.observer.FrameDropped(kind, dropReason(err))
		return
	}
	s.transition(evFrame)
	s.opts.observer.FrameDelivered(kind)
	s.handler(Event{Kind: kind, ID: id, Payload: payload})
}

func (s *subscription) dispose() {
	s.once.Do(func() {
		before, after := s.fsm.dispose()
		if before != after {
			s.opts.observer.StateChanged(before, after)
		}
		s.cancel()
		<-s.done
	})
}

// decodePayload parses data as JSON, keeping numbers exact. Audit frames are
// additionally checked against the event schema.
func decodePayload(kind string, data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid json: trailing data")
	}
	if kind != KindAudit {
		return v, nil
	}
	return audit.Decode(v)
}

func dropReason(err error) string {
	var se *audit.SchemaError
	if errors.As(err, &se) {
		return "schema"
	}
	return "json"
}
