// Package replay steps through a recorded list of audit events on a fixed
// tick, one event per tick.
package replay

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/hireline/pkg/clock"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

// DefaultTick is the interval between replay steps.
const DefaultTick = 500 * time.Millisecond

// Cursor is the position of a replay. 0 <= Index <= Total; Index == Total is
// terminal.
type Cursor struct {
	Index int           `json:"index"`
	Total int           `json:"total"`
	Tick  time.Duration `json:"tick"`
}

// Done reports whether the cursor reached the end.
func (c Cursor) Done() bool {
	return c.Index >= c.Total
}

// Controller owns at most one running replay session.
type Controller struct {
	clock clock.Clock
	tick  time.Duration

	mu        sync.Mutex
	current   *Session
	listeners map[int]func(Cursor)
	nextID    int
}

// Option configures a Controller.
type Option func(*Controller)

// WithTick overrides DefaultTick.
func WithTick(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tick = d
		}
	}
}

// NewController returns a controller driven by clk.
func NewController(clk clock.Clock, opts ...Option) *Controller {
	if clk == nil {
		clk = clock.Real()
	}
	c := &Controller{
		clock:     clk,
		tick:      DefaultTick,
		listeners: make(map[int]func(Cursor)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn for every cursor change of any session and returns a
// function removing it. Callbacks run on the ticking goroutine.
func (c *Controller) OnChange(fn func(Cursor)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Start begins a replay of events from cursor 0, cancelling any session that
// is still running. An empty list is terminal immediately and schedules no
// tick.
func (c *Controller) Start(events []audit.Event) *Session {
	s := &Session{
		ctrl:   c,
		events: append([]audit.Event(nil), events...),
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	c.stopLocked()
	c.current = s
	if len(s.events) == 0 {
		close(s.done)
	} else {
		s.task = c.clock.Every(c.tick, func() { c.advance(s) })
	}
	cur := s.cursorLocked()
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	notify(listeners, cur)
	return s
}

// Stop cancels the running session, if any, and discards its cursor. A later
// Start always begins at 0.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Current returns the running or finished session, nil after Stop.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) stopLocked() {
	if c.current == nil {
		return
	}
	c.current.cancelLocked()
	c.current = nil
}

func (c *Controller) advance(s *Session) {
	c.mu.Lock()
	if c.current != s || s.cancelled || s.index >= len(s.events) {
		c.mu.Unlock()
		return
	}
	s.index++
	if s.index == len(s.events) {
		s.task.Stop()
		close(s.done)
	}
	cur := s.cursorLocked()
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	notify(listeners, cur)
}

func (c *Controller) snapshotListenersLocked() []func(Cursor) {
	out := make([]func(Cursor), 0, len(c.listeners))
	for i := 0; i < c.nextID; i++ {
		if fn, ok := c.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []func(Cursor), cur Cursor) {
	for _, fn := range listeners {
		fn(cur)
	}
}

// Session is one replay run.
type Session struct {
	ctrl   *Controller
	events []audit.Event
	task   clock.Task

	index     int
	cancelled bool
	done      chan struct{}
}

// Cursor returns the current position.
func (s *Session) Cursor() Cursor {
	s.ctrl.mu.Lock()
	defer s.ctrl.mu.Unlock()
	return s.cursorLocked()
}

// Visible returns the events revealed so far, oldest first.
func (s *Session) Visible() []audit.Event {
	s.ctrl.mu.Lock()
	defer s.ctrl.mu.Unlock()
	return append([]audit.Event(nil), s.events[:s.index]...)
}

// Latest returns the most recently revealed event.
func (s *Session) Latest() (audit.Event, bool) {
	s.ctrl.mu.Lock()
	defer s.ctrl.mu.Unlock()
	if s.index == 0 {
		return audit.Event{}, false
	}
	return s.events[s.index-1], true
}

// Done is closed when the cursor reaches the end. It stays open for a
// session cancelled before finishing.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Cancelled reports whether the session was stopped or superseded.
func (s *Session) Cancelled() bool {
	s.ctrl.mu.Lock()
	defer s.ctrl.mu.Unlock()
	return s.cancelled
}

func (s *Session) cursorLocked() Cursor {
	return Cursor{Index: s.index, Total: len(s.events), Tick: s.ctrl.tick}
}

func (s *Session) cancelLocked() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	if s.task != nil {
		s.task.Stop()
	}
}
