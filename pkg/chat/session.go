package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrClosed is returned for sends on a closed session.
var ErrClosed = errors.New("chat: session closed")

// Session is a conversation transcript. Every Send gets its own assistant
// message, so overlapping requests never write into each other's reply.
type Session struct {
	client *Client

	mu       sync.Mutex
	messages []Message
	cancels  map[string]context.CancelFunc
	closed   bool
	onChange func([]Message)

	wg sync.WaitGroup
}

// NewSession starts an empty transcript backed by client.
func NewSession(client *Client) *Session {
	return &Session{client: client, cancels: make(map[string]context.CancelFunc)}
}

// OnChange registers fn to receive a transcript copy after every change.
func (s *Session) OnChange(fn func([]Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Transcript returns a copy of the messages, oldest first.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Send appends text as a user message plus a pending assistant reply and
// streams the reply. The returned channel yields each appended delta, or the
// single fallback message on failure, and is closed when the reply ends.
func (s *Session) Send(ctx context.Context, text string) (<-chan string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	history := append(append([]Message(nil), s.messages...), Message{ID: uuid.NewString(), Role: RoleUser, Text: text})
	reply := Message{ID: uuid.NewString(), Role: RoleAssistant, Text: Placeholder, Pending: true}
	s.messages = append(append([]Message(nil), history...), reply)

	ctx, cancel := context.WithCancel(ctx)
	s.cancels[reply.ID] = cancel
	s.wg.Add(1)
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()

	out := make(chan string, 16)
	sink := &replySink{session: s, id: reply.ID, out: out, ctx: ctx}
	go func() {
		defer s.wg.Done()
		defer close(out)
		defer s.finish(reply.ID)

		if err := s.client.Send(ctx, history, sink); err == nil && sink.empty() {
			// A stream that ended without content leaves no answer.
			sink.Fail(s.client.stream.Fallback)
		}
	}()
	return out, nil
}

// Close cancels every in-flight reply and waits for their streams to be
// released. Later sends fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Session) finish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
}

// update applies fn to message id and notifies listeners.
func (s *Session) update(id string, fn func(*Message)) {
	s.mu.Lock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			fn(&s.messages[i])
			break
		}
	}
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()
}

func (s *Session) changedLocked() func() {
	fn := s.onChange
	if fn == nil {
		return func() {}
	}
	snapshot := append([]Message(nil), s.messages...)
	return func() { fn(snapshot) }
}

type replySink struct {
	session *Session
	id      string
	out     chan<- string
	ctx     context.Context

	mu     sync.Mutex
	got    bool
	failed bool
}

func (r *replySink) Append(delta string) {
	r.mu.Lock()
	if r.failed {
		r.mu.Unlock()
		return
	}
	r.got = true
	r.mu.Unlock()

	r.session.update(r.id, func(m *Message) {
		if m.Pending {
			m.Text = ""
			m.Pending = false
		}
		m.Text += delta
	})
	r.emit(delta)
}

func (r *replySink) Fail(message string) {
	r.mu.Lock()
	if r.failed {
		r.mu.Unlock()
		return
	}
	r.failed = true
	r.mu.Unlock()

	r.session.update(r.id, func(m *Message) {
		m.Text = message
		m.Pending = false
		m.Failed = true
	})
	r.emit(message)
}

func (r *replySink) empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.got && !r.failed
}

func (r *replySink) emit(s string) {
	select {
	case r.out <- s:
	case <-r.ctx.Done():
	}
}
