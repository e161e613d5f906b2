package push

import (
	"sync"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

// Frame kinds the backend emits.
const (
	KindMessage = "message"
	KindAudit   = "audit"
)

// Event is one delivered frame. Payload is the decoded JSON value; for
// KindAudit it is an audit.Event already checked against the event schema.
type Event struct {
	Kind    string
	ID      string
	Payload any
}

// Handler receives frames in channel order, on the subscription's read
// goroutine. It must not block on further I/O and must not dispose its own
// subscription.
type Handler func(Event)

// Disposer tears a subscription down. It is idempotent and returns once the
// connection is released.
type Disposer func()

// Mux routes events to handlers registered per kind.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	fallback Handler
}

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{handlers: make(map[string][]Handler)}
}

// Handle registers fn for frames of kind.
func (m *Mux) Handle(kind string, fn Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[kind] = append(m.handlers[kind], fn)
}

// HandleAudit registers fn for audit frames.
func (m *Mux) HandleAudit(fn func(audit.Event)) {
	m.Handle(KindAudit, func(e Event) {
		if ev, ok := e.Payload.(audit.Event); ok {
			fn(ev)
		}
	})
}

// HandleMessage registers fn for unnamed frames.
func (m *Mux) HandleMessage(fn func(payload any)) {
	m.Handle(KindMessage, func(e Event) { fn(e.Payload) })
}

// HandleOther registers fn for kinds with no handler of their own.
func (m *Mux) HandleOther(fn Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fn
}

// Dispatch delivers e to its handlers. It has the Handler signature.
func (m *Mux) Dispatch(e Event) {
	m.mu.RLock()
	hs := m.handlers[e.Kind]
	fallback := m.fallback
	m.mu.RUnlock()

	if len(hs) == 0 {
		if fallback != nil {
			fallback(e)
		}
		return
	}
	for _, h := range hs {
		h(e)
	}
}
