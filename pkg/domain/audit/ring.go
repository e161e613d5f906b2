package audit

import "sync"

// Capacity is the number of events the dashboard keeps.
const Capacity = 250

// Ring is a fixed-capacity FIFO of the most recent audit events. Appending
// to a full ring evicts the oldest event. It is safe for concurrent use;
// each write commits atomically.
type Ring struct {
	mu    sync.RWMutex
	buf   []Event
	head  int // index of the oldest event
	count int

	onEvict func(Event)
}

// NewRing returns an empty ring holding at most Capacity events.
func NewRing() *Ring {
	return NewRingSize(Capacity)
}

// NewRingSize returns an empty ring with the given capacity. A non-positive
// size falls back to Capacity.
func NewRingSize(size int) *Ring {
	if size <= 0 {
		size = Capacity
	}
	return &Ring{buf: make([]Event, size)}
}

// OnEvict registers a callback invoked with each event pushed out by Append.
// The callback runs with the ring locked and must not call back into it.
func (r *Ring) OnEvict(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

// Append adds e as the newest event, evicting the oldest when full.
func (r *Ring) Append(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendLocked(e)
}

func (r *Ring) appendLocked(e Event) {
	size := len(r.buf)
	if r.count < size {
		r.buf[(r.head+r.count)%size] = e
		r.count++
		return
	}
	evicted := r.buf[r.head]
	r.buf[r.head] = e
	r.head = (r.head + 1) % size
	if r.onEvict != nil {
		r.onEvict(evicted)
	}
}

// Replace swaps the contents for the newest events of a polled snapshot.
// Dropping the older part of an oversized snapshot does not count as eviction.
func (r *Ring) Replace(events []Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(events) > len(r.buf) {
		events = events[len(events)-len(r.buf):]
	}
	clear(r.buf)
	copy(r.buf, events)
	r.head = 0
	r.count = len(events)
}

// All returns a copy of the buffered events, oldest first.
func (r *Ring) All() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Latest returns up to n events, newest first.
func (r *Ring) Latest(n int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	out := make([]Event, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, r.buf[(r.head+r.count-1-i)%len(r.buf)])
	}
	return out
}

// Len returns the number of buffered events.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}
