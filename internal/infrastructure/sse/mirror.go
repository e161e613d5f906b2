// Package sse re-publishes the audit feed to local Server-Sent Events
// clients.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

// Mirror fans audit events out to connected SSE clients. Slow clients miss
// events rather than blocking the publisher.
type Mirror struct {
	backlog func() []audit.Event
	logger  *slog.Logger

	mu      sync.RWMutex
	clients map[chan audit.Event]struct{}
}

// NewMirror returns a Mirror. backlog, when not nil, supplies the buffered
// events replayed to resuming clients.
func NewMirror(backlog func() []audit.Event, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		backlog: backlog,
		logger:  logger,
		clients: make(map[chan audit.Event]struct{}),
	}
}

// Publish sends e to every connected client.
func (m *Mirror) Publish(e audit.Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for ch := range m.clients {
		select {
		case ch <- e:
		default:
			m.logger.Debug("mirror client too slow, event skipped", "id", e.ID)
		}
	}
}

// Clients returns the number of connected clients.
func (m *Mirror) Clients() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// ServeHTTP streams audit frames. The optional kinds query parameter keeps
// only the listed action families (e.g. kinds=outreach,scheduling). A
// Last-Event-ID header replays buffered events newer than that id; with
// backlog=all every buffered event is sent first.
func (m *Mirror) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var kinds map[string]bool
	if raw := r.URL.Query().Get("kinds"); raw != "" {
		kinds = make(map[string]bool)
		for _, k := range strings.Split(raw, ",") {
			kinds[strings.TrimSpace(k)] = true
		}
	}
	keep := func(e audit.Event) bool {
		return kinds == nil || kinds[audit.Classify(e.Action).String()]
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan audit.Event, 64)
	m.mu.Lock()
	m.clients[ch] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.clients, ch)
		m.mu.Unlock()
	}()

	w.WriteHeader(http.StatusOK)
	for _, e := range m.resume(r) {
		if keep(e) {
			m.write(w, e)
		}
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-ch:
			if !keep(e) {
				continue
			}
			if err := m.write(w, e); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (m *Mirror) resume(r *http.Request) []audit.Event {
	if m.backlog == nil {
		return nil
	}
	if r.URL.Query().Get("backlog") == "all" {
		return m.backlog()
	}
	last := r.Header.Get("Last-Event-ID")
	if last == "" {
		return nil
	}
	events := m.backlog()
	for i, e := range events {
		if e.ID == last {
			return events[i+1:]
		}
	}
	return nil
}

func (m *Mirror) write(w http.ResponseWriter, e audit.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		m.logger.Warn("mirror could not encode event", "id", e.ID, "error", err)
		return nil
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: audit\ndata: %s\n\n", e.ID, data)
	return err
}
