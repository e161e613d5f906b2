package sse_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/sse"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/frame"
	"github.com/felixgeelhaar/hireline/pkg/push"
)

func event(id, action string) audit.Event {
	return audit.Event{ID: id, TS: 1700000000, Actor: audit.ActorAgent, Action: action, Payload: map[string]any{}}
}

func waitClients(t *testing.T, m *sse.Mirror, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return m.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func read(req *http.Request, want int) ([]frame.Frame, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		return nil, fmt.Errorf("content type %q", ct)
	}

	var frames []frame.Frame
	err = frame.ReadAll(resp.Body, func(f frame.Frame) bool {
		frames = append(frames, f)
		return len(frames) < want
	})
	return frames, err
}

func collect(t *testing.T, req *http.Request, want int) []frame.Frame {
	t.Helper()
	frames, err := read(req, want)
	require.NoError(t, err)
	return frames
}

func TestMirror_PushClientRoundTrip(t *testing.T) {
	m := sse.NewMirror(nil, nil)
	srv := httptest.NewServer(m)
	t.Cleanup(srv.Close)

	got := make(chan audit.Event, 4)
	mux := push.NewMux()
	mux.HandleAudit(func(e audit.Event) { got <- e })
	dispose := push.NewClient().Subscribe(srv.URL, mux.Dispatch)
	defer dispose()

	waitClients(t, m, 1)
	m.Publish(event("a1", "outreach.sent"))

	select {
	case e := <-got:
		assert.Equal(t, "a1", e.ID)
		assert.Equal(t, audit.ActorAgent, e.Actor)
	case <-time.After(5 * time.Second):
		t.Fatal("mirrored event not received")
	}
}

func TestMirror_ResumeAndFilter(t *testing.T) {
	backlog := []audit.Event{
		event("e1", "outreach.sent"),
		event("e2", "schedule.booked"),
		event("e3", "outreach.replied"),
	}
	m := sse.NewMirror(func() []audit.Event { return backlog }, nil)
	srv := httptest.NewServer(m)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	req.Header.Set("Last-Event-ID", "e1")
	frames := collect(t, req, 2)
	require.Len(t, frames, 2)
	assert.Equal(t, "e2", frames[0].ID)
	assert.Equal(t, "audit", frames[0].Event)
	assert.Equal(t, "e3", frames[1].ID)

	var decoded audit.Event
	require.NoError(t, json.Unmarshal([]byte(frames[1].Data), &decoded))
	assert.Equal(t, "outreach.replied", decoded.Action)

	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?backlog=all&kinds=outreach", nil)
	frames = collect(t, req, 2)
	require.Len(t, frames, 2)
	assert.Equal(t, "e1", frames[0].ID)
	assert.Equal(t, "e3", frames[1].ID)
}

func TestMirror_FilterAppliesToLiveEvents(t *testing.T) {
	m := sse.NewMirror(nil, nil)
	srv := httptest.NewServer(m)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?kinds=scheduling", nil)

	done := make(chan []frame.Frame, 1)
	go func() {
		frames, _ := read(req, 1)
		done <- frames
	}()

	waitClients(t, m, 1)
	m.Publish(event("x1", "outreach.sent"))
	m.Publish(event("x2", "schedule.booked"))

	select {
	case frames := <-done:
		require.Len(t, frames, 1)
		assert.Equal(t, "x2", frames[0].ID)
	case <-time.After(5 * time.Second):
		t.Fatal("filtered event not received")
	}
	waitClients(t, m, 0)
}
