package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/config"
	"github.com/felixgeelhaar/hireline/internal/infrastructure/logging"
	"github.com/felixgeelhaar/hireline/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/frame"
)

// recruitingBackend serves the polled endpoints and holds a push stream
// open, writing whatever arrives on frames.
func recruitingBackend(t *testing.T, frames <-chan string) *httptest.Server {
	t.Helper()
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) { write(w, map[string]any{"ok": true, "mode": "demo"}) })
	mux.HandleFunc("GET /kpi", func(w http.ResponseWriter, _ *http.Request) { write(w, map[string]any{"reply_rate": "44%"}) })
	mux.HandleFunc("GET /audit", func(w http.ResponseWriter, _ *http.Request) { write(w, map[string]any{"events": []any{}}) })
	mux.HandleFunc("GET /jobs", func(w http.ResponseWriter, _ *http.Request) {
		write(w, map[string]any{"jobs": []map[string]any{{"id": "job-1", "title": "Barista", "location": "Austin", "shift": "Morning"}}})
	})
	mux.HandleFunc("GET /candidates", func(w http.ResponseWriter, _ *http.Request) { write(w, map[string]any{"candidates": []any{}}) })
	mux.HandleFunc("GET /events/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		for {
			select {
			case f := <-frames:
				_, _ = fmt.Fprint(w, f)
				w.(http.Flusher).Flush()
			case <-r.Context().Done():
				return
			}
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func sealed(id, action, prev, secret string) audit.Event {
	e := audit.Event{ID: id, TS: 1700000000, Actor: audit.ActorAgent, Action: action, Payload: map[string]any{"locale": "en"}}
	audit.Seal(&e, prev, secret)
	return e
}

func auditFrame(t *testing.T, e audit.Event) string {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return fmt.Sprintf("event: audit\nid: %s\ndata: %s\n\n", e.ID, data)
}

// TestPushFlowsThroughMirror follows one pushed audit event from the
// backend stream into the ring, out of the local SSE mirror and into the
// verify and metrics endpoints.
func TestPushFlowsThroughMirror(t *testing.T) {
	frames := make(chan string, 4)
	backend := recruitingBackend(t, frames)

	cfg := config.Default()
	cfg.APIBase = backend.URL
	cfg.PollInterval = time.Hour
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	services := wiring.Build(ctx, cfg, logging.New("error", "text"))
	defer services.Close()

	require.NoError(t, services.Dashboard.Start(ctx))
	snap := services.Dashboard.Snapshot()
	require.NotNil(t, snap.Health)
	assert.Len(t, snap.Jobs, cfg.JobsTarget)
	assert.Equal(t, "job-1", snap.Jobs[0].ID)

	local := httptest.NewServer(services.Router())
	t.Cleanup(local.Close)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, local.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	require.Eventually(t, func() bool { return services.Mirror.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	first := sealed("p1", "outreach.sent", "", cfg.SigningSecret)
	second := sealed("p2", "schedule.slot.hold", first.Hash, cfg.SigningSecret)
	frames <- auditFrame(t, first)
	frames <- auditFrame(t, second)

	var mirrored []frame.Frame
	err = frame.ReadAll(resp.Body, func(f frame.Frame) bool {
		mirrored = append(mirrored, f)
		return len(mirrored) < 2
	})
	require.NoError(t, err)
	require.Len(t, mirrored, 2)
	assert.Equal(t, "audit", mirrored[0].Event)
	assert.Equal(t, "p1", mirrored[0].ID)
	assert.Equal(t, "p2", mirrored[1].ID)

	latest := services.Dashboard.Audit.Latest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, "p2", latest[0].ID)

	verify, err := http.Get(local.URL + "/audit/verify")
	require.NoError(t, err)
	defer verify.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, verify.StatusCode)
	var rep audit.Report
	require.NoError(t, json.NewDecoder(verify.Body).Decode(&rep))
	assert.True(t, rep.OK)
	assert.Equal(t, 2, rep.Count)

	scrape, err := http.Get(local.URL + "/metrics")
	require.NoError(t, err)
	defer scrape.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(scrape.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "hireline_push_frames_delivered_total"))
	assert.True(t, strings.Contains(string(body), "hireline_snapshot_polls_total"))
}
