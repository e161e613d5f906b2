package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/clock"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
	"github.com/felixgeelhaar/hireline/pkg/push"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// fakeBackend serves the snapshot endpoints from mutable state.
type fakeBackend struct {
	mu        sync.Mutex
	polls     atomic.Int32
	failJobs  bool
	confirmed int
	events    []audit.Event
	packed    atomic.Int32
	outreach  atomic.Int32
	jobsTitle string
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		b.polls.Add(1)
		writeJSON(w, map[string]any{"ok": true, "mode": "demo"})
	})
	mux.HandleFunc("GET /kpi", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"reply_rate": "41%", "show_rate": "70%"})
	})
	mux.HandleFunc("GET /audit", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, map[string]any{"events": b.events})
	})
	mux.HandleFunc("GET /funnel", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]int{"contacted": 50})
	})
	mux.HandleFunc("GET /metrics/capacity", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, map[string]any{"today": map[string]any{
			"available": 100, "held": 80, "confirmed": b.confirmed, "no_show_forecast": 0.2,
		}})
	})
	mux.HandleFunc("GET /jobs", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failJobs {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"jobs": []map[string]any{
			{"id": "j1", "title": b.jobsTitle, "location": "Riyadh", "shift": "Night"},
		}})
	})
	mux.HandleFunc("GET /candidates", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"candidates": []map[string]any{}})
	})
	mux.HandleFunc("POST /actions/auto-pack-slots", func(w http.ResponseWriter, _ *http.Request) {
		b.packed.Add(1)
		writeJSON(w, map[string]any{"ok": true})
	})
	mux.HandleFunc("POST /simulate/outreach", func(w http.ResponseWriter, r *http.Request) {
		b.outreach.Add(1)
		writeJSON(w, map[string]any{"job_id": r.URL.Query().Get("job_id")})
	})
	mux.HandleFunc("POST /jobs", func(w http.ResponseWriter, r *http.Request) {
		var req backend.CreateJobRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, map[string]any{"job_id": "j2", "title": req.Title})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newDashboard(t *testing.T, b *fakeBackend, clk clock.Clock, settings application.Settings) *application.Dashboard {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	settings.JobsTarget = 5
	settings.CandidatesTarget = 3
	d := application.NewDashboard(application.Deps{
		API:   backend.NewClient(srv.URL, backend.WithTimeout(2*time.Second)),
		Clock: clk,
	}, settings)
	t.Cleanup(d.Close)
	return d
}

func TestDashboard_StartBuildsSnapshot(t *testing.T) {
	b := &fakeBackend{confirmed: 40, jobsTitle: "Barista"}
	d := newDashboard(t, b, clock.NewFake(epoch), application.Settings{})

	require.NoError(t, d.Start(context.Background()))
	s := d.Snapshot()

	require.NotNil(t, s.Health)
	assert.True(t, s.Health.OK)
	require.Len(t, s.KPI, len(synth.KPIOrder))
	assert.Equal(t, "41%", s.KPI[0].Value)
	assert.Equal(t, "-", s.KPI[1].Value)
	assert.Equal(t, 50, s.Funnel[0].Value)
	assert.Equal(t, 40, s.Capacity.Confirmed)
	require.Len(t, s.Jobs, 5)
	assert.Equal(t, "Barista", s.Jobs[0].Title)
	assert.Equal(t, "Dallas", s.Jobs[0].Location)
	assert.Equal(t, "Evening", s.Jobs[0].Shift)
	assert.Len(t, s.Candidates, 3)
	assert.Empty(t, s.Errors)
	assert.Equal(t, epoch, s.UpdatedAt)
}

func TestDashboard_PollsOnTicker(t *testing.T) {
	b := &fakeBackend{jobsTitle: "Cashier"}
	clk := clock.NewFake(epoch)
	d := newDashboard(t, b, clk, application.Settings{PollInterval: time.Second})
	require.NoError(t, d.Start(context.Background()))
	require.EqualValues(t, 1, b.polls.Load())

	var changes atomic.Int32
	d.OnChange(func() { changes.Add(1) })

	assert.Equal(t, 3, clk.Advance(3*time.Second))
	assert.EqualValues(t, 4, b.polls.Load())
	assert.GreaterOrEqual(t, changes.Load(), int32(3))
	assert.Equal(t, epoch.Add(3*time.Second), d.Snapshot().UpdatedAt)

	d.Close()
	assert.Zero(t, clk.Active())
	clk.Advance(5 * time.Second)
	assert.EqualValues(t, 4, b.polls.Load())
}

func TestDashboard_PartialFailureKeepsPreviousValues(t *testing.T) {
	b := &fakeBackend{jobsTitle: "Line Cook"}
	d := newDashboard(t, b, clock.NewFake(epoch), application.Settings{})
	require.NoError(t, d.Start(context.Background()))

	b.mu.Lock()
	b.failJobs = true
	b.jobsTitle = "Server"
	b.mu.Unlock()

	err := d.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobs")

	var status *backend.StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusInternalServerError, status.Code)

	s := d.Snapshot()
	assert.Equal(t, "Line Cook", s.Jobs[0].Title)
	assert.Contains(t, s.Errors, "jobs")
	assert.NotNil(t, s.Health)
}

func TestDashboard_PolledAuditFillsRingAndReplays(t *testing.T) {
	b := &fakeBackend{jobsTitle: "Greeter"}
	for i := range 3 {
		b.events = append(b.events, audit.Event{
			ID: fmt.Sprintf("e%d", i), TS: float64(1700000000 + i), Actor: audit.ActorAgent,
			Action: "outreach.sent",
		})
	}
	clk := clock.NewFake(epoch)
	d := newDashboard(t, b, clk, application.Settings{PollInterval: time.Hour, ReplayTick: 500 * time.Millisecond})
	require.NoError(t, d.Start(context.Background()))
	require.Len(t, d.Audit.GetTimeline(), 3)

	session := d.StartReplay()
	assert.Equal(t, 0, session.Cursor().Index)
	clk.Advance(1500 * time.Millisecond)

	select {
	case <-session.Done():
	default:
		t.Fatal("replay should be done after three ticks")
	}
	assert.Equal(t, 3, session.Cursor().Index)
	assert.Len(t, session.Visible(), 3)
	assert.False(t, session.Cancelled())
}

func TestDashboard_PushAppendsToRing(t *testing.T) {
	frames := make(chan string, 1)
	stream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case f := <-frames:
			_, _ = fmt.Fprint(w, f)
			w.(http.Flusher).Flush()
		case <-r.Context().Done():
			return
		}
		<-r.Context().Done()
	}))
	t.Cleanup(stream.Close)

	b := &fakeBackend{jobsTitle: "Host/Hostess"}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	pc := push.NewClient()
	d := application.NewDashboard(application.Deps{
		API:   backend.NewClient(srv.URL),
		Push:  pc,
		Clock: clock.NewFake(epoch),
	}, application.Settings{StreamURL: stream.URL, PollInterval: time.Hour, JobsTarget: 1, CandidatesTarget: 1})
	t.Cleanup(d.Close)

	seen := make(chan audit.Event, 1)
	d.OnAudit(func(e audit.Event) { seen <- e })
	require.NoError(t, d.Start(context.Background()))

	frames <- "event: audit\ndata: {\"id\":\"p1\",\"ts\":1700000001,\"actor\":\"system\",\"action\":\"schedule.booked\",\"payload\":{}}\n\n"

	select {
	case e := <-seen:
		assert.Equal(t, "p1", e.ID)
		assert.Equal(t, audit.KindScheduling, audit.Classify(e.Action))
	case <-time.After(5 * time.Second):
		t.Fatal("pushed audit event was not delivered")
	}
	latest := d.Audit.Latest(1)
	require.Len(t, latest, 1)
	assert.Equal(t, "p1", latest[0].ID)

	d.Close()
	assert.Equal(t, push.StateClosed, d.PushState())
}

func TestDashboard_AskWithoutChat(t *testing.T) {
	d := application.NewDashboard(application.Deps{Clock: clock.NewFake(epoch)}, application.Settings{})
	defer d.Close()

	_, err := d.Ask(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, push.StateClosed, d.PushState())
}

func TestDashboard_CloseIsIdempotent(t *testing.T) {
	clk := clock.NewFake(epoch)
	d := newDashboard(t, &fakeBackend{jobsTitle: "Valet Attendant"}, clk, application.Settings{})
	require.NoError(t, d.Start(context.Background()))
	d.Close()
	d.Close()
	assert.Zero(t, clk.Active())
	assert.NoError(t, d.Start(context.Background()))
}

func TestDashboard_Reconfigure(t *testing.T) {
	b := &fakeBackend{jobsTitle: "Barista"}
	clk := clock.NewFake(epoch)
	d := newDashboard(t, b, clk, application.Settings{PollInterval: time.Second})
	require.NoError(t, d.Start(context.Background()))

	d.Reconfigure(application.Settings{PollInterval: 5 * time.Second, JobsTarget: 2, CandidatesTarget: 1})
	assert.Equal(t, 1, clk.Active())

	clk.Advance(4 * time.Second)
	assert.EqualValues(t, 1, b.polls.Load())
	clk.Advance(time.Second)
	assert.EqualValues(t, 2, b.polls.Load())

	s := d.Snapshot()
	assert.Len(t, s.Jobs, 2)
	assert.Len(t, s.Candidates, 1)
}
