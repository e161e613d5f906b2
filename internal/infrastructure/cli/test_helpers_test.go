package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

const testSecret = "dev-signing-secret"

// runCLI executes the root command with args and returns everything written
// to its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(RootCmd)
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default; cobra keeps values and the
// Changed mark across executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// useBackend points the CLI at h from an empty working directory.
func useBackend(t *testing.T, h http.Handler) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Chdir(t.TempDir())
	t.Setenv("HIRELINE_API_BASE", srv.URL)
	t.Setenv("HIRELINE_LOG_LEVEL", "error")
}

func sealedEvents(n int) []audit.Event {
	actions := []string{"outreach.sent", "schedule.slot.hold", "ats.synced"}
	events := make([]audit.Event, n)
	prev := ""
	for i := range events {
		events[i] = audit.Event{
			ID:      "ev-" + string(rune('a'+i)),
			TS:      1700000000 + float64(i)*60,
			Actor:   audit.ActorAgent,
			Action:  actions[i%len(actions)],
			Payload: map[string]any{"locale": "es"},
		}
		audit.Seal(&events[i], prev, testSecret)
		prev = events[i].Hash
	}
	return events
}

// stubBackend answers the endpoints the CLI touches.
type stubBackend struct {
	events []audit.Event
	reply  string

	mu    sync.Mutex
	calls []string
}

func (b *stubBackend) called(call string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (b *stubBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
	b.mu.Unlock()

	writeJSON := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	switch r.Method + " " + r.URL.Path {
	case "GET /health":
		writeJSON(map[string]any{"ok": true, "mode": "demo"})
	case "GET /kpi":
		writeJSON(map[string]any{"reply_rate": "41%"})
	case "GET /audit":
		writeJSON(map[string]any{"events": b.events})
	case "GET /audit/verify":
		writeJSON(map[string]any{"ok": true, "count": len(b.events)})
	case "GET /funnel":
		writeJSON(map[string]int{"contacted": 50})
	case "GET /jobs":
		writeJSON(map[string]any{"jobs": []map[string]string{
			{"id": "job-1", "title": "Barista", "location": "Riyadh", "shift": "Night"},
		}})
	case "GET /candidates":
		writeJSON(map[string]any{"candidates": []any{}})
	case "POST /jobs":
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		req["job_id"] = "job-2"
		writeJSON(req)
	case "POST /simulate/outreach", "POST /actions/auto-pack-slots":
		writeJSON(map[string]any{"ok": true})
	case "POST /chat/stream":
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: content\ndata: " + b.reply + "\n\nevent: done\n\n"))
	default:
		http.NotFound(w, r)
	}
}
