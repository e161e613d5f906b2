package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/chat"
	"github.com/felixgeelhaar/hireline/pkg/clock"
	"github.com/felixgeelhaar/hireline/pkg/domain/replay"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (model, *application.Dashboard, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(epoch)
	dash := application.NewDashboard(application.Deps{Clock: clk}, application.Settings{
		JobsTarget:       4,
		CandidatesTarget: 2,
	})
	t.Cleanup(dash.Close)
	return newModel(context.Background(), dash), dash, clk
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRender_Boundary(t *testing.T) {
	ok := render("kpi", func() (string, error) { return "tiles", nil })
	if ok.Failed || ok.View != "tiles" {
		t.Fatalf("unexpected result %+v", ok)
	}

	failed := render("funnel", func() (string, error) { return "", errors.New("bad rows") })
	if !failed.Failed || !strings.Contains(failed.View, "component failed to render") || !strings.Contains(failed.View, "bad rows") {
		t.Fatalf("error not turned into fallback: %+v", failed)
	}

	panicked := render("heatmap", func() (string, error) {
		var cells [][]synth.HeatmapCell
		_ = cells[3][0]
		return "unreachable", nil
	})
	if !panicked.Failed || !strings.Contains(panicked.View, "component failed to render") {
		t.Fatalf("panic not recovered: %+v", panicked)
	}
	if panicked.Name != "heatmap" {
		t.Fatalf("name = %q", panicked.Name)
	}
}

func TestInitialModel_ShowsPaddedSnapshot(t *testing.T) {
	m, _, _ := newTestModel(t)

	if got := len(m.jobs.Rows()); got != 4 {
		t.Fatalf("expected 4 job rows, got %d", got)
	}
	if m.selectedJob() != "demo-0" {
		t.Fatalf("selected = %q", m.selectedJob())
	}

	view := m.View()
	for _, want := range []string{"hireline", "backend offline", "KPIs", "reply_rate", "Interview capacity", "confirmed  109", "Funnel", "contacted", "SLA heatmap", "no events yet", "Jobs (4)", "Candidates (2)", "chat is not configured"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_BrokenPanelDoesNotTakeDownScreen(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.snap.Heatmap = synth.Heatmap{Days: []string{"Mon"}}

	view := m.View()
	if !strings.Contains(view, "component failed to render") {
		t.Fatal("expected fallback for the heatmap panel")
	}
	if !strings.Contains(view, "Interview capacity") || !strings.Contains(view, "Jobs (4)") {
		t.Fatal("other panels should still render")
	}
}

func TestUpdate_ReplayKeys(t *testing.T) {
	m, dash, clk := newTestModel(t)
	for _, e := range sealedEvents(3) {
		dash.Audit.Append(e)
	}

	next, _ := m.Update(key("r"))
	m = next.(model)
	if m.replaying == nil || m.cursor.Total != 3 {
		t.Fatalf("replay not started: %+v", m.cursor)
	}
	if !strings.Contains(m.View(), "Replay 0/3") {
		t.Fatal("audit panel should show the replay cursor")
	}

	clk.Advance(replay.DefaultTick)
	next, _ = m.Update(replayMsg(m.replaying.Cursor()))
	m = next.(model)
	if m.cursor.Index != 1 || !strings.Contains(m.View(), "outreach.sent") {
		t.Fatalf("replay did not advance: %+v", m.cursor)
	}

	next, _ = m.Update(key("x"))
	m = next.(model)
	if m.replaying != nil || m.status != "replay stopped" {
		t.Fatalf("replay not stopped: %q", m.status)
	}
	if clk.Active() != 0 {
		t.Fatalf("replay ticker still active: %d", clk.Active())
	}
}

func TestUpdate_AutoPack(t *testing.T) {
	m, dash, _ := newTestModel(t)

	next, cmd := m.Update(key("p"))
	m = next.(model)
	if !m.busy || cmd == nil {
		t.Fatal("auto-pack should run as a command")
	}
	next, _ = m.Update(cmd())
	m = next.(model)
	if m.busy || m.err != nil {
		t.Fatalf("unexpected state busy=%v err=%v", m.busy, m.err)
	}
	if m.status != "auto-pack: 124/160 confirmed" {
		t.Fatalf("status = %q", m.status)
	}

	next, _ = m.Update(snapshotMsg{})
	m = next.(model)
	if m.snap.Capacity.Confirmed != dash.Snapshot().Capacity.Confirmed {
		t.Fatal("snapshot not applied")
	}
}

func TestUpdate_JobCommandWithoutBackend(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(key("o"))
	next, _ := m.Update(cmd())
	m = next.(model)
	if !errors.Is(m.err, application.ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend, got %v", m.err)
	}
	if !strings.Contains(m.View(), "no backend configured") {
		t.Fatal("error should be shown in the status line")
	}
}

func TestUpdate_AskInput(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(key("/"))
	m = next.(model)
	if !m.asking {
		t.Fatal("expected input focus")
	}
	// Keys go to the input while asking.
	next, _ = m.Update(key("q"))
	m = next.(model)
	if m.input.Value() != "q" {
		t.Fatalf("input = %q", m.input.Value())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if m.asking || cmd == nil {
		t.Fatal("enter should submit")
	}
	var tracked bool
	m.afterAsk = func() { tracked = true }
	next, _ = m.Update(cmd())
	m = next.(model)
	if m.err == nil || !tracked {
		t.Fatalf("ask without chat should fail and still track, err=%v", m.err)
	}
}

func TestUpdate_ChatTranscript(t *testing.T) {
	m, _, _ := newTestModel(t)
	msgs := []chat.Message{
		{ID: "1", Role: chat.RoleUser, Text: "how many interviews?"},
		{ID: "2", Role: chat.RoleAssistant, Text: "12 are scheduled."},
	}
	next, _ := m.Update(chatMsg(msgs))
	m = next.(model)
	if len(m.transcript) != 2 {
		t.Fatalf("transcript = %d", len(m.transcript))
	}
	if line := chatLine(msgs[1]); !strings.Contains(line, "agent 12 are scheduled.") {
		t.Fatalf("line = %q", line)
	}
}

func TestUpdate_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestDashboardCmd_Skip(t *testing.T) {
	t.Setenv("HIRELINE_SKIP_DASHBOARD_RUN", "true")
	if _, err := runCLI(t, "dashboard"); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
}

func TestBar(t *testing.T) {
	if got := bar(50, 100, 10); got != "█████     " {
		t.Fatalf("bar = %q", got)
	}
	if got := bar(0, 100, 4); got != "    " {
		t.Fatalf("bar = %q", got)
	}
}
