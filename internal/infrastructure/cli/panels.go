package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/hireline/pkg/chat"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
	"github.com/felixgeelhaar/hireline/pkg/domain/synth"
	"github.com/felixgeelhaar/hireline/pkg/push"
)

const (
	auditRows     = 8
	candidateRows = 8
	chatRows      = 6
	funnelWidth   = 24
)

// panelResult is the outcome of rendering one panel.
type panelResult struct {
	Name   string
	View   string
	Failed bool
}

// render runs fn for the named panel. An error or a panic yields a fallback
// view so one broken panel never takes down the screen.
func render(name string, fn func() (string, error)) (res panelResult) {
	res.Name = name
	defer func() {
		if r := recover(); r != nil {
			res = failedPanel(name, fmt.Errorf("panic: %v", r))
		}
	}()
	view, err := fn()
	if err != nil {
		return failedPanel(name, err)
	}
	return panelResult{Name: name, View: view}
}

func failedPanel(name string, err error) panelResult {
	view := titleStyle.Render(name) + "\n" +
		statusErr.Render("component failed to render") + "\n" +
		dimStyle.Render(err.Error())
	return panelResult{Name: name, View: view, Failed: true}
}

func hintOf(err error) string {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Hint
	}
	return ""
}

func (m model) headerView() (string, error) {
	health := statusErr.Render("backend offline")
	if h := m.snap.Health; h != nil {
		if h.OK {
			health = statusDone.Render("backend ok")
		} else {
			health = statusWIP.Render("backend degraded")
		}
		if h.Mode != "" {
			health += dimStyle.Render(" (" + h.Mode + ")")
		}
	}

	state := m.dash.PushState()
	pushView := dimStyle.Render("push " + string(state))
	switch state {
	case push.StateOpen:
		pushView = statusDone.Render("push live")
	case push.StateConnecting:
		pushView = statusWIP.Render("push connecting")
	}

	updated := "never"
	if !m.snap.UpdatedAt.IsZero() {
		updated = m.snap.UpdatedAt.Format("15:04:05")
	}
	line := lipgloss.JoinHorizontal(lipgloss.Center,
		headerStyle.Render("hireline"), " ", health, "  ", pushView, "  ", dimStyle.Render("updated "+updated),
	)
	if len(m.snap.Errors) > 0 {
		sources := make([]string, 0, len(m.snap.Errors))
		for src := range m.snap.Errors {
			sources = append(sources, src)
		}
		slices.Sort(sources)
		line += "\n" + statusErr.Render("stale: "+strings.Join(sources, ", "))
	}
	return line, nil
}

func (m model) kpiView() (string, error) {
	if len(m.snap.KPI) == 0 {
		return "", errors.New("no kpi tiles")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("KPIs"))
	for _, tile := range m.snap.KPI {
		fmt.Fprintf(&b, "\n%-20s %s", tile.Key, tile.Value)
	}
	return b.String(), nil
}

func (m model) capacityView() (string, error) {
	c := m.snap.Capacity
	var b strings.Builder
	b.WriteString(titleStyle.Render("Interview capacity"))
	fmt.Fprintf(&b, "\navailable  %d", c.Available)
	fmt.Fprintf(&b, "\nheld       %d", c.Held)
	fmt.Fprintf(&b, "\nconfirmed  %d", c.Confirmed)
	fmt.Fprintf(&b, "\nutilized   %.0f%%", c.Utilization()*100)
	fmt.Fprintf(&b, "\nno-show    %.0f%%", c.NoShowForecast*100)
	return b.String(), nil
}

func (m model) funnelView() (string, error) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Funnel"))
	top := 0
	if len(m.snap.Funnel) > 0 {
		top = m.snap.Funnel[0].Value
	}
	for _, row := range m.snap.Funnel {
		fmt.Fprintf(&b, "\n%-10s %s %d", row.Stage, bar(row.Value, top, funnelWidth), row.Value)
	}
	return b.String(), nil
}

func bar(v, top, width int) string {
	if top <= 0 || v <= 0 {
		return strings.Repeat(" ", width)
	}
	n := min(width, v*width/top)
	return strings.Repeat("█", n) + strings.Repeat(" ", width-n)
}

func (m model) heatmapView() (string, error) {
	h := m.snap.Heatmap
	if len(h.Cells) != len(h.Days) {
		return "", fmt.Errorf("heatmap has %d rows for %d days", len(h.Cells), len(h.Days))
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("SLA heatmap"))
	for i, day := range h.Days {
		b.WriteString("\n" + fmt.Sprintf("%-4s", day))
		for _, cell := range h.Cells[i] {
			b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(cell.Band.Color())).Render(" "))
		}
	}
	legend := []synth.Band{synth.BandLow, synth.BandModerate, synth.BandHigh, synth.BandHighest}
	b.WriteString("\n")
	for _, band := range legend {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(band.Color())).Render("■ " + band.String() + " "))
	}
	return b.String(), nil
}

func (m model) auditView() (string, error) {
	var (
		events []audit.Event
		title  = "Audit trail"
	)
	if m.replaying != nil && !m.replaying.Cancelled() {
		visible := m.replaying.Visible()
		slices.Reverse(visible)
		events = visible[:min(auditRows, len(visible))]
		title = fmt.Sprintf("Replay %d/%d", m.cursor.Index, m.cursor.Total)
	} else {
		events = m.dash.Audit.Latest(auditRows)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	if len(events) == 0 {
		b.WriteString("\n" + dimStyle.Render("no events yet"))
	}
	for _, e := range events {
		b.WriteString("\n" + auditLine(e))
	}
	return b.String(), nil
}

func auditLine(e audit.Event) string {
	g := e.Glyph()
	row := fmt.Sprintf("%s %s %-9s %s", g.Icon, e.Time().Format("15:04:05"), e.Actor, e.Action)
	if locale := e.Locale(); locale != "" {
		row += " [" + locale + "]"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render(row)
}

func (m model) jobsView() (string, error) {
	return titleStyle.Render(fmt.Sprintf("Jobs (%d)", len(m.snap.Jobs))) + "\n" + m.jobs.View(), nil
}

func (m model) candidatesView() (string, error) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Candidates (%d)", len(m.snap.Candidates))))
	for _, c := range m.snap.Candidates[:min(candidateRows, len(m.snap.Candidates))] {
		fmt.Fprintf(&b, "\n%-22s %-10s %s", c.Name, c.Status, dimStyle.Render(c.Role))
	}
	return b.String(), nil
}

func (m model) chatView() (string, error) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Agent chat"))
	if m.dash.Chat == nil {
		b.WriteString("\n" + dimStyle.Render("chat is not configured"))
		return b.String(), nil
	}
	msgs := m.transcript[max(0, len(m.transcript)-chatRows):]
	for _, msg := range msgs {
		b.WriteString("\n" + chatLine(msg))
	}
	b.WriteString("\n" + m.input.View())
	return b.String(), nil
}

func chatLine(msg chat.Message) string {
	prefix := "you  "
	style := lipgloss.NewStyle()
	if msg.Role == chat.RoleAssistant {
		prefix = "agent"
		style = statusDone
	}
	switch {
	case msg.Failed:
		style = statusErr
	case msg.Pending:
		style = dimStyle
	}
	return style.Render(prefix + " " + msg.Text)
}
