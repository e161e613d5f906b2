package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/chat"
	"github.com/felixgeelhaar/hireline/pkg/domain/replay"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("HIRELINE_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		services, err := loadServices(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		m := newModel(cmd.Context(), services.Dashboard)
		m.afterAsk = services.TrackChat
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		bindProgram(p, services.Dashboard)

		go func() {
			if err := services.Dashboard.Start(cmd.Context()); err != nil {
				services.Logger.Warn("first refresh incomplete", "error", err)
			}
		}()

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var panelStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

var statusDone = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var statusWIP = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
var statusErr = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

// Messages fed into the program from dashboard callbacks.
type (
	snapshotMsg struct{}
	replayMsg   replay.Cursor
	chatMsg     []chat.Message
	askDoneMsg  struct{ err error }
	resultMsg   struct {
		text string
		err  error
	}
)

// bindProgram forwards dashboard notifications to p. Send is safe from any
// goroutine.
func bindProgram(p *tea.Program, dash *application.Dashboard) {
	dash.OnChange(func() { p.Send(snapshotMsg{}) })
	dash.Replay.OnChange(func(c replay.Cursor) { p.Send(replayMsg(c)) })
	if dash.Chat != nil {
		dash.Chat.OnChange(func(msgs []chat.Message) { p.Send(chatMsg(msgs)) })
	}
}

type model struct {
	ctx  context.Context
	dash *application.Dashboard

	snap       application.Snapshot
	jobs       table.Model
	input      textinput.Model
	spinner    spinner.Model
	transcript []chat.Message
	replaying  *replay.Session
	cursor     replay.Cursor
	asking     bool
	busy       bool
	status     string
	err        error

	afterAsk func()
}

func newModel(ctx context.Context, dash *application.Dashboard) model {
	columns := []table.Column{
		{Title: "ID", Width: 14},
		{Title: "Title", Width: 30},
		{Title: "Location", Width: 16},
		{Title: "Shift", Width: 10},
		{Title: "Pay", Width: 10},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	in := textinput.New()
	in.Placeholder = "Ask the recruiting agent..."
	in.CharLimit = 500
	in.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		ctx:     ctx,
		dash:    dash,
		jobs:    t,
		input:   in,
		spinner: sp,
	}
	m.applySnapshot(dash.Snapshot())
	return m
}

func (m *model) applySnapshot(snap application.Snapshot) {
	m.snap = snap
	rows := make([]table.Row, 0, len(snap.Jobs))
	for _, j := range snap.Jobs {
		rows = append(rows, table.Row{j.ID, j.Title, j.Location, j.Shift, j.PayBand})
	}
	m.jobs.SetRows(rows)
}

func (m model) selectedJob() string {
	row := m.jobs.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

func (m model) Init() tea.Cmd { return m.spinner.Tick }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.applySnapshot(m.dash.Snapshot())
		return m, nil
	case replayMsg:
		m.cursor = replay.Cursor(msg)
		if m.cursor.Done() {
			m.status = fmt.Sprintf("replay finished (%d events)", m.cursor.Total)
		}
		return m, nil
	case chatMsg:
		m.transcript = msg
		return m, nil
	case askDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = MapError(msg.err)
		}
		if m.afterAsk != nil {
			m.afterAsk()
		}
		return m, nil
	case resultMsg:
		m.busy = false
		m.status = msg.text
		m.err = nil
		if msg.err != nil {
			m.err = MapError(msg.err)
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.asking {
			return m.updateInput(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.asking = true
			cmd := m.input.Focus()
			return m, cmd
		case "r":
			m.replaying = m.dash.StartReplay()
			m.cursor = m.replaying.Cursor()
			m.status = fmt.Sprintf("replaying %d events", m.cursor.Total)
			return m, nil
		case "x":
			m.dash.StopReplay()
			m.replaying = nil
			m.status = "replay stopped"
			return m, nil
		case "p":
			m.busy = true
			return m, m.autoPack()
		case "o":
			m.busy = true
			return m, m.jobCommand("outreach", m.dash.Commands.SimulateOutreach)
		case "f":
			m.busy = true
			return m, m.jobCommand("flow", m.dash.Commands.SimulateFlow)
		}
	}
	var cmd tea.Cmd
	m.jobs, cmd = m.jobs.Update(msg)
	return m, cmd
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.asking = false
		m.input.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		m.asking = false
		m.input.Blur()
		if text == "" {
			return m, nil
		}
		m.busy = true
		return m, m.ask(text)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask drains the reply stream; the transcript itself arrives via chatMsg.
func (m model) ask(text string) tea.Cmd {
	ctx, dash := m.ctx, m.dash
	return func() tea.Msg {
		deltas, err := dash.Ask(ctx, text)
		if err != nil {
			return askDoneMsg{err: err}
		}
		for range deltas {
		}
		return askDoneMsg{}
	}
}

func (m model) autoPack() tea.Cmd {
	ctx, dash := m.ctx, m.dash
	return func() tea.Msg {
		c, err := dash.Commands.AutoPack(ctx)
		return resultMsg{text: fmt.Sprintf("auto-pack: %d/%d confirmed", c.Confirmed, c.Available), err: err}
	}
}

func (m model) jobCommand(name string, fn func(context.Context, string) error) tea.Cmd {
	ctx, id := m.ctx, m.selectedJob()
	return func() tea.Msg {
		err := fn(ctx, id)
		return resultMsg{text: fmt.Sprintf("simulated %s for %s", name, id), err: err}
	}
}

func (m model) View() string {
	header := render("header", m.headerView)
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(render("kpi", m.kpiView).View),
		panelStyle.Render(render("capacity", m.capacityView).View),
		panelStyle.Render(render("funnel", m.funnelView).View),
	)
	middle := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(render("heatmap", m.heatmapView).View),
		panelStyle.Render(render("audit", m.auditView).View),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(render("jobs", m.jobsView).View),
		panelStyle.Render(render("candidates", m.candidatesView).View),
	)
	chatPanel := panelStyle.Render(render("chat", m.chatView).View)

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header.View,
			top,
			middle,
			bottom,
			chatPanel,
			m.statusView(),
		),
	) + "\n"
}

func (m model) statusView() string {
	var b strings.Builder
	if m.busy {
		b.WriteString(m.spinner.View() + " ")
	}
	switch {
	case m.err != nil:
		b.WriteString(statusErr.Render(m.err.Error()))
		if hint := hintOf(m.err); hint != "" {
			b.WriteString(dimStyle.Render(" (" + hint + ")"))
		}
	case m.status != "":
		b.WriteString(statusWIP.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q quit • / ask • r replay • x stop replay • p auto-pack • o outreach • f flow"))
	return b.String()
}
