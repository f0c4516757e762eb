package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"netdash/internal/dashboard"
	"netdash/internal/export"
	"netdash/internal/models"
	"netdash/internal/period"
)

// Dashboard is the part of the orchestrator the terminal UI drives
type Dashboard interface {
	State() dashboard.State
	Refresh(ctx context.Context) (*models.Snapshot, error)
	SetSelector(ctx context.Context, sel period.Selector) (*models.Snapshot, error)
	ToggleAutoRefresh() bool
	Subscribe(fn func(dashboard.Event)) (unsubscribe func())
}

// Capturer writes the current view to a file
type Capturer interface {
	Capture(ctx context.Context, src export.ViewSource, format export.Format) (*export.Artifact, error)
}

// --- Messages ---

type eventMsg struct{ evt dashboard.Event }

type refreshDone struct{ err error }

type exportDone struct {
	art *export.Artifact
	err error
}

// --- Model ---

// Model is the bubbletea model of the live dashboard
type Model struct {
	ctx      context.Context
	dash     Dashboard
	exporter Capturer
	appName  string

	spinner   spinner.Model
	events    chan dashboard.Event
	width     int
	notice    string
	info      string
	exporting bool
}

// New creates the model. exporter may be nil, which disables the export keys.
func New(ctx context.Context, appName string, dash Dashboard, exporter Capturer) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Primary)

	return Model{
		ctx:      ctx,
		dash:     dash,
		exporter: exporter,
		appName:  appName,
		spinner:  s,
		events:   make(chan dashboard.Event, 16),
		width:    100,
	}
}

// Run shows the dashboard until the user quits or ctx is cancelled
func Run(ctx context.Context, appName string, dash Dashboard, exporter Capturer) error {
	m := New(ctx, appName, dash, exporter)
	unsubscribe := dash.Subscribe(m.forward)
	defer unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// forward hands orchestrator events to the UI without blocking the refresh.
// A dropped event is harmless: View always reads the latest state.
func (m Model) forward(evt dashboard.Event) {
	select {
	case m.events <- evt:
	default:
	}
}

func waitForEvent(ch chan dashboard.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{evt: <-ch}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		if msg.evt.Err != nil {
			m.notice = msg.evt.Err.Error()
		} else {
			m.notice = ""
		}
		return m, waitForEvent(m.events)

	case refreshDone:
		// Successes and failures also arrive as events; only the stale case is local
		if errors.Is(msg.err, dashboard.ErrStale) {
			m.info = "refresh superseded by a newer one"
		}
		return m, nil

	case exportDone:
		m.exporting = false
		if msg.err != nil {
			m.notice = "export failed: " + msg.err.Error()
		}
		if msg.art != nil {
			m.info = "exported " + msg.art.Path
			if msg.art.Location != "" {
				m.info += " -> " + msg.art.Location
			}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		m.info = ""
		return m, m.refresh()

	case "a":
		enabled := m.dash.ToggleAutoRefresh()
		m.info = "auto-refresh " + onOff(enabled)
		return m, nil

	case "p":
		next := nextPeriod(m.dash.State().Selector)
		m.info = "period: " + next.Label()
		return m, m.setSelector(next)

	case "e":
		return m.startExport(export.FormatPNG)

	case "E":
		return m.startExport(export.FormatPDF)
	}
	return m, nil
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		_, err := m.dash.Refresh(m.ctx)
		return refreshDone{err: err}
	}
}

func (m Model) setSelector(sel period.Selector) tea.Cmd {
	return func() tea.Msg {
		_, err := m.dash.SetSelector(m.ctx, sel)
		return refreshDone{err: err}
	}
}

func (m Model) startExport(format export.Format) (tea.Model, tea.Cmd) {
	if m.exporter == nil {
		m.notice = "export is not configured"
		return m, nil
	}
	if m.exporting {
		return m, nil
	}
	m.exporting = true
	m.info = fmt.Sprintf("exporting %s...", format)

	src := m.viewSource()
	return m, func() tea.Msg {
		art, err := m.exporter.Capture(m.ctx, src, format)
		return exportDone{art: art, err: err}
	}
}

// viewSource lays out whatever the dashboard shows at capture time
func (m Model) viewSource() export.ViewSource {
	return func() (export.View, error) {
		st := m.dash.State()
		if st.Snapshot == nil {
			return export.View{}, dashboard.ErrNoSnapshot
		}
		return export.DashboardView(m.appName, st.Snapshot, st.Selector.Label(), st.AutoRefresh), nil
	}
}

// periodCycle is the order the period key steps through
var periodCycle = []period.Kind{
	period.LastHour,
	period.Last6Hours,
	period.Last24Hours,
	period.Today,
	period.Yesterday,
	period.Last7Days,
	period.Last30Days,
}

// nextPeriod steps to the next preset; a custom range continues at the default
func nextPeriod(current period.Selector) period.Selector {
	for i, k := range periodCycle {
		if k == current.Kind {
			return period.Preset(periodCycle[(i+1)%len(periodCycle)])
		}
	}
	return period.Preset(period.DefaultKind)
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
