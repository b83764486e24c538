package session

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"luxtrail/internal/config"
	"luxtrail/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries an event line for the events viewport.
type logMsg struct{ line string }

// screenMsg carries the latest session screen.
type screenMsg struct{ Screen }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

const (
	maxEventLines = 500
	panelWidthPct = 0.5
)

// TUIWriter renders the session screen using a bubbletea TUI. Every row
// refreshes the screen from the snapshot function and appends an event line.
type TUIWriter struct {
	program    teaProgram
	snapshot   atomic.Pointer[func() Screen]
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.Config) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		// quitting the TUI stops the whole process
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// SetSnapshot registers the function providing the screen, usually
// Session.Snapshot.
func (w *TUIWriter) SetSnapshot(fn func() Screen) {
	w.snapshot.Store(&fn)
}

func (w *TUIWriter) refresh() {
	if fn := w.snapshot.Load(); fn != nil {
		w.program.Send(screenMsg{(*fn)()})
	}
}

// WriteLocation implements Writer.
func (w *TUIWriter) WriteLocation(row telemetry.LocationRow) error {
	distColor := colorGreen
	if row.CheckpointReset {
		distColor = colorRed
	}
	line := fmt.Sprintf("%s[%s]%s %sLOC%s %slat=%.6f%s %slon=%.6f%s %salt=%.1f%s %sdist=%.2fm%s %sname=%s%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, colorReset,
		colorGreen, row.Lat, colorReset,
		colorYellow, row.Lon, colorReset,
		colorMagenta, row.Alt, colorReset,
		distColor, row.DistanceM, colorReset,
		colorCyan, row.Name, colorReset)
	w.program.Send(logMsg{line: line})
	w.refresh()
	return nil
}

// WriteLight implements Writer. Light samples only refresh the screen.
func (w *TUIWriter) WriteLight(row telemetry.LightRow) error {
	if row.Cleared {
		line := fmt.Sprintf("%s[%s]%s %sLIGHT%s buffer cleared at %d samples",
			colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
			colorYellow, colorReset, row.Buffered)
		w.program.Send(logMsg{line: line})
	}
	w.refresh()
	return nil
}

// WriteCheckpoint implements Writer.
func (w *TUIWriter) WriteCheckpoint(row telemetry.CheckpointRow) error {
	line := fmt.Sprintf("%s[%s]%s %sCHECKPOINT%s %savg=%.2f lux%s %ssamples=%d%s %sname=%s%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorRed, colorReset,
		colorGreen, row.AverageLux, colorReset,
		colorWhite, row.Samples, colorReset,
		colorCyan, row.Name, colorReset)
	w.program.Send(logMsg{line: line})
	w.refresh()
	return nil
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	table        table.Model
	checkVP      viewport.Model
	eventVP      viewport.Model
	screen       Screen
	events       []string
	admin        bool
	wrap         bool
	autoscroll   bool
	header       string
	headerHeight int
	width        int
	height       int
}

func newTUIModel(cfg *config.Config) tuiModel {
	cols := []table.Column{
		{Title: "Config", Width: 20},
		{Title: "Value", Width: 14},
		{Title: "Config", Width: 20},
		{Title: "Value", Width: 14},
	}
	var rows []table.Row
	if cfg != nil {
		rows = []table.Row{
			{"Device", cfg.DeviceID, "Geocoder", cfg.Geocoder.Provider},
			{"Radius (m)", fmt.Sprintf("%.1f", cfg.Tracker.RadiusM), "Lookup Timeout", cfg.Geocoder.Timeout().String()},
			{"Max Light Storage", fmt.Sprintf("%d", cfg.Tracker.MaxLightStorage), "Max Lookups", fmt.Sprintf("%d", cfg.Geocoder.MaxLookups)},
		}
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return tuiModel{
		table:      t,
		checkVP:    viewport.New(0, 0),
		eventVP:    viewport.New(0, 0),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.checkVP.Width = msg.Width
		m.eventVP.Width = msg.Width
		m.header = m.table.View()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshCheckpoints()
		m.refreshEvents()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshCheckpoints()
			m.refreshEvents()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.checkVP.GotoBottom()
				m.eventVP.GotoBottom()
			}
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.eventVP.LineDown(1)
				m.checkVP.LineDown(1)
			case "k", "up":
				m.eventVP.LineUp(1)
				m.checkVP.LineUp(1)
			case "pgdown", "ctrl+n":
				m.eventVP.LineDown(10)
				m.checkVP.LineDown(10)
			case "pgup", "ctrl+p":
				m.eventVP.LineUp(10)
				m.checkVP.LineUp(10)
			}
		}
	case logMsg:
		m.events = append(m.events, msg.line)
		if len(m.events) > maxEventLines {
			m.events = m.events[len(m.events)-maxEventLines:]
		}
		m.refreshEvents()
	case screenMsg:
		m.screen = msg.Screen
		m.updateViewportHeight()
		m.refreshCheckpoints()
	case adminMsg:
		m.admin = msg.active
	}
	return m, nil
}

func (m *tuiModel) updateViewportHeight() {
	used := m.headerHeight + lipgloss.Height(m.renderPanels()) + lipgloss.Height(m.renderBottom()) + 6
	free := m.height - used
	if free < 2 {
		free = 2
	}
	m.checkVP.Height = free / 2
	m.eventVP.Height = free - m.checkVP.Height
	if m.autoscroll {
		m.checkVP.GotoBottom()
		m.eventVP.GotoBottom()
	}
}

func (m *tuiModel) wrapText(s string, width int) string {
	if m.wrap && width > 0 {
		return wordwrap.String(s, width)
	}
	return s
}

func (m *tuiModel) refreshCheckpoints() {
	content := "none"
	if m.screen.Content != "" {
		content = m.screen.Content
	}
	m.checkVP.SetContent(m.wrapText(content, m.checkVP.Width))
	if m.autoscroll {
		m.checkVP.GotoBottom()
	}
}

func (m *tuiModel) refreshEvents() {
	content := "none"
	if len(m.events) > 0 {
		content = strings.Join(m.events, "\n")
	}
	m.eventVP.SetContent(m.wrapText(content, m.eventVP.Width))
	if m.autoscroll {
		m.eventVP.GotoBottom()
	}
}

// renderPanels shows the current position next to the last checkpoint.
func (m tuiModel) renderPanels() string {
	half := int(float64(m.width)*panelWidthPct) - 1
	if half < 20 {
		half = 20
	}
	title := lipgloss.NewStyle().Bold(true)
	left := lipgloss.NewStyle().Width(half).Render(strings.Join([]string{
		title.Render("Current"),
		orNone(m.screen.Description),
		m.screen.Light,
		m.screen.Distance,
	}, "\n"))
	right := lipgloss.NewStyle().Width(half).Render(strings.Join([]string{
		title.Render("Checkpoint"),
		orNone(m.screen.LastDescription),
		m.screen.LastLight,
	}, "\n"))
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)
}

func orNone(s string) string {
	if s == "" {
		return "waiting for location..."
	}
	return s
}

func (m tuiModel) renderBottom() string {
	indicator := func(on bool) string {
		c := lipgloss.Color("9")
		if on {
			c = lipgloss.Color("10")
		}
		return lipgloss.NewStyle().Foreground(c).Render("●")
	}
	state := fmt.Sprintf("%sSTATE%s %slocations=%d%s %slight=%d%s %sbuffered=%d%s %scheckpoints=%d%s",
		colorBlue, colorReset,
		colorGreen, m.screen.Locations, colorReset,
		colorYellow, m.screen.LightSamples, colorReset,
		colorMagenta, m.screen.Buffered, colorReset,
		colorCyan, m.screen.Checkpoints, colorReset)
	return fmt.Sprintf("%s | Admin UI %s | Wrap %s | Scroll %s | q quit", state,
		indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll))
}

func (m tuiModel) View() string {
	divider := strings.Repeat("─", m.width)
	return strings.Join([]string{
		m.header,
		divider,
		m.renderPanels(),
		divider,
		"Checkpoints:",
		m.checkVP.View(),
		divider,
		"Events:",
		m.eventVP.View(),
		divider,
		m.renderBottom(),
	}, "\n")
}
