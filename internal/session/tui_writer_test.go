package session

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"luxtrail/internal/config"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	if err := w.WriteLocation(testLocation); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(p.msgs) != 1 {
		t.Fatalf("expected only a log line without snapshot, got %d msgs", len(p.msgs))
	}
	if _, ok := p.msgs[0].(logMsg); !ok {
		t.Fatalf("expected logMsg, got %T", p.msgs[0])
	}

	w.SetSnapshot(func() Screen { return Screen{Distance: "Distance: 12.5 m"} })
	if err := w.WriteLight(testLight); err != nil {
		t.Fatalf("light: %v", err)
	}
	if sm, ok := p.msgs[1].(screenMsg); !ok || sm.Distance != "Distance: 12.5 m" {
		t.Fatalf("expected screenMsg, got %#v", p.msgs[1])
	}
	if err := w.WriteCheckpoint(testCheck); err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if _, ok := p.msgs[2].(logMsg); !ok {
		t.Fatalf("expected logMsg for checkpoint, got %T", p.msgs[2])
	}
	w.SetAdminStatus(true)
	if _, ok := p.msgs[len(p.msgs)-1].(adminMsg); !ok {
		t.Fatalf("expected adminMsg")
	}
}

func TestTUIModelScreen(t *testing.T) {
	cfg := &config.Config{DeviceID: "d1"}
	m := newTUIModel(cfg)
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = mi.(tuiModel)
	mi, _ = m.Update(screenMsg{Screen{
		Description: "Longitude: 2\nLatitude: 1\nAltitude: 0\nLocation Name: Main St",
		Light:       "Light: 5 lux",
		LastLight:   "Last Light: 4 lux",
		Distance:    "Distance: 3 m",
		Content:     "Last Longitude: 2\nLast Latitude: 1\nLast Altitude: 0\nLast Location Name: Main St\n4 lux",
	}})
	m = mi.(tuiModel)
	view := m.View()
	for _, want := range []string{"Location Name: Main St", "Light: 5 lux", "Last Light: 4 lux", "Distance: 3 m", "Checkpoints:"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestScrollToggle(t *testing.T) {
	m := newTUIModel(nil)
	m.eventVP.Height = 1
	m.eventVP.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.eventVP.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.eventVP.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.eventVP.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.eventVP.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = mi.(tuiModel)
	if m.eventVP.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.eventVP.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if !m.autoscroll {
		t.Fatalf("autoscroll should be on")
	}
	if want := len(m.events) - m.eventVP.Height; m.eventVP.YOffset != want {
		t.Fatalf("expected YOffset %d, got %d", want, m.eventVP.YOffset)
	}
}

func TestWrapToggle(t *testing.T) {
	m := newTUIModel(nil)
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 30})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "one two three four five six seven"})
	m = mi.(tuiModel)
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	if n := m.eventVP.TotalLineCount(); n < 2 {
		t.Fatalf("expected wrapped event line, got %d lines", n)
	}
}
