package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if m.quitting {
			return m, nil
		}
		m.player.Tick(time.Time(msg))
		m.drain()
		m.observe()
		return m, m.frame()
	case EventMsg:
		m.record(msg.Event)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ":
			m.toggle()
		case "r":
			m.player.Reset()
			m.clearCounters()
			m.player.Start()
			m.drain()
		}
		return m, nil
	}
	return m, nil
}

// toggle pauses a running sequence, resumes a paused one and replays a
// finished one.
func (m *Model) toggle() {
	switch m.player.Status() {
	case sequence.StatusRunning:
		m.player.Pause()
	case sequence.StatusPaused:
		m.player.Resume()
	default:
		m.clearCounters()
		m.player.Start()
	}
	m.drain()
}

func toString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(v)
}
