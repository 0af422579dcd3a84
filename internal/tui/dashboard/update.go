package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
)

const (
	minWidth  = 60
	minHeight = 16
)

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		ApplyMaxWidth(m.width)

		if m.width < minWidth || m.height < minHeight {
			m.showError = true
			m.errorMsg = fmt.Sprintf("Terminal too small (%dx%d). Minimum size: %dx%d",
				m.width, m.height, minWidth, minHeight)
		} else if m.showError && strings.HasPrefix(m.errorMsg, "Terminal too small") {
			m.showError = false
			m.errorMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FrameMsg:
		for _, machine := range m.machines {
			machine.Tick(time.Time(msg))
		}
		return m, frameCmd(m.interval)

	case EventSentMsg:
		if msg.Accepted {
			m.lastEvent = fmt.Sprintf("%s ← %s", msg.Machine, msg.Event)
			return m, nil
		}
		m.showError = true
		m.errorMsg = rejectionMessage(msg)
		return m, clearErrorCmd()

	case ErrorMsg:
		m.showError = true
		m.errorMsg = msg.Message
		return m, nil

	case ClearErrorMsg:
		m.showError = false
		m.errorMsg = ""
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input based on current view mode
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewHelp:
		return m.handleHelpKeys(msg)
	default:
		return m, nil
	}
}

// handleListKeys handles keys in list view
func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "x", "esc":
		m.showError = false
		m.errorMsg = ""
		return m, nil

	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		m.MoveCursorUp()
		return m, nil

	case "down", "j":
		m.MoveCursorDown()
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.SetCursor(int(msg.String()[0] - '1'))
		return m, nil

	case "enter", " ":
		if current, ok := m.Current(); ok {
			m.selected = current.Name()
			m.viewMode = ViewDetail
		}
		return m, nil

	case "?":
		m.viewMode = ViewHelp
		return m, nil
	}

	return m, nil
}

// handleDetailKeys handles keys in detail view; digits fire the numbered
// event of the selected machine
func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "x":
		m.showError = false
		m.errorMsg = ""
		return m, nil

	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc", "backspace":
		m.viewMode = ViewList
		m.selected = ""
		return m, nil

	case "p":
		if machine, ok := m.Selected(); ok {
			if machine.Status() == statemachine.StatusPaused {
				machine.Resume()
			} else {
				machine.Pause()
			}
		}
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		machine, ok := m.Selected()
		if !ok {
			return m, nil
		}
		events := Events(machine)
		index := int(key[0] - '1')
		if index >= len(events) {
			return m, nil
		}
		return m, sendCmd(machine, events[index])

	case "?":
		m.viewMode = ViewHelp
		return m, nil
	}
	return m, nil
}

// handleHelpKeys handles keys in help view
func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q":
		if m.selected != "" {
			m.viewMode = ViewDetail
		} else {
			m.viewMode = ViewList
		}
		return m, nil
	}
	return m, nil
}
