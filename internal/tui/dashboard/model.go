// Package dashboard is an interactive console for the state machines of a
// scene: pick a machine, fire its events and watch it transition.
package dashboard

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
)

const defaultInterval = 16 * time.Millisecond

// Model is the main dashboard model
type Model struct {
	machines []*statemachine.Machine

	// UI state
	viewMode ViewMode
	cursor   int
	selected string

	spinner   spinner.Model
	showError bool
	errorMsg  string
	lastEvent string

	width    int
	height   int
	interval time.Duration
}

// NewModel creates a dashboard over the given machines
func NewModel(machines []*statemachine.Machine, interval time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	if interval <= 0 {
		interval = defaultInterval
	}
	return Model{
		machines: slices.Clone(machines),
		viewMode: ViewList,
		spinner:  s,
		width:    80,
		height:   24,
		interval: interval,
	}
}

// Init starts every machine and the frame loop
func (m Model) Init() tea.Cmd {
	for _, machine := range m.machines {
		machine.Start()
	}
	return tea.Batch(m.spinner.Tick, frameCmd(m.interval))
}

// Selected returns the machine shown in the detail view
func (m Model) Selected() (*statemachine.Machine, bool) {
	for _, machine := range m.machines {
		if machine.Name() == m.selected {
			return machine, true
		}
	}
	return nil, false
}

// Current returns the machine under the cursor
func (m Model) Current() (*statemachine.Machine, bool) {
	if m.cursor < 0 || m.cursor >= len(m.machines) {
		return nil, false
	}
	return m.machines[m.cursor], true
}

// MoveCursorUp moves cursor up with wrapping
func (m *Model) MoveCursorUp() {
	if len(m.machines) == 0 {
		return
	}
	m.cursor--
	if m.cursor < 0 {
		m.cursor = len(m.machines) - 1
	}
}

// MoveCursorDown moves cursor down with wrapping
func (m *Model) MoveCursorDown() {
	if len(m.machines) == 0 {
		return
	}
	m.cursor++
	if m.cursor >= len(m.machines) {
		m.cursor = 0
	}
}

// SetCursor moves the cursor to index when it is in range
func (m *Model) SetCursor(index int) {
	if index >= 0 && index < len(m.machines) {
		m.cursor = index
	}
}

// CountInTransition returns how many machines are playing a transition
func (m Model) CountInTransition() int {
	n := 0
	for _, machine := range m.machines {
		if machine.InTransition() {
			n++
		}
	}
	return n
}

// Events lists the distinct events declared on transitions leaving the
// machine's current state, wildcard sources included, in declaration order.
func Events(machine *statemachine.Machine) []string {
	var names []string
	for _, t := range machine.Definition().Transitions() {
		if t.From != machine.State() && t.From != statemachine.Wildcard {
			continue
		}
		if !slices.Contains(names, t.Event) {
			names = append(names, t.Event)
		}
	}
	return names
}
