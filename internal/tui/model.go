// Package tui previews a playing sequence in the terminal.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
	"github.com/alexisbeaulieu97/motionkit/internal/tui/components"
)

const eventLogSize = 8

// Player is the playback surface the preview drives. *sequence.Sequence
// implements it.
type Player interface {
	Name() string
	Status() sequence.Status
	Start()
	Pause()
	Resume()
	Reset()
	Tick(now time.Time)
	Elapsed() time.Duration
	Values(target string) effect.Props
}

// FrameMsg advances playback to the carried timestamp.
type FrameMsg time.Time

// EventMsg forwards a bus event into the model.
type EventMsg struct {
	Event ports.Event
}

type span struct{ lo, hi float64 }

// Model contains the Bubbletea state for the playback preview.
type Model struct {
	title    string
	player   Player
	targets  []string
	estimate time.Duration
	interval time.Duration

	ranges    map[string]span
	inbox     *[]ports.Event
	log       components.EventLog
	completed int
	skipped   int
	failed    int
	errors    []string
	quitting  bool
}

// NewModel constructs a preview for player. Targets are rendered in the given
// order; estimate sizes the timeline and interval paces frames.
func NewModel(title string, player Player, targets []string, estimate, interval time.Duration) Model {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return Model{
		title:    title,
		player:   player,
		targets:  append([]string(nil), targets...),
		estimate: estimate,
		interval: interval,
		ranges:   make(map[string]span),
		inbox:    new([]ports.Event),
		log:      components.NewEventLog(eventLogSize),
	}
}

// Init starts playback and the frame loop.
func (m Model) Init() tea.Cmd {
	m.player.Start()
	return m.frame()
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

// Collect returns a bus handler that queues events for the next frame.
// Events published during Tick arrive while Update is running, so they are
// buffered instead of being sent back through the program.
func (m Model) Collect() ports.EventHandler {
	inbox := m.inbox
	return func(e ports.Event) error {
		*inbox = append(*inbox, e)
		return nil
	}
}

func (m *Model) drain() {
	for _, e := range *m.inbox {
		m.record(e)
	}
	*m.inbox = (*m.inbox)[:0]
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

// observe widens the recorded range of every displayed property.
func (m *Model) observe() {
	for _, target := range m.targets {
		for name, v := range m.player.Values(target) {
			key := target + "." + name
			r, ok := m.ranges[key]
			if !ok {
				m.ranges[key] = span{lo: v, hi: v}
				continue
			}
			r.lo = min(r.lo, v)
			r.hi = max(r.hi, v)
			m.ranges[key] = r
		}
	}
}

func (m *Model) record(e ports.Event) {
	m.log.Add(e)
	switch e.Type {
	case ports.EventStepCompleted:
		m.completed++
	case ports.EventStepSkipped:
		m.skipped++
	case ports.EventStepFailed:
		m.failed++
		if err, ok := e.Payload["error"]; ok {
			m.errors = append(m.errors, toString(err))
		}
	}
}

func (m *Model) clearCounters() {
	m.completed, m.skipped, m.failed = 0, 0, 0
	m.errors = nil
	m.log.Clear()
}
