package components

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/ring"
)

// EventLog keeps the most recent events for display.
type EventLog struct {
	entries *ring.Buffer[ports.Event]
}

// NewEventLog creates a log holding at most size events.
func NewEventLog(size int) EventLog {
	return EventLog{entries: ring.New[ports.Event](size)}
}

// Add records an event, evicting the oldest when full.
func (l EventLog) Add(e ports.Event) {
	l.entries.Push(e)
}

// Len reports how many events are held.
func (l EventLog) Len() int { return l.entries.Len() }

// Clear drops every event.
func (l EventLog) Clear() { l.entries.Clear() }

// View renders one line per event, oldest first.
func (l EventLog) View() string {
	items := l.entries.Items()
	lines := make([]string, 0, len(items))
	for _, e := range items {
		line := e.Type
		if step, ok := e.Payload["step"]; ok {
			line = fmt.Sprintf("%s %v", line, step)
		}
		if target, ok := e.Payload["target"]; ok && target != "" {
			line = fmt.Sprintf("%s [%v]", line, target)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
