package dashboard

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
)

// errorDisplayTime is how long a rejected-event banner stays visible
const errorDisplayTime = 3 * time.Second

// frameCmd schedules the next frame
func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// sendCmd reports the outcome of an event that was already dispatched.
// Machines are not safe for concurrent use, so the send itself happens in
// Update and only the result travels through the program.
func sendCmd(machine *statemachine.Machine, event string) tea.Cmd {
	accepted, err := machine.Send(event)
	return func() tea.Msg {
		return EventSentMsg{Machine: machine.Name(), Event: event, Accepted: accepted, Error: err}
	}
}

// clearErrorCmd dismisses the error banner after a delay
func clearErrorCmd() tea.Cmd {
	return tea.Tick(errorDisplayTime, func(time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func rejectionMessage(msg EventSentMsg) string {
	if msg.Error != nil {
		return msg.Error.Error()
	}
	return fmt.Sprintf("%s ignored event %q", msg.Machine, msg.Event)
}
