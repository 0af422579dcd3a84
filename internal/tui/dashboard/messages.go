package dashboard

import "time"

// ViewMode determines which screen to render
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewHelp
)

// FrameMsg advances every machine to the carried timestamp
type FrameMsg time.Time

// EventSentMsg reports the outcome of sending an event to a machine
type EventSentMsg struct {
	Machine  string
	Event    string
	Accepted bool
	Error    error
}

// ErrorMsg indicates a general error occurred
type ErrorMsg struct {
	Message string
}

// ClearErrorMsg requests error banner dismissal
type ClearErrorMsg struct{}
