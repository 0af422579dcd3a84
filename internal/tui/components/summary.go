package components

import (
	"fmt"
	"strings"
	"time"
)

// SummaryData aggregates run counters for rendering.
type SummaryData struct {
	Status    string
	Elapsed   time.Duration
	Completed int
	Skipped   int
	Failed    int
	Errors    []string
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	lines := []string{fmt.Sprintf("Status: %s after %s", s.data.Status, s.data.Elapsed.Truncate(time.Millisecond))}
	lines = append(lines, fmt.Sprintf("Steps: %d completed, %d skipped, %d failed", s.data.Completed, s.data.Skipped, s.data.Failed))
	for _, e := range s.data.Errors {
		lines = append(lines, "  ✗ "+e)
	}
	return strings.Join(lines, "\n")
}
