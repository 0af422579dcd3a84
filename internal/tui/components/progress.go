package components

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Timeline renders playback position against the estimated length.
type Timeline struct {
	bar      progress.Model
	estimate time.Duration
}

// NewTimeline creates a timeline for a run of the given estimated length.
// A zero estimate means the length is unknown.
func NewTimeline(estimate time.Duration) Timeline {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30
	return Timeline{bar: bar, estimate: estimate}
}

// View renders the bar for the elapsed playback time.
func (t Timeline) View(elapsed time.Duration) string {
	ratio := 0.0
	label := elapsed.Truncate(time.Millisecond).String()
	if t.estimate > 0 {
		ratio = math.Min(1.0, float64(elapsed)/float64(t.estimate))
		label = fmt.Sprintf("%s/%s", label, t.estimate.Truncate(time.Millisecond))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, lipgloss.NewStyle().Bold(true).Render(label), " ", t.bar.ViewAs(ratio))
}

// Property renders one animated value as a bar scaled to its observed range.
type Property struct {
	bar progress.Model
}

// NewProperty creates a property bar.
func NewProperty() Property {
	bar := progress.New(progress.WithSolidFill("39"), progress.WithoutPercentage())
	bar.Width = 20
	return Property{bar: bar}
}

// View renders name and value with the bar filled to value's position in [lo, hi].
func (p Property) View(name string, value, lo, hi float64) string {
	ratio := 1.0
	if hi > lo {
		ratio = math.Max(0, math.Min(1, (value-lo)/(hi-lo)))
	}
	label := fmt.Sprintf("%-10s %8.2f", name, value)
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", p.bar.ViewAs(ratio))
}
