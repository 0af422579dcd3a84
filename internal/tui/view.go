package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
	"github.com/alexisbeaulieu97/motionkit/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	status := m.player.Status()
	title := titleStyle.Render(fmt.Sprintf("motionkit • %s", m.heading()))
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Left, title, "  ", StatusBadge(status)))

	timeline := components.NewTimeline(m.estimate).View(m.player.Elapsed())
	sections = append(sections, sectionStyle.Render("Timeline"), timeline)

	if len(m.targets) > 0 {
		sections = append(sections, sectionStyle.Render("Targets"), m.renderTargets())
	}

	if m.log.Len() > 0 {
		sections = append(sections, sectionStyle.Render("Events"), eventStyle.Render(m.log.View()))
	}

	summary := components.NewSummary(components.SummaryData{
		Status:    status.String(),
		Elapsed:   m.player.Elapsed(),
		Completed: m.completed,
		Skipped:   m.skipped,
		Failed:    m.failed,
		Errors:    m.errors,
	}).View()
	sections = append(sections, summaryStyle.Render(summary))
	sections = append(sections, helpStyle.Render("space pause/resume • r reset • q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTargets() string {
	bar := components.NewProperty()
	var lines []string
	for _, target := range m.targets {
		values := m.player.Values(target)
		lines = append(lines, targetStyle.Render(target))
		if len(values) == 0 {
			lines = append(lines, pendingStyle.Render("  (no values yet)"))
			continue
		}
		names := values.Keys()
		slices.Sort(names)
		for _, name := range names {
			r := m.ranges[target+"."+name]
			lines = append(lines, "  "+bar.View(name, values[name], r.lo, r.hi))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) heading() string {
	if strings.TrimSpace(m.title) != "" {
		return m.title
	}
	return m.player.Name()
}

// StatusBadge returns the styled label of a sequence status.
func StatusBadge(status sequence.Status) string {
	switch status {
	case sequence.StatusCompleted:
		return successStyle.Render("✓ " + status.String())
	case sequence.StatusRunning:
		return runningStyle.Render("▶ " + status.String())
	case sequence.StatusPaused:
		return pausedStyle.Render("⏸ " + status.String())
	case sequence.StatusFailed:
		return failureStyle.Render("✗ " + status.String())
	case sequence.StatusCancelled:
		return skippedStyle.Render("⊘ " + status.String())
	default:
		return pendingStyle.Render("… " + status.String())
	}
}
