package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
)

const historyRows = 5

// View renders the current model state
func (m Model) View() string {
	switch m.viewMode {
	case ViewDetail:
		return m.renderDetailView()
	case ViewHelp:
		return m.renderHelpView()
	default:
		return m.renderListView()
	}
}

// renderListView renders the machine list
func (m Model) renderListView() string {
	var content strings.Builder

	content.WriteString(m.renderHeader())
	content.WriteString("\n")

	if m.showError {
		content.WriteString(errorBannerStyle.Render(m.errorMsg))
		content.WriteString("\n")
	}

	if len(m.machines) == 0 {
		content.WriteString(emptyStateStyle.Render("No state machines in this scene"))
	} else {
		rows := make([]string, 0, len(m.machines))
		for i, machine := range m.machines {
			rows = append(rows, m.renderMachineItem(i, machine))
		}
		content.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}
	content.WriteString("\n")

	content.WriteString(footerStyle.Render("↑/↓ move • enter open • ? help • q quit"))
	return content.String()
}

// renderHeader renders the title and transition summary
func (m Model) renderHeader() string {
	title := titleStyle.Render("motionkit machines")
	summary := fmt.Sprintf("%d machines", len(m.machines))
	if n := m.CountInTransition(); n > 0 {
		summary += fmt.Sprintf("  %s %d transitioning", m.spinner.View(), n)
	}
	if m.lastEvent != "" {
		summary += "  last: " + m.lastEvent
	}
	return headerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, summary))
}

func (m Model) renderMachineItem(index int, machine *statemachine.Machine) string {
	marker := StatusIcon(machine)
	line := fmt.Sprintf("%d. %s %-16s %s", index+1, marker, machine.Name(), stateStyle.Render(machine.State()))
	if index == m.cursor {
		return selectedItemStyle.Render(line)
	}
	return itemStyle.Render(line)
}

// renderDetailView renders the selected machine with its events
func (m Model) renderDetailView() string {
	machine, ok := m.Selected()
	if !ok {
		return m.renderListView()
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(machine.Name()))
	content.WriteString("\n")

	if m.showError {
		content.WriteString(errorBannerStyle.Render(m.errorMsg))
		content.WriteString("\n")
	}

	state := machine.State()
	if machine.InTransition() {
		state += " " + m.spinner.View()
	}
	info := []string{
		detailRow("State", state),
		detailRow("Status", machine.Status().String()),
	}
	content.WriteString(detailSectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, info...)))
	content.WriteString("\n")

	content.WriteString(sectionTitleStyle.Render("Events"))
	content.WriteString("\n")
	events := Events(machine)
	if len(events) == 0 {
		content.WriteString(emptyStateStyle.Render("no outgoing transitions"))
		content.WriteString("\n")
	}
	for i, event := range events {
		style := eventEnabledStyle
		if !machine.Can(event) {
			style = eventDisabledStyle
		}
		content.WriteString(style.Render(fmt.Sprintf("[%d] %s", i+1, event)))
		content.WriteString("\n")
	}

	if values := machine.Values(); len(values) > 0 {
		content.WriteString(sectionTitleStyle.Render("Values"))
		content.WriteString("\n")
		names := values.Keys()
		slices.Sort(names)
		for _, name := range names {
			content.WriteString(detailRow(name, fmt.Sprintf("%.2f", values[name])))
			content.WriteString("\n")
		}
	}

	if history := machine.History(); len(history) > 0 {
		content.WriteString(sectionTitleStyle.Render("History"))
		content.WriteString("\n")
		if len(history) > historyRows {
			history = history[len(history)-historyRows:]
		}
		for _, entry := range history {
			content.WriteString(detailValueStyle.Render(fmt.Sprintf("%s → %s (%s)", entry.From, entry.To, entry.Event)))
			content.WriteString("\n")
		}
	}

	content.WriteString(footerStyle.Render("1-9 send event • p pause • esc back • q quit"))
	return content.String()
}

func (m Model) renderHelpView() string {
	bindings := [][2]string{
		{"↑/k ↓/j", "move cursor"},
		{"1-9", "select machine / send event"},
		{"enter", "open machine"},
		{"p", "pause or resume machine"},
		{"esc", "back"},
		{"x", "dismiss error"},
		{"q", "quit"},
	}
	rows := []string{helpTitleStyle.Render("Keys")}
	for _, b := range bindings {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left, helpKeyStyle.Render(b[0]), helpDescStyle.Render(b[1])))
	}
	return helpBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func detailRow(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left, detailLabelStyle.Render(label), detailValueStyle.Render(value))
}

// StatusIcon returns a marker for the machine's playback state
func StatusIcon(machine *statemachine.Machine) string {
	if machine.InTransition() {
		return transitionStyle.Render("◐")
	}
	switch machine.Status() {
	case statemachine.StatusRunning:
		return runningStyle.Render("●")
	case statemachine.StatusPaused:
		return pausedStyle.Render("⏸")
	case statemachine.StatusStopped:
		return stoppedStyle.Render("■")
	default:
		return idleStyle.Render("○")
	}
}
