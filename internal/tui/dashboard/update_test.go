package dashboard

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, model tea.Model, keys ...string) (tea.Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		model, cmd = model.Update(keyMsg(k))
	}
	return model, cmd
}

func TestListNavigationAndSelection(t *testing.T) {
	t.Parallel()

	m := NewModel([]*statemachine.Machine{buttonMachine(t, "a"), buttonMachine(t, "b")}, 0)

	model, _ := press(t, m, "down")
	require.Equal(t, 1, model.(Model).cursor)

	model, _ = press(t, model, "k", "2", "enter")
	updated := model.(Model)
	require.Equal(t, ViewDetail, updated.viewMode)
	require.Equal(t, "b", updated.selected)

	model, _ = press(t, model, "esc")
	updated = model.(Model)
	require.Equal(t, ViewList, updated.viewMode)
	require.Empty(t, updated.selected)
}

func TestDetailSendsNumberedEvent(t *testing.T) {
	t.Parallel()

	machine := buttonMachine(t, "button")
	m := NewModel([]*statemachine.Machine{machine}, 0)
	m.Init()

	model, cmd := press(t, m, "enter", "1")
	require.NotNil(t, cmd)
	require.Equal(t, "pressed", machine.State())

	model, _ = model.Update(cmd())
	require.Equal(t, "button ← press", model.(Model).lastEvent)

	_, cmd = press(t, model, "9")
	require.Nil(t, cmd)
}

func TestGuardedEventShowsBanner(t *testing.T) {
	t.Parallel()

	machine := buttonMachine(t, "button")
	m := NewModel([]*statemachine.Machine{machine}, 0)
	m.Init()

	model, cmd := press(t, m, "enter", "2")
	require.NotNil(t, cmd)
	msg := cmd().(EventSentMsg)
	require.False(t, msg.Accepted)
	require.Equal(t, "idle", machine.State())

	model, cmd = model.Update(msg)
	updated := model.(Model)
	require.True(t, updated.showError)
	require.Contains(t, updated.errorMsg, `ignored event "lock"`)
	require.NotNil(t, cmd)

	model, _ = model.Update(ClearErrorMsg{})
	require.False(t, model.(Model).showError)
}

func TestRejectionMessagePrefersError(t *testing.T) {
	t.Parallel()

	msg := EventSentMsg{Machine: "m", Event: "go", Error: errors.New("invalid transition")}
	require.Equal(t, "invalid transition", rejectionMessage(msg))
}

func TestPauseToggle(t *testing.T) {
	t.Parallel()

	machine := buttonMachine(t, "button")
	m := NewModel([]*statemachine.Machine{machine}, 0)
	m.Init()

	model, _ := press(t, m, "enter", "p")
	require.Equal(t, statemachine.StatusPaused, machine.Status())
	press(t, model, "p")
	require.Equal(t, statemachine.StatusRunning, machine.Status())
}

func TestHelpReturnsToPreviousView(t *testing.T) {
	t.Parallel()

	m := NewModel([]*statemachine.Machine{buttonMachine(t, "a")}, 0)

	model, _ := press(t, m, "?")
	require.Equal(t, ViewHelp, model.(Model).viewMode)
	model, _ = press(t, model, "?")
	require.Equal(t, ViewList, model.(Model).viewMode)

	model, _ = press(t, model, "enter", "?", "esc")
	require.Equal(t, ViewDetail, model.(Model).viewMode)
}

func TestFrameTicksMachines(t *testing.T) {
	t.Parallel()

	m := NewModel([]*statemachine.Machine{buttonMachine(t, "a")}, 0)
	_, cmd := m.Update(FrameMsg(time.Now()))
	require.NotNil(t, cmd)
}

func TestQuitFromList(t *testing.T) {
	t.Parallel()

	m := NewModel(nil, 0)
	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

// Not parallel: window size updates shared styles.
func TestSmallTerminalShowsBanner(t *testing.T) {
	m := NewModel(nil, 0)

	model, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	require.True(t, model.(Model).showError)
	require.Contains(t, model.(Model).errorMsg, "Terminal too small")

	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	require.False(t, model.(Model).showError)
}
