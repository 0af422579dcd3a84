package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
)

func buttonMachine(t *testing.T, name string) *statemachine.Machine {
	t.Helper()

	def, err := statemachine.NewBuilder(name).
		Initial("idle").
		State(statemachine.State{ID: "idle", Style: effect.Props{"scale": 1}}).
		State(statemachine.State{ID: "pressed", Style: effect.Props{"scale": 0.9}}).
		State(statemachine.State{ID: "disabled"}).
		On("idle", "press", "pressed").
		On("pressed", "release", "idle").
		Transition(statemachine.Transition{
			From:   "idle",
			To:     "disabled",
			Event:  "lock",
			Guards: []statemachine.Guard{func(*statemachine.Context, statemachine.Event) bool { return false }},
		}).
		On(statemachine.Wildcard, "press", "idle").
		Build()
	require.NoError(t, err)
	return statemachine.New(def)
}

func TestNewModelDefaults(t *testing.T) {
	t.Parallel()

	m := NewModel(nil, 0)
	require.Equal(t, ViewList, m.viewMode)
	require.Equal(t, defaultInterval, m.interval)

	_, ok := m.Current()
	require.False(t, ok)
	_, ok = m.Selected()
	require.False(t, ok)

	m.MoveCursorDown()
	m.MoveCursorUp()
	require.Equal(t, 0, m.cursor)
}

func TestInitStartsMachines(t *testing.T) {
	t.Parallel()

	a, b := buttonMachine(t, "a"), buttonMachine(t, "b")
	m := NewModel([]*statemachine.Machine{a, b}, 10*time.Millisecond)
	require.NotNil(t, m.Init())
	require.Equal(t, statemachine.StatusRunning, a.Status())
	require.Equal(t, statemachine.StatusRunning, b.Status())
}

func TestCursorWraps(t *testing.T) {
	t.Parallel()

	m := NewModel([]*statemachine.Machine{buttonMachine(t, "a"), buttonMachine(t, "b"), buttonMachine(t, "c")}, 0)

	m.MoveCursorUp()
	require.Equal(t, 2, m.cursor)
	m.MoveCursorDown()
	require.Equal(t, 0, m.cursor)

	m.SetCursor(1)
	current, ok := m.Current()
	require.True(t, ok)
	require.Equal(t, "b", current.Name())

	m.SetCursor(7)
	require.Equal(t, 1, m.cursor)
}

func TestEventsFollowCurrentState(t *testing.T) {
	t.Parallel()

	machine := buttonMachine(t, "button")
	machine.Start()
	require.Equal(t, []string{"press", "lock"}, Events(machine))

	ok, err := machine.Send("press")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"release", "press"}, Events(machine))
}
