package statemachine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/events"
	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/scheduler"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type recorder struct {
	frames []effect.Props
}

func (r *recorder) ApplyComputedStyle(_ ports.Target, props map[string]float64) {
	r.frames = append(r.frames, effect.Props(props).Clone())
}

func (r *recorder) last() effect.Props {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

func tween(prop string, to float64, d time.Duration) effect.Effect {
	return effect.Tween{To: effect.Props{prop: to}, Duration: d, Easing: effect.EaseLinear}
}

func buttonDefinition(t *testing.T) *Definition {
	t.Helper()
	def, err := NewBuilder("button").
		Initial("idle").
		State(State{ID: "idle", Style: effect.Props{"scale": 1}}).
		State(State{ID: "hover", Enter: tween("scale", 1.1, 100*time.Millisecond)}).
		State(State{ID: "pressed", Exit: tween("opacity", 1, 100*time.Millisecond)}).
		State(State{ID: "disabled", Style: effect.Props{"opacity": 0.4}}).
		On("idle", "enter", "hover").
		On("hover", "leave", "idle").
		On("hover", "press", "pressed").
		On("pressed", "release", "hover").
		On(Wildcard, "disable", "disabled").
		On(Wildcard, "press", "idle").
		Build()
	require.NoError(t, err)
	return def
}

func newMachine(t *testing.T, def *Definition, opts ...Option) (*Machine, *scheduler.ManualClock, *recorder) {
	t.Helper()
	clock := scheduler.NewManualClock(epoch)
	rec := &recorder{}
	opts = append([]Option{WithClock(clock), WithTarget(ports.Target{ID: "btn"}, rec)}, opts...)
	m := New(def, opts...)
	m.Start()
	return m, clock, rec
}

func TestSendWithoutMatchLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	m, _, _ := newMachine(t, buttonDefinition(t))

	ok, err := m.Send("release")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "idle", m.State())
	require.Empty(t, m.History())
	require.False(t, m.InTransition())
}

func TestStrictModeReportsInvalidTransition(t *testing.T) {
	t.Parallel()

	m, _, _ := newMachine(t, buttonDefinition(t), WithStrict(true))

	ok, err := m.Send("release")
	require.False(t, ok)
	var invalid *mkerrors.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "idle", invalid.State)
	require.Equal(t, "release", invalid.Event)
	require.Equal(t, "idle", m.State())
}

func TestExactSourceWinsOverWildcard(t *testing.T) {
	t.Parallel()

	m, clock, _ := newMachine(t, buttonDefinition(t))

	_, _ = m.Send("enter")
	m.Tick(clock.Advance(100 * time.Millisecond))
	require.Equal(t, "hover", m.State())

	ok, err := m.Send("press")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "pressed", m.State(), "exact hover->pressed beats the wildcard press->idle")

	_, _ = m.Send("disable")
	require.True(t, m.InTransition(), "pressed plays its exit effect first")
	m.Tick(clock.Advance(100 * time.Millisecond))
	require.Equal(t, "disabled", m.State())
}

func TestWildcardMatchesAnyState(t *testing.T) {
	t.Parallel()

	m, _, _ := newMachine(t, buttonDefinition(t))
	ok, err := m.Send("press")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "idle", m.State())
	require.Len(t, m.History(), 1)
}

func TestGuardsSelectFirstPassingTransition(t *testing.T) {
	t.Parallel()

	def, err := NewBuilder("toggle").
		Initial("off").
		State(State{ID: "off"}).
		State(State{ID: "on"}).
		State(State{ID: "locked"}).
		Transition(Transition{From: "off", Event: "flip", To: "locked", Guards: []Guard{
			func(ctx *Context, _ Event) bool { v, _ := ctx.Get("locked"); return v == true },
		}}).
		Transition(Transition{From: "off", Event: "flip", To: "on", SideEffects: []Action{
			func(ctx *Context, ev Event) { ctx.Set("flips", 1) },
		}}).
		Build()
	require.NoError(t, err)

	m, _, _ := newMachine(t, def)
	require.True(t, m.Can("flip"))
	require.Equal(t, "off", m.State(), "Can does not transition")

	ok, err := m.Send("flip")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "on", m.State())
	v, _ := m.Context().Get("flips")
	require.Equal(t, 1, v)

	locked, _, _ := newMachine(t, def, WithVars(map[string]any{"locked": true}))
	_, _ = locked.Send("flip")
	require.Equal(t, "locked", locked.State())
}

func TestEffectsAreSequencedBeforeCommit(t *testing.T) {
	t.Parallel()

	def, err := NewBuilder("card").
		Initial("front").
		State(State{ID: "front", Exit: tween("opacity", 0, 100*time.Millisecond)}).
		State(State{ID: "back", Enter: tween("opacity", 1, 100*time.Millisecond)}).
		Transition(Transition{From: "front", Event: "flip", To: "back", Effect: tween("rotateY", 180, 100*time.Millisecond)}).
		Build()
	require.NoError(t, err)

	m, clock, rec := newMachine(t, def, WithInitialValues(effect.Props{"opacity": 1, "rotateY": 0}))
	var changes []TransitionEntry
	m.OnStateChange(func(e TransitionEntry) { changes = append(changes, e) })

	ok, err := m.Send("flip")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, m.InTransition())
	require.Equal(t, "front", m.State())

	m.Tick(clock.Advance(50 * time.Millisecond))
	require.InDelta(t, 0.5, rec.last()["opacity"], 1e-9)
	require.Equal(t, 0.0, rec.last()["rotateY"], "transition effect waits for the exit effect")

	m.Tick(clock.Advance(100 * time.Millisecond))
	require.InDelta(t, 90, rec.last()["rotateY"], 1e-9)
	require.Equal(t, 0.0, rec.last()["opacity"])

	m.Tick(clock.Advance(100 * time.Millisecond))
	require.Equal(t, "front", m.State())
	require.InDelta(t, 0.5, rec.last()["opacity"], 1e-9)

	m.Tick(clock.Advance(50 * time.Millisecond))
	require.Equal(t, "back", m.State())
	require.False(t, m.InTransition())
	require.Equal(t, 1.0, rec.last()["opacity"])
	require.Equal(t, 180.0, rec.last()["rotateY"])

	require.Len(t, changes, 1)
	require.Equal(t, TransitionEntry{From: "front", To: "back", Event: "flip", Timestamp: epoch.Add(300 * time.Millisecond)}, changes[0])
	require.Equal(t, changes, m.History())
}

func TestAsyncTransitionCommitsImmediately(t *testing.T) {
	t.Parallel()

	def, err := NewBuilder("chip").
		Initial("a").
		State(State{ID: "a"}).
		State(State{ID: "b"}).
		Transition(Transition{From: "a", Event: "go", To: "b", Async: true, Effect: tween("x", 100, 100*time.Millisecond)}).
		Build()
	require.NoError(t, err)

	m, clock, rec := newMachine(t, def)
	_, _ = m.Send("go")
	require.Equal(t, "b", m.State())
	require.False(t, m.InTransition())

	m.Tick(clock.Advance(50 * time.Millisecond))
	require.InDelta(t, 50, rec.last()["x"], 1e-9)
}

func TestSendDuringFlightFastForwards(t *testing.T) {
	t.Parallel()

	m, _, rec := newMachine(t, buttonDefinition(t))
	_, _ = m.Send("enter")
	require.True(t, m.InTransition())
	require.True(t, m.Can("press"), "Can evaluates against the in-flight destination")

	ok, err := m.Send("press")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "pressed", m.State())
	require.Equal(t, 1.1, rec.last()["scale"])

	history := m.History()
	require.Len(t, history, 2)
	require.Equal(t, "hover", history[0].To)
	require.Equal(t, "pressed", history[1].To)
}

func toastDefinition(t *testing.T) *Definition {
	t.Helper()
	def, err := NewBuilder("toast").
		Initial("hidden").
		State(State{ID: "hidden"}).
		State(State{ID: "visible", AutoAdvanceAfter: time.Second}).
		On("hidden", "show", "visible").
		On("visible", TimeoutEvent, "hidden").
		On("visible", "dismiss", "hidden").
		Build()
	require.NoError(t, err)
	return def
}

func TestAutoAdvanceFiresTimeoutExcludingPause(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	var timeouts int
	bus.On(ports.EventMachineTimeout, func(ports.Event) error { timeouts++; return nil })

	m, clock, _ := newMachine(t, toastDefinition(t), WithBus(bus))
	_, _ = m.Send("show")
	require.Equal(t, "visible", m.State())

	m.Tick(clock.Advance(600 * time.Millisecond))
	m.Pause()
	clock.Advance(5 * time.Second)
	m.Tick(clock.Now())
	m.Resume()
	require.Equal(t, "visible", m.State())

	m.Tick(clock.Advance(300 * time.Millisecond))
	require.Equal(t, "visible", m.State(), "only 900ms of unpaused time elapsed")

	m.Tick(clock.Advance(100 * time.Millisecond))
	require.Equal(t, "hidden", m.State())
	require.Equal(t, 1, timeouts)
	require.Equal(t, TimeoutEvent, m.History()[1].Event)
}

func TestAutoAdvanceCarriesOvershootIntoTransition(t *testing.T) {
	t.Parallel()

	def, err := NewBuilder("toast").
		Initial("hidden").
		State(State{ID: "hidden", Style: effect.Props{"opacity": 0}}).
		State(State{ID: "visible", Style: effect.Props{"opacity": 1}, AutoAdvanceAfter: time.Second}).
		On("hidden", "show", "visible").
		Transition(Transition{From: "visible", To: "hidden", Event: TimeoutEvent, Effect: tween("opacity", 0, 100*time.Millisecond)}).
		Build()
	require.NoError(t, err)

	m, clock, rec := newMachine(t, def)
	_, _ = m.Send("show")
	require.Equal(t, 1.0, rec.last()["opacity"])

	m.Tick(clock.Advance(1050 * time.Millisecond))
	require.True(t, m.InTransition())
	require.InDelta(t, 0.5, rec.last()["opacity"], 1e-9)

	m.Tick(clock.Advance(50 * time.Millisecond))
	require.False(t, m.InTransition())
	require.Equal(t, "hidden", m.State())
	require.Equal(t, 0.0, rec.last()["opacity"])
}

func TestAutoAdvanceTimerCancelledOnExit(t *testing.T) {
	t.Parallel()

	m, clock, _ := newMachine(t, toastDefinition(t))
	_, _ = m.Send("show")
	m.Tick(clock.Advance(500 * time.Millisecond))
	_, _ = m.Send("dismiss")
	_, _ = m.Send("show")

	m.Tick(clock.Advance(600 * time.Millisecond))
	require.Equal(t, "visible", m.State(), "re-entry restarts the timer")

	m.Tick(clock.Advance(400 * time.Millisecond))
	require.Equal(t, "hidden", m.State())
}

func TestStopCancelsFlightAndTimers(t *testing.T) {
	t.Parallel()

	m, clock, rec := newMachine(t, buttonDefinition(t))
	_, _ = m.Send("enter")
	m.Tick(clock.Advance(50 * time.Millisecond))
	mid := rec.last()["scale"]

	m.Stop()
	require.Equal(t, StatusStopped, m.Status())
	require.Equal(t, "idle", m.State())
	require.False(t, m.InTransition())
	require.Equal(t, mid, rec.last()["scale"])

	frames := len(rec.frames)
	m.Tick(clock.Advance(time.Second))
	require.Len(t, rec.frames, frames)

	ok, err := m.Send("enter")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStartRegistersWithTicker(t *testing.T) {
	t.Parallel()

	clock := scheduler.NewManualClock(epoch)
	loop := scheduler.NewLoop(clock, nil)
	m := New(toastDefinition(t), WithClock(clock), WithTicker(loop))
	m.Start()
	m.Start()
	require.Equal(t, 1, loop.Pending())

	_, _ = m.Send("show")
	loop.Drain(clock, 100*time.Millisecond, 10)
	require.Equal(t, "hidden", m.State())

	m.Stop()
	require.Zero(t, loop.Pending())
}

func TestAdapterSuppressionMakesTransitionsInstant(t *testing.T) {
	t.Parallel()

	adapter := motion.NewAdapter(motion.Config{Level: motion.LevelMaximum}, nil)
	m, _, rec := newMachine(t, buttonDefinition(t), WithAdapter(adapter))

	_, _ = m.Send("enter")
	require.Equal(t, "hover", m.State())
	require.False(t, m.InTransition())
	require.Equal(t, 1.1, rec.last()["scale"])
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()

	m, _, _ := newMachine(t, buttonDefinition(t), WithHistorySize(3))
	for range 5 {
		_, _ = m.Send("press")
	}
	require.Len(t, m.History(), 3)

	m.SetMaxHistorySize(1)
	require.Len(t, m.History(), 1)
}

func TestOnStateChangeUnsubscribe(t *testing.T) {
	t.Parallel()

	m, _, _ := newMachine(t, buttonDefinition(t))
	calls := 0
	sub := m.OnStateChange(func(TransitionEntry) { calls++ })

	_, _ = m.Send("press")
	sub.Unsubscribe()
	sub.Unsubscribe()
	_, _ = m.Send("press")

	require.Equal(t, 1, calls)
}

func TestBuildRejectsMalformedDefinitions(t *testing.T) {
	t.Parallel()

	cases := map[string]*Builder{
		"missing initial":   NewBuilder("m").State(State{ID: "a"}),
		"unknown initial":   NewBuilder("m").Initial("b").State(State{ID: "a"}),
		"duplicate state":   NewBuilder("m").Initial("a").State(State{ID: "a"}).State(State{ID: "a"}),
		"wildcard state":    NewBuilder("m").Initial("a").State(State{ID: "a"}).State(State{ID: Wildcard}),
		"unknown target":    NewBuilder("m").Initial("a").State(State{ID: "a"}).On("a", "go", "b"),
		"unknown source":    NewBuilder("m").Initial("a").State(State{ID: "a"}).On("c", "go", "a"),
		"empty event":       NewBuilder("m").Initial("a").State(State{ID: "a"}).On("a", "", "a"),
		"negative timer":    NewBuilder("m").Initial("a").State(State{ID: "a", AutoAdvanceAfter: -time.Second}),
		"invalid effect":    NewBuilder("m").Initial("a").State(State{ID: "a", Enter: effect.Tween{Duration: time.Second}}),
		"invalid tr effect": NewBuilder("m").Initial("a").State(State{ID: "a"}).Transition(Transition{From: "a", To: "a", Event: "x", Effect: effect.Tween{}}),
	}
	for name, b := range cases {
		_, err := b.Build()
		var cfgErr *mkerrors.ConfigurationError
		require.ErrorAs(t, err, &cfgErr, name)
	}
}
