package scene

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/motionkit/internal/config"
	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/events"
	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/scheduler"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
	"github.com/alexisbeaulieu97/motionkit/internal/trajectory"
	"github.com/alexisbeaulieu97/motionkit/internal/vec"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

const playableScene = `version: "1.0.0"
name: playable
settings:
  frame_interval: 10ms
  history_size: 200
targets:
  - id: card
    initial: {opacity: 0}
  - id: chip
trajectories:
  - id: drop
    type: line
    start: {x: 0, y: 0, z: 0}
    end: {x: 0, y: 50, z: 0}
sequences:
  - id: main
    steps:
      - animate: {target: card, to: {opacity: 1}, duration: 200ms}
      - loop:
          repeat: 2
          steps:
            - call: {action: increment, args: {var: count}}
      - if:
          var: count
          value: 2
          then:
            - emit: {event: counted}
          else:
            - emit: {event: miscounted}
      - include: tail
  - id: tail
    vars: {phase: tail}
    steps:
      - animate: {target: chip, follow: drop, duration: 100ms}
machines:
  - id: button
    target: card
    initial: idle
    vars: {presses: 0}
    states:
      - id: idle
        style: {scale: 1}
      - id: pressed
        style: {scale: 0.95}
    transitions:
      - from: idle
        to: pressed
        event: press
        guards:
          - {var: event.force, op: gt, value: 0.5}
        actions:
          - {action: increment, args: {var: presses}}
      - {from: "*", to: idle, event: release}
`

type harness struct {
	clock *scheduler.ManualClock
	loop  *scheduler.Loop
	rt    *Runtime
}

func compileScene(t *testing.T, doc string) *harness {
	t.Helper()

	sc, err := config.ParseBytes("scene.yaml", []byte(doc))
	require.NoError(t, err)

	clock := scheduler.NewManualClock(time.Unix(0, 0))
	loop := scheduler.NewLoop(clock, nil)
	rt, err := Compile(sc, Deps{
		Applier: ports.StyleApplierFunc(func(ports.Target, map[string]float64) {}),
		Clock:   clock,
		Ticker:  loop,
	})
	require.NoError(t, err)
	return &harness{clock: clock, loop: loop, rt: rt}
}

func eventTypes(bus *events.Bus) []string {
	var out []string
	for _, e := range bus.History() {
		out = append(out, e.Type)
	}
	return out
}

func TestCompileBuildsRuntime(t *testing.T) {
	t.Parallel()

	h := compileScene(t, playableScene)
	require.Equal(t, "playable", h.rt.Name)
	require.Equal(t, 10*time.Millisecond, h.rt.FrameInterval)
	require.Equal(t, []string{"main", "tail"}, h.rt.SequenceIDs())
	require.Equal(t, []string{"button"}, h.rt.MachineIDs())
	require.Contains(t, h.rt.Trajectories, "drop")
	require.Equal(t, []string{"card", "chip"}, h.rt.Targets.Names())

	seq, ok := h.rt.Sequence("main")
	require.True(t, ok)
	require.Equal(t, []string{"card", "chip"}, seq.Program().Targets())

	_, ok = h.rt.Sequence("missing")
	require.False(t, ok)
}

func TestCompiledSequencePlaysToCompletion(t *testing.T) {
	t.Parallel()

	h := compileScene(t, playableScene)
	seq, _ := h.rt.Sequence("main")

	seq.Start()
	h.loop.Drain(h.clock, h.rt.FrameInterval, 100)

	require.Equal(t, sequence.StatusCompleted, seq.Status())
	require.InDelta(t, 1.0, seq.Values("card")["opacity"], 1e-9)
	require.InDelta(t, 50.0, seq.Values("chip")["y"], 1e-6)

	count, ok := seq.Context().Get("count")
	require.True(t, ok)
	require.Equal(t, 2.0, count)

	phase, _ := seq.Context().Get("phase")
	require.Equal(t, "tail", phase)

	types := eventTypes(h.rt.Bus)
	require.Contains(t, types, "counted")
	require.NotContains(t, types, "miscounted")
	require.Contains(t, types, ports.EventSequenceCompleted)
}

func TestCompiledMachineGuardsOnPayload(t *testing.T) {
	t.Parallel()

	h := compileScene(t, playableScene)
	m, ok := h.rt.Machine("button")
	require.True(t, ok)
	m.Start()

	moved, err := m.SendEvent(statemachine.Event{Name: "press", Payload: map[string]any{"force": 0.2}})
	require.NoError(t, err)
	require.False(t, moved)
	require.Equal(t, "idle", m.State())

	moved, err = m.SendEvent(statemachine.Event{Name: "press", Payload: map[string]any{"force": 0.9}})
	require.NoError(t, err)
	require.True(t, moved)
	require.Equal(t, "pressed", m.State())
	require.InDelta(t, 0.95, m.Values()["scale"], 1e-9)

	presses, _ := m.Context().Get("presses")
	require.Equal(t, 1.0, presses)
	_, leaked := m.Context().Get("event.force")
	require.False(t, leaked)

	moved, err = m.Send("release")
	require.NoError(t, err)
	require.True(t, moved)
	require.Equal(t, "idle", m.State())
}

func TestTransitionActionsWriteBackMachineVars(t *testing.T) {
	t.Parallel()

	action := sideEffect("reset", func(ctx *sequence.Context) error {
		delete(ctx.Vars, "presses")
		ctx.Set("last_force", ctx.Vars["event.force"])
		return nil
	}, nil)

	cases := []struct {
		name    string
		payload map[string]any
		want    map[string]any
	}{
		{name: "without payload", want: map[string]any{"mode": "armed", "last_force": nil}},
		{name: "with payload", payload: map[string]any{"force": 0.7}, want: map[string]any{"mode": "armed", "last_force": 0.7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := &statemachine.Context{Vars: map[string]any{"presses": 3.0, "mode": "armed"}}
			action(ctx, statemachine.Event{Name: "reset", Payload: tc.payload})
			require.Equal(t, tc.want, ctx.Vars)
		})
	}
}

func TestCompileRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	sc := &config.Scene{
		Version: "1.0.0",
		Name:    "bad",
		Targets: []config.Target{{ID: "card"}},
		Sequences: []config.Sequence{{
			ID:    "main",
			Steps: []config.Step{{Call: &config.CallStep{Action: "launch-rockets"}}},
		}},
	}
	require.NoError(t, config.ValidateScene(sc))

	_, err := Compile(sc, Deps{})
	var cfgErr *mkerrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "sequences[0].steps[0].call.action", cfgErr.Field)
}

func TestCompileNilScene(t *testing.T) {
	t.Parallel()

	_, err := Compile(nil, Deps{})
	require.Error(t, err)
}

func TestReducedMotionSettingForcesPreference(t *testing.T) {
	t.Parallel()

	sc := &config.Scene{
		Version:   "1.0.0",
		Name:      "calm",
		Settings:  config.Settings{ReducedMotion: true},
		Targets:   []config.Target{{ID: "card"}},
		Sequences: []config.Sequence{{ID: "main", Steps: []config.Step{{Wait: "10ms"}}}},
	}
	rt, err := Compile(sc, Deps{Preference: ports.StaticPreference(false)})
	require.NoError(t, err)
	require.True(t, rt.Adapter.Config().RespectSystemPreference)

	require.Equal(t, motion.LevelHigh, rt.Adapter.EffectiveLevel())

	adj := rt.Adapter.Adapt(motion.Options{Duration: time.Second, Distance: 100, Category: motion.CategoryDecorative})
	require.False(t, adj.ShouldAnimate)
}

func TestAdapterConfig(t *testing.T) {
	t.Parallel()

	speed := 2.0
	no := false
	cfg, err := AdapterConfig(config.Settings{
		Sensitivity:             "high",
		RespectSystemPreference: &no,
		Overrides: &config.Overrides{
			SpeedMultiplier:    &speed,
			DisabledCategories: []string{"loading", "attention"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, motion.LevelHigh, cfg.Level)
	require.False(t, cfg.RespectSystemPreference)
	require.Equal(t, &speed, cfg.Overrides.SpeedMultiplier)
	require.Equal(t, []motion.Category{motion.CategoryLoading, motion.CategoryAttention}, cfg.Overrides.DisabledCategories)

	_, err = AdapterConfig(config.Settings{Sensitivity: "extreme"})
	require.Error(t, err)
}

func TestBuildEffect(t *testing.T) {
	t.Parallel()

	paths := map[string]trajectory.Path{"line": trajectory.Line{To: vec.New(1, 0, 0)}}

	e, err := BuildEffect("fx", config.Effect{To: map[string]float64{"x": 1}}, paths)
	require.NoError(t, err)
	tween, ok := e.(effect.Tween)
	require.True(t, ok)
	require.Equal(t, DefaultTweenDuration, tween.Duration)

	e, err = BuildEffect("fx", config.Effect{Preset: "fade-in", Importance: "critical", Delay: "50ms"}, paths)
	require.NoError(t, err)
	tween = e.(effect.Tween)
	require.Equal(t, motion.ImportanceCritical, tween.Traits.Importance)
	require.Equal(t, 50*time.Millisecond, tween.Delay)

	e, err = BuildEffect("fx", config.Effect{
		To:     map[string]float64{"scale": 1},
		Spring: &config.Spring{Tension: 170, Friction: 26, Integrator: "analytic"},
	}, paths)
	require.NoError(t, err)
	sp := e.(effect.SpringTo)
	require.Equal(t, 170.0, sp.Params.Stiffness)
	require.Equal(t, 26.0, sp.Params.Damping)

	e, err = BuildEffect("fx", config.Effect{Follow: "line"}, paths)
	require.NoError(t, err)
	require.Equal(t, DefaultFollowDuration, e.(effect.Follow).Duration)

	_, err = BuildEffect("fx", config.Effect{Follow: "nowhere"}, paths)
	var cfgErr *mkerrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "fx.follow", cfgErr.Field)

	_, err = BuildEffect("fx", config.Effect{}, paths)
	require.Error(t, err)
}

func TestSpringParams(t *testing.T) {
	t.Parallel()

	p, err := springParams(&config.Spring{Stiffness: 100})
	require.NoError(t, err)
	require.Equal(t, 1.0, p.Mass)
	require.InDelta(t, 20.0, p.Damping, 1e-9)

	p, err = springParams(&config.Spring{Preset: "stiff", Mass: 2})
	require.NoError(t, err)
	require.Equal(t, 2.0, p.Mass)

	_, err = springParams(&config.Spring{Preset: "bouncy"})
	require.Error(t, err)
}

func TestBuildTrajectory(t *testing.T) {
	t.Parallel()

	floor := 0.0
	cases := []struct {
		name  string
		decl  config.Trajectory
		check func(t *testing.T, p trajectory.Path)
	}{
		{
			name: "launch lands on its target",
			decl: config.Trajectory{ID: "throw", Type: "launch", End: vec.New(10, 0, 0), Speed: 20},
			check: func(t *testing.T, p trajectory.Path) {
				end := trajectory.Evaluator(p)(1)
				require.InDelta(t, 10, end.X, 1e-6)
				require.InDelta(t, 0, end.Y, 1e-6)
			},
		},
		{
			name: "projectile bounces on the floor",
			decl: config.Trajectory{
				ID: "ball", Type: "projectile", Start: vec.New(0, -5, 0), Duration: 3,
				Floor: &floor, Restitution: 0.5,
			},
			check: func(t *testing.T, p trajectory.Path) {
				proj := p.(*trajectory.Projectile)
				require.NotEmpty(t, proj.Bounces())
				for u := 0.0; u <= 1; u += 0.05 {
					require.LessOrEqual(t, trajectory.Evaluator(p)(u).Y, 1e-6)
				}
			},
		},
		{
			name: "bezier endpoints",
			decl: config.Trajectory{ID: "curve", Type: "bezier", End: vec.New(3, 4, 0)},
			check: func(t *testing.T, p trajectory.Path) {
				end := trajectory.Evaluator(p)(1)
				require.InDelta(t, 3, end.X, 1e-9)
				require.InDelta(t, 4, end.Y, 1e-9)
			},
		},
		{
			name: "spiral",
			decl: config.Trajectory{ID: "coil", Type: "spiral", StartRadius: 1, AngularSpeed: 1, Turns: 2},
			check: func(t *testing.T, p trajectory.Path) {
				start := trajectory.Evaluator(p)(0)
				require.InDelta(t, 1, math.Hypot(start.X, start.Y), 1e-9)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p, err := BuildTrajectory(tc.decl)
			require.NoError(t, err)
			tc.check(t, p)
		})
	}

	_, err := BuildTrajectory(config.Trajectory{ID: "far", Type: "launch", End: vec.New(1000, 0, 0), Speed: 1})
	var unreachable *mkerrors.UnreachableTargetError
	require.ErrorAs(t, err, &unreachable)
}

func TestBuildPredicateDefaults(t *testing.T) {
	t.Parallel()

	truthy, err := BuildPredicate(config.Condition{Var: "ready"})
	require.NoError(t, err)
	require.False(t, truthy(&sequence.Context{}))
	require.True(t, truthy(&sequence.Context{Vars: map[string]any{"ready": true}}))

	eq, err := BuildPredicate(config.Condition{Var: "mode", Value: "dark"})
	require.NoError(t, err)
	require.True(t, eq(&sequence.Context{Vars: map[string]any{"mode": "dark"}}))

	_, err = BuildPredicate(config.Condition{Var: "x", Op: "~"})
	require.Error(t, err)
}

func TestToList(t *testing.T) {
	t.Parallel()

	require.Nil(t, toList(nil))
	require.Equal(t, []any{1, 2}, toList([]any{1, 2}))
	require.Equal(t, []any{"a", "b"}, toList([]string{"a", "b"}))
	require.Equal(t, []any{3}, toList(3))
}
