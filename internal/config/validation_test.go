package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

func baseScene(steps ...Step) *Scene {
	return &Scene{
		Version: "1.0.0",
		Name:    "test",
		Targets: []Target{{ID: "card"}, {ID: "chip"}},
		Trajectories: []Trajectory{
			{ID: "arc", Type: "bezier"},
		},
		Sequences: []Sequence{{ID: "main", Steps: steps}},
	}
}

func animate(target string, e Effect) Step {
	return Step{Animate: &AnimateStep{Target: target, Effect: e}}
}

func fadeIn() Effect { return Effect{Preset: "fade-in"} }

func TestValidateScene(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		scene   func() *Scene
		field   string
		message string
	}{
		{
			name:  "valid scene",
			scene: func() *Scene { return baseScene(animate("card", fadeIn())) },
		},
		{
			name: "bad version",
			scene: func() *Scene {
				s := baseScene(animate("card", fadeIn()))
				s.Version = "beta"
				return s
			},
			field:   "version",
			message: "semver",
		},
		{
			name: "duplicate target",
			scene: func() *Scene {
				s := baseScene(animate("card", fadeIn()))
				s.Targets = append(s.Targets, Target{ID: "card"})
				return s
			},
			field:   "targets[2].id",
			message: "duplicate id",
		},
		{
			name: "nothing to play",
			scene: func() *Scene {
				s := baseScene()
				s.Sequences = nil
				return s
			},
			field:   "sequences",
			message: "at least one sequence or machine",
		},
		{
			name:    "unknown target",
			scene:   func() *Scene { return baseScene(Step{Wait: "1s"}, animate("ghost", fadeIn())) },
			field:   "sequences[0].steps[1].animate.target",
			message: `unknown target "ghost"`,
		},
		{
			name: "unknown preset",
			scene: func() *Scene {
				return baseScene(animate("card", Effect{Preset: "explode"}))
			},
			field:   "sequences[0].steps[0].animate.preset",
			message: "'preset'",
		},
		{
			name: "effect with two kinds",
			scene: func() *Scene {
				return baseScene(animate("card", Effect{Preset: "fade-in", Set: map[string]float64{"x": 1}}))
			},
			field:   "sequences[0].steps[0].animate",
			message: "exactly one of",
		},
		{
			name: "spring without target values",
			scene: func() *Scene {
				return baseScene(animate("card", Effect{Spring: &Spring{Preset: "gentle"}}))
			},
			field:   "sequences[0].steps[0].animate.to",
			message: "spring effect needs target values",
		},
		{
			name: "unknown trajectory in nested branch",
			scene: func() *Scene {
				return baseScene(Step{Parallel: []Step{
					{Wait: "10ms"},
					animate("chip", Effect{Follow: "loop"}),
				}})
			},
			field:   "sequences[0].steps[0].parallel[1].animate.follow",
			message: `unknown trajectory "loop"`,
		},
		{
			name: "negative wait",
			scene: func() *Scene {
				return baseScene(Step{Wait: "-5ms"})
			},
			field:   "sequences[0].steps[0].wait",
			message: "'duration'",
		},
		{
			name: "bad stagger direction",
			scene: func() *Scene {
				return baseScene(Step{Stagger: &StaggerStep{Targets: []string{"card"}, Direction: "sideways", Effect: fadeIn()}})
			},
			field:   "sequences[0].steps[0].stagger.direction",
			message: "'direction'",
		},
		{
			name: "loop with two sources",
			scene: func() *Scene {
				return baseScene(Step{Loop: &LoopStep{Repeat: 2, Forever: true, Steps: []Step{{Wait: "1s"}}}})
			},
			field:   "sequences[0].steps[0].loop",
			message: "exactly one of items",
		},
		{
			name: "empty conditional",
			scene: func() *Scene {
				return baseScene(Step{If: &IfStep{Condition: Condition{Var: "x"}}})
			},
			field:   "sequences[0].steps[0].if.then",
			message: "at least one branch",
		},
		{
			name: "bad operator",
			scene: func() *Scene {
				return baseScene(Step{If: &IfStep{Condition: Condition{Var: "x", Op: "approx"}, Then: []Step{{Wait: "1s"}}}})
			},
			field:   "sequences[0].steps[0].if.op",
			message: "'operator'",
		},
		{
			name: "unknown include",
			scene: func() *Scene {
				return baseScene(Step{Include: "missing"})
			},
			field:   "sequences[0].steps[0].include",
			message: `unknown sequence "missing"`,
		},
		{
			name: "include cycle",
			scene: func() *Scene {
				s := baseScene(Step{Include: "other"})
				s.Sequences = append(s.Sequences, Sequence{ID: "other", Steps: []Step{{Include: "main"}}})
				return s
			},
			field:   "sequences",
			message: "main -> other -> main",
		},
		{
			name: "launch without speed",
			scene: func() *Scene {
				s := baseScene(animate("card", fadeIn()))
				s.Trajectories = append(s.Trajectories, Trajectory{ID: "throw", Type: "launch"})
				return s
			},
			field:   "trajectories[1].speed",
			message: "positive speed",
		},
		{
			name: "bad category override",
			scene: func() *Scene {
				s := baseScene(animate("card", fadeIn()))
				s.Settings.Overrides = &Overrides{DisabledCategories: []string{"sparkles"}}
				return s
			},
			field:   "settings.overrides.disabled_categories[0]",
			message: "'category'",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateScene(tc.scene())
			if tc.field == "" {
				require.NoError(t, err)
				return
			}

			var cfgErr *mkerrors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tc.field, cfgErr.Field)
			require.Contains(t, cfgErr.Error(), tc.message)
		})
	}
}

func TestValidateSceneNil(t *testing.T) {
	t.Parallel()

	var cfgErr *mkerrors.ConfigurationError
	require.ErrorAs(t, ValidateScene(nil), &cfgErr)
}

func TestValidateMachine(t *testing.T) {
	t.Parallel()

	machine := func() Machine {
		return Machine{
			ID:      "button",
			Target:  "card",
			Initial: "idle",
			States:  []State{{ID: "idle"}, {ID: "pressed"}},
			Transitions: []Transition{
				{From: "idle", To: "pressed", Event: "press"},
				{From: "*", To: "idle", Event: "reset"},
			},
		}
	}

	cases := []struct {
		name   string
		modify func(m *Machine)
		field  string
	}{
		{name: "valid", modify: func(*Machine) {}},
		{name: "unknown target", modify: func(m *Machine) { m.Target = "ghost" }, field: "machines[0].target"},
		{name: "unknown initial", modify: func(m *Machine) { m.Initial = "gone" }, field: "machines[0].initial"},
		{name: "duplicate state", modify: func(m *Machine) { m.States = append(m.States, State{ID: "idle"}) }, field: "machines[0].states[2].id"},
		{name: "unknown from", modify: func(m *Machine) { m.Transitions[0].From = "hover" }, field: "machines[0].transitions[0].from"},
		{name: "unknown to", modify: func(m *Machine) { m.Transitions[1].To = "hover" }, field: "machines[0].transitions[1].to"},
		{
			name:   "enter effect without kind",
			modify: func(m *Machine) { m.States[1].Enter = &Effect{Duration: "1s"} },
			field:  "machines[0].states[1].enter",
		},
		{
			name:   "transition effect follows unknown path",
			modify: func(m *Machine) { m.Transitions[0].Effect = &Effect{Follow: "nowhere"} },
			field:  "machines[0].transitions[0].effect.follow",
		},
		{
			name:   "bad auto advance",
			modify: func(m *Machine) { m.States[1].AutoAdvance = "soon" },
			field:  "machines[0].states[1].auto_advance",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := baseScene()
			s.Sequences = nil
			m := machine()
			tc.modify(&m)
			s.Machines = []Machine{m}

			err := ValidateScene(s)
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			var cfgErr *mkerrors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestValidateStepIncludesLine(t *testing.T) {
	t.Parallel()

	step := Step{Loop: &LoopStep{Steps: []Step{{Wait: "1s"}}}, Line: 42}
	err := ValidateStep("sequences[0].steps[3]", step)
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 42")
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "", want: 0},
		{raw: "250ms", want: 250 * time.Millisecond},
		{raw: "1.5s", want: 1500 * time.Millisecond},
		{raw: "100", want: 100 * time.Millisecond},
		{raw: " 40 ", want: 40 * time.Millisecond},
		{raw: "-1", wantErr: true},
		{raw: "-5ms", wantErr: true},
		{raw: "soon", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDuration(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestEffectKind(t *testing.T) {
	t.Parallel()

	require.Equal(t, "preset", Effect{Preset: "pulse"}.Kind())
	require.Equal(t, "tween", Effect{To: map[string]float64{"x": 1}}.Kind())
	require.Equal(t, "spring", Effect{Spring: &Spring{}, To: map[string]float64{"x": 1}}.Kind())
	require.Equal(t, "follow", Effect{Follow: "arc"}.Kind())
	require.Equal(t, "set", Effect{Set: map[string]float64{}}.Kind())
	require.Equal(t, "", Effect{}.Kind())
	require.Equal(t, "", Effect{Preset: "pulse", Follow: "arc"}.Kind())
}
