package spring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const frame = 16 * time.Millisecond

func allIntegrators() []Integrator {
	return []Integrator{IntegratorRK4, IntegratorSemiImplicitEuler, IntegratorAnalytic}
}

func TestNoOvershootWhenCriticallyOrOverdamped(t *testing.T) {
	t.Parallel()

	for _, integrator := range []Integrator{IntegratorRK4, IntegratorAnalytic} {
		for _, ratio := range []float64{1, 1.25, 2, 4} {
			for _, stiffness := range []float64{50, 170, 1000} {
				params, err := FromDampingRatio(1, stiffness, ratio)
				require.NoError(t, err)
				s, err := New(params, WithIntegrator(integrator))
				require.NoError(t, err)

				a := s.Animate(0, 100, 0)
				prev := 0.0
				for i := 0; i < 3000 && !a.AtRest(); i++ {
					r := a.Tick(frame)
					require.LessOrEqual(t, r.Value, 100+1e-9, "integrator=%s ratio=%v k=%v", integrator, ratio, stiffness)
					require.GreaterOrEqual(t, r.Value, prev-1e-9, "approach must be monotonic")
					prev = r.Value
				}
				require.True(t, a.AtRest(), "integrator=%s ratio=%v k=%v should settle", integrator, ratio, stiffness)
			}
		}
	}
}

func TestStiffSpringsStayFiniteAndMonotonic(t *testing.T) {
	t.Parallel()

	for _, integrator := range allIntegrators() {
		for _, ratio := range []float64{10, 20, 35, 50} {
			for _, mass := range []float64{0.01, 0.1, 1} {
				for _, stiffness := range []float64{50, 1000} {
					params, err := FromDampingRatio(mass, stiffness, ratio)
					require.NoError(t, err)
					s, err := New(params, WithIntegrator(integrator))
					require.NoError(t, err)

					a := s.Animate(0, 100, 0)
					prev := 0.0
					for i := 0; i < 200; i++ {
						r := a.Tick(frame)
						require.False(t, math.IsNaN(r.Value) || math.IsInf(r.Value, 0), "integrator=%s ratio=%v m=%v k=%v", integrator, ratio, mass, stiffness)
						require.LessOrEqual(t, r.Value, 100+1e-9, "integrator=%s ratio=%v m=%v k=%v", integrator, ratio, mass, stiffness)
						require.GreaterOrEqual(t, r.Value, prev-1e-9, "integrator=%s ratio=%v m=%v k=%v", integrator, ratio, mass, stiffness)
						prev = r.Value
					}
					require.Greater(t, prev, 0.0)
				}
			}
		}
	}
}

func TestSubstepsShrinkWithStiffness(t *testing.T) {
	t.Parallel()

	soft := MustNew(PresetGentle.Params())
	n, ok := soft.substeps(frame)
	require.True(t, ok)
	require.Equal(t, 4, n)

	params, err := FromDampingRatio(1, 1000, 20)
	require.NoError(t, err)
	stiff := MustNew(params)
	n, ok = stiff.substeps(frame)
	require.True(t, ok)
	require.Greater(t, n, 4)
	require.LessOrEqual(t, frame.Seconds()/float64(n), stiff.stableStep())

	params, err = FromDampingRatio(0.0001, 1000, 50)
	require.NoError(t, err)
	extreme := MustNew(params, WithIntegrator(IntegratorSemiImplicitEuler))
	_, ok = extreme.substeps(frame)
	require.False(t, ok, "too stiff to integrate falls back to the closed form")

	st := extreme.Step(State{Value: 0, Target: 100}, frame)
	require.False(t, math.IsNaN(st.Value))
	require.LessOrEqual(t, st.Value, 100+1e-9)
	require.GreaterOrEqual(t, st.Value, 0.0)
}

func TestUnderdampedOvershoots(t *testing.T) {
	t.Parallel()

	s := MustNew(PresetWobbly.Params())
	a := s.Animate(0, 1, 0)
	peak := 0.0
	for i := 0; i < 300; i++ {
		r := a.Tick(frame)
		peak = math.Max(peak, r.Value)
	}
	require.Greater(t, peak, 1.0)
	require.True(t, a.AtRest())
	require.Equal(t, 1.0, a.State().Value)
}

func TestRetargetPreservesVelocity(t *testing.T) {
	t.Parallel()

	for _, integrator := range allIntegrators() {
		s, err := New(PresetDefault.Params(), WithIntegrator(integrator))
		require.NoError(t, err)

		a := s.Animate(0, 200, 0)
		for i := 0; i < 10; i++ {
			a.Tick(frame)
		}
		before := a.State()
		require.NotZero(t, before.Velocity)

		a.Retarget(-50)
		after := a.State()

		require.Equal(t, before.Velocity, after.Velocity, "integrator=%s", integrator)
		require.Equal(t, before.Value, after.Value)
		require.Equal(t, -50.0, after.Target)

		next := a.Tick(frame)
		require.False(t, next.AtRest)
	}
}

func TestStableAtHighStiffnessAndFullFrame(t *testing.T) {
	t.Parallel()

	for _, integrator := range allIntegrators() {
		params, err := FromDampingRatio(1, 1000, 0.3)
		require.NoError(t, err)
		s, err := New(params, WithIntegrator(integrator))
		require.NoError(t, err)

		a := s.Animate(0, 10, 0)
		for i := 0; i < 400; i++ {
			r := a.Tick(frame)
			require.False(t, math.IsNaN(r.Value))
			require.Less(t, math.Abs(r.Value), 25.0, "integrator=%s diverged", integrator)
		}
		require.True(t, a.AtRest(), "integrator=%s", integrator)
	}
}

func TestCompletionIsDebouncedAndReportedOnce(t *testing.T) {
	t.Parallel()

	s := MustNew(PresetStiff.Params())
	a := s.Animate(0.99999, 1, 0)

	first := a.Tick(frame)
	require.False(t, first.Completed, "one quiet tick is not enough")

	second := a.Tick(frame)
	require.True(t, second.Completed)
	require.True(t, second.AtRest)

	third := a.Tick(frame)
	require.False(t, third.Completed)
	require.True(t, third.AtRest)
	require.Equal(t, 1.0, third.Value)
}

func TestIntegratorsAgree(t *testing.T) {
	t.Parallel()

	var finals []float64
	for _, integrator := range allIntegrators() {
		s, err := New(PresetGentle.Params(), WithIntegrator(integrator), WithMaxSubstep(time.Millisecond))
		require.NoError(t, err)
		st := State{Value: 0, Target: 1}
		for i := 0; i < 20; i++ {
			st = s.Step(st, frame)
		}
		finals = append(finals, st.Value)
	}
	require.InDelta(t, finals[2], finals[0], 1e-4, "rk4 vs analytic")
	require.InDelta(t, finals[2], finals[1], 2e-2, "euler vs analytic")
}

func TestStepIgnoresNonPositiveDT(t *testing.T) {
	t.Parallel()

	s := MustNew(PresetDefault.Params())
	st := State{Value: 3, Velocity: 1, Target: 0}
	require.Equal(t, st, s.Step(st, 0))
	require.Equal(t, st, s.Step(st, -time.Second))
}

func TestParseIntegrator(t *testing.T) {
	t.Parallel()

	got, err := ParseIntegrator("Analytic")
	require.NoError(t, err)
	require.Equal(t, IntegratorAnalytic, got)

	_, err = ParseIntegrator("verlet")
	require.Error(t, err)
}
