package spring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Integrator selects the numerical scheme used by Step.
type Integrator int

const (
	// IntegratorRK4 is classic fourth-order Runge-Kutta over fixed substeps.
	IntegratorRK4 Integrator = iota
	// IntegratorSemiImplicitEuler updates velocity first, then position.
	IntegratorSemiImplicitEuler
	// IntegratorAnalytic uses the closed-form solution from harmonica.
	IntegratorAnalytic
)

var integratorNames = map[Integrator]string{
	IntegratorRK4:               "rk4",
	IntegratorSemiImplicitEuler: "euler",
	IntegratorAnalytic:          "analytic",
}

func (i Integrator) String() string {
	if name, ok := integratorNames[i]; ok {
		return name
	}
	return fmt.Sprintf("integrator(%d)", int(i))
}

// ParseIntegrator resolves an integrator by name.
func ParseIntegrator(name string) (Integrator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range integratorNames {
		if n == key {
			return i, nil
		}
	}
	return 0, mkerrors.NewConfigurationError("spring.integrator", fmt.Sprintf("unknown integrator %q", name), nil)
}

// Tolerance holds the rest thresholds of the completion predicate.
type Tolerance struct {
	RestDelta float64
	RestSpeed float64
}

// DefaultTolerance suits both unit-range properties (opacity, scale) and pixels.
func DefaultTolerance() Tolerance {
	return Tolerance{RestDelta: 0.001, RestSpeed: 0.001}
}

// DefaultMaxSubstep is the upper bound on a substep; stiff or heavily damped
// springs use a shorter one.
const DefaultMaxSubstep = 4 * time.Millisecond

// maxSubstepsPerStep bounds the work of one Step; stiffer springs fall back
// to the closed-form solution.
const maxSubstepsPerStep = 1024

// Safety factors keep h times the stiffest eigenvalue inside the region where
// each integrator neither diverges nor oscillates around the target.
const (
	rk4Safety   = 1.5
	eulerSafety = 1.0
)

// restTicksRequired debounces the completion predicate.
const restTicksRequired = 2

// State is the mutable physical state of one scalar spring.
type State struct {
	Value    float64
	Velocity float64
	Target   float64
}

// Spring integrates a single damped harmonic oscillator. It may be shared by
// any number of States driven from the same tick loop.
type Spring struct {
	params     Params
	tolerance  Tolerance
	integrator Integrator
	maxSubstep time.Duration

	// analytic coefficients are tied to a fixed dt
	cachedDT  time.Duration
	cachedFit harmonica.Spring
}

// Option customises a Spring.
type Option func(*Spring)

// WithTolerance overrides the rest thresholds.
func WithTolerance(t Tolerance) Option {
	return func(s *Spring) { s.tolerance = t }
}

// WithIntegrator selects the integration scheme.
func WithIntegrator(i Integrator) Option {
	return func(s *Spring) { s.integrator = i }
}

// WithMaxSubstep bounds the step used by the numerical integrators.
func WithMaxSubstep(d time.Duration) Option {
	return func(s *Spring) { s.maxSubstep = d }
}

// New validates params and constructs a Spring.
func New(params Params, opts ...Option) (*Spring, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := &Spring{
		params:     params,
		tolerance:  DefaultTolerance(),
		integrator: IntegratorRK4,
		maxSubstep: DefaultMaxSubstep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tolerance.RestDelta <= 0 || s.tolerance.RestSpeed <= 0 {
		return nil, mkerrors.NewConfigurationError("spring.tolerance", "rest thresholds must be positive", nil)
	}
	if s.maxSubstep <= 0 {
		s.maxSubstep = DefaultMaxSubstep
	}
	if _, ok := integratorNames[s.integrator]; !ok {
		return nil, mkerrors.NewConfigurationError("spring.integrator", fmt.Sprintf("unknown integrator %d", int(s.integrator)), nil)
	}
	return s, nil
}

// MustNew is New for statically known parameters such as presets.
func MustNew(params Params, opts ...Option) *Spring {
	s, err := New(params, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Params returns the canonical parameters.
func (s *Spring) Params() Params { return s.params }

// Tolerance returns the rest thresholds.
func (s *Spring) Tolerance() Tolerance { return s.tolerance }

// Integrator returns the configured scheme.
func (s *Spring) Integrator() Integrator { return s.integrator }

// Acceleration evaluates the spring ODE at (x, v).
func (s *Spring) Acceleration(x, v, target float64) float64 {
	p := s.params
	return -p.Stiffness*(x-target)/p.Mass - p.Damping*v/p.Mass
}

// Step advances st by dt and returns the new state. Target is carried over
// unchanged; a non-positive dt returns st as is.
func (s *Spring) Step(st State, dt time.Duration) State {
	if dt <= 0 {
		return st
	}
	if s.integrator == IntegratorAnalytic {
		return s.stepAnalytic(st, dt)
	}

	n, ok := s.substeps(dt)
	if !ok {
		return s.stepAnalytic(st, dt)
	}
	h := dt.Seconds() / float64(n)
	for i := 0; i < n; i++ {
		if s.integrator == IntegratorSemiImplicitEuler {
			st = s.stepEuler(st, h)
		} else {
			st = s.stepRK4(st, h)
		}
	}
	return st
}

// substeps returns how many substeps Step splits dt into. It reports false
// when the spring is too stiff to integrate within maxSubstepsPerStep.
func (s *Spring) substeps(dt time.Duration) (int, bool) {
	h := s.maxSubstep.Seconds()
	if bound := s.stableStep(); bound < h {
		h = bound
	}
	steps := math.Ceil(dt.Seconds() / h)
	if math.IsNaN(steps) || steps > maxSubstepsPerStep {
		return 0, false
	}
	return max(int(steps), 1), true
}

// stableStep is the largest substep, in seconds, for which the configured
// integrator stays stable and free of overshoot.
func (s *Spring) stableStep() float64 {
	omega := s.params.AngularFrequency()
	zeta := s.params.DampingRatio()
	// magnitude of the fastest decaying mode
	lambda := math.Max(omega, zeta*omega+omega*math.Sqrt(math.Max(zeta*zeta-1, 0)))
	if s.integrator == IntegratorSemiImplicitEuler {
		return eulerSafety / (lambda + s.params.Damping/s.params.Mass)
	}
	return rk4Safety / lambda
}

// AtRest is the single-tick completion predicate.
func (s *Spring) AtRest(st State) bool {
	return math.Abs(st.Value-st.Target) < s.tolerance.RestDelta && math.Abs(st.Velocity) < s.tolerance.RestSpeed
}

func (s *Spring) stepEuler(st State, h float64) State {
	a := s.Acceleration(st.Value, st.Velocity, st.Target)
	st.Velocity += a * h
	st.Value += st.Velocity * h
	return st
}

func (s *Spring) stepRK4(st State, h float64) State {
	x, v, target := st.Value, st.Velocity, st.Target

	k1x := v
	k1v := s.Acceleration(x, v, target)

	k2x := v + 0.5*h*k1v
	k2v := s.Acceleration(x+0.5*h*k1x, k2x, target)

	k3x := v + 0.5*h*k2v
	k3v := s.Acceleration(x+0.5*h*k2x, k3x, target)

	k4x := v + h*k3v
	k4v := s.Acceleration(x+h*k3x, k4x, target)

	st.Value = x + h/6*(k1x+2*k2x+2*k3x+k4x)
	st.Velocity = v + h/6*(k1v+2*k2v+2*k3v+k4v)
	return st
}

func (s *Spring) stepAnalytic(st State, dt time.Duration) State {
	if dt != s.cachedDT {
		s.cachedFit = harmonica.NewSpring(dt.Seconds(), s.params.AngularFrequency(), s.params.DampingRatio())
		s.cachedDT = dt
	}
	st.Value, st.Velocity = s.cachedFit.Update(st.Value, st.Velocity, st.Target)
	return st
}
