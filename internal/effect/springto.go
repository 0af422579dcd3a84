package effect

import (
	"math"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/spring"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// maxSettleEstimate bounds the duration reported for very soft springs.
const maxSettleEstimate = 5 * time.Second

// SpringTo drives properties to To with decoupled physical springs. A zero
// Params uses the default preset.
type SpringTo struct {
	From       Props
	To         Props
	Params     spring.Params
	Integrator spring.Integrator
	Traits     Traits

	distanceScale float64
}

func (s SpringTo) params() spring.Params {
	if s.Params == (spring.Params{}) {
		return spring.PresetDefault.Params()
	}
	return s.Params
}

func (s SpringTo) solver() *spring.Spring {
	sp, err := spring.New(s.params(), spring.WithIntegrator(s.Integrator))
	if err != nil {
		// Validate rejects bad params at build time.
		return spring.MustNew(spring.PresetDefault.Params(), spring.WithIntegrator(s.Integrator))
	}
	return sp
}

// Start implements Effect.
func (s SpringTo) Start(from Props) Animation {
	base := from.Merge(s.From)
	start := make(Props, len(s.To))
	for name := range s.To {
		start[name] = base.Value(name)
	}
	if s.distanceScale > 0 {
		start = scaleToward(start, s.To, s.distanceScale)
	}

	group := s.solver().NewGroup()
	for _, name := range s.To.Keys() {
		group.Set(name, start[name], s.To[name])
	}
	return &springAnimation{group: group, current: start}
}

// Final implements Effect.
func (s SpringTo) Final(from Props) Props { return from.Merge(s.To) }

// Options implements Effect.
func (s SpringTo) Options(from Props) motion.Options {
	return s.Traits.options(SettleEstimate(s.params()), shapeOf(from.Merge(s.From), s.To))
}

// Adapt implements Effect. Speeding a spring up scales stiffness by the
// square of the multiplier and damping linearly, which keeps its damping
// ratio and therefore its shape.
func (s SpringTo) Adapt(adj motion.Adjusted) Effect {
	if e, ok := fixedAdapt(staticFinal(s.To), s.Traits, adj); ok {
		return e
	}
	if m := adj.SpeedMultiplier; m > 0 && m != 1 {
		p := s.params()
		s.Params = spring.Params{Mass: p.Mass, Stiffness: p.Stiffness * m * m, Damping: p.Damping * m}
	}
	if adj.DistanceScale > 0 && adj.DistanceScale != 1 {
		s.distanceScale = adj.DistanceScale
	}
	return s
}

// Validate implements Effect.
func (s SpringTo) Validate() error {
	if len(s.To) == 0 {
		return mkerrors.NewConfigurationError("spring.to", "at least one property is required", nil)
	}
	if err := s.params().Validate(); err != nil {
		return err
	}
	if err := validateProps("spring.from", s.From); err != nil {
		return err
	}
	return validateProps("spring.to", s.To)
}

// SettleEstimate approximates how long a spring takes to come to rest from
// its slowest decaying mode, capped at five seconds.
func SettleEstimate(p spring.Params) time.Duration {
	omega := p.AngularFrequency()
	zeta := p.DampingRatio()
	if omega <= 0 || math.IsNaN(omega) {
		return maxSettleEstimate
	}
	var decay float64
	if zeta < 1 {
		decay = zeta * omega
	} else {
		decay = omega * (zeta - math.Sqrt(zeta*zeta-1))
	}
	if decay <= 0 {
		return maxSettleEstimate
	}
	// e^-7 leaves under 0.1% of the initial displacement.
	est := time.Duration(7 / decay * float64(time.Second))
	return min(est, maxSettleEstimate)
}

type springAnimation struct {
	group   *spring.Group
	current Props
	done    bool
}

func (a *springAnimation) Tick(dt time.Duration) Frame {
	dt = max(dt, 0)
	if a.done {
		return Frame{Values: a.Current(), Done: true, Overflow: dt}
	}
	r := a.group.Tick(dt)
	a.current = Props(r.Values)
	if r.AtRest {
		a.done = true
	}
	return Frame{Values: a.Current(), Done: a.done}
}

func (a *springAnimation) Current() Props { return a.current.Clone() }

func (a *springAnimation) Finish() Props {
	a.done = true
	a.current = Props(a.group.Finish())
	return a.Current()
}
