package effect

import (
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Tween interpolates properties to To over a fixed duration. From overrides
// the target's current values for the listed properties.
type Tween struct {
	From     Props
	To       Props
	Duration time.Duration
	Delay    time.Duration
	Easing   Easing
	Traits   Traits

	// distanceScale is set by Adapt; zero means unscaled.
	distanceScale float64
}

func (t Tween) start(from Props) Props {
	base := from.Merge(t.From)
	out := make(Props, len(t.To))
	for name := range t.To {
		out[name] = base.Value(name)
	}
	if t.distanceScale > 0 {
		out = scaleToward(out, t.To, t.distanceScale)
	}
	return out
}

// Start implements Effect.
func (t Tween) Start(from Props) Animation {
	a := &tweenAnimation{
		from:     t.start(from),
		to:       t.To.Clone(),
		delay:    max(t.Delay, 0),
		duration: max(t.Duration, 0),
		easing:   t.Easing,
	}
	a.current = a.from.Clone()
	return a
}

// Final implements Effect.
func (t Tween) Final(from Props) Props { return from.Merge(t.To) }

// Options implements Effect.
func (t Tween) Options(from Props) motion.Options {
	return t.Traits.options(t.Delay+t.Duration, shapeOf(from.Merge(t.From), t.To))
}

// Adapt implements Effect.
func (t Tween) Adapt(adj motion.Adjusted) Effect {
	if e, ok := fixedAdapt(staticFinal(t.To), t.Traits, adj); ok {
		return e
	}
	if adj.SpeedMultiplier > 0 && adj.SpeedMultiplier != 1 {
		t.Duration = time.Duration(float64(t.Duration) / adj.SpeedMultiplier)
		t.Delay = time.Duration(float64(t.Delay) / adj.SpeedMultiplier)
	}
	if adj.DistanceScale > 0 && adj.DistanceScale != 1 {
		t.distanceScale = adj.DistanceScale
	}
	return t
}

// Validate implements Effect.
func (t Tween) Validate() error {
	if t.Duration < 0 || t.Delay < 0 {
		return mkerrors.NewConfigurationError("tween", fmt.Sprintf("duration and delay must be non-negative, got %s/%s", t.Duration, t.Delay), nil)
	}
	if len(t.To) == 0 {
		return mkerrors.NewConfigurationError("tween.to", "at least one property is required", nil)
	}
	if err := validateProps("tween.from", t.From); err != nil {
		return err
	}
	return validateProps("tween.to", t.To)
}

type tweenAnimation struct {
	from, to        Props
	delay, duration time.Duration
	easing          Easing
	elapsed         time.Duration
	current         Props
	done            bool
}

func (a *tweenAnimation) Tick(dt time.Duration) Frame {
	dt = max(dt, 0)
	if a.done {
		return Frame{Values: a.Current(), Done: true, Overflow: dt}
	}

	a.elapsed += dt
	total := a.delay + a.duration
	if a.elapsed >= total {
		overflow := a.elapsed - total
		a.Finish()
		return Frame{Values: a.Current(), Done: true, Overflow: overflow}
	}

	active := a.elapsed - a.delay
	if active > 0 {
		u := a.easing.Ease(float64(active) / float64(a.duration))
		for name, target := range a.to {
			start := a.from[name]
			a.current[name] = start + (target-start)*u
		}
	}
	return Frame{Values: a.Current()}
}

func (a *tweenAnimation) Current() Props { return a.current.Clone() }

func (a *tweenAnimation) Finish() Props {
	a.done = true
	a.current = a.to.Clone()
	return a.Current()
}
