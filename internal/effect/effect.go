package effect

import (
	"math"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/motion"
)

// Frame is the output of one animation tick.
type Frame struct {
	Values Props
	// Done is true on the tick the animation reaches its final values and on
	// every tick after.
	Done bool
	// Overflow is the part of dt not consumed by the animation. Sequencers
	// carry it into the next step so step boundaries do not drift.
	Overflow time.Duration
}

// Animation is a running effect bound to concrete start values.
type Animation interface {
	Tick(dt time.Duration) Frame
	// Current returns the last computed values.
	Current() Props
	// Finish jumps to the final values and marks the animation done.
	Finish() Props
}

// Effect is an animation description, independent of any target.
type Effect interface {
	// Start binds the effect to the target's current values.
	Start(from Props) Animation
	// Final returns the values the effect settles on when started from `from`.
	Final(from Props) Props
	// Options describes the effect to the motion sensitivity adapter.
	Options(from Props) motion.Options
	// Adapt rewrites the effect according to a policy decision.
	Adapt(adj motion.Adjusted) Effect
	Validate() error
}

// Traits classify an effect for the motion sensitivity adapter.
type Traits struct {
	Category       motion.Category
	Importance     motion.Importance
	Flashing       bool
	Autoplay       bool
	Looping        bool
	ScreenCoverage float64
}

func (t Traits) options(duration time.Duration, shape motionShape) motion.Options {
	return motion.Options{
		Duration:       duration,
		Distance:       shape.distance,
		TransformCount: shape.transforms,
		Uses3D:         shape.uses3D,
		Flashing:       t.Flashing,
		Autoplay:       t.Autoplay,
		Looping:        t.Looping,
		ScreenCoverage: t.ScreenCoverage,
		Importance:     t.Importance,
		Category:       t.Category,
	}
}

// fixedAdapt handles the two outcomes every effect shares: suppression and
// substitution. ok is false when the effect should scale itself instead.
func fixedAdapt(final finalFunc, traits Traits, adj motion.Adjusted) (Effect, bool) {
	switch {
	case !adj.ShouldAnimate:
		return Set{final: final}, true
	case adj.ShouldUseAlternative:
		return Alternative{Kind: adj.Alternative, Duration: adj.Duration, final: final, Traits: traits}, true
	}
	return nil, false
}

type finalFunc func(from Props) Props

func staticFinal(to Props) finalFunc {
	return func(from Props) Props { return from.Merge(to) }
}

// Set applies its values instantly. The step consumes no time.
type Set struct {
	To    Props
	final finalFunc
}

func (s Set) resolve(from Props) Props {
	if s.final != nil {
		return s.final(from)
	}
	return from.Merge(s.To)
}

// Start implements Effect.
func (s Set) Start(from Props) Animation {
	return &setAnimation{values: s.resolve(from)}
}

// Final implements Effect.
func (s Set) Final(from Props) Props { return s.resolve(from) }

// Options implements Effect.
func (s Set) Options(Props) motion.Options { return motion.Options{} }

// Adapt implements Effect. Instant changes are never rewritten.
func (s Set) Adapt(motion.Adjusted) Effect { return s }

// Validate implements Effect.
func (s Set) Validate() error { return validateProps("set.to", s.To) }

type setAnimation struct {
	values Props
	done   bool
}

func (a *setAnimation) Tick(dt time.Duration) Frame {
	a.done = true
	return Frame{Values: a.values.Clone(), Done: true, Overflow: max(dt, 0)}
}

func (a *setAnimation) Current() Props { return a.values.Clone() }

func (a *setAnimation) Finish() Props {
	a.done = true
	return a.values.Clone()
}

// Indicator properties driven by non-motion alternatives. Renderers map them
// to a tint, a border or an icon; they return to zero when the effect ends.
const (
	PropTint   = "tint"
	PropBorder = "border"
	PropIcon   = "icon"
)

const pulseDepth = 0.4

// Alternative replaces motion with an in-place cue: target values are applied
// immediately and only the cue animates.
type Alternative struct {
	Kind     motion.Alternative
	To       Props
	Duration time.Duration
	Traits   Traits
	final    finalFunc
}

func (a Alternative) resolve(from Props) Props {
	if a.final != nil {
		return a.final(from)
	}
	return from.Merge(a.To)
}

// Start implements Effect.
func (a Alternative) Start(from Props) Animation {
	return &alternativeAnimation{kind: a.Kind, duration: max(a.Duration, 0), final: a.resolve(from)}
}

// Final implements Effect. Cue properties end at zero.
func (a Alternative) Final(from Props) Props {
	return withCue(a.resolve(from), a.Kind, 0)
}

// Options implements Effect.
func (a Alternative) Options(Props) motion.Options {
	return a.Traits.options(a.Duration, motionShape{})
}

// Adapt implements Effect.
func (a Alternative) Adapt(motion.Adjusted) Effect { return a }

// Validate implements Effect.
func (a Alternative) Validate() error { return validateProps("alternative.to", a.To) }

type alternativeAnimation struct {
	kind     motion.Alternative
	duration time.Duration
	final    Props
	elapsed  time.Duration
	current  Props
	done     bool
}

// withCue returns values with the cue of kind applied at strength w in [0,1].
func withCue(values Props, kind motion.Alternative, w float64) Props {
	out := values.Clone()
	switch kind {
	case motion.AlternativeOpacityPulse:
		out["opacity"] = values.Value("opacity") * (1 - pulseDepth*w)
	case motion.AlternativeColorChange:
		out[PropTint] = w
	case motion.AlternativeBorderHighlight:
		out[PropBorder] = w
	case motion.AlternativeStaticIcon:
		if w > 0 {
			out[PropIcon] = 1
		} else {
			out[PropIcon] = 0
		}
	}
	return out
}

func (a *alternativeAnimation) Tick(dt time.Duration) Frame {
	if a.done {
		return Frame{Values: a.Current(), Done: true, Overflow: max(dt, 0)}
	}
	a.elapsed += max(dt, 0)
	if a.elapsed >= a.duration {
		overflow := a.elapsed - a.duration
		a.Finish()
		return Frame{Values: a.Current(), Done: true, Overflow: overflow}
	}
	u := float64(a.elapsed) / float64(a.duration)
	a.current = withCue(a.final, a.kind, math.Sin(math.Pi*u))
	return Frame{Values: a.Current()}
}

func (a *alternativeAnimation) Current() Props {
	if a.current == nil {
		return withCue(a.final, a.kind, 0)
	}
	return a.current.Clone()
}

func (a *alternativeAnimation) Finish() Props {
	a.done = true
	a.current = withCue(a.final, a.kind, 0)
	return a.current.Clone()
}
