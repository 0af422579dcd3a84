package effect

import (
	"fmt"
	"math"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/trajectory"
	"github.com/alexisbeaulieu97/motionkit/internal/vec"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

const followProbePoints = 64

// Follow moves a target's x, y and z along a trajectory over Duration.
type Follow struct {
	Path     trajectory.Path
	Duration time.Duration
	Easing   Easing
	Traits   Traits

	distanceScale float64
}

func positionProps(p vec.Vector3) Props {
	return Props{"x": p.X, "y": p.Y, "z": p.Z}
}

func (f Follow) at(eval func(float64) vec.Vector3, u float64) vec.Vector3 {
	p := eval(u)
	if f.distanceScale > 0 {
		end := eval(1)
		p = end.Add(p.Sub(end).Scale(f.distanceScale))
	}
	return p
}

// Start implements Effect. The path defines positions; the target's current
// values are ignored.
func (f Follow) Start(Props) Animation {
	eval := trajectory.Evaluator(f.Path)
	a := &followAnimation{
		follow:   f,
		eval:     eval,
		duration: max(f.Duration, 0),
	}
	a.current = positionProps(f.at(eval, 0))
	return a
}

// Final implements Effect.
func (f Follow) Final(from Props) Props {
	return from.Merge(positionProps(trajectory.Evaluator(f.Path)(1)))
}

// Options implements Effect.
func (f Follow) Options(Props) motion.Options {
	eval := trajectory.Evaluator(f.Path)
	shape := motionShape{transforms: 2}
	start := eval(0)
	for i := 1; i <= followProbePoints; i++ {
		p := eval(float64(i) / followProbePoints)
		if math.Abs(p.Z-start.Z) > 1e-9 {
			shape.uses3D = true
		}
		shape.distance = max(shape.distance, p.Distance(start))
	}
	if shape.uses3D {
		shape.transforms = 3
	}
	return f.Traits.options(f.Duration, shape)
}

// Adapt implements Effect. Scaled paths keep their end point and shrink
// toward it.
func (f Follow) Adapt(adj motion.Adjusted) Effect {
	final := func(from Props) Props { return f.Final(from) }
	if e, ok := fixedAdapt(final, f.Traits, adj); ok {
		return e
	}
	if adj.SpeedMultiplier > 0 && adj.SpeedMultiplier != 1 {
		f.Duration = time.Duration(float64(f.Duration) / adj.SpeedMultiplier)
	}
	if adj.DistanceScale > 0 && adj.DistanceScale != 1 {
		f.distanceScale = adj.DistanceScale
	}
	return f
}

// Validate implements Effect.
func (f Follow) Validate() error {
	if f.Path == nil {
		return mkerrors.NewConfigurationError("follow.path", "a trajectory is required", nil)
	}
	if f.Duration < 0 {
		return mkerrors.NewConfigurationError("follow.duration", fmt.Sprintf("must be non-negative, got %s", f.Duration), nil)
	}
	return f.Path.Validate()
}

type followAnimation struct {
	follow   Follow
	eval     func(float64) vec.Vector3
	duration time.Duration
	elapsed  time.Duration
	current  Props
	done     bool
}

func (a *followAnimation) Tick(dt time.Duration) Frame {
	dt = max(dt, 0)
	if a.done {
		return Frame{Values: a.Current(), Done: true, Overflow: dt}
	}
	a.elapsed += dt
	if a.elapsed >= a.duration {
		overflow := a.elapsed - a.duration
		a.Finish()
		return Frame{Values: a.Current(), Done: true, Overflow: overflow}
	}
	u := a.follow.Easing.Ease(float64(a.elapsed) / float64(a.duration))
	a.current = positionProps(a.follow.at(a.eval, u))
	return Frame{Values: a.Current()}
}

func (a *followAnimation) Current() Props { return a.current.Clone() }

func (a *followAnimation) Finish() Props {
	a.done = true
	a.current = positionProps(a.eval(1))
	return a.Current()
}
