// Package trajectory generates parametric motion paths: projectile arcs with
// optional bounces, cubic bezier curves, spirals, sine waves and caller
// supplied functions. Every path is a pure closed-form evaluator; sampling
// never mutates it.
package trajectory

import (
	"fmt"

	"github.com/alexisbeaulieu97/motionkit/internal/vec"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Path is a parametric curve over a closed parameter domain.
type Path interface {
	// Position evaluates the curve at parameter t. Values outside Domain are clamped.
	Position(t float64) vec.Vector3
	// Domain returns the parameter range; time in seconds for physical paths,
	// [0, 1] for geometric ones.
	Domain() (start, end float64)
	// Validate rejects configurations that would yield non-finite output.
	Validate() error
}

// Sample is one generated point.
type Sample struct {
	Position vec.Vector3 `yaml:"position"`
	T        float64     `yaml:"t"`
}

// Generate samples p at numPoints evenly spaced parameter values including
// both domain ends.
func Generate(p Path, numPoints int) ([]Sample, error) {
	if p == nil {
		return nil, mkerrors.NewConfigurationError("trajectory", "path is nil", nil)
	}
	if numPoints < 2 {
		return nil, mkerrors.NewConfigurationError("trajectory.num_points", fmt.Sprintf("must be at least 2, got %d", numPoints), nil)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	t0, t1 := p.Domain()
	samples := make([]Sample, numPoints)
	for i := 0; i < numPoints; i++ {
		t := t0 + (t1-t0)*float64(i)/float64(numPoints-1)
		pos := p.Position(t)
		if !pos.IsFinite() {
			return nil, mkerrors.NewConfigurationError("trajectory", fmt.Sprintf("non-finite position at t=%v", t), nil)
		}
		samples[i] = Sample{Position: pos, T: t}
	}
	return samples, nil
}

// Evaluator maps normalised progress u in [0, 1] onto the path's domain.
func Evaluator(p Path) func(u float64) vec.Vector3 {
	t0, t1 := p.Domain()
	return func(u float64) vec.Vector3 {
		return p.Position(t0 + (t1-t0)*clamp01(u))
	}
}

// ArcLength approximates the length of p with a polyline of n segments.
func ArcLength(p Path, n int) float64 {
	if n < 1 {
		n = 1
	}
	eval := Evaluator(p)
	total := 0.0
	prev := eval(0)
	for i := 1; i <= n; i++ {
		next := eval(float64(i) / float64(n))
		total += prev.Distance(next)
		prev = next
	}
	return total
}

// Displacement returns the straight-line distance between the path ends.
func Displacement(p Path) float64 {
	eval := Evaluator(p)
	return eval(0).Distance(eval(1))
}

func clamp01(u float64) float64 {
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}

func clamp(t, lo, hi float64) float64 {
	if t < lo {
		return lo
	}
	if t > hi {
		return hi
	}
	return t
}

func requireFinite(field string, values ...float64) error {
	for _, v := range values {
		if !vec.New(v, 0, 0).IsFinite() {
			return mkerrors.NewConfigurationError(field, "must be finite", nil)
		}
	}
	return nil
}

func requireFiniteVec(field string, values ...vec.Vector3) error {
	for _, v := range values {
		if !v.IsFinite() {
			return mkerrors.NewConfigurationError(field, "must be finite", nil)
		}
	}
	return nil
}
