package trajectory

import (
	"math"

	"github.com/alexisbeaulieu97/motionkit/internal/vec"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Bezier is a cubic bezier curve on u in [0, 1].
type Bezier struct {
	P0, P1, P2, P3 vec.Vector3
}

// Validate implements Path.
func (b Bezier) Validate() error {
	return requireFiniteVec("trajectory.bezier", b.P0, b.P1, b.P2, b.P3)
}

// Domain implements Path.
func (b Bezier) Domain() (float64, float64) { return 0, 1 }

// Position evaluates the cubic Bernstein basis.
func (b Bezier) Position(u float64) vec.Vector3 {
	u = clamp01(u)
	m := 1 - u
	b0 := m * m * m
	b1 := 3 * m * m * u
	b2 := 3 * m * u * u
	b3 := u * u * u
	return b.P0.Scale(b0).Add(b.P1.Scale(b1)).Add(b.P2.Scale(b2)).Add(b.P3.Scale(b3))
}

// Spiral is an Archimedean spiral r = r0 + k*theta around Center, with
// theta = AngularSpeed*t, for Turns full revolutions. Rise lifts the spiral
// along Z per radian, turning it into a helix.
type Spiral struct {
	Center       vec.Vector3
	StartRadius  float64
	Growth       float64
	AngularSpeed float64
	Turns        float64
	StartAngle   float64
	Rise         float64
}

// Validate implements Path.
func (s Spiral) Validate() error {
	if err := requireFiniteVec("trajectory.spiral.center", s.Center); err != nil {
		return err
	}
	if err := requireFinite("trajectory.spiral", s.StartRadius, s.Growth, s.AngularSpeed, s.Turns, s.StartAngle, s.Rise); err != nil {
		return err
	}
	if s.AngularSpeed == 0 {
		return mkerrors.NewConfigurationError("trajectory.spiral.angular_speed", "must be non-zero", nil)
	}
	if s.Turns <= 0 {
		return mkerrors.NewConfigurationError("trajectory.spiral.turns", "must be positive", nil)
	}
	if s.StartRadius < 0 {
		return mkerrors.NewConfigurationError("trajectory.spiral.start_radius", "must be non-negative", nil)
	}
	return nil
}

// Domain spans the time needed for Turns revolutions.
func (s Spiral) Domain() (float64, float64) {
	return 0, s.Turns * 2 * math.Pi / math.Abs(s.AngularSpeed)
}

// Position implements Path.
func (s Spiral) Position(t float64) vec.Vector3 {
	_, end := s.Domain()
	t = clamp(t, 0, end)
	sweep := s.AngularSpeed * t
	theta := s.StartAngle + sweep
	r := s.StartRadius + s.Growth*math.Abs(sweep)
	return s.Center.Add(vec.New(r*math.Cos(theta), r*math.Sin(theta), s.Rise*math.Abs(sweep)))
}

// SineWave oscillates perpendicular to the segment Start-End with
// Amplitude*sin(Frequency*distanceAlongPath). Normal picks the oscillation
// direction; when zero it is the in-plane perpendicular of the base direction.
type SineWave struct {
	Start     vec.Vector3
	End       vec.Vector3
	Amplitude float64
	Frequency float64
	Normal    vec.Vector3
}

// Validate implements Path.
func (s SineWave) Validate() error {
	if err := requireFiniteVec("trajectory.sine", s.Start, s.End, s.Normal); err != nil {
		return err
	}
	if err := requireFinite("trajectory.sine", s.Amplitude, s.Frequency); err != nil {
		return err
	}
	if s.Start.Distance(s.End) == 0 {
		return mkerrors.NewConfigurationError("trajectory.sine", "start and end must differ", nil)
	}
	return nil
}

// Domain implements Path.
func (s SineWave) Domain() (float64, float64) { return 0, 1 }

// Position implements Path.
func (s SineWave) Position(u float64) vec.Vector3 {
	u = clamp01(u)
	base := s.End.Sub(s.Start)
	length := base.Len()
	along := s.Start.Add(base.Scale(u))
	return along.Add(s.perpendicular(base).Scale(s.Amplitude * math.Sin(s.Frequency*u*length)))
}

func (s SineWave) perpendicular(base vec.Vector3) vec.Vector3 {
	dir := base.Normalize()
	if s.Normal.LenSq() > 0 {
		// keep only the part of Normal orthogonal to the base direction
		n := s.Normal.Sub(dir.Scale(s.Normal.Dot(dir)))
		if n.LenSq() > 0 {
			return n.Normalize()
		}
	}
	perp := vec.New(-dir.Y, dir.X, 0)
	if perp.LenSq() == 0 {
		return vec.New(1, 0, 0)
	}
	return perp.Normalize()
}

// Custom wraps a caller-supplied pure function on t in [0, 1].
type Custom struct {
	Fn func(t float64) vec.Vector3
}

// Validate implements Path.
func (c Custom) Validate() error {
	if c.Fn == nil {
		return mkerrors.NewConfigurationError("trajectory.custom", "function is required", nil)
	}
	return nil
}

// Domain implements Path.
func (c Custom) Domain() (float64, float64) { return 0, 1 }

// Position implements Path.
func (c Custom) Position(t float64) vec.Vector3 {
	return c.Fn(clamp01(t))
}

// Line is the straight segment From-To on u in [0, 1].
type Line struct {
	From, To vec.Vector3
}

// Validate implements Path.
func (l Line) Validate() error {
	return requireFiniteVec("trajectory.line", l.From, l.To)
}

// Domain implements Path.
func (l Line) Domain() (float64, float64) { return 0, 1 }

// Position implements Path.
func (l Line) Position(u float64) vec.Vector3 {
	return l.From.Lerp(l.To, clamp01(u))
}
