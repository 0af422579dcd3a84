package trajectory

import (
	"fmt"
	"math"
	"sort"

	"github.com/alexisbeaulieu97/motionkit/internal/vec"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// StandardGravity points down the screen (+Y) in pixels-agnostic units.
var StandardGravity = vec.New(0, 9.8, 0)

const (
	maxSegments = 256
	rootEpsilon = 1e-9
)

// Boundary is a reflecting plane. Points with dot(p-Point, Normal) >= 0 are
// inside; crossing to the negative side triggers a bounce.
type Boundary struct {
	Point  vec.Vector3 `yaml:"point"`
	Normal vec.Vector3 `yaml:"normal"`
}

// ProjectileConfig describes ballistic motion under constant acceleration.
type ProjectileConfig struct {
	Start    vec.Vector3
	Velocity vec.Vector3
	Gravity  vec.Vector3
	// Duration is the simulated time span in seconds.
	Duration float64
	// Boundaries enable reflective bounces.
	Boundaries []Boundary
	// Restitution scales the normal velocity component on each bounce.
	Restitution float64
	// MaxBounces caps the number of bounces; 0 means unlimited. After the
	// last allowed bounce the projectile rests on the boundary it hit.
	MaxBounces int
	// MinBounceSpeed is the outgoing normal speed below which the projectile
	// comes to rest instead of bouncing again.
	MinBounceSpeed float64
}

type segment struct {
	t0      float64
	p0      vec.Vector3
	v0      vec.Vector3
	resting bool
}

// Projectile is the closed-form evaluator of a ProjectileConfig. Bounces are
// precomputed into piecewise segments, so Position stays O(log n).
type Projectile struct {
	cfg      ProjectileConfig
	segments []segment
}

// NewProjectile validates cfg and precomputes its bounce segments.
func NewProjectile(cfg ProjectileConfig) (*Projectile, error) {
	p := &Projectile{cfg: cfg}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.segments = buildSegments(cfg)
	return p, nil
}

// Config returns a copy of the configuration.
func (p *Projectile) Config() ProjectileConfig {
	cfg := p.cfg
	cfg.Boundaries = append([]Boundary(nil), p.cfg.Boundaries...)
	return cfg
}

// Validate implements Path.
func (p *Projectile) Validate() error {
	cfg := p.cfg
	if err := requireFiniteVec("trajectory.projectile", cfg.Start, cfg.Velocity, cfg.Gravity); err != nil {
		return err
	}
	if err := requireFinite("trajectory.projectile.duration", cfg.Duration); err != nil {
		return err
	}
	if cfg.Duration <= 0 {
		return mkerrors.NewConfigurationError("trajectory.projectile.duration", "must be positive", nil)
	}
	if cfg.Restitution < 0 || cfg.Restitution > 1 {
		return mkerrors.NewConfigurationError("trajectory.projectile.restitution", fmt.Sprintf("must be within [0, 1], got %v", cfg.Restitution), nil)
	}
	if cfg.MaxBounces < 0 || cfg.MinBounceSpeed < 0 {
		return mkerrors.NewConfigurationError("trajectory.projectile", "bounce limits must be non-negative", nil)
	}
	for i, b := range cfg.Boundaries {
		if b.Normal.LenSq() == 0 || !b.Normal.IsFinite() || !b.Point.IsFinite() {
			return mkerrors.NewConfigurationError(fmt.Sprintf("trajectory.projectile.boundaries[%d]", i), "needs a finite non-zero normal", nil)
		}
	}
	return nil
}

// Domain implements Path.
func (p *Projectile) Domain() (float64, float64) {
	return 0, p.cfg.Duration
}

// Position implements Path.
func (p *Projectile) Position(t float64) vec.Vector3 {
	t = clamp(t, 0, p.cfg.Duration)
	seg := p.segmentAt(t)
	if seg.resting {
		return seg.p0
	}
	return ballistic(seg.p0, seg.v0, p.cfg.Gravity, t-seg.t0)
}

// Velocity returns the instantaneous velocity at t.
func (p *Projectile) Velocity(t float64) vec.Vector3 {
	t = clamp(t, 0, p.cfg.Duration)
	seg := p.segmentAt(t)
	if seg.resting {
		return vec.Zero
	}
	return seg.v0.Add(p.cfg.Gravity.Scale(t - seg.t0))
}

// Bounces returns the times at which the projectile hit a boundary.
func (p *Projectile) Bounces() []float64 {
	var out []float64
	for _, seg := range p.segments[1:] {
		out = append(out, seg.t0)
	}
	return out
}

func (p *Projectile) segmentAt(t float64) segment {
	idx := sort.Search(len(p.segments), func(i int) bool { return p.segments[i].t0 > t }) - 1
	if idx < 0 {
		idx = 0
	}
	return p.segments[idx]
}

func ballistic(p0, v0, g vec.Vector3, dt float64) vec.Vector3 {
	return p0.Add(v0.Scale(dt)).Add(g.Scale(0.5 * dt * dt))
}

func buildSegments(cfg ProjectileConfig) []segment {
	segments := []segment{{t0: 0, p0: cfg.Start, v0: cfg.Velocity}}
	if len(cfg.Boundaries) == 0 {
		return segments
	}

	normals := make([]vec.Vector3, len(cfg.Boundaries))
	for i, b := range cfg.Boundaries {
		normals[i] = b.Normal.Normalize()
	}

	bounces := 0
	for len(segments) < maxSegments {
		cur := segments[len(segments)-1]
		if cur.resting {
			break
		}

		hitTime := math.Inf(1)
		hitIndex := -1
		for i, b := range cfg.Boundaries {
			tau, ok := crossing(cur.p0.Sub(b.Point), cur.v0, cfg.Gravity, normals[i])
			if ok && tau < hitTime {
				hitTime, hitIndex = tau, i
			}
		}
		if hitIndex < 0 || cur.t0+hitTime > cfg.Duration {
			break
		}

		n := normals[hitIndex]
		impact := ballistic(cur.p0, cur.v0, cfg.Gravity, hitTime)
		// snap onto the plane to stop drift across segments
		impact = impact.Sub(n.Scale(impact.Sub(cfg.Boundaries[hitIndex].Point).Dot(n)))
		v := cur.v0.Add(cfg.Gravity.Scale(hitTime))
		vn := v.Dot(n)
		reflected := v.Sub(n.Scale((1 + cfg.Restitution) * vn))
		bounces++

		next := segment{t0: cur.t0 + hitTime, p0: impact, v0: reflected}
		outgoing := -vn * cfg.Restitution
		if outgoing <= cfg.MinBounceSpeed || outgoing <= rootEpsilon || (cfg.MaxBounces > 0 && bounces >= cfg.MaxBounces) {
			next.resting = true
			next.v0 = vec.Zero
		}
		segments = append(segments, next)
	}

	if last := &segments[len(segments)-1]; len(segments) == maxSegments && !last.resting {
		last.resting = true
		last.v0 = vec.Zero
	}
	return segments
}

// crossing returns the earliest tau > 0 at which the signed distance
// c + b*tau + a*tau^2 to a plane becomes negative.
func crossing(rel, v0, g, n vec.Vector3) (float64, bool) {
	c := rel.Dot(n)
	b := v0.Dot(n)
	a := 0.5 * g.Dot(n)

	var roots []float64
	if math.Abs(a) < rootEpsilon {
		if b < 0 {
			roots = append(roots, -c/b)
		}
	} else {
		disc := b*b - 4*a*c
		if disc < 0 {
			return 0, false
		}
		sq := math.Sqrt(disc)
		r1 := (-b - sq) / (2 * a)
		r2 := (-b + sq) / (2 * a)
		if r1 > r2 {
			r1, r2 = r2, r1
		}
		roots = append(roots, r1, r2)
	}

	for _, r := range roots {
		if r <= 0 {
			continue
		}
		// only count crossings moving outward; this also skips the departure
		// root right after a bounce
		if b+2*a*r < 0 {
			return r, true
		}
	}
	return 0, false
}

// Launch is a solved initial velocity that carries a projectile from start to
// target.
type Launch struct {
	Velocity vec.Vector3
	// Angle above the horizontal plane in radians.
	Angle      float64
	FlightTime float64
}

// MinLaunchSpeed returns the slowest speed that can reach target under a
// gravity of magnitude g acting along +Y.
func MinLaunchSpeed(start, target vec.Vector3, g float64) float64 {
	d := target.Sub(start)
	dist := math.Hypot(d.X, d.Z)
	up := -d.Y
	if g <= 0 {
		return 0
	}
	return math.Sqrt(g * (up + math.Hypot(up, dist)))
}

// SolveLaunch computes launch parameters that hit target at the given speed
// with gravity g along +Y. When two angles work the lower one is returned.
// It reports false when the target is out of reach.
func SolveLaunch(start, target vec.Vector3, speed, g float64) (Launch, bool) {
	if speed <= 0 || g < 0 || !start.IsFinite() || !target.IsFinite() || math.IsNaN(speed) || math.IsNaN(g) {
		return Launch{}, false
	}

	d := target.Sub(start)
	horizontal := vec.New(d.X, 0, d.Z)
	dist := horizontal.Len()
	up := -d.Y

	if d.LenSq() == 0 {
		return Launch{}, true
	}

	if g == 0 {
		dir := d.Normalize()
		return Launch{
			Velocity:   dir.Scale(speed),
			Angle:      math.Atan2(up, dist),
			FlightTime: d.Len() / speed,
		}, true
	}

	if dist < rootEpsilon {
		return solveVertical(up, speed, g)
	}

	v2 := speed * speed
	disc := v2*v2 - g*(g*dist*dist+2*up*v2)
	if disc < 0 {
		return Launch{}, false
	}
	tanLow := (v2 - math.Sqrt(disc)) / (g * dist)
	angle := math.Atan(tanLow)

	horizontalSpeed := speed * math.Cos(angle)
	dir := horizontal.Scale(1 / dist)
	velocity := dir.Scale(horizontalSpeed).Add(vec.New(0, -speed*math.Sin(angle), 0))
	return Launch{
		Velocity:   velocity,
		Angle:      angle,
		FlightTime: dist / horizontalSpeed,
	}, true
}

// SolveLaunchErr is SolveLaunch reporting an UnreachableTargetError.
func SolveLaunchErr(start, target vec.Vector3, speed, g float64) (Launch, error) {
	launch, ok := SolveLaunch(start, target, speed, g)
	if !ok {
		return Launch{}, mkerrors.NewUnreachableTargetError(speed, MinLaunchSpeed(start, target, g))
	}
	return launch, nil
}

func solveVertical(up, speed, g float64) (Launch, bool) {
	v2 := speed * speed
	if up > 0 {
		disc := v2 - 2*g*up
		if disc < 0 {
			return Launch{}, false
		}
		return Launch{
			Velocity:   vec.New(0, -speed, 0),
			Angle:      math.Pi / 2,
			FlightTime: (speed - math.Sqrt(disc)) / g,
		}, true
	}
	drop := -up
	return Launch{
		Velocity:   vec.New(0, speed, 0),
		Angle:      -math.Pi / 2,
		FlightTime: (-speed + math.Sqrt(v2+2*g*drop)) / g,
	}, true
}
