package scene

import (
	"fmt"

	"github.com/alexisbeaulieu97/motionkit/internal/config"
	"github.com/alexisbeaulieu97/motionkit/internal/trajectory"
	"github.com/alexisbeaulieu97/motionkit/internal/vec"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// BuildTrajectory converts a trajectory declaration into a path.
func BuildTrajectory(t config.Trajectory) (trajectory.Path, error) {
	var (
		path trajectory.Path
		err  error
	)

	switch t.Type {
	case "projectile":
		path, err = trajectory.NewProjectile(projectileConfig(t, t.Velocity, t.Duration))
	case "launch":
		gravity := gravityOf(t)
		var launch trajectory.Launch
		launch, err = trajectory.SolveLaunchErr(t.Start, t.End, t.Speed, gravity.Y)
		if err != nil {
			break
		}
		flight := launch.FlightTime
		if flight <= 0 {
			flight = 1
		}
		path, err = trajectory.NewProjectile(projectileConfig(t, launch.Velocity, flight))
	case "bezier":
		path = trajectory.Bezier{P0: t.Start, P1: t.Control1, P2: t.Control2, P3: t.End}
	case "spiral":
		path = trajectory.Spiral{
			Center:       t.Center,
			StartRadius:  t.StartRadius,
			Growth:       t.Growth,
			AngularSpeed: t.AngularSpeed,
			Turns:        t.Turns,
			StartAngle:   t.StartAngle,
			Rise:         t.Rise,
		}
	case "sine":
		path = trajectory.SineWave{Start: t.Start, End: t.End, Amplitude: t.Amplitude, Frequency: t.Frequency, Normal: t.Normal}
	case "line":
		path = trajectory.Line{From: t.Start, To: t.End}
	default:
		return nil, mkerrors.NewConfigurationError("trajectory.type", fmt.Sprintf("unknown trajectory type %q", t.Type), nil)
	}
	if err != nil {
		return nil, err
	}
	if err := path.Validate(); err != nil {
		return nil, err
	}
	return path, nil
}

func gravityOf(t config.Trajectory) vec.Vector3 {
	if t.Gravity != nil {
		return *t.Gravity
	}
	return trajectory.StandardGravity
}

func projectileConfig(t config.Trajectory, velocity vec.Vector3, duration float64) trajectory.ProjectileConfig {
	cfg := trajectory.ProjectileConfig{
		Start:       t.Start,
		Velocity:    velocity,
		Gravity:     gravityOf(t),
		Duration:    duration,
		Restitution: t.Restitution,
		MaxBounces:  t.MaxBounces,
	}
	if t.Floor != nil {
		cfg.Boundaries = []trajectory.Boundary{{Point: vec.New(0, *t.Floor, 0), Normal: vec.New(0, -1, 0)}}
	}
	return cfg
}
