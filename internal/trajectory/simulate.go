package trajectory

import (
	"fmt"

	"github.com/charmbracelet/harmonica"

	"github.com/alexisbeaulieu97/motionkit/internal/vec"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Simulate steps cfg frame by frame with explicit Euler integration at the
// given frame rate, ignoring boundaries. Hosts that replay motion on a fixed
// frame clock use it; it converges to the closed form as fps grows.
func Simulate(cfg ProjectileConfig, fps, frames int) ([]Sample, error) {
	if fps <= 0 || frames < 1 {
		return nil, mkerrors.NewConfigurationError("trajectory.simulate", fmt.Sprintf("fps and frames must be positive, got %d/%d", fps, frames), nil)
	}
	if err := requireFiniteVec("trajectory.simulate", cfg.Start, cfg.Velocity, cfg.Gravity); err != nil {
		return nil, err
	}

	dt := harmonica.FPS(fps)
	proj := harmonica.NewProjectile(
		dt,
		harmonica.Point{X: cfg.Start.X, Y: cfg.Start.Y, Z: cfg.Start.Z},
		harmonica.Vector{X: cfg.Velocity.X, Y: cfg.Velocity.Y, Z: cfg.Velocity.Z},
		harmonica.Vector{X: cfg.Gravity.X, Y: cfg.Gravity.Y, Z: cfg.Gravity.Z},
	)

	samples := make([]Sample, 0, frames+1)
	samples = append(samples, Sample{Position: cfg.Start, T: 0})
	for i := 1; i <= frames; i++ {
		pt := proj.Update()
		samples = append(samples, Sample{Position: vec.New(pt.X, pt.Y, pt.Z), T: float64(i) * dt})
	}
	return samples, nil
}
