package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/motionkit/internal/scene"
	"github.com/alexisbeaulieu97/motionkit/internal/trajectory"
)

type trajectoryOptions struct {
	ScenePath string
	ID        string
	Points    int
	Simulate  bool
	FPS       int
	Frames    int
}

func newTrajectoryCmd(root *rootFlags) *cobra.Command {
	opts := trajectoryOptions{}

	cmd := &cobra.Command{
		Use:   "trajectory <scene-file> <trajectory-id>",
		Short: "Sample a named trajectory of a scene",
		Long: `Trajectory prints evenly spaced samples of a trajectory as YAML. With --simulate
a projectile is instead stepped frame by frame at --fps, ignoring its boundaries.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ScenePath = args[0]
			opts.ID = args[1]
			return runTrajectory(cmd.OutOrStdout(), cmd.ErrOrStderr(), root, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Points, "points", "n", 20, "Number of samples, including both ends")
	cmd.Flags().BoolVar(&opts.Simulate, "simulate", false, "Step a projectile frame by frame")
	cmd.Flags().IntVar(&opts.FPS, "fps", 60, "Frame rate for --simulate")
	cmd.Flags().IntVar(&opts.Frames, "frames", 60, "Frame count for --simulate")

	return cmd
}

type trajectoryResult struct {
	ID           string              `yaml:"id"`
	Displacement float64             `yaml:"displacement"`
	ArcLength    float64             `yaml:"arc_length"`
	Bounces      []float64           `yaml:"bounces,omitempty"`
	Samples      []trajectory.Sample `yaml:"samples"`
}

func runTrajectory(out, errOut io.Writer, root *rootFlags, opts trajectoryOptions) error {
	sc, err := loadScene(opts.ScenePath)
	if err != nil {
		return err
	}
	log, err := newLogger(root, errOut)
	if err != nil {
		return err
	}
	rt, err := scene.Compile(sc, scene.Deps{Logger: log})
	if err != nil {
		return err
	}

	path, ok := rt.Trajectories[opts.ID]
	if !ok {
		return fmt.Errorf("scene %q has no trajectory %q", sc.Name, opts.ID)
	}

	result := trajectoryResult{
		ID:           opts.ID,
		Displacement: round2(trajectory.Displacement(path)),
		ArcLength:    round2(trajectory.ArcLength(path, 256)),
	}
	proj, isProjectile := path.(*trajectory.Projectile)
	if isProjectile {
		result.Bounces = proj.Bounces()
	}

	if opts.Simulate {
		if !isProjectile {
			return fmt.Errorf("trajectory %q is not a projectile and cannot be simulated", opts.ID)
		}
		result.Samples, err = trajectory.Simulate(proj.Config(), opts.FPS, opts.Frames)
	} else {
		result.Samples, err = trajectory.Generate(path, opts.Points)
	}
	if err != nil {
		return err
	}
	return writeYAML(out, result)
}
