package main

import (
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
)

type scoreOptions struct {
	Duration      time.Duration
	Distance      float64
	Transforms    int
	Uses3D        bool
	Flashing      bool
	Autoplay      bool
	Looping       bool
	Coverage      float64
	Importance    string
	Category      string
	Level         string
	ReducedMotion bool
}

func newScoreCmd() *cobra.Command {
	opts := scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an animation's intensity and show how a sensitivity level adapts it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Duration, "duration", 300*time.Millisecond, "Animation duration")
	cmd.Flags().Float64Var(&opts.Distance, "distance", 0, "Largest displacement in pixels")
	cmd.Flags().IntVar(&opts.Transforms, "transforms", 1, "Number of animated transform properties")
	cmd.Flags().BoolVar(&opts.Uses3D, "3d", false, "Animation uses 3D transforms")
	cmd.Flags().BoolVar(&opts.Flashing, "flashing", false, "Animation flashes")
	cmd.Flags().BoolVar(&opts.Autoplay, "autoplay", false, "Animation starts without user input")
	cmd.Flags().BoolVar(&opts.Looping, "looping", false, "Animation loops")
	cmd.Flags().Float64Var(&opts.Coverage, "coverage", 0, "Fraction of the viewport affected (0..1)")
	cmd.Flags().StringVar(&opts.Importance, "importance", "normal", "Importance: low, normal, high or critical")
	cmd.Flags().StringVar(&opts.Category, "category", "transition", "Animation category")
	cmd.Flags().StringVar(&opts.Level, "level", "medium", "Motion sensitivity level")
	cmd.Flags().BoolVar(&opts.ReducedMotion, "reduced-motion", false, "Simulate a system reduced-motion preference")

	return cmd
}

type scoreResult struct {
	Intensity         float64      `yaml:"intensity"`
	MotionIntensity   float64      `yaml:"motion_intensity"`
	DurationIntensity float64      `yaml:"duration_intensity"`
	VisualComplexity  float64      `yaml:"visual_complexity"`
	UserImpact        float64      `yaml:"user_impact"`
	RecommendedLevel  string       `yaml:"recommended_level"`
	Flags             []string     `yaml:"flags,omitempty"`
	Adapted           adaptedFrame `yaml:"adapted"`
}

type adaptedFrame struct {
	Level           string  `yaml:"level"`
	ShouldAnimate   bool    `yaml:"should_animate"`
	Duration        string  `yaml:"duration"`
	DistanceScale   float64 `yaml:"distance_scale"`
	SpeedMultiplier float64 `yaml:"speed_multiplier"`
	Alternative     string  `yaml:"alternative,omitempty"`
	Reason          string  `yaml:"reason,omitempty"`
}

func runScore(out io.Writer, opts scoreOptions) error {
	importance, err := motion.ParseImportance(opts.Importance)
	if err != nil {
		return err
	}
	category, err := motion.ParseCategory(opts.Category)
	if err != nil {
		return err
	}
	level, err := motion.ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	anim := motion.Options{
		Duration:       opts.Duration,
		Distance:       opts.Distance,
		TransformCount: opts.Transforms,
		Uses3D:         opts.Uses3D,
		Flashing:       opts.Flashing,
		Autoplay:       opts.Autoplay,
		Looping:        opts.Looping,
		ScreenCoverage: opts.Coverage,
		Importance:     importance,
		Category:       category,
	}

	cfg := motion.DefaultConfig()
	cfg.Level = level
	adapter := motion.NewAdapter(cfg, ports.StaticPreference(opts.ReducedMotion))

	metrics := motion.Score(anim)
	adjusted := adapter.Adapt(anim)

	result := scoreResult{
		Intensity:         round2(metrics.Intensity),
		MotionIntensity:   round2(metrics.MotionIntensity),
		DurationIntensity: round2(metrics.DurationIntensity),
		VisualComplexity:  round2(metrics.VisualComplexity),
		UserImpact:        round2(metrics.UserImpact),
		RecommendedLevel:  metrics.RecommendedLevel.String(),
		Flags:             analysisFlags(metrics.Analysis),
		Adapted: adaptedFrame{
			Level:           adjusted.Level.String(),
			ShouldAnimate:   adjusted.ShouldAnimate,
			Duration:        adjusted.Duration.String(),
			DistanceScale:   round2(adjusted.DistanceScale),
			SpeedMultiplier: round2(adjusted.SpeedMultiplier),
			Reason:          adjusted.Reason,
		},
	}
	if adjusted.ShouldUseAlternative {
		result.Adapted.Alternative = adjusted.Alternative.String()
	}
	return writeYAML(out, result)
}

func analysisFlags(a motion.Analysis) []string {
	checks := []struct {
		set  bool
		name string
	}{
		{a.HasFlashing, "flashing"},
		{a.IsLongDuration, "long-duration"},
		{a.IsLargeMovement, "large-movement"},
		{a.IsComplex, "complex"},
		{a.Uses3D, "3d"},
		{a.IsAutoplay, "autoplay"},
		{a.IsLooping, "looping"},
		{a.IsLargeCoverage, "large-coverage"},
		{a.VestibularRisk, "vestibular-risk"},
		{a.SeizureRisk, "seizure-risk"},
	}
	var flags []string
	for _, c := range checks {
		if c.set {
			flags = append(flags, c.name)
		}
	}
	return flags
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
