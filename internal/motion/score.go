package motion

import (
	"math"
	"time"
)

// Options describes an animation for scoring and adaptation.
type Options struct {
	Duration       time.Duration
	Distance       float64 // largest displacement in pixels
	TransformCount int     // number of distinct transform properties animated
	Uses3D         bool
	Flashing       bool
	Autoplay       bool
	Looping        bool
	ScreenCoverage float64 // fraction of the viewport affected, 0..1
	Importance     Importance
	Category       Category
}

// Weights of each factor in the overall intensity. They sum to one; flashing
// and autoplay dominate.
const (
	weightFlashing   = 0.30
	weightAutoplay   = 0.25
	weightDistance   = 0.12
	weightDuration   = 0.10
	weightTransforms = 0.08
	weight3D         = 0.08
	weightCoverage   = 0.07
)

const (
	distanceScale      = 300.0
	durationScale      = 1500 * time.Millisecond
	maxTransforms      = 6
	longDuration       = 5 * time.Second
	largeDistance      = 300.0
	largeCoverage      = 0.5
	complexTransforms  = 4
	autoplayBaseFactor = 0.4
)

// Analysis carries the boolean findings behind a score.
type Analysis struct {
	HasFlashing     bool
	IsLongDuration  bool
	IsLargeMovement bool
	IsComplex       bool
	Uses3D          bool
	IsAutoplay      bool
	IsLooping       bool
	IsLargeCoverage bool
	VestibularRisk  bool
	SeizureRisk     bool
}

// IntensityMetrics is the derived intensity assessment of one animation.
// All intensities are on a 0..100 scale.
type IntensityMetrics struct {
	Intensity         float64
	MotionIntensity   float64
	DurationIntensity float64
	VisualComplexity  float64
	UserImpact        float64
	RecommendedLevel  Level
	Analysis          Analysis
}

type factors struct {
	flashing   float64
	autoplay   float64
	distance   float64
	duration   float64
	transforms float64
	threeD     float64
	coverage   float64
}

func saturate(x, scale float64) float64 {
	if x <= 0 || scale <= 0 {
		return 0
	}
	return 1 - math.Exp(-x/scale)
}

func boolFactor(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func computeFactors(opts Options) factors {
	f := factors{
		flashing: boolFactor(opts.Flashing),
		distance: saturate(math.Abs(opts.Distance), distanceScale),
		duration: saturate(float64(opts.Duration), float64(durationScale)),
		threeD:   boolFactor(opts.Uses3D),
		coverage: math.Min(math.Max(opts.ScreenCoverage, 0), 1),
	}
	if opts.TransformCount > 0 {
		f.transforms = math.Min(float64(opts.TransformCount), maxTransforms) / maxTransforms
	}
	if opts.Autoplay {
		// Uncontrolled motion weighs more the longer it runs; loops never end.
		if opts.Looping {
			f.autoplay = 1
		} else {
			f.autoplay = autoplayBaseFactor + (1-autoplayBaseFactor)*f.duration
		}
	}
	return f
}

// Score computes the intensity of an animation. It is pure and cheap, so
// callers score every time a policy decision is needed.
func Score(opts Options) IntensityMetrics {
	f := computeFactors(opts)

	total := weightFlashing*f.flashing +
		weightAutoplay*f.autoplay +
		weightDistance*f.distance +
		weightDuration*f.duration +
		weightTransforms*f.transforms +
		weight3D*f.threeD +
		weightCoverage*f.coverage

	motionWeight := weightDistance + weightTransforms + weight3D
	complexityWeight := weightTransforms + weight3D + weightCoverage + weightFlashing
	impactWeight := weightFlashing + weightAutoplay + weightCoverage

	m := IntensityMetrics{
		Intensity:         clampScore(100 * total),
		MotionIntensity:   clampScore(100 * (weightDistance*f.distance + weightTransforms*f.transforms + weight3D*f.threeD) / motionWeight),
		DurationIntensity: clampScore(100 * f.duration),
		VisualComplexity:  clampScore(100 * (weightTransforms*f.transforms + weight3D*f.threeD + weightCoverage*f.coverage + weightFlashing*f.flashing) / complexityWeight),
		UserImpact:        clampScore(100 * (weightFlashing*f.flashing + weightAutoplay*f.autoplay + weightCoverage*f.coverage) / impactWeight),
		Analysis:          analyze(opts),
	}
	m.RecommendedLevel = recommendLevel(m.Intensity)
	return m
}

func analyze(opts Options) Analysis {
	a := Analysis{
		HasFlashing:     opts.Flashing,
		IsLongDuration:  opts.Duration >= longDuration,
		IsLargeMovement: math.Abs(opts.Distance) >= largeDistance,
		IsComplex:       opts.TransformCount >= complexTransforms || opts.Uses3D,
		Uses3D:          opts.Uses3D,
		IsAutoplay:      opts.Autoplay,
		IsLooping:       opts.Looping,
		IsLargeCoverage: opts.ScreenCoverage >= largeCoverage,
	}
	a.VestibularRisk = a.Uses3D || a.IsLargeMovement || (a.IsLargeCoverage && opts.Distance > 0)
	a.SeizureRisk = a.HasFlashing
	return a
}

// recommendLevel maps intensity to the sensitivity band that contains it.
func recommendLevel(intensity float64) Level {
	switch {
	case intensity < 15:
		return LevelNone
	case intensity < 30:
		return LevelVeryLow
	case intensity < 45:
		return LevelLow
	case intensity < 60:
		return LevelMedium
	case intensity < 75:
		return LevelHigh
	case intensity < 90:
		return LevelVeryHigh
	default:
		return LevelMaximum
	}
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
