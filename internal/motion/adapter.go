package motion

import (
	"slices"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
)

// maxAlternativeDuration caps how long a non-motion substitute runs.
const maxAlternativeDuration = 300 * time.Millisecond

// Profile is the policy tuple a sensitivity level maps to.
type Profile struct {
	DistanceScale      float64
	SpeedMultiplier    float64 // >1 shortens durations
	Threshold          float64 // intensity above which an alternative is used
	DisableFlashing    bool
	Disable3D          bool
	DisableAutoplay    bool
	DisabledCategories []Category
}

// Disables reports whether the profile suppresses the category outright.
func (p Profile) Disables(c Category) bool {
	return slices.Contains(p.DisabledCategories, c)
}

var allCategories = []Category{
	CategoryTransition, CategoryFeedback, CategoryDecorative, CategoryBackground,
	CategoryLoading, CategoryNavigation, CategoryAttention,
}

var profileTable = map[Level]Profile{
	LevelNone:    {DistanceScale: 1, SpeedMultiplier: 1, Threshold: 101},
	LevelVeryLow: {DistanceScale: 0.9, SpeedMultiplier: 1, Threshold: 85, DisableFlashing: true},
	LevelLow:     {DistanceScale: 0.75, SpeedMultiplier: 1.1, Threshold: 70, DisableFlashing: true},
	LevelMedium: {
		DistanceScale: 0.5, SpeedMultiplier: 1.25, Threshold: 55,
		DisableFlashing: true, Disable3D: true,
		DisabledCategories: []Category{CategoryBackground},
	},
	LevelHigh: {
		DistanceScale: 0.3, SpeedMultiplier: 1.5, Threshold: 40,
		DisableFlashing: true, Disable3D: true, DisableAutoplay: true,
		DisabledCategories: []Category{CategoryBackground, CategoryDecorative},
	},
	LevelVeryHigh: {
		DistanceScale: 0.15, SpeedMultiplier: 2, Threshold: 25,
		DisableFlashing: true, Disable3D: true, DisableAutoplay: true,
		DisabledCategories: []Category{CategoryBackground, CategoryDecorative, CategoryLoading},
	},
	LevelMaximum: {
		DistanceScale: 0, SpeedMultiplier: 1, Threshold: 0,
		DisableFlashing: true, Disable3D: true, DisableAutoplay: true,
		DisabledCategories: allCategories,
	},
}

// ProfileFor returns the default profile of a level. Unknown levels resolve
// to the most restrictive profile.
func ProfileFor(level Level) Profile {
	p, ok := profileTable[level]
	if !ok {
		p = profileTable[LevelMaximum]
	}
	p.DisabledCategories = slices.Clone(p.DisabledCategories)
	return p
}

// Overrides replaces individual profile fields. Nil fields keep the level's
// default; a non-nil DisabledCategories slice replaces the list, even when empty.
type Overrides struct {
	DistanceScale      *float64
	SpeedMultiplier    *float64
	Threshold          *float64
	DisableFlashing    *bool
	Disable3D          *bool
	DisableAutoplay    *bool
	DisabledCategories []Category
}

// Config selects a sensitivity level and optional overrides.
type Config struct {
	Level                   Level
	RespectSystemPreference bool
	Overrides               Overrides
}

// DefaultConfig returns unrestricted motion that still honours the host's
// reduced-motion preference.
func DefaultConfig() Config {
	return Config{Level: LevelNone, RespectSystemPreference: true}
}

// Adjusted is the policy decision for one animation.
type Adjusted struct {
	ShouldAnimate        bool
	Duration             time.Duration
	DistanceScale        float64
	SpeedMultiplier      float64
	ShouldUseAlternative bool
	Alternative          Alternative
	Level                Level
	Reason               string
	Metrics              IntensityMetrics
}

// Unmodified reports whether the animation runs exactly as requested.
func (a Adjusted) Unmodified() bool {
	return a.ShouldAnimate && !a.ShouldUseAlternative && a.DistanceScale == 1 && a.SpeedMultiplier == 1
}

// Adapter applies a sensitivity configuration to animations.
type Adapter struct {
	config     Config
	preference ports.PreferenceSource
	log        *logger.Logger
}

// AdapterOption customises an Adapter.
type AdapterOption func(*Adapter)

// WithLogger logs every non-trivial decision at debug level.
func WithLogger(log *logger.Logger) AdapterOption {
	return func(a *Adapter) {
		a.log = log
	}
}

// NewAdapter creates an adapter. A nil preference source is treated as "no
// preference".
func NewAdapter(cfg Config, preference ports.PreferenceSource, opts ...AdapterOption) *Adapter {
	a := &Adapter{config: cfg, preference: preference}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the adapter's configuration.
func (a *Adapter) Config() Config {
	return a.config
}

// SetConfig replaces the configuration for subsequent decisions.
func (a *Adapter) SetConfig(cfg Config) {
	a.config = cfg
}

// EffectiveLevel is the configured level, raised to at least High when the
// host reports a reduced-motion preference and the config respects it.
func (a *Adapter) EffectiveLevel() Level {
	level := a.config.Level
	if a.config.RespectSystemPreference && a.preference != nil && a.preference.PrefersReducedMotion() && level < LevelHigh {
		level = LevelHigh
	}
	return level
}

// Profile returns the effective profile with overrides applied.
func (a *Adapter) Profile() Profile {
	p := ProfileFor(a.EffectiveLevel())
	o := a.config.Overrides
	if o.DistanceScale != nil {
		p.DistanceScale = *o.DistanceScale
	}
	if o.SpeedMultiplier != nil {
		p.SpeedMultiplier = *o.SpeedMultiplier
	}
	if o.Threshold != nil {
		p.Threshold = *o.Threshold
	}
	if o.DisableFlashing != nil {
		p.DisableFlashing = *o.DisableFlashing
	}
	if o.Disable3D != nil {
		p.Disable3D = *o.Disable3D
	}
	if o.DisableAutoplay != nil {
		p.DisableAutoplay = *o.DisableAutoplay
	}
	if o.DisabledCategories != nil {
		p.DisabledCategories = slices.Clone(o.DisabledCategories)
	}
	return p
}

// Adapt decides how an animation should play. Policy, in order: a disabled
// category (or disabled autoplay) suppresses the animation unless it is
// critical; intensity above the threshold, or a disabled flashing/3D feature,
// substitutes the category's alternative; otherwise duration and distance
// are scaled by the profile.
func (a *Adapter) Adapt(opts Options) Adjusted {
	level := a.EffectiveLevel()
	profile := a.Profile()
	metrics := Score(opts)

	adj := Adjusted{
		ShouldAnimate:   true,
		Duration:        opts.Duration,
		DistanceScale:   1,
		SpeedMultiplier: 1,
		Level:           level,
		Metrics:         metrics,
	}

	switch {
	case profile.Disables(opts.Category):
		adj = a.suppress(adj, opts, "category "+opts.Category.String()+" disabled")
	case profile.DisableAutoplay && opts.Autoplay:
		adj = a.suppress(adj, opts, "autoplay disabled")
	case metrics.Intensity > profile.Threshold:
		adj = substitute(adj, opts, profile, "intensity above threshold")
	case profile.DisableFlashing && opts.Flashing:
		adj = substitute(adj, opts, profile, "flashing disabled")
	case profile.Disable3D && opts.Uses3D:
		adj = substitute(adj, opts, profile, "3d motion disabled")
	default:
		adj.DistanceScale = profile.DistanceScale
		adj.SpeedMultiplier = profile.SpeedMultiplier
		adj.Duration = scaleDuration(opts.Duration, profile.SpeedMultiplier)
		if profile.DistanceScale <= 0 {
			adj.ShouldAnimate = false
			adj.Duration = 0
			adj.Reason = "motion scaled to zero"
		} else if !adj.Unmodified() {
			adj.Reason = "scaled for " + level.String() + " sensitivity"
		}
	}

	if adj.Reason != "" {
		a.log.Debug("motion adapted",
			"level", level.String(),
			"category", opts.Category.String(),
			"intensity", metrics.Intensity,
			"reason", adj.Reason,
			"alternative", adj.Alternative.String(),
		)
	}
	return adj
}

func (a *Adapter) suppress(adj Adjusted, opts Options, reason string) Adjusted {
	if opts.Importance == ImportanceCritical {
		return substitute(adj, opts, a.Profile(), reason+", critical animation substituted")
	}
	adj.ShouldAnimate = false
	adj.Duration = 0
	adj.DistanceScale = 0
	adj.Reason = reason
	return adj
}

func substitute(adj Adjusted, opts Options, profile Profile, reason string) Adjusted {
	alt := AlternativeFor(opts.Category, opts.Importance)
	adj.Reason = reason
	adj.DistanceScale = 0
	if alt == AlternativeNone {
		adj.ShouldAnimate = false
		adj.Duration = 0
		return adj
	}
	adj.ShouldUseAlternative = true
	adj.Alternative = alt
	adj.SpeedMultiplier = profile.SpeedMultiplier
	adj.Duration = min(scaleDuration(opts.Duration, profile.SpeedMultiplier), maxAlternativeDuration)
	return adj
}

func scaleDuration(d time.Duration, speed float64) time.Duration {
	if speed <= 0 || d <= 0 {
		return d
	}
	return time.Duration(float64(d) / speed)
}
