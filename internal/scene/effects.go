package scene

import (
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/config"
	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/spring"
	"github.com/alexisbeaulieu97/motionkit/internal/trajectory"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

const (
	// DefaultTweenDuration applies to tweens declared without a duration.
	DefaultTweenDuration = 300 * time.Millisecond
	// DefaultFollowDuration applies to path follows declared without a duration.
	DefaultFollowDuration = time.Second
)

// BuildEffect converts an effect declaration. Paths resolves follow references.
func BuildEffect(field string, e config.Effect, paths map[string]trajectory.Path) (effect.Effect, error) {
	duration, err := config.ParseDuration(e.Duration)
	if err != nil {
		return nil, mkerrors.NewConfigurationError(field+".duration", err.Error(), err)
	}
	delay, err := config.ParseDuration(e.Delay)
	if err != nil {
		return nil, mkerrors.NewConfigurationError(field+".delay", err.Error(), err)
	}
	easing, err := effect.ParseEasing(e.Easing)
	if err != nil {
		return nil, err
	}
	traits, err := buildTraits(e)
	if err != nil {
		return nil, err
	}

	var out effect.Effect
	switch e.Kind() {
	case "preset":
		preset, err := effect.ParsePreset(e.Preset)
		if err != nil {
			return nil, err
		}
		out = withTraits(preset.Effect(duration), e, traits, delay)
	case "tween":
		if duration <= 0 {
			duration = DefaultTweenDuration
		}
		out = effect.Tween{From: e.From, To: e.To, Duration: duration, Delay: delay, Easing: easing, Traits: traits}
	case "spring":
		params, err := springParams(e.Spring)
		if err != nil {
			return nil, mkerrors.NewConfigurationError(field+".spring", err.Error(), err)
		}
		integrator := spring.IntegratorRK4
		if e.Spring.Integrator != "" {
			if integrator, err = spring.ParseIntegrator(e.Spring.Integrator); err != nil {
				return nil, err
			}
		}
		out = effect.SpringTo{From: e.From, To: e.To, Params: params, Integrator: integrator, Traits: traits}
	case "follow":
		path, ok := paths[e.Follow]
		if !ok {
			return nil, mkerrors.NewConfigurationError(field+".follow", fmt.Sprintf("references unknown trajectory %q", e.Follow), nil)
		}
		if duration <= 0 {
			duration = DefaultFollowDuration
		}
		out = effect.Follow{Path: path, Duration: duration, Easing: easing, Traits: traits}
	case "set":
		out = effect.Set{To: e.Set}
	default:
		return nil, mkerrors.NewConfigurationError(field, "effect must set exactly one of preset, to, spring, follow or set", nil)
	}

	if err := out.Validate(); err != nil {
		return nil, mkerrors.NewConfigurationError(field, err.Error(), err)
	}
	return out, nil
}

func buildTraits(e config.Effect) (effect.Traits, error) {
	traits := effect.Traits{
		Flashing:       e.Flashing,
		Autoplay:       e.Autoplay,
		Looping:        e.Looping,
		ScreenCoverage: e.ScreenCoverage,
	}
	if e.Category != "" {
		category, err := motion.ParseCategory(e.Category)
		if err != nil {
			return traits, err
		}
		traits.Category = category
	}
	importance, err := motion.ParseImportance(e.Importance)
	if err != nil {
		return traits, err
	}
	traits.Importance = importance
	return traits, nil
}

// withTraits copies declared traits onto a preset-built effect.
func withTraits(built effect.Effect, decl config.Effect, traits effect.Traits, delay time.Duration) effect.Effect {
	switch v := built.(type) {
	case effect.Tween:
		v.Traits = mergeTraits(v.Traits, decl, traits)
		v.Delay += delay
		return v
	case effect.SpringTo:
		v.Traits = mergeTraits(v.Traits, decl, traits)
		return v
	}
	return built
}

// mergeTraits keeps the preset's classification unless the declaration
// overrides it.
func mergeTraits(base effect.Traits, decl config.Effect, declared effect.Traits) effect.Traits {
	if decl.Category != "" {
		base.Category = declared.Category
	}
	if decl.Importance != "" {
		base.Importance = declared.Importance
	}
	base.Flashing = base.Flashing || declared.Flashing
	base.Autoplay = base.Autoplay || declared.Autoplay
	base.Looping = base.Looping || declared.Looping
	if declared.ScreenCoverage > 0 {
		base.ScreenCoverage = declared.ScreenCoverage
	}
	return base
}

func springParams(s *config.Spring) (spring.Params, error) {
	var (
		params spring.Params
		err    error
	)
	switch {
	case s.Tension > 0:
		params, err = spring.FromTensionFriction(s.Tension, s.Friction)
	case s.Stiffness > 0:
		mass := s.Mass
		if mass == 0 {
			mass = 1
		}
		ratio := s.DampingRatio
		if ratio == 0 {
			ratio = 1
		}
		params, err = spring.FromDampingRatio(mass, s.Stiffness, ratio)
	default:
		preset := spring.PresetDefault
		if s.Preset != "" {
			if preset, err = spring.ParsePreset(s.Preset); err != nil {
				return spring.Params{}, err
			}
		}
		params = preset.Params()
		if s.Mass > 0 {
			params.Mass = s.Mass
		}
	}
	if err != nil {
		return spring.Params{}, err
	}
	return params, params.Validate()
}
