package effect

import (
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/spring"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Preset names a stock effect of the kit.
type Preset int

const (
	PresetFadeIn Preset = iota
	PresetFadeOut
	PresetSlideUp
	PresetSlideDown
	PresetScaleIn
	PresetScaleOut
	PresetPulse
	PresetGlassReveal
)

const slideOffset = 24

type presetSpec struct {
	name     string
	duration time.Duration
	build    func(d time.Duration) Effect
}

var presetTable = [...]presetSpec{
	PresetFadeIn: {"fade-in", 300 * time.Millisecond, func(d time.Duration) Effect {
		return Tween{From: Props{"opacity": 0}, To: Props{"opacity": 1}, Duration: d, Easing: EaseOut}
	}},
	PresetFadeOut: {"fade-out", 300 * time.Millisecond, func(d time.Duration) Effect {
		return Tween{To: Props{"opacity": 0}, Duration: d, Easing: EaseIn}
	}},
	PresetSlideUp: {"slide-up", 400 * time.Millisecond, func(d time.Duration) Effect {
		return Tween{
			From: Props{"opacity": 0, "y": slideOffset}, To: Props{"opacity": 1, "y": 0},
			Duration: d, Easing: EaseOut,
		}
	}},
	PresetSlideDown: {"slide-down", 400 * time.Millisecond, func(d time.Duration) Effect {
		return Tween{
			From: Props{"opacity": 0, "y": -slideOffset}, To: Props{"opacity": 1, "y": 0},
			Duration: d, Easing: EaseOut,
		}
	}},
	PresetScaleIn: {"scale-in", 250 * time.Millisecond, func(d time.Duration) Effect {
		return Tween{
			From: Props{"opacity": 0, "scale": 0.9}, To: Props{"opacity": 1, "scale": 1},
			Duration: d, Easing: EaseOutBack,
		}
	}},
	PresetScaleOut: {"scale-out", 200 * time.Millisecond, func(d time.Duration) Effect {
		return Tween{To: Props{"opacity": 0, "scale": 0.9}, Duration: d, Easing: EaseIn}
	}},
	PresetPulse: {"pulse", 0, func(time.Duration) Effect {
		return SpringTo{
			From:   Props{"scale": 1.08},
			To:     Props{"scale": 1},
			Params: spring.PresetWobbly.Params(),
			Traits: Traits{Category: motion.CategoryAttention},
		}
	}},
	PresetGlassReveal: {"glass-reveal", 600 * time.Millisecond, func(d time.Duration) Effect {
		return Tween{
			From:     Props{"opacity": 0, "blur": 12, "saturate": 0.6},
			To:       Props{"opacity": 1, "blur": 0, "saturate": 1},
			Duration: d,
			Easing:   EaseInOut,
		}
	}},
}

// Presets lists every preset.
func Presets() []Preset {
	out := make([]Preset, len(presetTable))
	for i := range presetTable {
		out[i] = Preset(i)
	}
	return out
}

func (p Preset) valid() bool { return p >= 0 && int(p) < len(presetTable) }

func (p Preset) String() string {
	if !p.valid() {
		return fmt.Sprintf("preset(%d)", int(p))
	}
	return presetTable[p].name
}

// DefaultDuration is the preset's duration when none is requested. Spring
// presets report zero; their length follows from physics.
func (p Preset) DefaultDuration() time.Duration {
	if !p.valid() {
		return 0
	}
	return presetTable[p].duration
}

// Effect builds the preset. A non-positive duration uses the default.
func (p Preset) Effect(duration time.Duration) Effect {
	if !p.valid() {
		p = PresetFadeIn
	}
	if duration <= 0 {
		duration = presetTable[p].duration
	}
	return presetTable[p].build(duration)
}

// ParsePreset resolves a preset name; "fade-in", "fade_in" and "fadeIn" are
// equivalent.
func ParsePreset(name string) (Preset, error) {
	key := normalizeName(name)
	for i, spec := range presetTable {
		if normalizeName(spec.name) == key {
			return Preset(i), nil
		}
	}
	return PresetFadeIn, mkerrors.NewConfigurationError("effect.preset", fmt.Sprintf("unknown effect preset %q", name), nil)
}
