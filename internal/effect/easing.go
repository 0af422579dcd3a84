package effect

import (
	"fmt"
	"math"
	"strings"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Easing is a closed set of timing curves.
type Easing int

const (
	EaseLinear Easing = iota
	EaseIn
	EaseOut
	EaseInOut
	EaseOutBack
	EaseOutBounce
)

var easingNames = [...]string{
	EaseLinear:    "linear",
	EaseIn:        "ease-in",
	EaseOut:       "ease-out",
	EaseInOut:     "ease-in-out",
	EaseOutBack:   "ease-out-back",
	EaseOutBounce: "ease-out-bounce",
}

var easingFuncs = [...]func(float64) float64{
	EaseLinear:    func(u float64) float64 { return u },
	EaseIn:        func(u float64) float64 { return u * u * u },
	EaseOut:       func(u float64) float64 { return 1 - math.Pow(1-u, 3) },
	EaseInOut:     easeInOutCubic,
	EaseOutBack:   easeOutBack,
	EaseOutBounce: easeOutBounce,
}

func (e Easing) String() string {
	if e < EaseLinear || e > EaseOutBounce {
		return fmt.Sprintf("easing(%d)", int(e))
	}
	return easingNames[e]
}

// Ease maps linear progress u in [0,1] to eased progress. Input outside the
// unit interval is clamped; unknown easings fall back to linear.
func (e Easing) Ease(u float64) float64 {
	switch {
	case u <= 0:
		return 0
	case u >= 1:
		return 1
	}
	if e < EaseLinear || e > EaseOutBounce {
		return u
	}
	return easingFuncs[e](u)
}

// Easings lists every easing.
func Easings() []Easing {
	return []Easing{EaseLinear, EaseIn, EaseOut, EaseInOut, EaseOutBack, EaseOutBounce}
}

// ParseEasing resolves an easing name. The empty string is ease-out.
func ParseEasing(name string) (Easing, error) {
	key := normalizeName(name)
	if key == "" {
		return EaseOut, nil
	}
	for i, candidate := range easingNames {
		if normalizeName(candidate) == key {
			return Easing(i), nil
		}
	}
	return EaseLinear, mkerrors.NewConfigurationError("easing", fmt.Sprintf("unknown easing %q", name), nil)
}

// normalizeName folds "fade-in", "fade_in" and "fadeIn" to the same key.
func normalizeName(name string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}

func easeInOutCubic(u float64) float64 {
	if u < 0.5 {
		return 4 * u * u * u
	}
	return 1 - math.Pow(-2*u+2, 3)/2
}

func easeOutBack(u float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(u-1, 3) + c1*math.Pow(u-1, 2)
}

func easeOutBounce(u float64) float64 {
	const n1 = 7.5625
	const d1 = 2.75
	switch {
	case u < 1/d1:
		return n1 * u * u
	case u < 2/d1:
		u -= 1.5 / d1
		return n1*u*u + 0.75
	case u < 2.5/d1:
		u -= 2.25 / d1
		return n1*u*u + 0.9375
	default:
		u -= 2.625 / d1
		return n1*u*u + 0.984375
	}
}
