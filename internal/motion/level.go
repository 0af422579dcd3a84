// Package motion scores animation intensity and maps it, together with the
// user's sensitivity setting and the host's reduced-motion preference, to a
// playback policy: run unchanged, scale down, substitute a non-motion
// alternative, or suppress.
package motion

import (
	"fmt"
	"strings"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Level is a motion sensitivity setting. Levels are totally ordered: a higher
// level permits less motion.
type Level int

const (
	LevelNone Level = iota
	LevelVeryLow
	LevelLow
	LevelMedium
	LevelHigh
	LevelVeryHigh
	LevelMaximum
)

var levelNames = [...]string{
	LevelNone:     "none",
	LevelVeryLow:  "very-low",
	LevelLow:      "low",
	LevelMedium:   "medium",
	LevelHigh:     "high",
	LevelVeryHigh: "very-high",
	LevelMaximum:  "maximum",
}

// Levels lists every level in ascending order.
func Levels() []Level {
	return []Level{LevelNone, LevelVeryLow, LevelLow, LevelMedium, LevelHigh, LevelVeryHigh, LevelMaximum}
}

func (l Level) String() string {
	if l < LevelNone || l > LevelMaximum {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool {
	return l >= LevelNone && l <= LevelMaximum
}

// ParseLevel resolves a level name. Both "very-high" and "very_high" spellings
// are accepted.
func ParseLevel(name string) (Level, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for i, candidate := range levelNames {
		if candidate == key {
			return Level(i), nil
		}
	}
	return LevelNone, mkerrors.NewConfigurationError("motion.level", fmt.Sprintf("unknown sensitivity level %q", name), nil)
}

// Category classifies what an animation is for. Profiles disable whole
// categories at higher sensitivity levels.
type Category int

const (
	CategoryTransition Category = iota
	CategoryFeedback
	CategoryDecorative
	CategoryBackground
	CategoryLoading
	CategoryNavigation
	CategoryAttention
)

var categoryNames = [...]string{
	CategoryTransition: "transition",
	CategoryFeedback:   "feedback",
	CategoryDecorative: "decorative",
	CategoryBackground: "background",
	CategoryLoading:    "loading",
	CategoryNavigation: "navigation",
	CategoryAttention:  "attention",
}

func (c Category) String() string {
	if c < CategoryTransition || c > CategoryAttention {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory resolves a category name.
func ParseCategory(name string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range categoryNames {
		if candidate == key {
			return Category(i), nil
		}
	}
	return CategoryTransition, mkerrors.NewConfigurationError("motion.category", fmt.Sprintf("unknown category %q", name), nil)
}

// Importance describes how essential an animation is to understanding the UI.
type Importance int

const (
	ImportanceNormal Importance = iota
	ImportanceLow
	ImportanceHigh
	// ImportanceCritical marks animations that carry information; they are
	// replaced by an alternative instead of being suppressed.
	ImportanceCritical
)

func (i Importance) String() string {
	switch i {
	case ImportanceLow:
		return "low"
	case ImportanceNormal:
		return "normal"
	case ImportanceHigh:
		return "high"
	case ImportanceCritical:
		return "critical"
	default:
		return fmt.Sprintf("importance(%d)", int(i))
	}
}

// ParseImportance resolves an importance name. The empty string is normal.
func ParseImportance(name string) (Importance, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "normal":
		return ImportanceNormal, nil
	case "low":
		return ImportanceLow, nil
	case "high":
		return ImportanceHigh, nil
	case "critical", "essential":
		return ImportanceCritical, nil
	default:
		return ImportanceNormal, mkerrors.NewConfigurationError("motion.importance", fmt.Sprintf("unknown importance %q", name), nil)
	}
}

// Alternative is a non-motion substitute for an animation.
type Alternative int

const (
	AlternativeNone Alternative = iota
	AlternativeOpacityPulse
	AlternativeColorChange
	AlternativeStaticIcon
	AlternativeBorderHighlight
)

func (a Alternative) String() string {
	switch a {
	case AlternativeNone:
		return "none"
	case AlternativeOpacityPulse:
		return "opacity-pulse"
	case AlternativeColorChange:
		return "color-change"
	case AlternativeStaticIcon:
		return "static-icon"
	case AlternativeBorderHighlight:
		return "border-highlight"
	default:
		return fmt.Sprintf("alternative(%d)", int(a))
	}
}

// AlternativeFor returns the substitute used for a category. Decorative and
// background motion has no meaningful substitute unless it is critical.
func AlternativeFor(category Category, importance Importance) Alternative {
	switch category {
	case CategoryFeedback:
		return AlternativeColorChange
	case CategoryAttention:
		return AlternativeBorderHighlight
	case CategoryLoading:
		return AlternativeStaticIcon
	case CategoryTransition, CategoryNavigation:
		return AlternativeOpacityPulse
	default:
		if importance == ImportanceCritical {
			return AlternativeOpacityPulse
		}
		return AlternativeNone
	}
}
