package spring

import (
	"fmt"
	"math"
	"strings"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Params is the canonical physical description of a damped oscillator.
// Damping is the viscous coefficient c in a = -k(x-target)/m - c*v/m.
type Params struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

// Regime classifies a spring by its damping ratio.
type Regime int

const (
	Underdamped Regime = iota
	CriticallyDamped
	Overdamped
)

func (r Regime) String() string {
	switch r {
	case Underdamped:
		return "underdamped"
	case CriticallyDamped:
		return "critical"
	case Overdamped:
		return "overdamped"
	default:
		return "unknown"
	}
}

const criticalTolerance = 1e-9

// CriticalDamping returns the damping coefficient 2*sqrt(k*m) at which the
// spring stops oscillating.
func CriticalDamping(mass, stiffness float64) float64 {
	return 2 * math.Sqrt(stiffness*mass)
}

// FromDampingRatio converts a (mass, stiffness, ratio) description into
// canonical Params.
func FromDampingRatio(mass, stiffness, ratio float64) (Params, error) {
	if ratio < 0 || !finite(ratio) {
		return Params{}, mkerrors.NewConfigurationError("damping_ratio", fmt.Sprintf("must be a finite non-negative number, got %v", ratio), nil)
	}
	p := Params{Mass: mass, Stiffness: stiffness, Damping: ratio * CriticalDamping(mass, stiffness)}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// FromTensionFriction converts the unit-mass tension/friction description used
// by many UI animation libraries into canonical Params.
func FromTensionFriction(tension, friction float64) (Params, error) {
	p := Params{Mass: 1, Stiffness: tension, Damping: friction}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate rejects parameters that would produce NaNs or never converge.
func (p Params) Validate() error {
	switch {
	case !finite(p.Mass) || !finite(p.Stiffness) || !finite(p.Damping):
		return mkerrors.NewConfigurationError("spring", "parameters must be finite", nil)
	case p.Mass <= 0:
		return mkerrors.NewConfigurationError("spring.mass", fmt.Sprintf("must be positive, got %v", p.Mass), nil)
	case p.Stiffness <= 0:
		return mkerrors.NewConfigurationError("spring.stiffness", fmt.Sprintf("must be positive, got %v", p.Stiffness), nil)
	case p.Damping < 0:
		return mkerrors.NewConfigurationError("spring.damping", fmt.Sprintf("must be non-negative, got %v", p.Damping), nil)
	}
	return nil
}

// DampingRatio returns zeta = c / (2*sqrt(k*m)).
func (p Params) DampingRatio() float64 {
	critical := CriticalDamping(p.Mass, p.Stiffness)
	if critical == 0 {
		return 0
	}
	return p.Damping / critical
}

// AngularFrequency returns the undamped natural frequency sqrt(k/m) in rad/s.
func (p Params) AngularFrequency() float64 {
	if p.Mass <= 0 {
		return 0
	}
	return math.Sqrt(p.Stiffness / p.Mass)
}

// TensionFriction returns the unit-mass equivalent of p.
func (p Params) TensionFriction() (tension, friction float64) {
	return p.Stiffness / p.Mass, p.Damping / p.Mass
}

// Regime reports whether the spring oscillates.
func (p Params) Regime() Regime {
	ratio := p.DampingRatio()
	switch {
	case math.Abs(ratio-1) < criticalTolerance:
		return CriticallyDamped
	case ratio < 1:
		return Underdamped
	default:
		return Overdamped
	}
}

// Preset names a tuned spring configuration.
type Preset int

const (
	PresetDefault Preset = iota
	PresetGentle
	PresetWobbly
	PresetStiff
	PresetSlow
	PresetMolasses
)

type presetEntry struct {
	name     string
	tension  float64
	friction float64
}

var presetTable = map[Preset]presetEntry{
	PresetDefault:  {name: "default", tension: 170, friction: 26},
	PresetGentle:   {name: "gentle", tension: 120, friction: 14},
	PresetWobbly:   {name: "wobbly", tension: 180, friction: 12},
	PresetStiff:    {name: "stiff", tension: 210, friction: 20},
	PresetSlow:     {name: "slow", tension: 280, friction: 60},
	PresetMolasses: {name: "molasses", tension: 280, friction: 120},
}

// Presets lists every preset in declaration order.
func Presets() []Preset {
	return []Preset{PresetDefault, PresetGentle, PresetWobbly, PresetStiff, PresetSlow, PresetMolasses}
}

func (p Preset) String() string {
	if entry, ok := presetTable[p]; ok {
		return entry.name
	}
	return fmt.Sprintf("preset(%d)", int(p))
}

// Params resolves the preset into canonical parameters.
func (p Preset) Params() Params {
	entry, ok := presetTable[p]
	if !ok {
		entry = presetTable[PresetDefault]
	}
	return Params{Mass: 1, Stiffness: entry.tension, Damping: entry.friction}
}

// ParsePreset resolves a preset by name, rejecting unknown names.
func ParsePreset(name string) (Preset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range Presets() {
		if presetTable[p].name == key {
			return p, nil
		}
	}
	return 0, mkerrors.NewConfigurationError("spring.preset", fmt.Sprintf("unknown spring preset %q", name), nil)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
