// Package effect describes animations applied to a target's numeric
// properties: tweens, springs, path following, instant sets and the
// non-motion alternatives substituted for motion-sensitive users.
package effect

import (
	"fmt"
	"maps"
	"math"
	"slices"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Props maps property names (opacity, x, y, scale, rotate, blur...) to values.
type Props map[string]float64

// Clone returns an independent copy. Cloning nil yields an empty map.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	maps.Copy(out, p)
	return out
}

// Merge returns a copy of p overlaid with o.
func (p Props) Merge(o Props) Props {
	out := p.Clone()
	maps.Copy(out, o)
	return out
}

// Keys returns the property names in sorted order.
func (p Props) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Value returns the property or its rest default when absent.
func (p Props) Value(name string) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return DefaultValue(name)
}

var multiplicative = map[string]bool{
	"opacity":  true,
	"scale":    true,
	"scaleX":   true,
	"scaleY":   true,
	"saturate": true,
}

// DefaultValue is the identity value of a property: 1 for multiplicative
// properties such as opacity and scale, 0 for everything else.
func DefaultValue(name string) float64 {
	if multiplicative[name] {
		return 1
	}
	return 0
}

var positional = map[string]bool{
	"x": true, "y": true, "z": true,
	"translateX": true, "translateY": true, "translateZ": true,
}

var transforms = map[string]bool{
	"x": true, "y": true, "z": true,
	"translateX": true, "translateY": true, "translateZ": true,
	"scale": true, "scaleX": true, "scaleY": true,
	"rotate": true, "rotateX": true, "rotateY": true, "rotateZ": true,
	"skewX": true, "skewY": true,
}

var depth = map[string]bool{
	"z": true, "translateZ": true, "rotateX": true, "rotateY": true,
}

// IsTransform reports whether a property moves or deforms the target, as
// opposed to changing its appearance in place.
func IsTransform(name string) bool {
	return transforms[name]
}

// motionShape summarises the movement between two property sets.
type motionShape struct {
	distance   float64
	transforms int
	uses3D     bool
}

func shapeOf(from, to Props) motionShape {
	var shape motionShape
	for name, target := range to {
		delta := target - from.Value(name)
		if delta < 0 {
			delta = -delta
		}
		if delta == 0 || !transforms[name] {
			continue
		}
		shape.transforms++
		if positional[name] {
			shape.distance = max(shape.distance, delta)
		}
		if depth[name] {
			shape.uses3D = true
		}
	}
	return shape
}

// scaleToward moves every transform property of from toward to, keeping
// only the given fraction of the displacement.
func scaleToward(from, to Props, fraction float64) Props {
	if fraction == 1 {
		return from
	}
	out := from.Clone()
	for name, target := range to {
		if !transforms[name] {
			continue
		}
		out[name] = target + (from.Value(name)-target)*fraction
	}
	return out
}

func validateProps(field string, p Props) error {
	for _, name := range p.Keys() {
		v := p[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return mkerrors.NewConfigurationError(field+"."+name, fmt.Sprintf("must be finite, got %v", v), nil)
		}
	}
	return nil
}
