package sequence

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Direction orders stagger start offsets.
type Direction int

const (
	// DirectionNormal starts targets in declaration order.
	DirectionNormal Direction = iota
	// DirectionReverse starts the last target first.
	DirectionReverse
	// DirectionCenter starts from the middle and works outward.
	DirectionCenter
	// DirectionEdges starts from both ends and works inward.
	DirectionEdges
)

var directionNames = [...]string{"normal", "reverse", "center", "edges"}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool { return d >= 0 && int(d) < len(directionNames) }

// ParseDirection resolves a direction name. The empty string is normal.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "normal", "forward":
		return DirectionNormal, nil
	case "reverse", "backward":
		return DirectionReverse, nil
	case "center", "from-center":
		return DirectionCenter, nil
	case "edges", "from-edges":
		return DirectionEdges, nil
	}
	return DirectionNormal, fmt.Errorf("unknown stagger direction %q", name)
}

// StaggerOffsets returns the start offset of each of n targets. Offsets are
// multiples of delay by index distance from the pivot the direction picks;
// the earliest target always starts at zero.
func StaggerOffsets(n int, delay time.Duration, dir Direction) []time.Duration {
	if n <= 0 {
		return nil
	}
	offsets := make([]time.Duration, n)
	center := float64(n-1) / 2
	minDist, maxDist := math.Inf(1), 0.0
	for i := range n {
		d := math.Abs(float64(i) - center)
		minDist = math.Min(minDist, d)
		maxDist = math.Max(maxDist, d)
	}
	for i := range n {
		var steps float64
		switch dir {
		case DirectionReverse:
			steps = float64(n - 1 - i)
		case DirectionCenter:
			steps = math.Abs(float64(i)-center) - minDist
		case DirectionEdges:
			steps = maxDist - math.Abs(float64(i)-center)
		default:
			steps = float64(i)
		}
		offsets[i] = time.Duration(steps * float64(delay))
	}
	return offsets
}

func scaleOffsets(offsets []time.Duration, speed float64) []time.Duration {
	if speed <= 0 || speed == 1 {
		return offsets
	}
	out := make([]time.Duration, len(offsets))
	for i, o := range offsets {
		out[i] = time.Duration(float64(o) / speed)
	}
	return out
}
