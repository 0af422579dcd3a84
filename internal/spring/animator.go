package spring

import (
	"sort"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/vec"
)

// Result is what one Animator tick reports. Completed is true on exactly one
// tick per completion; AtRest stays true afterwards until a retarget.
type Result struct {
	Value     float64
	Velocity  float64
	AtRest    bool
	Completed bool
}

// Animator drives one scalar spring toward its target.
type Animator struct {
	spring    *Spring
	state     State
	restTicks int
	atRest    bool
}

// Animate starts a scalar animation from `from` toward `to` with an initial velocity.
func (s *Spring) Animate(from, to, velocity float64) *Animator {
	return &Animator{spring: s, state: State{Value: from, Velocity: velocity, Target: to}}
}

// State returns the current physical state.
func (a *Animator) State() State { return a.state }

// AtRest reports whether the animator has completed.
func (a *Animator) AtRest() bool { return a.atRest }

// Retarget moves the goal mid-flight. Velocity and value are preserved.
func (a *Animator) Retarget(target float64) {
	if target == a.state.Target && a.atRest {
		return
	}
	a.state.Target = target
	a.restTicks = 0
	a.atRest = false
}

// Tick advances the spring by dt.
func (a *Animator) Tick(dt time.Duration) Result {
	if a.atRest {
		return Result{Value: a.state.Value, AtRest: true}
	}
	a.state = a.spring.Step(a.state, dt)

	if a.spring.AtRest(a.state) {
		a.restTicks++
	} else {
		a.restTicks = 0
	}

	if a.restTicks >= restTicksRequired {
		a.state.Value = a.state.Target
		a.state.Velocity = 0
		a.atRest = true
		return Result{Value: a.state.Value, AtRest: true, Completed: true}
	}
	return Result{Value: a.state.Value, Velocity: a.state.Velocity}
}

// Finish jumps to the target and marks the animator at rest.
func (a *Animator) Finish() float64 {
	a.state.Value = a.state.Target
	a.state.Velocity = 0
	a.atRest = true
	return a.state.Value
}

// VectorAnimator solves each axis as an independent scalar spring sharing
// the same parameters.
type VectorAnimator struct {
	axes [3]*Animator
}

// VectorResult is the per-tick output of a VectorAnimator.
type VectorResult struct {
	Position  vec.Vector3
	Velocity  vec.Vector3
	AtRest    bool
	Completed bool
}

// AnimateVector starts a vector animation.
func (s *Spring) AnimateVector(from, to, velocity vec.Vector3) *VectorAnimator {
	va := &VectorAnimator{}
	for i := range va.axes {
		va.axes[i] = s.Animate(from.Axis(i), to.Axis(i), velocity.Axis(i))
	}
	return va
}

// Retarget moves the goal of every axis.
func (v *VectorAnimator) Retarget(target vec.Vector3) {
	for i, axis := range v.axes {
		axis.Retarget(target.Axis(i))
	}
}

// Tick advances all axes; the vector completes once every axis is at rest.
func (v *VectorAnimator) Tick(dt time.Duration) VectorResult {
	wasAtRest := v.AtRest()
	var out VectorResult
	for i, axis := range v.axes {
		r := axis.Tick(dt)
		out.Position = out.Position.WithAxis(i, r.Value)
		out.Velocity = out.Velocity.WithAxis(i, r.Velocity)
	}
	out.AtRest = v.AtRest()
	out.Completed = out.AtRest && !wasAtRest
	return out
}

// AtRest reports whether every axis has completed.
func (v *VectorAnimator) AtRest() bool {
	for _, axis := range v.axes {
		if !axis.AtRest() {
			return false
		}
	}
	return true
}

// Group animates named properties (x, y, scale, rotation...) as decoupled
// springs.
type Group struct {
	spring  *Spring
	members map[string]*Animator
	done    bool
}

// GroupResult is the per-tick output of a Group.
type GroupResult struct {
	Values    map[string]float64
	AtRest    bool
	Completed bool
}

// NewGroup creates an empty property group.
func (s *Spring) NewGroup() *Group {
	return &Group{spring: s, members: make(map[string]*Animator)}
}

// Set starts or retargets the spring for a property. A new property starts
// from `from` at rest; an existing one keeps its value and velocity.
func (g *Group) Set(property string, from, to float64) {
	if a, ok := g.members[property]; ok {
		a.Retarget(to)
	} else {
		g.members[property] = g.spring.Animate(from, to, 0)
	}
	g.done = false
}

// Properties returns the property names in sorted order.
func (g *Group) Properties() []string {
	names := make([]string, 0, len(g.members))
	for name := range g.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tick advances every property spring by dt.
func (g *Group) Tick(dt time.Duration) GroupResult {
	out := GroupResult{Values: make(map[string]float64, len(g.members)), AtRest: true}
	for _, name := range g.Properties() {
		r := g.members[name].Tick(dt)
		out.Values[name] = r.Value
		if !r.AtRest {
			out.AtRest = false
		}
	}
	if out.AtRest && !g.done {
		g.done = true
		out.Completed = true
	}
	return out
}

// Finish snaps every property to its target.
func (g *Group) Finish() map[string]float64 {
	out := make(map[string]float64, len(g.members))
	for name, a := range g.members {
		out[name] = a.Finish()
	}
	g.done = true
	return out
}
