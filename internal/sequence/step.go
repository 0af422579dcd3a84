// Package sequence compiles declarative step trees (animate, wait, stagger,
// parallel, conditional, loop, set, call) into flat programs and plays them
// cooperatively, one host frame at a time.
package sequence

import (
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
)

// Step is one node of a sequence tree. The set of implementations is closed.
type Step interface {
	kind() Kind
}

// Forever as a Loop Repeat count loops until a break.
const Forever = -1

// Animate runs one effect against a named target.
type Animate struct {
	Target string
	Effect effect.Effect
}

// Wait is a pure delay.
type Wait struct {
	Duration time.Duration
}

// Stagger runs the same effect against several targets with increasing
// start offsets.
type Stagger struct {
	Targets   []string
	Effect    effect.Effect
	Delay     time.Duration
	Direction Direction
}

// Parallel starts every branch at once and completes when the slowest one
// does.
type Parallel struct {
	Branches [][]Step
}

// Conditional picks a branch when execution reaches it.
type Conditional struct {
	Predicate Predicate
	Then      []Step
	Else      []Step
}

// Loop replays Body once per item, binding Var to the item (or to the
// iteration index for Repeat loops). Items is evaluated when the loop starts;
// ItemsFrom takes precedence over Items. Repeat is used when neither is set.
type Loop struct {
	Var       string
	Items     []any
	ItemsFrom func(ctx *Context) []any
	Repeat    int
	Body      []Step
}

// SetVar assigns a context variable. Compute, when set, derives the value
// from the context at execution time.
type SetVar struct {
	Name    string
	Value   any
	Compute func(ctx *Context) any
}

// CallFunc is a side-effecting callback. Errors and panics are reported as
// step.failed events.
type CallFunc func(ctx *Context) error

// Call runs a callback.
type Call struct {
	Name string
	Fn   CallFunc
}

// Emit publishes a custom event on the sequence's bus.
type Emit struct {
	Event   string
	Payload map[string]any
}

func (Animate) kind() Kind     { return KindAnimate }
func (Wait) kind() Kind        { return KindWait }
func (Stagger) kind() Kind     { return KindStagger }
func (Parallel) kind() Kind    { return KindParallel }
func (Conditional) kind() Kind { return KindConditional }
func (Loop) kind() Kind        { return KindLoop }
func (SetVar) kind() Kind      { return KindSetVar }
func (Call) kind() Kind        { return KindCall }
func (Emit) kind() Kind        { return KindEmit }

// Builder assembles a step tree fluently.
type Builder struct {
	name  string
	steps []Step
}

// NewBuilder starts a named sequence.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Steps returns the steps added so far.
func (b *Builder) Steps() []Step {
	return append([]Step(nil), b.steps...)
}

// Step appends any step.
func (b *Builder) Step(s Step) *Builder {
	b.steps = append(b.steps, s)
	return b
}

// Animate appends an Animate step.
func (b *Builder) Animate(target string, e effect.Effect) *Builder {
	return b.Step(Animate{Target: target, Effect: e})
}

// Wait appends a delay.
func (b *Builder) Wait(d time.Duration) *Builder {
	return b.Step(Wait{Duration: d})
}

// Stagger appends a Stagger step.
func (b *Builder) Stagger(targets []string, e effect.Effect, delay time.Duration, dir Direction) *Builder {
	return b.Step(Stagger{Targets: targets, Effect: e, Delay: delay, Direction: dir})
}

// Parallel appends a Parallel step with one branch per argument.
func (b *Builder) Parallel(branches ...[]Step) *Builder {
	return b.Step(Parallel{Branches: branches})
}

// If appends a Conditional step.
func (b *Builder) If(p Predicate, then, otherwise []Step) *Builder {
	return b.Step(Conditional{Predicate: p, Then: then, Else: otherwise})
}

// Each appends a loop over items.
func (b *Builder) Each(varName string, items []any, body ...Step) *Builder {
	return b.Step(Loop{Var: varName, Items: items, Body: body})
}

// Repeat appends a counted loop; pass Forever to loop until a break.
func (b *Builder) Repeat(count int, varName string, body ...Step) *Builder {
	return b.Step(Loop{Var: varName, Repeat: count, Body: body})
}

// Set appends a SetVar step.
func (b *Builder) Set(name string, value any) *Builder {
	return b.Step(SetVar{Name: name, Value: value})
}

// Call appends a Call step.
func (b *Builder) Call(name string, fn CallFunc) *Builder {
	return b.Step(Call{Name: name, Fn: fn})
}

// Emit appends an Emit step.
func (b *Builder) Emit(event string, payload map[string]any) *Builder {
	return b.Step(Emit{Event: event, Payload: payload})
}

// Compile validates the tree against the known target names.
func (b *Builder) Compile(targets []string) (*Program, error) {
	return Compile(b.name, b.steps, targets)
}

// Build compiles the tree and binds it to targets.
func (b *Builder) Build(targets Targets, opts ...Option) (*Sequence, error) {
	program, err := b.Compile(targets.Names())
	if err != nil {
		return nil, err
	}
	return New(program, targets, opts...)
}

// Steps is a convenience for building branch lists.
func Steps(steps ...Step) []Step {
	return steps
}
