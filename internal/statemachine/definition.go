// Package statemachine implements animated finite-state machines: named
// events select transitions, and each transition plays the old state's exit
// effect, the transition's own effect and the new state's enter effect
// before the state pointer moves.
package statemachine

import (
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

const (
	// Wildcard as a transition source matches any current state.
	Wildcard = "*"
	// TimeoutEvent is sent when a state's auto-advance timer elapses.
	TimeoutEvent = "timeout"
)

// Event triggers transitions. Payload is available to guards and actions.
type Event struct {
	Name    string
	Payload map[string]any
}

// Context is the machine's mutable variable store, shared by guards and
// side effects.
type Context struct {
	Vars map[string]any
}

// Get returns a variable.
func (c *Context) Get(name string) (any, bool) {
	v, ok := c.Vars[name]
	return v, ok
}

// Set stores a variable.
func (c *Context) Set(name string, value any) {
	if c.Vars == nil {
		c.Vars = make(map[string]any)
	}
	c.Vars[name] = value
}

// Guard must return true for its transition to be selected.
type Guard func(ctx *Context, event Event) bool

// Action is a transition side effect. It runs after the transition's effects
// finish and before the state pointer moves.
type Action func(ctx *Context, event Event)

// State is a node of the machine.
type State struct {
	ID    string
	Enter effect.Effect
	Exit  effect.Effect
	// Style is applied to the target when the state is entered.
	Style effect.Props
	// AutoAdvanceAfter sends TimeoutEvent after the machine has spent this
	// long in the state. Zero disables the timer.
	AutoAdvanceAfter time.Duration
}

// Transition moves the machine from From to To on Event.
type Transition struct {
	From        string
	To          string
	Event       string
	Effect      effect.Effect
	Guards      []Guard
	SideEffects []Action
	// Async starts all effects together and commits the state immediately
	// instead of waiting for them.
	Async bool
}

func (t Transition) allows(ctx *Context, event Event) bool {
	for _, g := range t.Guards {
		if g != nil && !g(ctx, event) {
			return false
		}
	}
	return true
}

// Definition is a validated, read-only machine description.
type Definition struct {
	name        string
	initial     string
	states      map[string]State
	order       []string
	transitions []Transition
}

// Name returns the machine name.
func (d *Definition) Name() string { return d.name }

// Initial returns the initial state id.
func (d *Definition) Initial() string { return d.initial }

// State returns a state by id.
func (d *Definition) State(id string) (State, bool) {
	s, ok := d.states[id]
	return s, ok
}

// States returns the state ids in declaration order.
func (d *Definition) States() []string {
	return append([]string(nil), d.order...)
}

// Transitions returns the transitions in declaration order.
func (d *Definition) Transitions() []Transition {
	return append([]Transition(nil), d.transitions...)
}

// Match selects the transition for event from state. Transitions declared
// with an exact source are tried before wildcard ones; within each group the
// first declared transition whose guards all pass wins.
func (d *Definition) Match(from string, ctx *Context, event Event) (Transition, bool) {
	for _, wildcard := range []bool{false, true} {
		for _, t := range d.transitions {
			if t.Event != event.Name {
				continue
			}
			if wildcard != (t.From == Wildcard) {
				continue
			}
			if !wildcard && t.From != from {
				continue
			}
			if t.allows(ctx, event) {
				return t, true
			}
		}
	}
	return Transition{}, false
}

// Builder assembles a Definition.
type Builder struct {
	name        string
	initial     string
	states      []State
	transitions []Transition
}

// NewBuilder starts a machine definition.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Initial sets the initial state.
func (b *Builder) Initial(id string) *Builder {
	b.initial = id
	return b
}

// State declares a state.
func (b *Builder) State(s State) *Builder {
	b.states = append(b.states, s)
	return b
}

// Transition declares a transition.
func (b *Builder) Transition(t Transition) *Builder {
	b.transitions = append(b.transitions, t)
	return b
}

// On is shorthand for a plain transition without effects.
func (b *Builder) On(from, event, to string) *Builder {
	return b.Transition(Transition{From: from, Event: event, To: to})
}

// Build validates the description.
func (b *Builder) Build() (*Definition, error) {
	def := &Definition{
		name:        b.name,
		initial:     b.initial,
		states:      make(map[string]State, len(b.states)),
		transitions: append([]Transition(nil), b.transitions...),
	}

	for i, s := range b.states {
		field := fmt.Sprintf("states[%d]", i)
		if s.ID == "" || s.ID == Wildcard {
			return nil, mkerrors.NewConfigurationError(field+".id", fmt.Sprintf("invalid state id %q", s.ID), nil)
		}
		if _, dup := def.states[s.ID]; dup {
			return nil, mkerrors.NewConfigurationError(field+".id", fmt.Sprintf("duplicate state %q", s.ID), nil)
		}
		if s.AutoAdvanceAfter < 0 {
			return nil, mkerrors.NewConfigurationError(field+".auto_advance_after", "must be non-negative", nil)
		}
		if err := validateEffect(field+".enter", s.Enter); err != nil {
			return nil, err
		}
		if err := validateEffect(field+".exit", s.Exit); err != nil {
			return nil, err
		}
		def.states[s.ID] = s
		def.order = append(def.order, s.ID)
	}

	if b.initial == "" {
		return nil, mkerrors.NewConfigurationError("initial", "an initial state is required", nil)
	}
	if _, ok := def.states[b.initial]; !ok {
		return nil, mkerrors.NewConfigurationError("initial", fmt.Sprintf("unknown state %q", b.initial), nil)
	}

	for i, t := range b.transitions {
		field := fmt.Sprintf("transitions[%d]", i)
		if t.Event == "" {
			return nil, mkerrors.NewConfigurationError(field+".event", "an event name is required", nil)
		}
		if _, ok := def.states[t.From]; !ok && t.From != Wildcard {
			return nil, mkerrors.NewConfigurationError(field+".from", fmt.Sprintf("unknown state %q", t.From), nil)
		}
		if _, ok := def.states[t.To]; !ok {
			return nil, mkerrors.NewConfigurationError(field+".to", fmt.Sprintf("unknown state %q", t.To), nil)
		}
		if err := validateEffect(field+".effect", t.Effect); err != nil {
			return nil, err
		}
	}
	return def, nil
}

func validateEffect(field string, e effect.Effect) error {
	if e == nil {
		return nil
	}
	if err := e.Validate(); err != nil {
		return mkerrors.NewConfigurationError(field, fmt.Sprintf("invalid effect: %v", err), err)
	}
	return nil
}
