package scene

import (
	"fmt"
	"reflect"

	"github.com/alexisbeaulieu97/motionkit/internal/actions"
	"github.com/alexisbeaulieu97/motionkit/internal/config"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
	"github.com/alexisbeaulieu97/motionkit/internal/trajectory"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// stepCompiler turns declared steps into sequence steps. Includes are
// inlined and groups at the top level flatten into their parent.
type stepCompiler struct {
	paths     map[string]trajectory.Path
	sequences map[string]config.Sequence
	actions   *actions.Registry
	including []string
}

func (c *stepCompiler) steps(field string, steps []config.Step) ([]sequence.Step, error) {
	var out []sequence.Step
	for i, step := range steps {
		compiled, err := c.step(fmt.Sprintf("%s[%d]", field, i), step)
		if err != nil {
			return nil, err
		}
		out = append(out, compiled...)
	}
	return out, nil
}

func (c *stepCompiler) step(field string, step config.Step) ([]sequence.Step, error) {
	switch step.Kind() {
	case "animate":
		e, err := BuildEffect(field+".animate", step.Animate.Effect, c.paths)
		if err != nil {
			return nil, err
		}
		return one(sequence.Animate{Target: step.Animate.Target, Effect: e})

	case "wait":
		d, err := config.ParseDuration(step.Wait)
		if err != nil {
			return nil, mkerrors.NewConfigurationError(field+".wait", err.Error(), err)
		}
		return one(sequence.Wait{Duration: d})

	case "stagger":
		st := step.Stagger
		e, err := BuildEffect(field+".stagger", st.Effect, c.paths)
		if err != nil {
			return nil, err
		}
		interval, err := config.ParseDuration(st.Interval)
		if err != nil {
			return nil, mkerrors.NewConfigurationError(field+".stagger.interval", err.Error(), err)
		}
		dir, err := sequence.ParseDirection(st.Direction)
		if err != nil {
			return nil, mkerrors.NewConfigurationError(field+".stagger.direction", err.Error(), err)
		}
		return one(sequence.Stagger{Targets: st.Targets, Effect: e, Delay: interval, Direction: dir})

	case "parallel":
		branches := make([][]sequence.Step, 0, len(step.Parallel))
		for i, branch := range step.Parallel {
			compiled, err := c.step(fmt.Sprintf("%s.parallel[%d]", field, i), branch)
			if err != nil {
				return nil, err
			}
			branches = append(branches, compiled)
		}
		return one(sequence.Parallel{Branches: branches})

	case "group":
		return c.steps(field+".group", step.Group)

	case "if":
		pred, err := BuildPredicate(step.If.Condition)
		if err != nil {
			return nil, mkerrors.NewConfigurationError(field+".if", err.Error(), err)
		}
		then, err := c.steps(field+".if.then", step.If.Then)
		if err != nil {
			return nil, err
		}
		otherwise, err := c.steps(field+".if.else", step.If.Else)
		if err != nil {
			return nil, err
		}
		return one(sequence.Conditional{Predicate: pred, Then: then, Else: otherwise})

	case "loop":
		return c.loop(field+".loop", step.Loop)

	case "set":
		return one(sequence.SetVar{Name: step.Set.Name, Value: step.Set.Value})

	case "call":
		fn, err := c.bind(field+".call.action", *step.Call)
		if err != nil {
			return nil, err
		}
		return one(sequence.Call{Name: step.Call.Action, Fn: fn})

	case "emit":
		return one(sequence.Emit{Event: step.Emit.Event, Payload: step.Emit.Payload})

	case "include":
		return c.include(field+".include", step.Include)
	}
	return nil, mkerrors.NewConfigurationError(field, "step defines no kind", nil)
}

func one(s sequence.Step) ([]sequence.Step, error) {
	return []sequence.Step{s}, nil
}

func (c *stepCompiler) loop(field string, l *config.LoopStep) ([]sequence.Step, error) {
	body, err := c.steps(field+".steps", l.Steps)
	if err != nil {
		return nil, err
	}

	loop := sequence.Loop{Var: l.Var, Body: body}
	switch {
	case l.Items != nil:
		loop.Items = l.Items
	case l.ItemsVar != "":
		name := l.ItemsVar
		loop.ItemsFrom = func(ctx *sequence.Context) []any {
			v, _ := ctx.Get(name)
			return toList(v)
		}
	case l.Forever:
		loop.Repeat = sequence.Forever
	default:
		loop.Repeat = l.Repeat
	}
	return one(loop)
}

func (c *stepCompiler) bind(field string, call config.CallStep) (sequence.CallFunc, error) {
	if c.actions == nil {
		return nil, mkerrors.NewConfigurationError(field, fmt.Sprintf("no action registry to resolve %q", call.Action), nil)
	}
	fn, err := c.actions.Bind(call.Action, call.Args)
	if err != nil {
		return nil, mkerrors.NewConfigurationError(field, err.Error(), err)
	}
	return fn, nil
}

func (c *stepCompiler) include(field, id string) ([]sequence.Step, error) {
	for _, active := range c.including {
		if active == id {
			return nil, mkerrors.NewConfigurationError(field, fmt.Sprintf("sequence %q includes itself", id), nil)
		}
	}
	seq, ok := c.sequences[id]
	if !ok {
		return nil, mkerrors.NewConfigurationError(field, fmt.Sprintf("references unknown sequence %q", id), nil)
	}

	c.including = append(c.including, id)
	defer func() { c.including = c.including[:len(c.including)-1] }()

	steps, err := c.steps(field, seq.Steps)
	if err != nil {
		return nil, err
	}
	if len(seq.Vars) == 0 {
		return steps, nil
	}

	// Included variables are assigned where the include runs.
	prelude := make([]sequence.Step, 0, len(seq.Vars)+len(steps))
	for _, name := range sortedKeys(seq.Vars) {
		prelude = append(prelude, sequence.SetVar{Name: name, Value: seq.Vars[name]})
	}
	return append(prelude, steps...), nil
}

// toList converts a context value into loop items. Non-slices yield a
// single item; nil yields none.
func toList(v any) []any {
	if v == nil {
		return nil
	}
	if items, ok := v.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// BuildPredicate compiles a condition. Without an operator, a condition with
// a value tests equality and one without tests truthiness.
func BuildPredicate(c config.Condition) (sequence.Predicate, error) {
	op := sequence.OpTruthy
	if c.Value != nil {
		op = sequence.OpEq
	}
	if c.Op != "" {
		parsed, err := sequence.ParseOp(c.Op)
		if err != nil {
			return nil, err
		}
		op = parsed
	}
	return sequence.Compare(c.Var, op, c.Value), nil
}
