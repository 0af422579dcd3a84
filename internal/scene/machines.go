package scene

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/motionkit/internal/actions"
	"github.com/alexisbeaulieu97/motionkit/internal/config"
	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
	"github.com/alexisbeaulieu97/motionkit/internal/trajectory"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// BuildDefinition converts a machine declaration into a definition. Guards
// read machine variables; event payload fields are visible as "event.<key>".
func BuildDefinition(field string, m config.Machine, paths map[string]trajectory.Path, registry *actions.Registry, log *logger.Logger) (*statemachine.Definition, error) {
	b := statemachine.NewBuilder(m.ID).Initial(m.Initial)

	for i, st := range m.States {
		stateField := fmt.Sprintf("%s.states[%d]", field, i)
		state := statemachine.State{ID: st.ID, Style: effect.Props(st.Style)}

		var err error
		if state.Enter, err = optionalEffect(stateField+".enter", st.Enter, paths); err != nil {
			return nil, err
		}
		if state.Exit, err = optionalEffect(stateField+".exit", st.Exit, paths); err != nil {
			return nil, err
		}
		if state.AutoAdvanceAfter, err = config.ParseDuration(st.AutoAdvance); err != nil {
			return nil, mkerrors.NewConfigurationError(stateField+".auto_advance", err.Error(), err)
		}
		b.State(state)
	}

	for i, tr := range m.Transitions {
		trField := fmt.Sprintf("%s.transitions[%d]", field, i)
		t := statemachine.Transition{From: tr.From, To: tr.To, Event: tr.Event, Async: tr.Async}

		var err error
		if t.Effect, err = optionalEffect(trField+".effect", tr.Effect, paths); err != nil {
			return nil, err
		}

		for j, cond := range tr.Guards {
			pred, err := BuildPredicate(cond)
			if err != nil {
				return nil, mkerrors.NewConfigurationError(fmt.Sprintf("%s.guards[%d]", trField, j), err.Error(), err)
			}
			t.Guards = append(t.Guards, guard(pred))
		}

		for j, call := range tr.Actions {
			if registry == nil {
				return nil, mkerrors.NewConfigurationError(fmt.Sprintf("%s.actions[%d]", trField, j), fmt.Sprintf("no action registry to resolve %q", call.Action), nil)
			}
			fn, err := registry.Bind(call.Action, call.Args)
			if err != nil {
				return nil, mkerrors.NewConfigurationError(fmt.Sprintf("%s.actions[%d].action", trField, j), err.Error(), err)
			}
			t.SideEffects = append(t.SideEffects, sideEffect(call.Action, fn, log))
		}

		b.Transition(t)
	}

	return b.Build()
}

func optionalEffect(field string, e *config.Effect, paths map[string]trajectory.Path) (effect.Effect, error) {
	if e == nil {
		return nil, nil
	}
	return BuildEffect(field, *e, paths)
}

const eventPrefix = "event."

// eventContext exposes machine variables and the event payload to sequence
// predicates and actions. Writes and deletions reach the machine's variables.
func eventContext(ctx *statemachine.Context, event statemachine.Event) *sequence.Context {
	if len(event.Payload) == 0 {
		return &sequence.Context{Vars: ctx.Vars}
	}
	vars := make(map[string]any, len(ctx.Vars)+len(event.Payload))
	for k, v := range ctx.Vars {
		vars[k] = v
	}
	for k, v := range event.Payload {
		vars[eventPrefix+k] = v
	}
	return &sequence.Context{Vars: vars}
}

func guard(pred sequence.Predicate) statemachine.Guard {
	return func(ctx *statemachine.Context, event statemachine.Event) bool {
		return pred(eventContext(ctx, event))
	}
}

func sideEffect(name string, fn sequence.CallFunc, log *logger.Logger) statemachine.Action {
	return func(ctx *statemachine.Context, event statemachine.Event) {
		sctx := eventContext(ctx, event)
		err := fn(sctx)
		if len(event.Payload) > 0 {
			for k, v := range sctx.Vars {
				if !strings.HasPrefix(k, eventPrefix) {
					ctx.Set(k, v)
				}
			}
			for k := range ctx.Vars {
				if _, ok := sctx.Vars[k]; !ok {
					delete(ctx.Vars, k)
				}
			}
		}
		if err != nil {
			log.Warn("transition action failed", "action", name, "event", event.Name, "error", err)
		}
	}
}
