package config

import (
	"fmt"
	"strings"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// ValidateScene performs structural and cross-field validation on an entire scene.
func ValidateScene(scene *Scene) error {
	if scene == nil {
		return mkerrors.NewConfigurationError("scene", "scene is nil", nil)
	}

	if err := validatorInstance().Struct(scene); err != nil {
		return convertValidationError("", err)
	}

	if len(scene.Sequences) == 0 && len(scene.Machines) == 0 {
		return mkerrors.NewConfigurationError("sequences", "scene must define at least one sequence or machine", nil)
	}

	targets, err := indexIDs("targets", scene.Targets, func(t Target) string { return t.ID })
	if err != nil {
		return err
	}
	trajectories, err := indexIDs("trajectories", scene.Trajectories, func(t Trajectory) string { return t.ID })
	if err != nil {
		return err
	}
	sequences, err := indexIDs("sequences", scene.Sequences, func(s Sequence) string { return s.ID })
	if err != nil {
		return err
	}
	if _, err := indexIDs("machines", scene.Machines, func(m Machine) string { return m.ID }); err != nil {
		return err
	}

	for i, traj := range scene.Trajectories {
		if err := validateTrajectory(fmt.Sprintf("trajectories[%d]", i), traj); err != nil {
			return err
		}
	}

	refs := references{targets: targets, trajectories: trajectories, sequences: sequences}

	for i, seq := range scene.Sequences {
		field := fieldForSequence(i, "steps")
		if err := validateSteps(field, seq.Steps); err != nil {
			return err
		}
		if err := walkSteps(field, seq.Steps, refs.checkStep); err != nil {
			return err
		}
	}

	for i, machine := range scene.Machines {
		if err := validateMachine(i, machine, refs); err != nil {
			return err
		}
	}

	if cycle := detectCycle(scene.Sequences); len(cycle) > 0 {
		return mkerrors.NewConfigurationError("sequences", fmt.Sprintf("include cycle detected: %s", strings.Join(cycle, " -> ")), nil)
	}

	return nil
}

func indexIDs[T any](field string, items []T, id func(T) string) (map[string]int, error) {
	index := make(map[string]int, len(items))
	for i, item := range items {
		key := id(item)
		if _, exists := index[key]; exists {
			return nil, mkerrors.NewConfigurationError(fmt.Sprintf("%s[%d].id", field, i), fmt.Sprintf("duplicate id %q", key), nil)
		}
		index[key] = i
	}
	return index, nil
}

type references struct {
	targets      map[string]int
	trajectories map[string]int
	sequences    map[string]int
}

func (r references) checkStep(field string, step Step) error {
	switch {
	case step.Animate != nil:
		if err := r.checkTarget(joinField(field, "animate.target"), step.Animate.Target, step.Line); err != nil {
			return err
		}
		return r.checkEffect(joinField(field, "animate"), step.Animate.Effect, step.Line)
	case step.Stagger != nil:
		for j, target := range step.Stagger.Targets {
			if err := r.checkTarget(fmt.Sprintf("%s.stagger.targets[%d]", field, j), target, step.Line); err != nil {
				return err
			}
		}
		return r.checkEffect(joinField(field, "stagger"), step.Stagger.Effect, step.Line)
	case step.Include != "":
		if _, ok := r.sequences[step.Include]; !ok {
			return mkerrors.NewConfigurationError(joinField(field, "include"), atLine(fmt.Sprintf("references unknown sequence %q", step.Include), step.Line), nil)
		}
	}
	return nil
}

func (r references) checkTarget(field, id string, line int) error {
	if _, ok := r.targets[id]; !ok {
		return mkerrors.NewConfigurationError(field, atLine(fmt.Sprintf("references unknown target %q", id), line), nil)
	}
	return nil
}

func (r references) checkEffect(field string, e Effect, line int) error {
	if e.Follow == "" {
		return nil
	}
	if _, ok := r.trajectories[e.Follow]; !ok {
		return mkerrors.NewConfigurationError(joinField(field, "follow"), atLine(fmt.Sprintf("references unknown trajectory %q", e.Follow), line), nil)
	}
	return nil
}

func validateTrajectory(field string, t Trajectory) error {
	switch t.Type {
	case "launch":
		if t.Speed <= 0 {
			return mkerrors.NewConfigurationError(joinField(field, "speed"), "launch trajectories need a positive speed", nil)
		}
	case "spiral":
		if t.Turns == 0 {
			return mkerrors.NewConfigurationError(joinField(field, "turns"), "spiral trajectories need a positive number of turns", nil)
		}
	case "projectile":
		if t.Duration == 0 {
			return mkerrors.NewConfigurationError(joinField(field, "duration"), "projectile trajectories need a positive duration", nil)
		}
	}
	return nil
}

func validateMachine(index int, m Machine, refs references) error {
	if err := refs.checkTarget(fieldForMachine(index, "target"), m.Target, 0); err != nil {
		return err
	}

	states, err := indexIDs(fieldForMachine(index, "states"), m.States, func(s State) string { return s.ID })
	if err != nil {
		return err
	}
	if _, ok := states[m.Initial]; !ok {
		return mkerrors.NewConfigurationError(fieldForMachine(index, "initial"), fmt.Sprintf("references unknown state %q", m.Initial), nil)
	}

	for i, state := range m.States {
		hooks := []struct {
			name   string
			effect *Effect
		}{{"enter", state.Enter}, {"exit", state.Exit}}
		for _, hook := range hooks {
			e := hook.effect
			if e == nil {
				continue
			}
			field := fieldForMachine(index, fmt.Sprintf("states[%d].%s", i, hook.name))
			if err := validateEffect(field, *e, 0); err != nil {
				return err
			}
			if err := refs.checkEffect(field, *e, 0); err != nil {
				return err
			}
		}
	}

	for i, tr := range m.Transitions {
		field := fieldForMachine(index, fmt.Sprintf("transitions[%d]", i))
		if _, ok := states[tr.From]; !ok && tr.From != "*" {
			return mkerrors.NewConfigurationError(joinField(field, "from"), fmt.Sprintf("references unknown state %q", tr.From), nil)
		}
		if _, ok := states[tr.To]; !ok {
			return mkerrors.NewConfigurationError(joinField(field, "to"), fmt.Sprintf("references unknown state %q", tr.To), nil)
		}
		if tr.Effect != nil {
			if err := validateEffect(joinField(field, "effect"), *tr.Effect, 0); err != nil {
				return err
			}
			if err := refs.checkEffect(joinField(field, "effect"), *tr.Effect, 0); err != nil {
				return err
			}
		}
	}
	return nil
}
