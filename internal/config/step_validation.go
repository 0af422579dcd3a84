package config

import (
	"fmt"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// ValidateStep checks a single step and, recursively, the steps nested in
// it. Field is the step's location in the scene, e.g. "sequences[0].steps[2]".
func ValidateStep(field string, step Step) error {
	kind := step.Kind()
	if kind == "" {
		return mkerrors.NewConfigurationError(field, atLine("step defines no kind", step.Line), nil)
	}

	if err := validatorInstance().Struct(step); err != nil {
		return convertValidationError(field, err)
	}

	switch kind {
	case "animate":
		return validateEffect(joinField(field, "animate"), step.Animate.Effect, step.Line)
	case "stagger":
		return validateEffect(joinField(field, "stagger"), step.Stagger.Effect, step.Line)
	case "parallel":
		return validateBranchList(joinField(field, "parallel"), step.Parallel, step.Line)
	case "group":
		return validateBranchList(joinField(field, "group"), step.Group, step.Line)
	case "if":
		if len(step.If.Then) == 0 && len(step.If.Else) == 0 {
			return mkerrors.NewConfigurationError(joinField(field, "if.then"), atLine("conditional needs at least one branch", step.Line), nil)
		}
		if err := validateSteps(joinField(field, "if.then"), step.If.Then); err != nil {
			return err
		}
		return validateSteps(joinField(field, "if.else"), step.If.Else)
	case "loop":
		return validateLoop(joinField(field, "loop"), step.Loop, step.Line)
	}
	return nil
}

func validateSteps(field string, steps []Step) error {
	for i, step := range steps {
		if err := ValidateStep(fmt.Sprintf("%s[%d]", field, i), step); err != nil {
			return err
		}
	}
	return nil
}

func validateBranchList(field string, steps []Step, line int) error {
	if len(steps) == 0 {
		return mkerrors.NewConfigurationError(field, atLine("needs at least one step", line), nil)
	}
	return validateSteps(field, steps)
}

func validateLoop(field string, loop *LoopStep, line int) error {
	sources := 0
	if loop.Items != nil {
		sources++
	}
	if loop.ItemsVar != "" {
		sources++
	}
	if loop.Repeat > 0 {
		sources++
	}
	if loop.Forever {
		sources++
	}
	if sources != 1 {
		return mkerrors.NewConfigurationError(field, atLine("loop must set exactly one of items, items_var, repeat or forever", line), nil)
	}
	return validateSteps(joinField(field, "steps"), loop.Steps)
}

// validateEffect checks the parts of an effect that struct tags cannot express.
func validateEffect(field string, e Effect, line int) error {
	kind := e.Kind()
	if kind == "" {
		return mkerrors.NewConfigurationError(field, atLine("effect must set exactly one of preset, to, spring, follow or set", line), nil)
	}

	switch kind {
	case "spring":
		if len(e.To) == 0 {
			return mkerrors.NewConfigurationError(joinField(field, "to"), atLine("spring effect needs target values", line), nil)
		}
		s := e.Spring
		if s.Stiffness > 0 && s.Tension > 0 {
			return mkerrors.NewConfigurationError(joinField(field, "spring"), atLine("set either stiffness or tension, not both", line), nil)
		}
		if s.Preset != "" && (s.Stiffness > 0 || s.Tension > 0) {
			return mkerrors.NewConfigurationError(joinField(field, "spring"), atLine("a preset cannot be combined with explicit parameters", line), nil)
		}
	case "tween":
		if len(e.To) == 0 {
			return mkerrors.NewConfigurationError(joinField(field, "to"), atLine("tween needs target values", line), nil)
		}
	case "set":
		if len(e.Set) == 0 {
			return mkerrors.NewConfigurationError(joinField(field, "set"), atLine("needs at least one property", line), nil)
		}
	}

	if e.From != nil && kind != "tween" && kind != "spring" {
		return mkerrors.NewConfigurationError(joinField(field, "from"), atLine(fmt.Sprintf("from is not supported by %s effects", kind), line), nil)
	}
	return nil
}

// walkSteps visits every step in the tree depth first, passing the step's
// field path. Walking stops at the first error returned by visit.
func walkSteps(field string, steps []Step, visit func(field string, step Step) error) error {
	for i, step := range steps {
		at := fmt.Sprintf("%s[%d]", field, i)
		if err := visit(at, step); err != nil {
			return err
		}

		var err error
		switch {
		case step.Parallel != nil:
			err = walkSteps(joinField(at, "parallel"), step.Parallel, visit)
		case step.Group != nil:
			err = walkSteps(joinField(at, "group"), step.Group, visit)
		case step.If != nil:
			if err = walkSteps(joinField(at, "if.then"), step.If.Then, visit); err == nil {
				err = walkSteps(joinField(at, "if.else"), step.If.Else, visit)
			}
		case step.Loop != nil:
			err = walkSteps(joinField(at, "loop.steps"), step.Loop.Steps, visit)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
