package errors

import (
	"fmt"
)

// ParseError represents a scene file decoding failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigurationError reports a malformed definition detected at build time:
// bad step trees, unresolvable target references, unknown preset names and
// degenerate numeric parameters. It is never produced while ticking.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

// NewConfigurationError constructs a ConfigurationError.
func NewConfigurationError(field, message string, err error) error {
	return &ConfigurationError{Field: field, Message: message, Err: err}
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InvalidTransitionError is returned by a strict state machine when an event
// has no matching transition from the current state.
type InvalidTransitionError struct {
	Machine string
	State   string
	Event   string
}

// NewInvalidTransitionError constructs an InvalidTransitionError.
func NewInvalidTransitionError(machine, state, event string) error {
	return &InvalidTransitionError{Machine: machine, State: state, Event: event}
}

func (e *InvalidTransitionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Machine != "" {
		return fmt.Sprintf("invalid transition [%s]: no transition for event %q from state %q", e.Machine, e.Event, e.State)
	}
	return fmt.Sprintf("invalid transition: no transition for event %q from state %q", e.Event, e.State)
}

// UnreachableTargetError reports that a launch solve has no real solution at
// the requested speed.
type UnreachableTargetError struct {
	Speed    float64
	MinSpeed float64
}

// NewUnreachableTargetError constructs an UnreachableTargetError.
func NewUnreachableTargetError(speed, minSpeed float64) error {
	return &UnreachableTargetError{Speed: speed, MinSpeed: minSpeed}
}

func (e *UnreachableTargetError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unreachable target: speed %.3f is below the minimum %.3f", e.Speed, e.MinSpeed)
}

// StepError represents a failure raised by a side-effecting sequence step.
type StepError struct {
	StepID string
	Err    error
}

// NewStepError constructs a StepError.
func NewStepError(stepID string, err error) error {
	return &StepError{StepID: stepID, Err: err}
}

func (e *StepError) Error() string {
	if e == nil {
		return ""
	}
	if e.StepID != "" {
		return fmt.Sprintf("step error on %s: %v", e.StepID, e.Err)
	}
	return fmt.Sprintf("step error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
