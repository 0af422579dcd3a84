package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// convertValidationError normalizes validator errors into configuration errors.
// The prefix locates the validated struct inside the scene document.
func convertValidationError(prefix string, err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := joinField(prefix, yamlishFieldName(ve))
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return mkerrors.NewConfigurationError(field, msg, err)
	}

	return mkerrors.NewConfigurationError(prefix, err.Error(), err)
}

// yamlishFieldName renders the validator namespace with yaml names. The
// root struct name and embedded structs appear as capitalised segments and
// are dropped.
func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || (part[0] >= 'A' && part[0] <= 'Z') {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, ".")
}

func joinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	case strings.HasPrefix(field, "["):
		return prefix + field
	default:
		return prefix + "." + field
	}
}

func fieldForSequence(index int, field string) string {
	return joinField(fmt.Sprintf("sequences[%d]", index), field)
}

func fieldForMachine(index int, field string) string {
	return joinField(fmt.Sprintf("machines[%d]", index), field)
}

func fieldForStep(prefix string, index int, field string) string {
	return joinField(fmt.Sprintf("%s[%d]", prefix, index), field)
}

// atLine appends the source line of a step to a message when it is known.
func atLine(msg string, line int) string {
	if line <= 0 {
		return msg
	}
	return fmt.Sprintf("%s (line %d)", msg, line)
}

// ParseDuration accepts Go duration strings ("250ms", "1.5s") and bare
// numbers, which are read as milliseconds. Negative durations are rejected.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	if ms, err := strconv.ParseFloat(raw, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("duration %q is negative", raw)
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q is negative", raw)
	}
	return d, nil
}

// MustDuration parses a duration already accepted by validation.
func MustDuration(raw string) time.Duration {
	d, err := ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}
