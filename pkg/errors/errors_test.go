package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("scene.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "scene.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "scene.yaml:12")
}

func TestConfigurationErrorCarriesField(t *testing.T) {
	t.Parallel()

	err := NewConfigurationError("sequences[0].steps[1].target", "references unknown target \"card\"", nil)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "sequences[0].steps[1].target", cfgErr.Field)
	require.Contains(t, err.Error(), "unknown target")
}

func TestInvalidTransitionErrorNamesEventAndState(t *testing.T) {
	t.Parallel()

	err := NewInvalidTransitionError("button", "idle", "release")

	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, "idle", transitionErr.State)
	require.Contains(t, err.Error(), "release")
	require.Contains(t, err.Error(), "button")
}

func TestUnreachableTargetErrorReportsSpeeds(t *testing.T) {
	t.Parallel()

	err := NewUnreachableTargetError(3, 7.5)
	require.Contains(t, err.Error(), "3.000")
	require.Contains(t, err.Error(), "7.500")
}

func TestStepErrorIncludesStepContext(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("callback failed")
	err := NewStepError("intro/2", underlying)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "intro/2", stepErr.StepID)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestNilErrorsRenderEmpty(t *testing.T) {
	t.Parallel()

	var cfgErr *ConfigurationError
	require.Equal(t, "", cfgErr.Error())
	require.Nil(t, cfgErr.Unwrap())

	var stepErr *StepError
	require.Equal(t, "", stepErr.Error())
}
