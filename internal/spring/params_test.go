package spring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

func TestParameterisationsReconcile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		mass      float64
		stiffness float64
		ratio     float64
	}{
		{name: "underdamped", mass: 1, stiffness: 170, ratio: 0.4},
		{name: "critical", mass: 2, stiffness: 300, ratio: 1},
		{name: "overdamped", mass: 0.5, stiffness: 1000, ratio: 2.5},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fromRatio, err := FromDampingRatio(tc.mass, tc.stiffness, tc.ratio)
			require.NoError(t, err)

			tension, friction := fromRatio.TensionFriction()
			fromTF, err := FromTensionFriction(tension, friction)
			require.NoError(t, err)

			require.InDelta(t, tc.ratio, fromRatio.DampingRatio(), 1e-12)
			require.InDelta(t, fromRatio.DampingRatio(), fromTF.DampingRatio(), 1e-12)
			require.InDelta(t, 2*math.Sqrt(tc.stiffness*tc.mass), CriticalDamping(tc.mass, tc.stiffness), 1e-12)
		})
	}
}

func TestRegimeClassification(t *testing.T) {
	t.Parallel()

	under, err := FromDampingRatio(1, 100, 0.5)
	require.NoError(t, err)
	critical, err := FromDampingRatio(1, 100, 1)
	require.NoError(t, err)
	over, err := FromDampingRatio(1, 100, 1.5)
	require.NoError(t, err)

	require.Equal(t, Underdamped, under.Regime())
	require.Equal(t, CriticallyDamped, critical.Regime())
	require.Equal(t, Overdamped, over.Regime())
}

func TestValidateRejectsDegenerateParams(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params Params
		field  string
	}{
		{name: "zero mass", params: Params{Mass: 0, Stiffness: 100, Damping: 10}, field: "spring.mass"},
		{name: "negative mass", params: Params{Mass: -1, Stiffness: 100, Damping: 10}, field: "spring.mass"},
		{name: "zero stiffness", params: Params{Mass: 1, Stiffness: 0, Damping: 10}, field: "spring.stiffness"},
		{name: "negative damping", params: Params{Mass: 1, Stiffness: 100, Damping: -1}, field: "spring.damping"},
		{name: "nan", params: Params{Mass: math.NaN(), Stiffness: 100, Damping: 1}, field: "spring"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tc.params)
			var cfgErr *mkerrors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestPresetLookup(t *testing.T) {
	t.Parallel()

	for _, p := range Presets() {
		parsed, err := ParsePreset(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
		require.NoError(t, p.Params().Validate())
	}

	wobbly, err := ParsePreset(" Wobbly ")
	require.NoError(t, err)
	require.Equal(t, Underdamped, wobbly.Params().Regime())

	_, err = ParsePreset("springy")
	var cfgErr *mkerrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, cfgErr.Message, "springy")
}
