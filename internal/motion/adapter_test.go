package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/motionkit/internal/ports"
)

func ptr[T any](v T) *T { return &v }

func gentleSlide() Options {
	return Options{
		Duration:       400 * time.Millisecond,
		Distance:       40,
		TransformCount: 1,
		Category:       CategoryTransition,
	}
}

func TestAdaptLevelNoneIsUnmodified(t *testing.T) {
	t.Parallel()

	a := NewAdapter(Config{Level: LevelNone}, nil)
	for _, opts := range []Options{
		gentleSlide(),
		{Duration: time.Minute, Flashing: true, Autoplay: true, Looping: true, Category: CategoryBackground},
	} {
		adj := a.Adapt(opts)
		require.True(t, adj.Unmodified(), "%+v", adj)
		require.Equal(t, opts.Duration, adj.Duration)
		require.Empty(t, adj.Reason)
	}
}

func TestAdaptDisabledCategorySuppresses(t *testing.T) {
	t.Parallel()

	a := NewAdapter(Config{Level: LevelMedium}, nil)
	adj := a.Adapt(Options{Duration: 2 * time.Second, Category: CategoryBackground})

	require.False(t, adj.ShouldAnimate)
	require.False(t, adj.ShouldUseAlternative)
	require.Zero(t, adj.Duration)
	require.Contains(t, adj.Reason, "background")
}

func TestAdaptCriticalAnimationIsSubstitutedNotSuppressed(t *testing.T) {
	t.Parallel()

	a := NewAdapter(Config{Level: LevelMaximum}, nil)
	adj := a.Adapt(Options{Duration: time.Second, Category: CategoryFeedback, Importance: ImportanceCritical})

	require.True(t, adj.ShouldAnimate)
	require.True(t, adj.ShouldUseAlternative)
	require.Equal(t, AlternativeColorChange, adj.Alternative)
	require.LessOrEqual(t, adj.Duration, maxAlternativeDuration)
}

func TestAdaptHighIntensitySubstitutesCategoryAlternative(t *testing.T) {
	t.Parallel()

	intense := Options{
		Duration:       3 * time.Second,
		Distance:       800,
		TransformCount: 5,
		ScreenCoverage: 0.9,
		Flashing:       true,
	}
	require.Greater(t, Score(intense).Intensity, ProfileFor(LevelHigh).Threshold)

	cases := map[Category]Alternative{
		CategoryTransition: AlternativeOpacityPulse,
		CategoryNavigation: AlternativeOpacityPulse,
		CategoryFeedback:   AlternativeColorChange,
		CategoryAttention:  AlternativeBorderHighlight,
		CategoryLoading:    AlternativeStaticIcon,
	}
	a := NewAdapter(Config{Level: LevelHigh}, nil)
	for category, want := range cases {
		opts := intense
		opts.Category = category
		adj := a.Adapt(opts)
		require.True(t, adj.ShouldUseAlternative, category.String())
		require.Equal(t, want, adj.Alternative, category.String())
		require.Zero(t, adj.DistanceScale)
	}
}

func TestAdaptScalesWithinThreshold(t *testing.T) {
	t.Parallel()

	a := NewAdapter(Config{Level: LevelLow}, nil)
	adj := a.Adapt(gentleSlide())

	require.True(t, adj.ShouldAnimate)
	require.False(t, adj.ShouldUseAlternative)
	require.Equal(t, 0.75, adj.DistanceScale)
	require.Equal(t, 1.1, adj.SpeedMultiplier)
	require.InDelta(t, float64(400*time.Millisecond)/1.1, float64(adj.Duration), float64(time.Microsecond))
	require.NotEmpty(t, adj.Reason)
}

func TestAdaptFlashingDisabledBelowThreshold(t *testing.T) {
	t.Parallel()

	a := NewAdapter(Config{Level: LevelVeryLow}, nil)
	opts := Options{Duration: 200 * time.Millisecond, Flashing: true, Category: CategoryAttention}
	require.LessOrEqual(t, Score(opts).Intensity, ProfileFor(LevelVeryLow).Threshold)

	adj := a.Adapt(opts)
	require.True(t, adj.ShouldUseAlternative)
	require.Equal(t, AlternativeBorderHighlight, adj.Alternative)
	require.Equal(t, "flashing disabled", adj.Reason)
}

func TestReducedMotionPreferenceRaisesLevel(t *testing.T) {
	t.Parallel()

	a := NewAdapter(Config{Level: LevelLow, RespectSystemPreference: true}, ports.StaticPreference(true))
	require.Equal(t, LevelHigh, a.EffectiveLevel())

	ignoring := NewAdapter(Config{Level: LevelLow}, ports.StaticPreference(true))
	require.Equal(t, LevelLow, ignoring.EffectiveLevel())

	stricter := NewAdapter(Config{Level: LevelMaximum, RespectSystemPreference: true}, ports.StaticPreference(true))
	require.Equal(t, LevelMaximum, stricter.EffectiveLevel())
}

func TestOverridesWinOverProfile(t *testing.T) {
	t.Parallel()

	a := NewAdapter(Config{
		Level: LevelMedium,
		Overrides: Overrides{
			DistanceScale:      ptr(0.8),
			SpeedMultiplier:    ptr(1.0),
			Disable3D:          ptr(false),
			DisabledCategories: []Category{},
		},
	}, nil)

	p := a.Profile()
	require.Equal(t, 0.8, p.DistanceScale)
	require.Equal(t, 1.0, p.SpeedMultiplier)
	require.False(t, p.Disable3D)
	require.True(t, p.DisableFlashing)
	require.False(t, p.Disables(CategoryBackground))

	adj := a.Adapt(Options{Duration: 300 * time.Millisecond, Distance: 20, Category: CategoryBackground})
	require.True(t, adj.ShouldAnimate)
	require.Equal(t, 0.8, adj.DistanceScale)
	require.Equal(t, 300*time.Millisecond, adj.Duration)
}

func TestProfileForReturnsCopies(t *testing.T) {
	t.Parallel()

	p := ProfileFor(LevelMaximum)
	p.DisabledCategories[0] = CategoryAttention
	require.Equal(t, CategoryTransition, ProfileFor(LevelMaximum).DisabledCategories[0])
}

func TestProfilesTightenWithLevel(t *testing.T) {
	t.Parallel()

	levels := Levels()
	for i := 1; i < len(levels); i++ {
		prev, cur := ProfileFor(levels[i-1]), ProfileFor(levels[i])
		require.LessOrEqual(t, cur.Threshold, prev.Threshold, levels[i].String())
		require.LessOrEqual(t, cur.DistanceScale, prev.DistanceScale, levels[i].String())
		require.GreaterOrEqual(t, len(cur.DisabledCategories), len(prev.DisabledCategories), levels[i].String())
	}
}
