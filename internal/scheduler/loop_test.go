package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFrameRunsCallbacksInRegistrationOrder(t *testing.T) {
	t.Parallel()

	loop := NewLoop(NewManualClock(epoch), nil)
	var order []string
	loop.RequestTick(func(time.Time) { order = append(order, "a") })
	loop.RequestTick(func(time.Time) { order = append(order, "b") })

	loop.Step()
	loop.Step()
	require.Equal(t, []string{"a", "b", "a", "b"}, order)
	require.Equal(t, uint64(2), loop.Frames())
}

func TestCancelDuringFrameSkipsLaterCallbacks(t *testing.T) {
	t.Parallel()

	loop := NewLoop(NewManualClock(epoch), nil)
	calls := 0
	var second interface{ Cancel() }
	loop.RequestTick(func(time.Time) { second.Cancel() })
	second = loop.RequestTick(func(time.Time) { calls++ })

	loop.Step()
	require.Zero(t, calls)
	require.Equal(t, 1, loop.Pending())

	second.Cancel()
	require.Equal(t, 1, loop.Pending())
}

func TestCallbacksAddedDuringFrameStartNextFrame(t *testing.T) {
	t.Parallel()

	loop := NewLoop(NewManualClock(epoch), nil)
	late := 0
	added := false
	loop.RequestTick(func(time.Time) {
		if !added {
			added = true
			loop.RequestTick(func(time.Time) { late++ })
		}
	})

	loop.Step()
	require.Zero(t, late)
	loop.Step()
	require.Equal(t, 1, late)
}

func TestDrainAdvancesManualClock(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(epoch)
	loop := NewLoop(clock, nil)
	var seen []time.Time
	var h interface{ Cancel() }
	h = loop.RequestTick(func(now time.Time) {
		seen = append(seen, now)
		if now.Sub(epoch) >= 50*time.Millisecond {
			h.Cancel()
		}
	})

	frames := loop.Drain(clock, 10*time.Millisecond, 100)
	require.Equal(t, 5, frames)
	require.Equal(t, epoch.Add(10*time.Millisecond), seen[0])
	require.Equal(t, epoch.Add(50*time.Millisecond), clock.Now())
	require.Zero(t, loop.Pending())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	loop := NewLoop(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan struct{}, 1)
	loop.RequestTick(func(time.Time) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx, time.Millisecond) }()

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not tick")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
