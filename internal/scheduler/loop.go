// Package scheduler multiplexes per-frame callbacks of many animation
// runtimes onto a single host clock.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
)

// DefaultFrameInterval is roughly sixty frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop is a frame scheduler. Callbacks run in registration order on every
// frame until cancelled.
type Loop struct {
	mu      sync.Mutex
	clock   ports.Clock
	log     *logger.Logger
	entries []*handle
	frames  uint64
}

type handle struct {
	loop      *Loop
	fn        ports.TickFunc
	cancelled bool
}

// Cancel implements ports.TickHandle.
func (h *handle) Cancel() {
	h.loop.remove(h)
}

// NewLoop creates a loop reading time from clock. A nil clock uses the
// system clock.
func NewLoop(clock ports.Clock, log *logger.Logger) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Loop{clock: clock, log: log}
}

// Now implements ports.Clock using the loop's clock.
func (l *Loop) Now() time.Time { return l.clock.Now() }

// RequestTick implements ports.Ticker.
func (l *Loop) RequestTick(fn ports.TickFunc) ports.TickHandle {
	h := &handle{loop: l, fn: fn}
	if fn == nil {
		h.cancelled = true
		return h
	}
	l.mu.Lock()
	l.entries = append(l.entries, h)
	l.mu.Unlock()
	return h
}

func (l *Loop) remove(h *handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h.cancelled {
		return
	}
	h.cancelled = true
	for i, e := range l.entries {
		if e == h {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

// Pending reports the number of live callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Frames reports how many frames have been dispatched.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Frame runs every live callback with now. Callbacks registered during the
// frame first run on the next one; callbacks cancelled during the frame do
// not run.
func (l *Loop) Frame(now time.Time) {
	l.mu.Lock()
	l.frames++
	snapshot := append([]*handle(nil), l.entries...)
	l.mu.Unlock()

	for _, h := range snapshot {
		l.mu.Lock()
		skip := h.cancelled
		l.mu.Unlock()
		if skip {
			continue
		}
		h.fn(now)
	}
}

// Step dispatches one frame at the clock's current time.
func (l *Loop) Step() time.Time {
	now := l.clock.Now()
	l.Frame(now)
	return now
}

// Run dispatches frames from a ticker until ctx is done.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.log.Debug("frame loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("frame loop stopped", "frames", l.Frames())
			return ctx.Err()
		case <-ticker.C:
			l.Step()
		}
	}
}

// Drain advances a manual clock by step and dispatches frames until no
// callbacks remain or maxFrames is reached. It returns the frames dispatched.
func (l *Loop) Drain(clock *ManualClock, step time.Duration, maxFrames int) int {
	if step <= 0 {
		step = DefaultFrameInterval
	}
	n := 0
	for n < maxFrames && l.Pending() > 0 {
		l.Frame(clock.Advance(step))
		n++
	}
	return n
}
