// Package ports declares the narrow capabilities the animation core consumes
// from its host: a clock and frame scheduler, a style sink for computed
// output, and an accessibility preference source. The core never touches a
// rendering surface directly.
package ports

import "time"

// Clock reads the host's current timestamp.
type Clock interface {
	Now() time.Time
}

// TickFunc is invoked once per host frame with the frame timestamp.
type TickFunc func(now time.Time)

// TickHandle cancels a tick request. Cancel must be idempotent.
type TickHandle interface {
	Cancel()
}

// Ticker schedules per-frame callbacks, typically backed by a render loop.
// A callback keeps firing every frame until its handle is cancelled.
type Ticker interface {
	RequestTick(fn TickFunc) TickHandle
}

// Target identifies a renderable surface bound to an animation. Element is
// opaque to the core and only passed back to the StyleApplier.
type Target struct {
	ID      string
	Element any
}

// StyleApplier applies computed numeric properties to a bound target.
type StyleApplier interface {
	ApplyComputedStyle(target Target, props map[string]float64)
}

// StyleApplierFunc adapts a function to StyleApplier.
type StyleApplierFunc func(target Target, props map[string]float64)

// ApplyComputedStyle implements StyleApplier.
func (f StyleApplierFunc) ApplyComputedStyle(target Target, props map[string]float64) {
	f(target, props)
}

// PreferenceSource reports the user's or system's reduced-motion preference.
type PreferenceSource interface {
	PrefersReducedMotion() bool
}

// StaticPreference is a fixed PreferenceSource.
type StaticPreference bool

// PrefersReducedMotion implements PreferenceSource.
func (p StaticPreference) PrefersReducedMotion() bool { return bool(p) }

// PreferenceFunc adapts a function to PreferenceSource.
type PreferenceFunc func() bool

// PrefersReducedMotion implements PreferenceSource.
func (f PreferenceFunc) PrefersReducedMotion() bool { return f() }
