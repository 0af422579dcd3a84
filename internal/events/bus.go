// Package events implements the observer registry shared by sequences and
// state machines: typed subscriptions, a bounded debug history and optional
// debug logging of every published event.
package events

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/ring"
)

// DefaultHistorySize bounds the history when no size is configured.
const DefaultHistorySize = 100

// anyType is the internal key for wildcard subscriptions.
const anyType = "*"

// Bus is an explicitly constructed event registry. The zero value is not
// usable; call NewBus. A nil *Bus accepts and drops everything.
type Bus struct {
	mu      sync.RWMutex
	log     *logger.Logger
	clock   ports.Clock
	subs    map[string][]entry
	history *ring.Buffer[ports.Event]
	debug   bool
}

type entry struct {
	id      string
	handler ports.EventHandler
}

// Option customises a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for handler failures and debug output.
func WithLogger(log *logger.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// WithClock stamps events that carry no timestamp.
func WithClock(clock ports.Clock) Option {
	return func(b *Bus) { b.clock = clock }
}

// WithHistorySize sets the history capacity.
func WithHistorySize(n int) Option {
	return func(b *Bus) { b.history = ring.New[ports.Event](n) }
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subs:    make(map[string][]entry),
		history: ring.New[ports.Event](DefaultHistorySize),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is the handle returned by On and OnAny.
type Subscription struct {
	id     string
	once   sync.Once
	cancel func()
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Unsubscribe removes the handler. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

// On registers a handler for one event type.
func (b *Bus) On(eventType string, handler ports.EventHandler) ports.Subscription {
	return b.subscribe(eventType, handler)
}

// OnAny registers a handler for every event.
func (b *Bus) OnAny(handler ports.EventHandler) ports.Subscription {
	return b.subscribe(anyType, handler)
}

func (b *Bus) subscribe(eventType string, handler ports.EventHandler) *Subscription {
	if b == nil || handler == nil {
		return &Subscription{}
	}
	id := uuid.NewString()

	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], entry{id: id, handler: handler})
	b.mu.Unlock()

	return &Subscription{
		id: id,
		cancel: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			handlers := b.subs[eventType]
			for i, e := range handlers {
				if e.id == id {
					b.subs[eventType] = append(handlers[:i:i], handlers[i+1:]...)
					break
				}
			}
		},
	}
}

// Publish records the event and delivers it synchronously to handlers of its
// type, then to wildcard handlers, each in subscription order. A failing or
// panicking handler is logged and does not affect the others.
func (b *Bus) Publish(event ports.Event) {
	if b == nil {
		return
	}
	if event.Timestamp.IsZero() {
		if b.clock != nil {
			event.Timestamp = b.clock.Now()
		} else {
			event.Timestamp = time.Now()
		}
	}

	b.mu.Lock()
	b.history.Push(event)
	debug := b.debug
	handlers := append([]entry(nil), b.subs[event.Type]...)
	if event.Type != anyType {
		handlers = append(handlers, b.subs[anyType]...)
	}
	b.mu.Unlock()

	if debug {
		b.log.Debug("event", payloadFields(event)...)
	}

	for _, e := range handlers {
		b.deliver(e, event)
	}
}

func (b *Bus) deliver(e entry, event ports.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error(fmt.Errorf("panic: %v", r), "event handler panicked", "event_type", event.Type, "subscription", e.id)
		}
	}()
	if err := e.handler(event); err != nil {
		b.log.Warn("event handler failed", "event_type", event.Type, "subscription", e.id, "error", err)
	}
}

func payloadFields(event ports.Event) []any {
	fields := []any{"event_type", event.Type}
	if event.Source != "" {
		fields = append(fields, "source", event.Source)
	}
	keys := make([]string, 0, len(event.Payload))
	for key := range event.Payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fields = append(fields, key, event.Payload[key])
	}
	return fields
}

// History returns recorded events, oldest first.
func (b *Bus) History() []ports.Event {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history.Items()
}

// ClearHistory drops recorded events.
func (b *Bus) ClearHistory() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.history.Clear()
	b.mu.Unlock()
}

// SetMaxHistorySize changes the history capacity, keeping the newest events.
func (b *Bus) SetMaxHistorySize(n int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.history.Resize(n)
	b.mu.Unlock()
}

// SetDebugMode toggles debug logging of every published event.
func (b *Bus) SetDebugMode(enabled bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.debug = enabled
	b.mu.Unlock()
}

// DebugMode reports whether debug logging is on.
func (b *Bus) DebugMode() bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.debug
}

// SubscriberCount reports the number of handlers registered for a type;
// "*" counts wildcard handlers.
func (b *Bus) SubscriberCount(eventType string) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[eventType])
}
