package statemachine

import (
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/events"
	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/ring"
	"github.com/alexisbeaulieu97/motionkit/internal/scheduler"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// DefaultHistorySize bounds the transition history.
const DefaultHistorySize = 50

// Status is the playback status of a machine.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// TransitionEntry records a committed transition.
type TransitionEntry struct {
	From      string
	To        string
	Event     string
	Timestamp time.Time
}

// Machine runs a Definition against one target. It is driven by Tick and is
// not safe for concurrent use.
type Machine struct {
	def     *Definition
	target  ports.Target
	applier ports.StyleApplier
	adapter *motion.Adapter
	bus     *events.Bus
	log     *logger.Logger
	clock   ports.Clock
	ticker  ports.Ticker
	handle  ports.TickHandle
	strict  bool
	debug   bool

	ctx      *Context
	current  string
	status   Status
	lastNow  time.Time
	hasLast  bool
	values   effect.Props
	flight   *flight
	detached []effect.Animation
	timer    *autoTimer
	history  *ring.Buffer[TransitionEntry]
}

type flight struct {
	transition Transition
	from       string
	event      Event
	pending    []effect.Effect
	active     effect.Animation
}

type autoTimer struct {
	state   string
	after   time.Duration
	elapsed time.Duration
}

// Option customises a Machine.
type Option func(*Machine)

// WithTarget binds the machine's output to a target.
func WithTarget(target ports.Target, applier ports.StyleApplier) Option {
	return func(m *Machine) {
		m.target = target
		m.applier = applier
	}
}

// WithAdapter passes every effect through a motion sensitivity adapter.
func WithAdapter(a *motion.Adapter) Option {
	return func(m *Machine) { m.adapter = a }
}

// WithBus publishes machine events on a shared bus.
func WithBus(b *events.Bus) Option {
	return func(m *Machine) { m.bus = b }
}

// WithLogger sets the machine logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithClock sets the clock used for history timestamps and resume.
func WithClock(c ports.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithTicker makes Start subscribe the machine to host frames.
func WithTicker(t ports.Ticker) Option {
	return func(m *Machine) { m.ticker = t }
}

// WithStrict makes Send report unmatched events as InvalidTransitionError.
func WithStrict(strict bool) Option {
	return func(m *Machine) { m.strict = strict }
}

// WithHistorySize bounds the transition history.
func WithHistorySize(n int) Option {
	return func(m *Machine) { m.history = ring.New[TransitionEntry](n) }
}

// WithVars seeds the machine context.
func WithVars(vars map[string]any) Option {
	return func(m *Machine) {
		for k, v := range vars {
			m.ctx.Set(k, v)
		}
	}
}

// WithInitialValues seeds the target's property values.
func WithInitialValues(values effect.Props) Option {
	return func(m *Machine) { m.values = m.values.Merge(values) }
}

// New creates a machine in the definition's initial state.
func New(def *Definition, opts ...Option) *Machine {
	m := &Machine{
		def:     def,
		ctx:     &Context{Vars: make(map[string]any)},
		current: def.Initial(),
		values:  effect.Props{},
		history: ring.New[TransitionEntry](DefaultHistorySize),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = scheduler.SystemClock{}
	}
	if m.bus == nil {
		m.bus = events.NewBus(events.WithLogger(m.log), events.WithClock(m.clock))
	}
	if initial, ok := def.State(def.Initial()); ok {
		m.values = m.values.Merge(initial.Style)
	}
	m.log = m.log.WithFields(map[string]any{"machine": def.Name()})
	return m
}

// Name returns the definition name.
func (m *Machine) Name() string { return m.def.Name() }

// Definition returns the machine definition.
func (m *Machine) Definition() *Definition { return m.def }

// State returns the committed current state.
func (m *Machine) State() string { return m.current }

// Status returns the playback status.
func (m *Machine) Status() Status { return m.status }

// InTransition reports whether a sequenced transition is still playing.
func (m *Machine) InTransition() bool { return m.flight != nil }

// Context returns the machine's variable store.
func (m *Machine) Context() *Context { return m.ctx }

// Values returns the last computed target values.
func (m *Machine) Values() effect.Props { return m.values.Clone() }

// Bus returns the bus the machine publishes on.
func (m *Machine) Bus() *events.Bus { return m.bus }

// Start begins ticking. It applies the current state's style, plays its
// enter effect the first time and arms its auto-advance timer. Starting a
// running machine is a no-op.
func (m *Machine) Start() {
	switch m.status {
	case StatusRunning, StatusPaused:
		return
	}
	first := m.status == StatusIdle
	m.status = StatusRunning
	m.lastNow = m.clock.Now()
	m.hasLast = true

	state, _ := m.def.State(m.current)
	if first && state.Enter != nil {
		m.detached = append(m.detached, m.prepare(state.Enter).Start(m.values))
	}
	m.armTimer(state)
	m.apply()

	if m.ticker != nil {
		m.handle = m.ticker.RequestTick(m.Tick)
	}
	m.log.Debug("machine started", "state", m.current)
}

// Stop cancels any in-flight transition and timers. The target keeps its last
// computed values and the state pointer does not move.
func (m *Machine) Stop() {
	if m.status == StatusStopped {
		return
	}
	if m.flight != nil {
		m.log.Debug("in-flight transition cancelled", "from", m.flight.from, "to", m.flight.transition.To)
	}
	m.flight = nil
	m.detached = nil
	m.timer = nil
	m.status = StatusStopped
	if m.handle != nil {
		m.handle.Cancel()
		m.handle = nil
	}
	m.apply()
}

// Pause freezes effects and timers.
func (m *Machine) Pause() {
	if m.status == StatusRunning {
		m.status = StatusPaused
	}
}

// Resume continues after Pause; time spent paused is not counted.
func (m *Machine) Resume() {
	if m.status != StatusPaused {
		return
	}
	m.status = StatusRunning
	m.lastNow = m.clock.Now()
	m.hasLast = true
}

// Tick advances effects and timers to now.
func (m *Machine) Tick(now time.Time) {
	if m.status != StatusRunning {
		return
	}
	var dt time.Duration
	if m.hasLast {
		dt = max(now.Sub(m.lastNow), 0)
	}
	m.lastNow = now
	m.hasLast = true
	m.advance(dt)
}

func (m *Machine) advance(dt time.Duration) {
	if len(m.detached) > 0 {
		live := m.detached[:0]
		for _, a := range m.detached {
			f := a.Tick(dt)
			m.values = m.values.Merge(f.Values)
			if !f.Done {
				live = append(live, a)
			}
		}
		m.detached = live
		m.apply()
	}

	remaining := dt
	if m.flight != nil {
		remaining = m.advanceFlight(dt)
	}

	for m.flight == nil && m.timer != nil {
		m.timer.elapsed += remaining
		if m.timer.elapsed < m.timer.after {
			return
		}
		// time past the deadline belongs to the timeout transition
		remaining = m.timer.elapsed - m.timer.after
		state := m.timer.state
		m.timer = nil
		m.bus.Publish(ports.Event{
			Type:    ports.EventMachineTimeout,
			Source:  m.Name(),
			Payload: map[string]any{"state": state},
		})
		if _, err := m.SendEvent(Event{Name: TimeoutEvent}); err != nil {
			m.log.Warn("timeout event rejected", "state", state, "error", err)
		}
		if m.flight != nil {
			remaining = m.advanceFlight(remaining)
		}
	}
}

// advanceFlight runs sequenced phases and returns the time left over after
// the transition commits, or zero while it is still playing.
func (m *Machine) advanceFlight(dt time.Duration) time.Duration {
	for {
		f := m.flight.active.Tick(dt)
		m.values = m.values.Merge(f.Values)
		if !f.Done {
			m.apply()
			return 0
		}
		dt = f.Overflow
		if !m.nextPhase() {
			m.apply()
			m.commit()
			return dt
		}
	}
}

func (m *Machine) nextPhase() bool {
	if len(m.flight.pending) == 0 {
		return false
	}
	next := m.flight.pending[0]
	m.flight.pending = m.flight.pending[1:]
	m.flight.active = m.prepare(next).Start(m.values)
	return true
}

func (m *Machine) prepare(e effect.Effect) effect.Effect {
	if m.adapter == nil {
		return e
	}
	return e.Adapt(m.adapter.Adapt(e.Options(m.values)))
}

func (m *Machine) apply() {
	if m.applier != nil {
		m.applier.ApplyComputedStyle(m.target, m.values.Clone())
	}
}

// Send dispatches a named event. See SendEvent.
func (m *Machine) Send(name string) (bool, error) {
	return m.SendEvent(Event{Name: name})
}

// SendEvent selects and begins the transition for event. It returns false
// when nothing matches, leaving the machine untouched; in strict mode the
// miss is also reported as an InvalidTransitionError. An in-flight
// transition is fast-forwarded before the event is matched.
func (m *Machine) SendEvent(event Event) (bool, error) {
	if m.status == StatusStopped {
		return false, nil
	}
	if m.flight != nil {
		m.fastForward()
	}

	t, ok := m.def.Match(m.current, m.ctx, event)
	if !ok {
		m.bus.Publish(ports.Event{
			Type:    ports.EventMachineRejected,
			Source:  m.Name(),
			Payload: map[string]any{"state": m.current, "event": event.Name},
		})
		if m.strict {
			return false, mkerrors.NewInvalidTransitionError(m.Name(), m.current, event.Name)
		}
		return false, nil
	}

	m.bus.Publish(ports.Event{
		Type:    ports.EventMachineTransition,
		Source:  m.Name(),
		Payload: map[string]any{"from": m.current, "to": t.To, "event": event.Name},
	})
	m.begin(t, event)
	return true, nil
}

// Can reports whether event would select a transition, without running it.
func (m *Machine) Can(event string) bool {
	from := m.current
	if m.flight != nil {
		from = m.flight.transition.To
	}
	_, ok := m.def.Match(from, m.ctx, Event{Name: event})
	return ok
}

func (m *Machine) begin(t Transition, event Event) {
	m.timer = nil
	old, _ := m.def.State(m.current)
	next, _ := m.def.State(t.To)

	var phases []effect.Effect
	for _, e := range []effect.Effect{old.Exit, t.Effect, next.Enter} {
		if e != nil {
			phases = append(phases, e)
		}
	}

	m.flight = &flight{transition: t, from: m.current, event: event, pending: phases}
	if t.Async {
		for _, e := range phases {
			m.detached = append(m.detached, m.prepare(e).Start(m.values))
		}
		m.commit()
		return
	}
	if !m.nextPhase() {
		m.commit()
		return
	}
	// Zero-length phases complete synchronously.
	m.advanceFlight(0)
}

func (m *Machine) fastForward() {
	fl := m.flight
	m.values = m.values.Merge(fl.active.Finish())
	for _, e := range fl.pending {
		m.values = m.values.Merge(m.prepare(e).Start(m.values).Finish())
	}
	fl.pending = nil
	m.apply()
	m.commit()
}

func (m *Machine) commit() {
	fl := m.flight
	m.flight = nil

	for _, action := range fl.transition.SideEffects {
		m.runAction(action, fl.event)
	}

	m.current = fl.transition.To
	next, _ := m.def.State(m.current)
	if len(next.Style) > 0 {
		m.values = m.values.Merge(next.Style)
		m.apply()
	}

	entry := TransitionEntry{From: fl.from, To: m.current, Event: fl.event.Name, Timestamp: m.clock.Now()}
	m.history.Push(entry)
	if m.status != StatusStopped {
		m.armTimer(next)
	}

	if m.debug {
		m.log.Info("state changed", "from", entry.From, "to", entry.To, "event", entry.Event)
	} else {
		m.log.Debug("state changed", "from", entry.From, "to", entry.To, "event", entry.Event)
	}
	m.bus.Publish(ports.Event{
		Type:      ports.EventMachineStateChanged,
		Source:    m.Name(),
		Timestamp: entry.Timestamp,
		Payload:   map[string]any{"from": entry.From, "to": entry.To, "event": entry.Event},
	})
}

func (m *Machine) runAction(action Action, event Event) {
	if action == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.Error(fmt.Errorf("panic: %v", r), "transition side effect panicked", "event", event.Name)
		}
	}()
	action(m.ctx, event)
}

func (m *Machine) armTimer(state State) {
	m.timer = nil
	if state.AutoAdvanceAfter > 0 {
		m.timer = &autoTimer{state: state.ID, after: state.AutoAdvanceAfter}
	}
}

// OnStateChange subscribes to committed transitions of this machine.
func (m *Machine) OnStateChange(handler func(TransitionEntry)) ports.Subscription {
	name := m.Name()
	return m.bus.On(ports.EventMachineStateChanged, func(e ports.Event) error {
		if e.Source != name || handler == nil {
			return nil
		}
		from, _ := e.Payload["from"].(string)
		to, _ := e.Payload["to"].(string)
		ev, _ := e.Payload["event"].(string)
		handler(TransitionEntry{From: from, To: to, Event: ev, Timestamp: e.Timestamp})
		return nil
	})
}

// History returns committed transitions, oldest first.
func (m *Machine) History() []TransitionEntry { return m.history.Items() }

// SetMaxHistorySize bounds the history, keeping the newest entries.
func (m *Machine) SetMaxHistorySize(n int) { m.history.Resize(n) }

// SetDebugMode logs every transition at info level instead of debug.
func (m *Machine) SetDebugMode(enabled bool) { m.debug = enabled }
