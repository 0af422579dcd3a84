package sequence

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/events"
	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/scheduler"
	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

// Status is the lifecycle status of a sequence run.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusCompleted
	StatusCancelled
	StatusFailed
)

var statusNames = [...]string{"idle", "running", "paused", "completed", "cancelled", "failed"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// Done reports whether the run has ended one way or another.
func (s Status) Done() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// CancelMode selects what targets show after Stop.
type CancelMode int

const (
	// SettleLast leaves every target at its last computed values.
	SettleLast CancelMode = iota
	// SettleRest snaps targets that declare rest values onto them.
	SettleRest
)

// Binding attaches a named target to the host.
type Binding struct {
	Target  ports.Target
	Applier ports.StyleApplier
	Initial effect.Props
	Rest    effect.Props
}

// Targets maps target names to their bindings.
type Targets map[string]Binding

// Names returns the sorted target names.
func (t Targets) Names() []string {
	return slices.Sorted(maps.Keys(t))
}

type binding struct {
	Binding
	values effect.Props
}

// Sequence plays a Program against bound targets. It is driven by Tick and
// is not safe for concurrent use.
type Sequence struct {
	program     *Program
	targets     map[string]*binding
	adapter     *motion.Adapter
	bus         *events.Bus
	log         *logger.Logger
	clock       ports.Clock
	ticker      ports.Ticker
	handle      ports.TickHandle
	haltOnError bool
	cancelMode  CancelMode
	vars        map[string]any

	ctx     *Context
	root    *fiber
	status  Status
	lastNow time.Time
	hasLast bool
	now     time.Time
	elapsed time.Duration

	// cursor is the playback offset of the step being evaluated while a
	// tick is in progress.
	ticking bool
	cursor  time.Duration
}

// Option customises a Sequence.
type Option func(*Sequence)

// WithAdapter passes every Animate and Stagger step through a motion
// sensitivity adapter before it starts.
func WithAdapter(a *motion.Adapter) Option {
	return func(s *Sequence) { s.adapter = a }
}

// WithBus publishes sequence events on a shared bus.
func WithBus(b *events.Bus) Option {
	return func(s *Sequence) { s.bus = b }
}

// WithLogger sets the sequence logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Sequence) { s.log = l }
}

// WithClock sets the clock read by Start and Resume.
func WithClock(c ports.Clock) Option {
	return func(s *Sequence) { s.clock = c }
}

// WithTicker makes Start subscribe the sequence to host frames.
func WithTicker(t ports.Ticker) Option {
	return func(s *Sequence) { s.ticker = t }
}

// WithHaltOnError stops the branch containing a failed Call step. Sibling
// branches keep running.
func WithHaltOnError(halt bool) Option {
	return func(s *Sequence) { s.haltOnError = halt }
}

// WithCancelMode selects how Stop settles targets.
func WithCancelMode(mode CancelMode) Option {
	return func(s *Sequence) { s.cancelMode = mode }
}

// WithVars seeds the context of every run.
func WithVars(vars map[string]any) Option {
	return func(s *Sequence) { s.vars = maps.Clone(vars) }
}

// New binds a program to targets. Every target the program animates must
// be bound.
func New(program *Program, targets Targets, opts ...Option) (*Sequence, error) {
	if program == nil {
		return nil, mkerrors.NewConfigurationError("program", "program is required", nil)
	}
	s := &Sequence{
		program: program,
		targets: make(map[string]*binding, len(targets)),
	}
	for _, name := range program.Targets() {
		if _, ok := targets[name]; !ok {
			return nil, mkerrors.NewConfigurationError("targets", fmt.Sprintf("target %q is not bound", name), nil)
		}
	}
	for name, b := range targets {
		if b.Target.ID == "" {
			b.Target.ID = name
		}
		s.targets[name] = &binding{Binding: b, values: b.Initial.Clone()}
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = scheduler.SystemClock{}
	}
	if s.bus == nil {
		s.bus = events.NewBus(events.WithLogger(s.log), events.WithClock(s.clock))
	}
	s.log = s.log.WithFields(map[string]any{"sequence": program.Name()})
	return s, nil
}

// Name returns the program name.
func (s *Sequence) Name() string { return s.program.Name() }

// Program returns the compiled program.
func (s *Sequence) Program() *Program { return s.program }

// Status returns the lifecycle status.
func (s *Sequence) Status() Status { return s.status }

// IsComplete reports whether the last run played to the end.
func (s *Sequence) IsComplete() bool { return s.status == StatusCompleted }

// Context returns the context of the current or last run; nil before the
// first Start and after Reset.
func (s *Sequence) Context() *Context { return s.ctx }

// Elapsed returns the playback time of the current run, excluding pauses.
func (s *Sequence) Elapsed() time.Duration { return s.elapsed }

// Bus returns the bus the sequence publishes on.
func (s *Sequence) Bus() *events.Bus { return s.bus }

// Values returns the last computed values of a target.
func (s *Sequence) Values(target string) effect.Props {
	if b, ok := s.targets[target]; ok {
		return b.values.Clone()
	}
	return nil
}

// On subscribes to events this sequence publishes.
func (s *Sequence) On(eventType string, handler ports.EventHandler) ports.Subscription {
	name := s.Name()
	return s.bus.On(eventType, func(e ports.Event) error {
		if e.Source != name || handler == nil {
			return nil
		}
		return handler(e)
	})
}

// Start begins a run. Starting a running sequence is a no-op, starting a
// paused one resumes it and starting a finished one replays it from the
// first step with a fresh context.
func (s *Sequence) Start() {
	switch s.status {
	case StatusRunning:
		return
	case StatusPaused:
		s.Resume()
		return
	}

	now := s.clock.Now()
	s.ctx = newContext(s.vars, uuid.NewString(), now)
	s.root = &fiber{blocks: s.program.root}
	s.status = StatusRunning
	s.lastNow, s.now, s.hasLast = now, now, true
	s.elapsed = 0

	s.log.Debug("sequence started", "run_id", s.ctx.RunID, "blocks", len(s.program.blocks))
	s.publish(ports.EventSequenceStarted, map[string]any{"run_id": s.ctx.RunID})
	if s.ticker != nil {
		s.handle = s.ticker.RequestTick(s.Tick)
	}
	s.advance(0)
}

// Pause freezes the run. Springs and tweens keep their state.
func (s *Sequence) Pause() {
	if s.status != StatusRunning {
		return
	}
	if s.ticking {
		// the rest of this tick was never played
		s.elapsed = min(s.elapsed, s.cursor)
	}
	s.setStatus(StatusPaused)
	s.publish(ports.EventSequencePaused, map[string]any{"run_id": s.ctx.RunID, "elapsed": s.elapsed})
}

// Resume continues a paused run; wall time spent paused is not counted.
func (s *Sequence) Resume() {
	if s.status != StatusPaused {
		return
	}
	s.setStatus(StatusRunning)
	s.lastNow = s.clock.Now()
	s.hasLast = true
	s.publish(ports.EventSequenceResumed, map[string]any{"run_id": s.ctx.RunID, "elapsed": s.elapsed})
}

// Stop cancels the run immediately. Targets are settled according to the
// cancel mode and no further ticks are processed.
func (s *Sequence) Stop() {
	if s.status != StatusRunning && s.status != StatusPaused {
		return
	}
	s.release()
	if s.cancelMode == SettleRest {
		for _, b := range s.targets {
			if len(b.Rest) > 0 {
				b.values = b.values.Merge(b.Rest)
			}
		}
	}
	s.applyAll()
	s.setStatus(StatusCancelled)
	s.log.Debug("sequence cancelled", "run_id", s.ctx.RunID, "elapsed", s.elapsed)
	s.publish(ports.EventSequenceCancelled, map[string]any{"run_id": s.ctx.RunID, "elapsed": s.elapsed})
}

// Reset discards the run, returns every target to its initial values and
// leaves the sequence idle at the first step.
func (s *Sequence) Reset() {
	runID := ""
	if s.ctx != nil {
		runID = s.ctx.RunID
	}
	s.release()
	for _, b := range s.targets {
		b.values = b.Initial.Clone()
	}
	s.applyAll()
	s.ctx = nil
	s.status = StatusIdle
	s.elapsed = 0
	s.hasLast = false
	s.publish(ports.EventSequenceReset, map[string]any{"run_id": runID})
}

// Tick advances the run to now.
func (s *Sequence) Tick(now time.Time) {
	if s.status != StatusRunning {
		return
	}
	var dt time.Duration
	if s.hasLast {
		dt = max(now.Sub(s.lastNow), 0)
	}
	s.lastNow, s.now, s.hasLast = now, now, true
	s.elapsed += dt
	s.advance(dt)
}

func (s *Sequence) setStatus(status Status) {
	s.status = status
	if s.ctx != nil {
		s.ctx.Status = status
	}
}

func (s *Sequence) release() {
	s.root = nil
	if s.handle != nil {
		s.handle.Cancel()
		s.handle = nil
	}
}

func (s *Sequence) advance(dt time.Duration) {
	root := s.root
	if root == nil {
		return
	}
	s.ticking, s.cursor = true, s.elapsed
	_, done := s.advanceFiber(root, dt)
	s.ticking = false
	if !done || s.status != StatusRunning {
		return
	}
	s.release()
	status := StatusCompleted
	if root.halted {
		status = StatusFailed
	}
	s.setStatus(status)
	s.log.Debug("sequence finished", "run_id", s.ctx.RunID, "status", status.String(), "elapsed", s.elapsed)
	s.publish(ports.EventSequenceCompleted, map[string]any{
		"run_id":  s.ctx.RunID,
		"status":  status.String(),
		"elapsed": s.elapsed,
		"errors":  len(s.ctx.Errors),
	})
}

func (s *Sequence) publish(eventType string, payload map[string]any) {
	s.bus.Publish(ports.Event{Type: eventType, Source: s.Name(), Payload: payload})
}

func (s *Sequence) apply(b *binding) {
	if b.Applier != nil {
		b.Applier.ApplyComputedStyle(b.Target, b.values.Clone())
	}
}

func (s *Sequence) applyAll() {
	for _, name := range slices.Sorted(maps.Keys(s.targets)) {
		s.apply(s.targets[name])
	}
}
