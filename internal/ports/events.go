package ports

import "time"

const (
	// EventSequenceStarted is emitted when a sequence begins playback.
	EventSequenceStarted = "sequence.started"
	// EventSequencePaused is emitted when playback is frozen.
	EventSequencePaused = "sequence.paused"
	// EventSequenceResumed is emitted when playback continues after a pause.
	EventSequenceResumed = "sequence.resumed"
	// EventSequenceCompleted is emitted once every step has finished.
	EventSequenceCompleted = "sequence.completed"
	// EventSequenceCancelled is emitted when a running sequence is stopped early.
	EventSequenceCancelled = "sequence.cancelled"
	// EventSequenceReset is emitted when the execution context is discarded.
	EventSequenceReset = "sequence.reset"
	// EventStepStarted is emitted when a step becomes active.
	EventStepStarted = "step.started"
	// EventStepCompleted is emitted when a step finishes.
	EventStepCompleted = "step.completed"
	// EventStepSkipped is emitted when the motion adapter suppresses an animation.
	EventStepSkipped = "step.skipped"
	// EventStepSubstituted is emitted when a non-motion alternative replaces an animation.
	EventStepSubstituted = "step.substituted"
	// EventStepFailed is emitted when a side-effecting step returns an error or panics.
	EventStepFailed = "step.failed"
	// EventMachineTransition is emitted when a transition is selected.
	EventMachineTransition = "machine.transition"
	// EventMachineStateChanged is emitted after the current state pointer moves.
	EventMachineStateChanged = "machine.state_changed"
	// EventMachineRejected is emitted when an event has no matching transition.
	EventMachineRejected = "machine.rejected"
	// EventMachineTimeout is emitted when an auto-advance timer fires.
	EventMachineTimeout = "machine.timeout"
)

// Event is one observable occurrence. Custom events use any Type outside the
// reserved names above.
type Event struct {
	Type      string
	Source    string
	Timestamp time.Time
	Payload   map[string]any
}

// EventHandler processes an event. Returned errors are logged by the
// publisher and never interrupt delivery to other handlers.
type EventHandler func(Event) error

// Subscription represents a registered handler. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// EventPublisher distributes events synchronously, in subscription order.
type EventPublisher interface {
	Publish(event Event)
	On(eventType string, handler EventHandler) Subscription
}
