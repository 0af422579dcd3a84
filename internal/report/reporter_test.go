package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/motionkit/internal/events"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
)

func TestReporterWritesEvents(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	r, err := New(Options{Writer: buf, Format: "logfmt"})
	require.NoError(t, err)

	bus := events.NewBus()
	sub := r.Attach(bus)

	bus.Publish(ports.Event{Type: ports.EventSequenceStarted, Source: "intro", Payload: map[string]any{"run_id": "r1"}})
	bus.Publish(ports.Event{Type: ports.EventStepStarted, Source: "intro"})
	bus.Publish(ports.Event{Type: ports.EventStepFailed, Source: "intro", Payload: map[string]any{"error": errors.New("boom")}})

	out := buf.String()
	require.Contains(t, out, "sequence.started")
	require.Contains(t, out, "source=intro")
	require.Contains(t, out, "run_id=r1")
	require.Contains(t, out, "step.failed")
	require.Contains(t, out, "boom")
	require.NotContains(t, out, "step.started")

	require.Equal(t, map[string]int{
		ports.EventSequenceStarted: 1,
		ports.EventStepStarted:     1,
		ports.EventStepFailed:      1,
	}, r.Counts())

	sub.Unsubscribe()
	bus.Publish(ports.Event{Type: ports.EventSequenceCompleted})
	require.Equal(t, 0, r.Counts()[ports.EventSequenceCompleted])
}

func TestReporterVerboseIncludesSteps(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	r, err := New(Options{Writer: buf, Format: "logfmt", Verbose: true})
	require.NoError(t, err)

	require.NoError(t, r.Handle(ports.Event{Type: ports.EventStepCompleted, Source: "intro"}))
	require.Contains(t, buf.String(), "step.completed")
}

func TestReporterSummary(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	r, err := New(Options{Writer: buf, Format: "logfmt"})
	require.NoError(t, err)

	_ = r.Handle(ports.Event{Type: "custom"})
	_ = r.Handle(ports.Event{Type: "custom"})
	buf.Reset()

	r.Summary()
	line := strings.TrimSpace(buf.String())
	require.Contains(t, line, "summary")
	require.Contains(t, line, "custom=2")
}

func TestNewRejectsBadOptions(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "loud"})
	require.Error(t, err)

	_, err = New(Options{Format: "xml"})
	require.Error(t, err)
}

func TestNilReporterIgnoresEvents(t *testing.T) {
	t.Parallel()

	var r *Reporter
	require.NoError(t, r.Handle(ports.Event{Type: "x"}))
}
