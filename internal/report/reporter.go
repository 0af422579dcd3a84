// Package report renders the event stream of sequences and machines as a
// human-readable console log.
package report

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	cblog "github.com/charmbracelet/log"

	"github.com/alexisbeaulieu97/motionkit/internal/events"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
)

// Options configures the charmbracelet/log backed reporter.
type Options struct {
	Writer io.Writer
	Level  string
	// Format is one of text, logfmt or json. Empty selects text.
	Format     string
	TimeFormat string
	Timestamps bool
	Fields     map[string]any
	// Verbose reports step.started and step.completed at info level
	// instead of debug.
	Verbose bool
}

// Reporter writes one log line per event and keeps per-type counts.
type Reporter struct {
	logger  *cblog.Logger
	verbose bool

	mu     sync.Mutex
	counts map[string]int
}

// New creates a Reporter with the supplied options.
func New(opts Options) (*Reporter, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parse report level: %w", err)
		}
		level = parsed
	}

	formatter, err := parseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	base := cblog.NewWithOptions(writer, cblog.Options{
		Level:           level,
		TimeFormat:      opts.TimeFormat,
		ReportTimestamp: opts.Timestamps,
		Formatter:       formatter,
		Fields:          mapToFields(opts.Fields),
	})

	return &Reporter{
		logger:  base,
		verbose: opts.Verbose,
		counts:  make(map[string]int),
	}, nil
}

func parseFormat(name string) (cblog.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return cblog.TextFormatter, nil
	case "logfmt":
		return cblog.LogfmtFormatter, nil
	case "json":
		return cblog.JSONFormatter, nil
	}
	return cblog.TextFormatter, fmt.Errorf("unknown report format %q", name)
}

// Attach subscribes the reporter to every event on bus.
func (r *Reporter) Attach(bus *events.Bus) ports.Subscription {
	return bus.OnAny(r.Handle)
}

// Handle renders a single event. It implements ports.EventHandler.
func (r *Reporter) Handle(event ports.Event) error {
	if r == nil || r.logger == nil {
		return nil
	}

	r.mu.Lock()
	r.counts[event.Type]++
	r.mu.Unlock()

	fields := make([]any, 0, 2+len(event.Payload)*2)
	if event.Source != "" {
		fields = append(fields, "source", event.Source)
	}
	fields = append(fields, mapToFields(event.Payload)...)

	r.logger.Log(r.levelFor(event.Type), event.Type, fields...)
	return nil
}

func (r *Reporter) levelFor(eventType string) cblog.Level {
	switch eventType {
	case ports.EventStepFailed:
		return cblog.WarnLevel
	case ports.EventStepStarted, ports.EventStepCompleted, ports.EventMachineTransition:
		if r.verbose {
			return cblog.InfoLevel
		}
		return cblog.DebugLevel
	}
	return cblog.InfoLevel
}

// Counts returns how many events of each type were reported.
func (r *Reporter) Counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.counts)
}

// Summary writes one line with the per-type event counts.
func (r *Reporter) Summary() {
	counts := r.Counts()
	fields := make([]any, 0, len(counts)*2)
	for _, key := range slices.Sorted(maps.Keys(counts)) {
		fields = append(fields, key, counts[key])
	}
	r.logger.Info("summary", fields...)
}

func mapToFields(input map[string]any) []any {
	if len(input) == 0 {
		return nil
	}
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := make([]any, 0, len(input)*2)
	for _, k := range keys {
		res = append(res, k, input[k])
	}
	return res
}
