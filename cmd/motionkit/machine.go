package main

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/scene"
	"github.com/alexisbeaulieu97/motionkit/internal/scheduler"
	"github.com/alexisbeaulieu97/motionkit/internal/statemachine"
	"github.com/alexisbeaulieu97/motionkit/internal/tui/dashboard"
)

// settleFrames bounds how long a headless run waits for one transition.
const settleFrames = 10_000

type machineOptions struct {
	ScenePath string
	ID        string
	Events    []string
	Headless  bool
}

func newMachineCmd(root *rootFlags) *cobra.Command {
	opts := machineOptions{}

	cmd := &cobra.Command{
		Use:   "machine <scene-file>",
		Short: "Drive the state machines of a scene",
		Long: `Machine opens an interactive dashboard of the scene's state machines on a
terminal. With --send, or when output is not a terminal, it instead sends the given
events in order to one machine, letting each transition finish, and prints the
resulting state, values and history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ScenePath = args[0]
			if len(opts.Events) > 0 || !isTerminal(cmd.OutOrStdout()) {
				opts.Headless = true
			}
			return runMachine(cmd.OutOrStdout(), cmd.ErrOrStderr(), root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "Machine id (defaults to the first declared)")
	cmd.Flags().StringSliceVar(&opts.Events, "send", nil, "Events to send, in order")

	return cmd
}

type machineResult struct {
	Machine  string          `yaml:"machine"`
	State    string          `yaml:"state"`
	Accepted []string        `yaml:"accepted,omitempty"`
	Ignored  []string        `yaml:"ignored,omitempty"`
	Values   effect.Props    `yaml:"values"`
	History  []historyRecord `yaml:"history,omitempty"`
}

type historyRecord struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Event string `yaml:"event"`
	At    string `yaml:"at"`
}

func runMachine(out, errOut io.Writer, root *rootFlags, opts machineOptions) error {
	sc, err := loadScene(opts.ScenePath)
	if err != nil {
		return err
	}
	log, err := newLogger(root, errOut)
	if err != nil {
		return err
	}

	if !opts.Headless {
		rt, err := scene.Compile(sc, scene.Deps{Logger: log})
		if err != nil {
			return err
		}
		var machines []*statemachine.Machine
		for _, id := range rt.MachineIDs() {
			m, _ := rt.Machine(id)
			machines = append(machines, m)
		}
		if _, err := tea.NewProgram(dashboard.NewModel(machines, rt.FrameInterval), tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("failed to run dashboard: %w", err)
		}
		return nil
	}

	clock := scheduler.NewManualClock(epoch)
	rt, err := scene.Compile(sc, scene.Deps{Logger: log, Clock: clock})
	if err != nil {
		return err
	}
	m, err := pickMachine(rt, opts.ID)
	if err != nil {
		return err
	}

	reporter, err := newReporter(root, out)
	if err != nil {
		return err
	}
	reporter.Attach(rt.Bus)

	m.Start()
	settle(m, clock, rt.FrameInterval)

	result := machineResult{Machine: m.Name()}
	for _, event := range opts.Events {
		accepted, err := m.Send(event)
		if err != nil {
			return err
		}
		if !accepted {
			result.Ignored = append(result.Ignored, event)
			continue
		}
		result.Accepted = append(result.Accepted, event)
		settle(m, clock, rt.FrameInterval)
	}
	m.Stop()
	reporter.Summary()

	result.State = m.State()
	result.Values = m.Values()
	for _, entry := range m.History() {
		result.History = append(result.History, historyRecord{
			From:  entry.From,
			To:    entry.To,
			Event: entry.Event,
			At:    entry.Timestamp.Sub(epoch).String(),
		})
	}
	return writeYAML(out, result)
}

// settle ticks m on the manual clock until its transition finishes.
func settle(m *statemachine.Machine, clock *scheduler.ManualClock, step time.Duration) {
	for i := 0; i < settleFrames && m.InTransition(); i++ {
		m.Tick(clock.Advance(step))
	}
}

func pickMachine(rt *scene.Runtime, id string) (*statemachine.Machine, error) {
	if id == "" {
		ids := rt.MachineIDs()
		if len(ids) == 0 {
			return nil, fmt.Errorf("scene %q declares no state machines", rt.Name)
		}
		id = ids[0]
	}
	m, ok := rt.Machine(id)
	if !ok {
		return nil, fmt.Errorf("scene %q has no state machine %q", rt.Name, id)
	}
	return m, nil
}
