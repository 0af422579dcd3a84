package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/scene"
	"github.com/alexisbeaulieu97/motionkit/internal/scheduler"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
	"github.com/alexisbeaulieu97/motionkit/internal/tui"
	"github.com/alexisbeaulieu97/motionkit/pkg/diff"
)

const defaultMaxFrames = 100_000

type playOptions struct {
	ScenePath string
	Sequence  string
	Headless  bool
	Step      time.Duration
	MaxFrames int
	// Expect names a golden file the result document must match; with
	// Update the file is rewritten instead.
	Expect string
	Update bool
}

var playCmdRunner = runPlay

func newPlayCmd(root *rootFlags) *cobra.Command {
	opts := playOptions{}

	cmd := &cobra.Command{
		Use:   "play <scene-file>",
		Short: "Play a sequence from a scene file",
		Long: `Play runs a sequence of a scene file. On a terminal it opens an interactive
preview; otherwise, or with --headless, it simulates playback on a virtual clock and
reports every event followed by the final target values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ScenePath = args[0]
			if !isTerminal(cmd.OutOrStdout()) {
				opts.Headless = true
			}
			return playCmdRunner(cmd.OutOrStdout(), cmd.ErrOrStderr(), root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Sequence, "sequence", "s", "", "Sequence id (defaults to the first declared)")
	cmd.Flags().BoolVar(&opts.Headless, "headless", false, "Simulate playback without the interactive preview")
	cmd.Flags().DurationVar(&opts.Step, "step", 0, "Simulated frame interval (defaults to the scene frame interval)")
	cmd.Flags().IntVar(&opts.MaxFrames, "max-frames", defaultMaxFrames, "Frame limit for headless playback")
	cmd.Flags().StringVar(&opts.Expect, "expect", "", "Golden file the headless result must match")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "Rewrite the --expect golden file with the current result")

	return cmd
}

func runPlay(out, errOut io.Writer, root *rootFlags, opts playOptions) error {
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
		seq, err := pickSequence(rt, opts.Sequence)
		if err != nil {
			return err
		}
		estimate, _ := seq.Program().Estimate()
		model := tui.NewModel(sc.Name, seq, seq.Program().Targets(), estimate, rt.FrameInterval)
		rt.Bus.OnAny(model.Collect())
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return fmt.Errorf("failed to run preview: %w", err)
		}
		return nil
	}

	clock := scheduler.NewManualClock(epoch)
	loop := scheduler.NewLoop(clock, log)
	rt, err := scene.Compile(sc, scene.Deps{Logger: log, Clock: clock, Ticker: loop})
	if err != nil {
		return err
	}
	seq, err := pickSequence(rt, opts.Sequence)
	if err != nil {
		return err
	}

	reporter, err := newReporter(root, out)
	if err != nil {
		return err
	}
	reporter.Attach(rt.Bus)

	step := opts.Step
	if step <= 0 {
		step = rt.FrameInterval
	}

	seq.Start()
	frames := loop.Drain(clock, step, opts.MaxFrames)
	if !seq.Status().Done() {
		seq.Stop()
	}
	reporter.Summary()

	var doc bytes.Buffer
	if err := writeYAML(&doc, playResult{
		Sequence: seq.Name(),
		Status:   seq.Status().String(),
		Frames:   frames,
		Elapsed:  seq.Elapsed().String(),
		Values:   finalValues(seq),
	}); err != nil {
		return err
	}
	if _, err := out.Write(doc.Bytes()); err != nil {
		return err
	}
	if opts.Expect != "" {
		if err := compareGolden(out, opts.Expect, doc.Bytes(), opts.Update); err != nil {
			return err
		}
	}

	if seq.Status() == sequence.StatusFailed {
		return fmt.Errorf("sequence %q failed", seq.Name())
	}
	if seq.Status() != sequence.StatusCompleted {
		return fmt.Errorf("sequence %q did not finish within %d frames", seq.Name(), opts.MaxFrames)
	}
	return nil
}

type playResult struct {
	Sequence string                  `yaml:"sequence"`
	Status   string                  `yaml:"status"`
	Frames   int                     `yaml:"frames"`
	Elapsed  string                  `yaml:"elapsed"`
	Values   map[string]effect.Props `yaml:"values"`
}

func pickSequence(rt *scene.Runtime, id string) (*sequence.Sequence, error) {
	if id == "" {
		ids := rt.SequenceIDs()
		if len(ids) == 0 {
			return nil, fmt.Errorf("scene %q declares no sequences", rt.Name)
		}
		id = ids[0]
	}
	seq, ok := rt.Sequence(id)
	if !ok {
		return nil, fmt.Errorf("scene %q has no sequence %q", rt.Name, id)
	}
	return seq, nil
}

func finalValues(seq *sequence.Sequence) map[string]effect.Props {
	values := make(map[string]effect.Props)
	for _, target := range seq.Program().Targets() {
		values[target] = seq.Values(target)
	}
	return values
}

// compareGolden checks actual against the golden file at path, printing a
// diff on mismatch. With update the golden file is overwritten.
func compareGolden(out io.Writer, path string, actual []byte, update bool) error {
	if update {
		if err := os.WriteFile(path, actual, 0o644); err != nil {
			return fmt.Errorf("write golden file: %w", err)
		}
		return nil
	}
	expected, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	d := diff.Unified(expected, actual, path, "playback")
	if d == "" {
		return nil
	}
	fmt.Fprint(out, d)
	inserted, deleted := diff.Changed(expected, actual)
	return fmt.Errorf("playback differs from %s: %d lines added, %d removed", path, inserted, deleted)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
