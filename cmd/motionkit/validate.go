package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/motionkit/internal/scene"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newValidateCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scene-file>",
		Short: "Check a scene file without playing it",
		Long: `Validate parses the scene, checks every reference and compiles its sequences
and state machines. It exits non-zero on the first problem found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), cmd.ErrOrStderr(), root, args[0])
		},
	}

	return cmd
}

func runValidate(out, errOut io.Writer, root *rootFlags, path string) error {
	sc, err := loadScene(path)
	if err != nil {
		return err
	}
	log, err := newLogger(root, errOut)
	if err != nil {
		return err
	}
	rt, err := scene.Compile(sc, scene.Deps{Logger: log})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✓ scene %q is valid", sc.Name)))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("KIND", "ID", "DETAIL")

	for _, id := range rt.SequenceIDs() {
		seq, _ := rt.Sequence(id)
		estimate := "unbounded"
		if d, ok := seq.Program().Estimate(); ok {
			estimate = d.Truncate(time.Millisecond).String()
		}
		t.Row("sequence", id, fmt.Sprintf("%d steps, ~%s", len(seq.Program().Blocks()), estimate))
	}
	for _, id := range rt.MachineIDs() {
		m, _ := rt.Machine(id)
		def := m.Definition()
		t.Row("machine", id, fmt.Sprintf("%d states, %d transitions, initial %s", len(def.States()), len(def.Transitions()), def.Initial()))
	}
	for _, id := range sortedTrajectoryIDs(rt) {
		t.Row("trajectory", id, "")
	}
	t.Row("targets", strconv.Itoa(len(rt.Targets)), "")

	fmt.Fprintln(out, t.String())
	return nil
}

func sortedTrajectoryIDs(rt *scene.Runtime) []string {
	ids := make([]string, 0, len(rt.Trajectories))
	for id := range rt.Trajectories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
