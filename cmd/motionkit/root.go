package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose   bool
	logFormat string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "motionkit",
		Short:         "motionkit plays, inspects and scores declarative animation scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Event report format: text, logfmt or json")

	cmd.AddCommand(newPlayCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newScoreCmd())
	cmd.AddCommand(newTrajectoryCmd(flags))
	cmd.AddCommand(newMachineCmd(flags))
	cmd.AddCommand(newActionsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
