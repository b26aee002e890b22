package main

import (
	"github.com/aretw0/docflows/internal/cli"
	"github.com/aretw0/docflows/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo [workflow]",
	Short: "Walk a report through the approval workflow",
	Long: `Creates a report and plays a scripted review on it: check failures,
a rejection, a resubmission and a transition that is not available.
Run with --log-level debug to see the transition events.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		eng, _, err := cli.NewEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		interactive := tui.IsInteractive(out)
		if interactive {
			tui.PrintBanner(out)
		}
		_, err = cli.RunDemo(cmd.Context(), out, eng, workflowArg(cfg, args), tui.NewRenderer(interactive))
		return err
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
