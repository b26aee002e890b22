package main

import (
	"fmt"

	"github.com/aretw0/docflows/internal/cli"
	"github.com/aretw0/docflows/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [workflow]",
	Short: "Describe a workflow and its checks",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		eng, _, err := cli.NewEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		def, err := eng.Workflow(workflowArg(cfg, args))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		render := tui.NewRenderer(tui.IsInteractive(out))
		text, err := render(tui.DefinitionMarkdown(def, eng.Checks()))
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
