package main

import (
	"fmt"

	"github.com/aretw0/docflows/internal/cli"
	"github.com/aretw0/docflows/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [workflow]",
	Short: "Export a workflow as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the workflow states and transitions, with their checks as edge labels.`,
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
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(def, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
