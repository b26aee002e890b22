package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/docflows/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check workflows and checks for consistency",
	Long: `Loads every workflow and check from the configured source and reports
definition errors, transitions naming unknown checks, unreachable states
and unused checks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		store, err := cli.NewStore(cfg)
		if err != nil {
			return err
		}

		v := cli.Validate(cmd.Context(), store)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Workflows: %s\n", strings.Join(v.Workflows, ", "))
		fmt.Fprintf(out, "Checks: %s\n", strings.Join(v.Checks, ", "))
		for _, w := range v.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		for _, e := range v.Errors {
			fmt.Fprintf(out, "error: %s\n", e)
		}
		if !v.OK() {
			return errors.New("validation failed")
		}
		fmt.Fprintln(out, "Specs are valid!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
