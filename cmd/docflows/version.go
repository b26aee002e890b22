package main

import (
	"fmt"

	"github.com/aretw0/docflows"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of docflows",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docflows version %s\n", docflows.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
