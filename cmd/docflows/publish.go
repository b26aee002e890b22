package main

import (
	"fmt"
	"os"

	"github.com/aretw0/docflows/internal/cli"
	"github.com/aretw0/docflows/pkg/loader"
	"github.com/aretw0/docflows/pkg/ports"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish local spec files to the configured source",
	Long: `Reads workflows and checks from local files, verifies that they parse,
and stores them in the configured source. With --source redis every
running 'serve' watching the same prefix reloads them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		store, err := cli.NewStore(cfg)
		if err != nil {
			return err
		}

		workflowsPath, _ := cmd.Flags().GetString("from-workflows")
		checksPath, _ := cmd.Flags().GetString("from-checks")
		if workflowsPath == "" && checksPath == "" {
			return fmt.Errorf("nothing to publish: set --from-workflows and/or --from-checks")
		}

		ctx := cmd.Context()
		if workflowsPath != "" {
			doc, err := readDocument(workflowsPath)
			if err != nil {
				return err
			}
			if _, err := loader.ParseWorkflows(doc); err != nil {
				return fmt.Errorf("refusing to publish %s: %w", workflowsPath, err)
			}
			if err := store.PublishWorkflows(ctx, doc); err != nil {
				return err
			}
			logger.Info("Workflows published", "file", workflowsPath, "source", cfg.Source)
		}
		if checksPath != "" {
			doc, err := readDocument(checksPath)
			if err != nil {
				return err
			}
			if _, err := loader.ParseChecks(doc); err != nil {
				return fmt.Errorf("refusing to publish %s: %w", checksPath, err)
			}
			if err := store.PublishChecks(ctx, doc); err != nil {
				return err
			}
			logger.Info("Checks published", "file", checksPath, "source", cfg.Source)
		}
		return nil
	},
}

func readDocument(path string) (ports.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ports.Document{}, err
	}
	return ports.Document{Data: data, Format: ports.FormatFromPath(path)}, nil
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().String("from-workflows", "", "Local workflows document to publish")
	publishCmd.Flags().String("from-checks", "", "Local checks document to publish")
}
