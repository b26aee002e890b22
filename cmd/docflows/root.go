package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/docflows/internal/cli"
	"github.com/aretw0/docflows/internal/config"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docflows",
	Short: "docflows moves documents through guarded approval workflows",
	Long: `docflows loads workflow definitions and checks from JSON or YAML documents
(local files or Redis), validates them, and serves reports moving through
them over HTTP or MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ./docflows.yaml)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("source", config.SourceFile, "Spec source: file or redis")
	pf.String("workflows", "workflows.json", "Workflows document (file source)")
	pf.String("checks", "", "Checks document (file source)")
	pf.String("workflow", "ReportWorkflow", "Workflow used when none is named")
	pf.String("redis-addr", "localhost:6379", "Redis address (redis source)")
	pf.String("redis-password", "", "Redis password (redis source)")
	pf.Int("redis-db", 0, "Redis database (redis source)")
	pf.String("redis-prefix", "docflows:spec:", "Redis key prefix (redis source)")
}

// setup resolves the configuration of cmd and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// workflowArg picks the workflow named on the command line, falling back to
// the configured one.
func workflowArg(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Workflow
}
