// Package cmd wires the runtime-truth command-line tree: each
// subcommand runs one stage of the pipeline (collect, materialize,
// build, extract-release-notes) or serves it over MCP, all against a
// single resolved config.Config.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/runtime-truth/internal/config"
	"github.com/nextlevelbuilder/runtime-truth/internal/jsonlog"
)

var (
	workspaceFlag string
	configFlag    string
	logLevelFlag  string
	logFormatFlag string

	logger *slog.Logger
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runtime-truth",
		Short: "Deterministic runtime-truth pipeline for a personal-automation workspace",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = jsonlog.Setup(jsonlog.Options{Level: logLevelFlag, Format: logFormatFlag, Output: os.Stderr})
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", "", "workspace root (default: ~/.runtimetruth/workspace)")
	cmd.PersistentFlags().StringVar(&configFlag, "config", "", "optional YAML config override file")
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "auto", "log format: auto, text, json")

	cmd.AddCommand(collectCmd())
	cmd.AddCommand(materializeCmd())
	cmd.AddCommand(buildStatusCmd())
	cmd.AddCommand(releaseNotesCmd())
	cmd.AddCommand(mcpServerCmd())
	return cmd
}

// Execute runs the root command, exiting with status 1 on error.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(workspaceFlag, configFlag)
}
