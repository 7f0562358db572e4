package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/runtime-truth/internal/collector"
)

func collectCmd() *cobra.Command {
	var jobsFile, sessionsFile, runsDir, subagentFile, eventsFile string

	cmd := &cobra.Command{
		Use:   "collect-runtime-events",
		Short: "Poll the cron/session/subagent producers and append new events to the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if jobsFile != "" {
				cfg.JobsFile = jobsFile
			}
			if sessionsFile != "" {
				cfg.SessionsFile = sessionsFile
			}
			if runsDir != "" {
				cfg.RunsDir = runsDir
			}
			if subagentFile != "" {
				cfg.SubagentFile = subagentFile
			}
			if eventsFile != "" {
				cfg.EventsFile = eventsFile
			}

			c := &collector.Collector{
				JobsFile:     cfg.JobsFile,
				SessionsFile: cfg.SessionsFile,
				RunsDir:      cfg.RunsDir,
				SubagentFile: cfg.SubagentFile,
			}
			evs, err := c.Collect()
			if err != nil {
				return fmt.Errorf("collect events: %w", err)
			}
			appended, err := collector.AppendNewEvents(cfg.EventsFile, evs)
			if err != nil {
				return fmt.Errorf("append journal: %w", err)
			}

			fmt.Printf("runtime events: collected=%d appended=%d\n", len(evs), appended)
			return nil
		},
	}
	cmd.Flags().StringVar(&jobsFile, "jobs-file", "", "override the cron jobs.json path")
	cmd.Flags().StringVar(&sessionsFile, "sessions-file", "", "override the sessions store path")
	cmd.Flags().StringVar(&runsDir, "runs-dir", "", "override the cron run-log directory")
	cmd.Flags().StringVar(&subagentFile, "subagent-file", "", "override the subagent registry path")
	cmd.Flags().StringVar(&eventsFile, "events-file", "", "override the runtime events journal path")
	return cmd
}
