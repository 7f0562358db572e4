package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/runtime-truth/internal/collector"
	"github.com/nextlevelbuilder/runtime-truth/internal/reducer"
)

func materializeCmd() *cobra.Command {
	var eventsFile, out string
	var staleMs int64

	cmd := &cobra.Command{
		Use:   "materialize-runtime-state",
		Short: "Replay the event journal into a materialized runtime snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if eventsFile != "" {
				cfg.EventsFile = eventsFile
			}
			if out != "" {
				cfg.RuntimeStateOut = out
			}
			if staleMs > 0 {
				cfg.StaleMs = staleMs
			}

			evs, err := collector.ReadJournal(cfg.EventsFile)
			if err != nil {
				return fmt.Errorf("read journal %s: %w", cfg.EventsFile, err)
			}

			prior := reducer.ReadPriorRevision(cfg.RuntimeStateOut)
			snap := reducer.Materialize(evs, time.Now(), cfg.StaleMs, prior)
			if err := reducer.WriteSnapshotAtomic(cfg.RuntimeStateOut, snap); err != nil {
				return fmt.Errorf("write snapshot %s: %w", cfg.RuntimeStateOut, err)
			}

			fmt.Printf("runtime materialized: revision=%s active=%d terminals=%d\n", snap.Revision, snap.ActiveCount, snap.TerminalCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&eventsFile, "events-file", "", "override the runtime events journal path")
	cmd.Flags().StringVar(&out, "out", "", "override the materialized snapshot output path")
	cmd.Flags().Int64Var(&staleMs, "stale-ms", 600000, "staleness threshold in milliseconds for synthesizing expired-run terminals")
	return cmd
}
