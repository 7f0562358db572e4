package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/runtime-truth/internal/payload"
)

func buildStatusCmd() *cobra.Command {
	var workspace, jobsFile, out string

	cmd := &cobra.Command{
		Use:   "build-status-json",
		Short: "Build the dashboard status payload and write it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspace != "" {
				workspaceFlag = workspace
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if jobsFile != "" {
				cfg.JobsFile = jobsFile
			}

			b := payload.NewBuilder(cfg)
			p, err := b.Build(time.Now(), true)
			if err != nil {
				return fmt.Errorf("build status payload: %w", err)
			}

			data, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal status payload: %w", err)
			}

			if out == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write status payload %s: %w", out, err)
			}
			fmt.Printf("status payload written: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace root override")
	cmd.Flags().StringVar(&jobsFile, "jobs-file", "", "override the cron jobs.json path")
	cmd.Flags().StringVar(&out, "out", "", "write the payload here instead of stdout")
	return cmd
}
