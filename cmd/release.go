package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/runtime-truth/internal/release"
)

func releaseNotesCmd() *cobra.Command {
	var version, changelog string

	cmd := &cobra.Command{
		Use:   "extract-release-notes",
		Short: "Print one version's section of a changelog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := changelog
			if path == "" {
				path = cfg.Changelog
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read changelog %s: %w", path, err)
			}

			notes, err := release.ExtractNotes(string(data), version)
			if err != nil {
				return err
			}
			fmt.Println(notes)
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "version to extract (required)")
	cmd.Flags().StringVar(&changelog, "changelog", "", "changelog path override")
	cmd.MarkFlagRequired("version")
	return cmd
}
