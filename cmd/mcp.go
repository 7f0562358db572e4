package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/runtime-truth/internal/mcpserver"
)

func mcpServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve the runtime-truth tools as framed JSON-RPC over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			srv := mcpserver.NewServer(cfg, os.Stdin, os.Stdout, logger)
			srv.ConfigPath = configFlag
			srv.Workspace = workspaceFlag
			return srv.Run()
		},
	}
}
