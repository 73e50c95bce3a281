package cmd

import (
	"servctl/internal/mcptools"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the console operations as MCP tools over stdio",
	Long: `Runs a Model Context Protocol server on stdin/stdout so an AI assistant
can list servers, check their status, start, stop and restart them, toggle
the tunnel, send commands and read the console.

Example configuration for an MCP client:

  {
    "mcpServers": {
      "servctl": { "command": "servctl", "args": ["mcp"] }
    }
  }

Logs go to stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := bootstrap()
		if err != nil {
			return err
		}
		return mcptools.ServeStdio(mcptools.NewServer(services, rootCmd.Version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
