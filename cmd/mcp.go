package cmd

import (
	"github.com/agentic-research/rosgraph/internal/tools"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server on stdio exposing the project operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tools.Serve(projectPath)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
