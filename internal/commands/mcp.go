package commands

import (
	"github.com/moasq/wkinject/internal/injectserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:    "mcp",
	Short:  "Run MCP servers (used by editor integrations)",
	Hidden: true,
}

var mcpInjectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Run the companion injection MCP server",
	Long:  "Starts the companion injection MCP server over stdio. Exposes injection and project inspection as typed tool calls.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return injectserver.Run(cmd.Context())
	},
}

func init() {
	mcpCmd.AddCommand(mcpInjectCmd)
}
