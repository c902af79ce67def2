package cmd

import (
	"github.com/huangsam/timelapse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [input]",
	Short: "Start the timelapse MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents move the cursor, brush the
scatter plot and step through the narrative of one loaded history.

Diagnostics are written to stderr so stdout stays reserved for the protocol.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
