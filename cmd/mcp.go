package cmd

import (
	"github.com/huangsam/dendro/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the dendro MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents crossdate and summarise
ring-width files through standard tools.

Tools: crossdate, chronology, series_correlation, stabilize, series_stats.
Every tool takes a path plus the same tuning parameters as the CLI; the flags
given here become the defaults. Parsed datasets are cached in memory.

Examples:
  dendro mcp
  dendro mcp --correlation pearson --slide-period 40`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers are suppressed per request, since stdio carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
