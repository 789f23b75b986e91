// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// tuningOptions are the parameters shared by every dataset tool.
func tuningOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("path", mcp.Description("Path to a ring-width file (.csv or .rwl)."), mcp.Required()),
		mcp.WithString("correlation", mcp.Description("Correlation statistic. Defaults to 'spearman'."), mcp.Enum("pearson", "spearman")),
		mcp.WithBoolean("prewhiten", mcp.Description("Replace series with their AR residuals before comparison.")),
		mcp.WithBoolean("biweight", mcp.Description("Use the Tukey biweight robust mean for chronologies.")),
		mcp.WithNumber("slide_period", mcp.Description("Segment length in years (minimum 3).")),
		mcp.WithNumber("bin_floor", mcp.Description("Bins start at multiples of this year; 0 starts at the first year.")),
		mcp.WithNumber("p_value", mcp.Description("Significance level for the critical correlation, in (0, 0.5).")),
		mcp.WithNumber("lag_range", mcp.Description("Largest shift in years searched for lag flags.")),
		mcp.WithNumber("window", mcp.Description("Running rbar window in years.")),
		mcp.WithString("method", mcp.Description("Interseries correlation method."), mcp.Enum("osborn", "frank")),
	}
}

// newTool builds a dataset tool with the shared tuning parameters plus extra.
func newTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(description)}, tuningOptions()...)
	return mcp.NewTool(name, append(opts, extra...)...)
}

// NewMCPServer initializes and configures the dendro MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Dendro Crossdating Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: crossdate ---
	s.AddTool(newTool("crossdate",
		"Crossdate every series of a ring-width file against its leave-one-out chronology and report segment correlations and flags.",
		mcp.WithBoolean("search_lags", mcp.Description("Search shifted alignments and raise lag flags. Defaults to true.")),
	), h.handleCrossdate)

	// --- 2. Tool: chronology ---
	s.AddTool(newTool("chronology",
		"Build the mean chronology and sample depth of a ring-width file.",
		mcp.WithBoolean("whiten", mcp.Description("Also return the chronology of AR residuals.")),
	), h.handleChronology)

	// --- 3. Tool: series_correlation ---
	s.AddTool(newTool("series_correlation",
		"Correlate one series against the chronology of the others with moving segments and lag profiles.",
		mcp.WithString("series", mcp.Description("Name of the series to examine."), mcp.Required()),
	), h.handleSeriesCorrelation)

	// --- 4. Tool: stabilize ---
	s.AddTool(newTool("stabilize",
		"Build a variance-stabilized chronology that corrects for changing sample depth.",
		mcp.WithBoolean("running_rbar", mcp.Description("Include the running interseries correlation.")),
	), h.handleStabilize)

	// --- 5. Tool: series_stats ---
	s.AddTool(newTool("series_stats",
		"Summarise every series: span, mean, median, standard deviation, skew, Gini and AR1."),
		h.handleSeriesStats)

	return s
}

// StartMCPServer starts the dendro MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
