package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/dendro/core"
	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// configFor applies the request overrides to a copy of the base config.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if c := request.GetString("correlation", ""); c != "" {
		cfg.Correlation = schema.CorrelationKind(strings.ToLower(c))
	}
	cfg.Prewhiten = request.GetBool("prewhiten", cfg.Prewhiten)
	cfg.Biweight = request.GetBool("biweight", cfg.Biweight)
	cfg.SlidePeriod = request.GetInt("slide_period", cfg.SlidePeriod)
	cfg.BinFloor = request.GetInt("bin_floor", cfg.BinFloor)
	cfg.PValue = request.GetFloat("p_value", cfg.PValue)
	cfg.LagRange = request.GetInt("lag_range", cfg.LagRange)
	cfg.Window = request.GetInt("window", cfg.Window)
	if m := request.GetString("method", ""); m != "" {
		cfg.RbarMethod = schema.RbarMethod(strings.ToLower(m))
	}
	if err := contract.RevalidateTool(cfg, request.GetString("path", "")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// jsonResult encodes v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCrossdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid crossdate parameters: %v", err)), nil
	}
	cfg.ShowFlags = request.GetBool("search_lags", true)

	result, _, err := core.GetCrossdateResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("crossdating failed: %v", err)), nil
	}
	return jsonResult(schema.NewXdateView(result))
}

func (h *toolHandler) handleChronology(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid chronology parameters: %v", err)), nil
	}
	cfg.Whiten = request.GetBool("whiten", false)

	chron, _, err := core.GetChronologyResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chronology failed: %v", err)), nil
	}
	return jsonResult(schema.ChronologyRows(chron))
}

func (h *toolHandler) handleSeriesCorrelation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series_correlation parameters: %v", err)), nil
	}
	cfg.FocusSeries = strings.TrimSpace(request.GetString("series", ""))
	if cfg.FocusSeries == "" {
		return mcp.NewToolResultError("series is required"), nil
	}

	result, _, err := core.GetSeriesCorrelationResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("series correlation failed: %v", err)), nil
	}
	return jsonResult(schema.NewFocusView(result))
}

func (h *toolHandler) handleStabilize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid stabilize parameters: %v", err)), nil
	}
	cfg.RunningRbar = request.GetBool("running_rbar", false)

	result, _, err := core.GetStabilizedResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stabilization failed: %v", err)), nil
	}
	return jsonResult(schema.NewStabilizedView(result))
}

func (h *toolHandler) handleSeriesStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series_stats parameters: %v", err)), nil
	}

	stats, _, err := core.GetStatsResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("statistics failed: %v", err)), nil
	}
	return jsonResult(schema.NewStatsViews(stats))
}
