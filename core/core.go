// Package core has core logic for loading datasets, running analyses and reporting them.
package core

import (
	"context"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/outwriter"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteChronology builds the mean chronology and prints it.
// It serves as the main entry point for the 'chron' command.
func ExecuteChronology(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	chron, duration, err := GetChronologyResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteChronology(chron, cfg, duration)
}

// ExecuteStabilize builds the variance-stabilized chronology and prints it.
func ExecuteStabilize(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, duration, err := GetStabilizedResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteStabilized(result, cfg, duration)
}

// ExecuteRbar computes interseries correlation and prints it.
func ExecuteRbar(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, duration, err := GetRbarResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteRbar(result, cfg, duration)
}

// ExecuteCrossdate runs segment crossdating over every series and prints
// the correlation table and flags.
func ExecuteCrossdate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, duration, err := GetCrossdateResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteXdate(result, cfg, duration)
}

// ExecuteSeriesCorrelation runs the single-series diagnostic and prints it.
func ExecuteSeriesCorrelation(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, duration, err := GetSeriesCorrelationResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteFocus(result, cfg, duration)
}

// ExecuteStats prints summary statistics for every series.
func ExecuteStats(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	stats, duration, err := GetStatsResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteStats(stats, cfg, duration)
}

// ExecuteDetrend writes the detrended dataset in cfg.DataFormat.
func ExecuteDetrend(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	ds, err := GetDetrendedDataset(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteDataset(ds, cfg)
}

// ExecuteConvert rewrites the input dataset in cfg.DataFormat.
func ExecuteConvert(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	ds, err := loadDataset(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteDataset(ds, cfg)
}
