package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/dendro/core/agg"
	"github.com/huangsam/dendro/core/algo"
	"github.com/huangsam/dendro/core/xdate"
	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/dataio"
	"github.com/huangsam/dendro/internal/iocache"
	"github.com/huangsam/dendro/internal/outwriter"
	"github.com/huangsam/dendro/schema"
)

// loadDataset reads the configured input through the dataset cache, if any.
func loadDataset(cfg *contract.Config, mgr contract.StoreManager) (*schema.Dataset, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("an input file is required")
	}
	var cache contract.DatasetCache
	if mgr != nil {
		cache = mgr.GetDatasetCache()
	}
	opts := dataio.ReadOptions{SkipLines: cfg.SkipLines, Header: cfg.RWLHeader}
	ds, err := iocache.LoadDataset(cache, cfg.InputPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cfg.InputPath, err)
	}
	return ds, nil
}

// loadWithHeader loads the dataset and prints the run header for text output.
func loadWithHeader(ctx context.Context, command string, cfg *contract.Config, mgr contract.StoreManager) (*schema.Dataset, error) {
	ds, err := loadDataset(cfg, mgr)
	if err != nil {
		return nil, err
	}
	if cfg.Output == schema.TextOut && !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(os.Stdout, command, cfg, ds)
	}
	return ds, nil
}

// warnSkipped reports skipped series on stderr when the report itself will not list them.
func warnSkipped(cfg *contract.Config, skipped []schema.SkippedSeries) {
	if cfg.Output == schema.TextOut {
		return
	}
	for _, sk := range skipped {
		contract.LogWarn("Skipped series "+sk.Name, errors.New(sk.Reason))
	}
}

// GetChronologyResults builds the mean chronology of the input dataset.
func GetChronologyResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.Chronology, time.Duration, error) {
	start := time.Now()
	ds, err := loadWithHeader(ctx, "chron", cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	chron, err := agg.BuildChronology(ds, agg.ChronologyOptions{
		Biweight:  cfg.Biweight,
		C:         cfg.BiweightC,
		Prewhiten: cfg.Whiten,
		MaxARLag:  cfg.MaxARLag,
	})
	if err != nil {
		return nil, 0, err
	}
	warnSkipped(cfg, chron.Skipped)
	return chron, time.Since(start), nil
}

// GetStabilizedResults builds the variance-stabilized chronology of the input dataset.
func GetStabilizedResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.StabilizedChronology, time.Duration, error) {
	start := time.Now()
	ds, err := loadWithHeader(ctx, "stabilize", cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	result, err := agg.Stabilize(ds, agg.StabilizeOptions{
		Window:      cfg.Window,
		MinSegRatio: cfg.MinSegRatio,
		Method:      cfg.RbarMethod,
		Biweight:    cfg.Biweight,
		C:           cfg.BiweightC,
		RunningRbar: cfg.RunningRbar,
	})
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// GetRbarResults computes the interseries correlation statistics of the input dataset.
func GetRbarResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.RbarResult, time.Duration, error) {
	start := time.Now()
	ds, err := loadWithHeader(ctx, "rbar", cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	result, err := agg.Rbar(ds, agg.RbarOptions{
		Window:      cfg.Window,
		MinSegRatio: cfg.MinSegRatio,
		Method:      cfg.RbarMethod,
		Kind:        cfg.RbarCorrelation,
	})
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// xdateOptions maps the config onto crossdating engine options.
func xdateOptions(cfg *contract.Config) xdate.Options {
	return xdate.Options{
		Kind:         cfg.Correlation,
		Prewhiten:    cfg.Prewhiten,
		SlidePeriod:  cfg.SlidePeriod,
		BinFloor:     cfg.BinFloor,
		PValue:       cfg.PValue,
		SearchLags:   cfg.ShowFlags,
		LagRange:     cfg.LagRange,
		LagThreshold: cfg.LagThreshold,
		Biweight:     cfg.Biweight,
		C:            cfg.BiweightC,
		Workers:      cfg.Workers,
	}
}

// focusOptions maps the config onto single-series options.
func focusOptions(cfg *contract.Config) xdate.FocusOptions {
	return xdate.FocusOptions{
		Kind:      cfg.Correlation,
		Prewhiten: cfg.Prewhiten,
		SegLength: cfg.SlidePeriod,
		BinFloor:  cfg.BinFloor,
		PValue:    cfg.PValue,
		LagRange:  cfg.FocusLagRange,
		Biweight:  cfg.Biweight,
		C:         cfg.BiweightC,
	}
}

// GetCrossdateResults crossdates every series of the input dataset against
// its leave-one-out chronology and records the run when tracking is enabled.
func GetCrossdateResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.XdateResult, time.Duration, error) {
	start := time.Now()
	ds, err := loadWithHeader(ctx, "xdate", cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	ctx = beginRun(ctx, mgr, "xdate", cfg)
	result, err := xdate.Crossdate(ctx, ds, xdateOptions(cfg))
	if err != nil {
		return nil, 0, err
	}
	warnSkipped(cfg, result.Skipped)
	recordXdate(ctx, mgr, result)
	return result, time.Since(start), nil
}

// GetSeriesCorrelationResults runs the single-series diagnostic for cfg.FocusSeries.
func GetSeriesCorrelationResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.FocusResult, time.Duration, error) {
	start := time.Now()
	if cfg.FocusSeries == "" {
		return nil, 0, errors.New("--series is required")
	}
	ds, err := loadWithHeader(ctx, "series-corr", cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	ctx = beginRun(ctx, mgr, "series-corr", cfg)
	result, err := xdate.SeriesCorrelation(ctx, ds, cfg.FocusSeries, focusOptions(cfg))
	if err != nil {
		return nil, 0, err
	}
	warnSkipped(cfg, result.Skipped)
	recordFocus(ctx, mgr, result)
	return result, time.Since(start), nil
}

// GetStatsResults describes every series of the input dataset in name order.
func GetStatsResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.SeriesStats, time.Duration, error) {
	start := time.Now()
	ds, err := loadWithHeader(ctx, "stats", cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	stats := make([]schema.SeriesStats, 0, len(ds.Series))
	for _, name := range ds.SortedNames() {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		i, _ := ds.Lookup(name)
		stats = append(stats, algo.Describe(ds.Points(i)))
	}
	return stats, time.Since(start), nil
}

// GetDetrendedDataset converts the input dataset to ring-width indices.
func GetDetrendedDataset(cfg *contract.Config, mgr contract.StoreManager) (*schema.Dataset, error) {
	ds, err := loadDataset(cfg, mgr)
	if err != nil {
		return nil, err
	}
	return algo.Detrend(ds, cfg.Fit, cfg.DetrendMethod)
}
