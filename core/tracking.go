package core

import (
	"context"
	"math"
	"time"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/schema"
)

// beginRun opens a run history entry when a run store is configured and
// returns a context carrying its ID. Tracking failures never fail the command.
func beginRun(ctx context.Context, mgr contract.StoreManager, command string, cfg *contract.Config) context.Context {
	if mgr == nil {
		return ctx
	}
	store := mgr.GetRunStore()
	if store == nil {
		return ctx
	}
	runID, err := store.BeginRun(command, cfg.InputPath, time.Now(), runConfigParams(cfg))
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx
	}
	if runID <= 0 {
		return ctx
	}
	return withRunID(ctx, runID)
}

// runConfigParams captures the settings that shape a crossdating result.
func runConfigParams(cfg *contract.Config) map[string]any {
	return map[string]any{
		"correlation":   string(cfg.Correlation),
		"prewhiten":     cfg.Prewhiten,
		"slide_period":  cfg.SlidePeriod,
		"bin_floor":     cfg.BinFloor,
		"p_value":       cfg.PValue,
		"lag_range":     cfg.LagRange,
		"lag_threshold": cfg.LagThreshold,
		"biweight":      cfg.Biweight,
		"workers":       cfg.Workers,
	}
}

// recordXdate stores per-series outcomes of a crossdating run and closes it.
func recordXdate(ctx context.Context, mgr contract.StoreManager, result *schema.XdateResult) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	store := mgr.GetRunStore()
	for _, record := range xdateRecords(runID, result) {
		if err := store.RecordSeriesResult(runID, record); err != nil {
			logTrackingError("record series", record.SeriesName, err)
		}
	}
	if err := store.EndRun(runID, time.Now(), len(result.Series)+len(result.Skipped), len(result.Flags)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// recordFocus stores the outcome of a single-series run and closes it.
func recordFocus(ctx context.Context, mgr contract.StoreManager, result *schema.FocusResult) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	store := mgr.GetRunStore()
	record := focusRecord(runID, result)
	if err := store.RecordSeriesResult(runID, record); err != nil {
		logTrackingError("record series", record.SeriesName, err)
	}
	if err := store.EndRun(runID, time.Now(), 1, 0); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// xdateRecords summarises each series of a crossdating result.
func xdateRecords(runID int64, result *schema.XdateResult) []schema.RunSeriesRecord {
	records := make([]schema.RunSeriesRecord, 0, len(result.Series)+len(result.Skipped))
	for s, name := range result.Series {
		record := schema.RunSeriesRecord{
			RunID:       runID,
			SeriesName:  name,
			OverallCorr: schema.Nullable(result.Overall[s]),
		}
		for b := range result.Bins {
			if !math.IsNaN(result.Correlations[b][s]) {
				record.BinsTested++
			}
		}
		best := math.Inf(-1)
		for _, f := range result.FlagsFor(name) {
			if f.BelowCritical {
				record.LowCorrFlags++
			}
			if f.Kind != schema.LagMismatchFlag {
				continue
			}
			record.LagFlags++
			if f.BestCorrelation > best {
				best = f.BestCorrelation
				lag := int32(f.BestLag)
				record.BestLag = &lag
			}
		}
		records = append(records, record)
	}
	for _, sk := range result.Skipped {
		reason := sk.Reason
		records = append(records, schema.RunSeriesRecord{
			RunID:         runID,
			SeriesName:    sk.Name,
			Skipped:       true,
			SkippedReason: &reason,
		})
	}
	return records
}

// focusRecord summarises a single-series correlation.
func focusRecord(runID int64, result *schema.FocusResult) schema.RunSeriesRecord {
	record := schema.RunSeriesRecord{
		RunID:       runID,
		SeriesName:  result.Series,
		OverallCorr: schema.Nullable(result.Overall),
	}
	for _, p := range result.Points {
		if math.IsNaN(p.Correlation) {
			continue
		}
		record.BinsTested++
		if p.Correlation < result.Critical {
			record.LowCorrFlags++
		}
	}
	for _, profile := range result.Profiles {
		if lag, ok := bestLag(profile.Lags); ok {
			l := int32(lag)
			record.BestLag = &l
			break
		}
	}
	return record
}

// bestLag returns the first shift with the highest valid correlation.
func bestLag(lags []schema.LagCorrelation) (int, bool) {
	best, found := 0, false
	bestCorr := math.Inf(-1)
	for _, l := range lags {
		if !l.Valid || math.IsNaN(l.Correlation) {
			continue
		}
		if l.Correlation > bestCorr {
			best, bestCorr, found = l.Lag, l.Correlation, true
		}
	}
	return best, found
}

// logTrackingError logs run history errors without failing the command.
func logTrackingError(operation, series string, err error) {
	contract.LogWarn("Run tracking: "+operation+" for "+series, err)
}
