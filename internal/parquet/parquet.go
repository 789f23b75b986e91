// Package parquet provides data structures and functions for exporting dendro
// results and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/huangsam/dendro/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single recorded dendro run with metadata.
// This struct maps to the dendro_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Command is the subcommand that produced the run (xdate, series-corr)
	Command string `parquet:"command,snappy,dict"`

	// InputPath is the dataset that was analyzed
	InputPath string `parquet:"input_path,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	SeriesCount int32 `parquet:"series_count,snappy"`
	FlagCount   int32 `parquet:"flag_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SeriesResult is the crossdating outcome of one series within a run.
// This struct maps to the dendro_series_results database table.
type SeriesResult struct {
	RunID         int64    `parquet:"run_id,snappy"`
	SeriesName    string   `parquet:"series_name,snappy"`
	OverallCorr   *float64 `parquet:"overall_corr,optional,snappy"`
	BinsTested    int32    `parquet:"bins_tested,snappy"`
	LowCorrFlags  int32    `parquet:"low_corr_flags,snappy"`
	LagFlags      int32    `parquet:"lag_flags,snappy"`
	BestLag       *int32   `parquet:"best_lag,optional,snappy"`
	Skipped       bool     `parquet:"skipped,snappy"`
	SkippedReason *string  `parquet:"skipped_reason,optional,snappy"`
}

// ChronologyRow is one year of a chronology.
type ChronologyRow struct {
	Year     int32    `parquet:"year,snappy"`
	Mean     *float64 `parquet:"mean,optional,snappy"`
	Whitened *float64 `parquet:"whitened,optional,snappy"`
	Depth    int32    `parquet:"depth,snappy"`
}

// XdateCell is one (bin, series) correlation of a crossdating table, in long form.
type XdateCell struct {
	Series      string   `parquet:"series,snappy,dict"`
	BinStart    int32    `parquet:"bin_start,snappy"`
	BinEnd      int32    `parquet:"bin_end,snappy"`
	Correlation *float64 `parquet:"correlation,optional,snappy"`
	Flag        *string  `parquet:"flag,optional,snappy,dict"`
	BestLag     *int32   `parquet:"best_lag,optional,snappy"`
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](outputPath string, rows []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Write encodes rows as a Parquet file on w. The schema is derived from the
// struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Command:       record.Command,
			InputPath:     record.InputPath,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDuration,
			SeriesCount:   record.SeriesCount,
			FlagCount:     record.FlagCount,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertSeriesResultRecords converts schema.RunSeriesRecord to SeriesResult for Parquet export.
func ConvertSeriesResultRecords(records []schema.RunSeriesRecord) []SeriesResult {
	result := make([]SeriesResult, len(records))
	for i, record := range records {
		result[i] = SeriesResult{
			RunID:         record.RunID,
			SeriesName:    record.SeriesName,
			OverallCorr:   record.OverallCorr,
			BinsTested:    record.BinsTested,
			LowCorrFlags:  record.LowCorrFlags,
			LagFlags:      record.LagFlags,
			BestLag:       record.BestLag,
			Skipped:       record.Skipped,
			SkippedReason: record.SkippedReason,
		}
	}
	return result
}

// ConvertChronology flattens a chronology into one row per year.
func ConvertChronology(c *schema.Chronology) []ChronologyRow {
	rows := make([]ChronologyRow, len(c.Years))
	for i, y := range c.Years {
		rows[i] = ChronologyRow{Year: int32(y), Mean: schema.Nullable(c.Mean[i]), Depth: int32(c.Depth[i])}
		if c.Whitened != nil {
			rows[i].Whitened = schema.Nullable(c.Whitened[i])
		}
	}
	return rows
}

// ConvertXdate flattens a crossdating table into long form, skipping bins
// that do not apply to a series. Flagged cells carry the flag kind and best lag.
func ConvertXdate(r *schema.XdateResult) []XdateCell {
	type cellKey struct {
		series string
		start  int
	}
	flags := make(map[cellKey]schema.Flag, len(r.Flags))
	for _, f := range r.Flags {
		flags[cellKey{f.Series, f.Bin.Start}] = f
	}

	var cells []XdateCell
	for s, name := range r.Series {
		for b, bin := range r.Bins {
			v := r.Correlations[b][s]
			if math.IsNaN(v) {
				continue
			}
			cell := XdateCell{
				Series:      name,
				BinStart:    int32(bin.Start),
				BinEnd:      int32(bin.End),
				Correlation: schema.Nullable(v),
			}
			if f, ok := flags[cellKey{name, bin.Start}]; ok {
				kind := string(f.Kind)
				lag := int32(f.BestLag)
				cell.Flag = &kind
				cell.BestLag = &lag
			}
			cells = append(cells, cell)
		}
	}
	return cells
}

// SampleRuns generates sample Run data for demonstration.
func SampleRuns() []Run {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := startTime1.Add(850 * time.Millisecond)
	durationMs1 := int32(endTime1.Sub(startTime1).Milliseconds())
	configParams1 := `{"correlation":"spearman","slide_period":50,"bin_floor":100}`

	startTime2 := now.Add(-10 * time.Minute)
	// endTime2, durationMs2 and configParams2 stay nil to show nullable fields

	return []Run{
		{
			RunID:         1,
			Command:       "xdate",
			InputPath:     "/data/ca533.rwl",
			StartTime:     startTime1,
			EndTime:       &endTime1,
			RunDurationMs: &durationMs1,
			SeriesCount:   34,
			FlagCount:     3,
			ConfigParams:  &configParams1,
		},
		{
			RunID:     2,
			Command:   "series-corr",
			InputPath: "/data/ca533.rwl",
			StartTime: startTime2,
		},
	}
}

// SampleSeriesResults generates sample SeriesResult data for demonstration.
func SampleSeriesResults() []SeriesResult {
	corr1, corr2 := 0.62, 0.18
	lag := int32(-1)
	reason := "degenerate AR fit"
	return []SeriesResult{
		{RunID: 1, SeriesName: "CAM011", OverallCorr: &corr1, BinsTested: 9},
		{RunID: 1, SeriesName: "CAM021", OverallCorr: &corr2, BinsTested: 7, LowCorrFlags: 2, LagFlags: 1, BestLag: &lag},
		{RunID: 1, SeriesName: "CAM031", Skipped: true, SkippedReason: &reason},
	}
}
