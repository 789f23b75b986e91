package schema

import "time"

// RunSeriesRecord is the per-series outcome recorded for a crossdating run.
type RunSeriesRecord struct {
	RunID         int64
	SeriesName    string
	OverallCorr   *float64
	BinsTested    int32
	LowCorrFlags  int32
	LagFlags      int32
	BestLag       *int32
	Skipped       bool
	SkippedReason *string
}

// RunRecord represents a row from the dendro_runs table.
type RunRecord struct {
	RunID        int64
	Command      string
	InputPath    string
	StartTime    time.Time
	EndTime      *time.Time
	RunDuration  *int32 // milliseconds
	SeriesCount  int32
	FlagCount    int32
	ConfigParams *string
}
