// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/dendro/schema"
)

// StoreManager defines the interface for reaching the storage layers.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
	GetDatasetCache() DatasetCache
}

// RunStore defines the interface for tracking analysis runs and their per-series outcomes.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(command, inputPath string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, seriesCount, flagCount int) error

	// RecordSeriesResult stores the crossdating outcome of one series
	RecordSeriesResult(runID int64, record schema.RunSeriesRecord) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// Close releases the underlying connection
	Close() error
}

// DatasetCache memoises parsed datasets by key.
type DatasetCache interface {
	Get(key string) (*schema.Dataset, bool)
	Set(key string, ds *schema.Dataset)
}
