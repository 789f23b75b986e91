package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/parquet"
	"github.com/huangsam/dendro/schema"
)

// RunReader lists everything a run store holds.
type RunReader interface {
	GetAllRuns() ([]schema.RunRecord, error)
	GetAllSeriesResults() ([]schema.RunSeriesRecord, error)
}

// ExecuteRunExport exports the run history of store to two Parquet files
// named after outputFile.
func ExecuteRunExport(w io.Writer, store contract.RunStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	reader, ok := store.(RunReader)
	if !ok || store == nil {
		return errors.New("run store does not support export")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total series records: %d\n", status.TableSizes[seriesResultsTable])

	runs, err := reader.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	results, err := reader.GetAllSeriesResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve series results: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteFile(runsFile, parquet.ConvertRunRecords(runs)); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	resultsFile := outputFile + ".series_results.parquet"
	if err := parquet.WriteFile(resultsFile, parquet.ConvertSeriesResultRecords(results)); err != nil {
		return fmt.Errorf("failed to write series results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d series records to: %s\n", len(results), resultsFile)

	return nil
}
