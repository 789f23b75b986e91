package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run tracking.
const (
	runsTable          = "dendro_runs"
	seriesResultsTable = "dendro_series_results"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (*RunStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Create the table schemas
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{seriesResultsTable, getCreateSeriesResultsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for dendro_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				command VARCHAR(32) NOT NULL,
				input_path VARCHAR(1024) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				series_count INT NOT NULL DEFAULT 0,
				flag_count INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				command TEXT NOT NULL,
				input_path TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				series_count INT NOT NULL DEFAULT 0,
				flag_count INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				command TEXT NOT NULL,
				input_path TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				series_count INTEGER NOT NULL DEFAULT 0,
				flag_count INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateSeriesResultsQuery returns the CREATE TABLE query for dendro_series_results.
func getCreateSeriesResultsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(seriesResultsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				series_name VARCHAR(255) NOT NULL,
				overall_corr DOUBLE,
				bins_tested INT NOT NULL,
				low_corr_flags INT NOT NULL,
				lag_flags INT NOT NULL,
				best_lag INT,
				skipped SMALLINT NOT NULL DEFAULT 0,
				skipped_reason TEXT,
				PRIMARY KEY (run_id, series_name)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				series_name TEXT NOT NULL,
				overall_corr DOUBLE PRECISION,
				bins_tested INT NOT NULL,
				low_corr_flags INT NOT NULL,
				lag_flags INT NOT NULL,
				best_lag INT,
				skipped SMALLINT NOT NULL DEFAULT 0,
				skipped_reason TEXT,
				PRIMARY KEY (run_id, series_name)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				series_name TEXT NOT NULL,
				overall_corr REAL,
				bins_tested INTEGER NOT NULL,
				low_corr_flags INTEGER NOT NULL,
				lag_flags INTEGER NOT NULL,
				best_lag INTEGER,
				skipped INTEGER NOT NULL DEFAULT 0,
				skipped_reason TEXT,
				PRIMARY KEY (run_id, series_name)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(command, inputPath string, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (command, input_path, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, command, inputPath, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (command, input_path, start_time, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, command, inputPath, formatTime(startTime, rs.backend), string(configJSON))
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, seriesCount, flagCount int) error {
	// Skip for NoneBackend
	if rs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1))
	startTime, err := scanTime(rs.db.QueryRow(query, runID), rs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, series_count = %s, flag_count = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5))
	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, seriesCount, flagCount, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// RecordSeriesResult stores the crossdating outcome of one series.
func (rs *RunStoreImpl) RecordSeriesResult(runID int64, record schema.RunSeriesRecord) error {
	// Skip for NoneBackend
	if rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(seriesResultsTable, rs.backend)
	marks := make([]any, 9)
	for i := range marks {
		marks[i] = placeholder(rs.backend, i+1)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, series_name, overall_corr, bins_tested, low_corr_flags,
		                lag_flags, best_lag, skipped, skipped_reason)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)
	`, append([]any{quotedTableName}, marks...)...)

	skipped := 0
	if record.Skipped {
		skipped = 1
	}
	_, err := rs.db.Exec(query,
		runID, record.SeriesName, record.OverallCorr, record.BinsTested, record.LowCorrFlags,
		record.LagFlags, record.BestLag, skipped, record.SkippedReason)
	if err != nil {
		return fmt.Errorf("failed to insert series result for %s: %w", record.SeriesName, err)
	}

	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.db == nil {
		return status, nil
	}

	runs := quoteTableName(runsTable, rs.backend)

	// Get total runs
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}
		lastQuery := fmt.Sprintf("SELECT start_time FROM %s WHERE run_id = %s", runs, placeholder(rs.backend, 1))
		last, err := scanTime(rs.db.QueryRow(lastQuery, status.LastRunID), rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = last

		// Get oldest run time
		oldest, err := scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)), rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest

		// Get total series analyzed
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(series_count), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalSeries); err != nil {
			return status, fmt.Errorf("failed to get total series: %w", err)
		}
	}

	// Get table sizes
	for _, table := range []string{runsTable, seriesResultsTable} {
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, command, input_path, start_time, end_time, run_duration_ms,
		series_count, flag_count, config_params FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.Command, &record.InputPath, &startTimeStr, &endTimeStr,
				&record.RunDuration, &record.SeriesCount, &record.FlagCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Command, &record.InputPath, &record.StartTime, &record.EndTime,
				&record.RunDuration, &record.SeriesCount, &record.FlagCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetAllSeriesResults retrieves all per-series outcomes from the store.
func (rs *RunStoreImpl) GetAllSeriesResults() ([]schema.RunSeriesRecord, error) {
	// Skip for NoneBackend
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, series_name, overall_corr, bins_tested, low_corr_flags,
		lag_flags, best_lag, skipped, skipped_reason FROM %s ORDER BY run_id, series_name`,
		quoteTableName(seriesResultsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query series results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunSeriesRecord
	for rows.Next() {
		var record schema.RunSeriesRecord
		var skipped int
		if err := rows.Scan(&record.RunID, &record.SeriesName, &record.OverallCorr, &record.BinsTested,
			&record.LowCorrFlags, &record.LagFlags, &record.BestLag, &skipped, &record.SkippedReason); err != nil {
			return nil, fmt.Errorf("failed to scan series result: %w", err)
		}
		record.Skipped = skipped != 0
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series results: %w", err)
	}

	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// scanTime reads a single time column, parsing the text form SQLite stores.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}
