package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/dendro/internal/contract"
	"github.com/huangsam/dendro/internal/iocache"
	"github.com/huangsam/dendro/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackend loads the run history backend settings without validating a dataset.
func runsBackend() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backend := schema.DatabaseBackend(viper.GetString("run-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("run-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration and opens the run store.
func runsSetup() error {
	backend, connStr, err := runsBackend()
	if err != nil {
		return err
	}
	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads the backend settings without opening the store, so
// migrations can run against a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackend()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunDBFilePath()
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	return nil
}

// runsCmd groups run history management.
//
// Note: runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by analysis commands. They never read a dataset.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of crossdating runs",
	Long: `Manage the history of xdate and series-corr runs.

When --run-backend is set, dendro records every crossdating run:
- Run metadata (command, input file, settings, duration)
- Per-series outcomes (overall correlation, segments tested, A and B flags, best lag)

This makes it possible to follow a site as series are re-measured and re-dated.

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show run history statistics
  export  - Export run history to Parquet
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Check run history status
  dendro runs status --run-backend sqlite

  # Export for analysis in pandas/DuckDB
  dendro runs export --run-backend sqlite --output-file runs`,
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, connection state, number of runs and series results,
and the time of the first and last run.

Examples:
  dendro runs status --run-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for analytics",
	Long: `Export all stored runs to Parquet.

Writes two files next to --output-file:
- <output-file>.runs.parquet           - one row per run
- <output-file>.series_results.parquet - one row per series per run

Requires: --output-file parameter

Examples:
  # Export all run history
  dendro runs export --run-backend sqlite --output-file ca533

  # Query with DuckDB
  duckdb -c "SELECT series_name, avg(overall_corr) FROM read_parquet('ca533.series_results.parquet') GROUP BY 1"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunExport(os.Stdout, iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsClearCmd clears run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run history",
	Long: `Delete all stored runs and series results.

For SQLite the database file is removed. For MySQL and PostgreSQL the run
tables are dropped.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  dendro runs export --run-backend sqlite --output-file backup
  dendro runs clear --run-backend sqlite`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunBackend, cfg.RunDBConnect, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  dendro runs migrate --run-backend sqlite

  # Roll back to the initial state
  dendro runs migrate --run-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
