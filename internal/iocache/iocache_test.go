package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/dendro/internal/dataio"
	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"runs table", runsTable, false},
		{"migrations table", "schema_migrations", false},
		{"leading underscore", "_tmp1", false},
		{"empty", "", true},
		{"leading digit", "1runs", true},
		{"injection", "runs; DROP TABLE x", true},
		{"dash", "dendro-runs", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableNameAndPlaceholder(t *testing.T) {
	assert.Equal(t, "`dendro_runs`", quoteTableName(runsTable, schema.MySQLBackend))
	assert.Equal(t, `"dendro_runs"`, quoteTableName(runsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"dendro_runs"`, quoteTableName(runsTable, schema.SQLiteBackend))

	assert.Equal(t, "$3", placeholder(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "?", placeholder(schema.MySQLBackend, 3))
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 1))
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
		wantErr bool
	}{
		{schema.SQLiteBackend, "sqlite", false},
		{schema.MySQLBackend, "mysql", false},
		{schema.PostgreSQLBackend, "pgx", false},
		{schema.NoneBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			got, err := driverFor(tt.backend)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreManager(t *testing.T) {
	runs := &MockRunStore{}
	cache := NewDatasetCache(time.Minute, time.Minute)
	mgr := NewStoreManager(runs, cache)

	assert.Same(t, runs, mgr.GetRunStore())
	assert.Same(t, cache, mgr.GetDatasetCache())

	empty := NewStoreManager(nil, nil)
	assert.Nil(t, empty.GetRunStore())
	assert.Nil(t, empty.GetDatasetCache())
}

func TestClearRuns(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "runs.db")
		store, err := NewRunStore(schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))

		// Clearing twice is fine
		assert.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		assert.Error(t, ClearRuns(schema.SQLiteBackend, "", ""))
	})

	t.Run("none is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearRuns(schema.NoneBackend, "", ""))
	})

	t.Run("unknown backend", func(t *testing.T) {
		assert.Error(t, ClearRuns(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestPrintRunStatus(t *testing.T) {
	t.Run("disconnected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintRunStatus(&buf, schema.RunStatus{Backend: "none"})
		assert.Equal(t, "Run Backend: none\nConnected: false\n", buf.String())
	})

	t.Run("connected", func(t *testing.T) {
		var buf bytes.Buffer
		last := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
		PrintRunStatus(&buf, schema.RunStatus{
			Backend:       "sqlite",
			Connected:     true,
			TotalRuns:     2,
			LastRunID:     2,
			LastRunTime:   last,
			OldestRunTime: last.Add(-time.Hour),
			TotalSeries:   12,
			TableSizes:    map[string]int64{seriesResultsTable: 12, runsTable: 2},
		})
		out := buf.String()
		assert.Contains(t, out, "Total Runs: 2\n")
		assert.Contains(t, out, "Last Run: 2024-02-03 04:05:06\n")
		assert.Contains(t, out, "Oldest Run: 2024-02-03 03:05:06\n")
		assert.Contains(t, out, "Table Sizes:\n  dendro_runs: 2 rows\n  dendro_series_results: 12 rows\n")
	})
}

func TestExecuteRunExport(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		err := ExecuteRunExport(&bytes.Buffer{}, newSQLiteRunStore(t), "")
		assert.ErrorContains(t, err, "--output-file")
	})

	t.Run("rejects stores without listing", func(t *testing.T) {
		err := ExecuteRunExport(&bytes.Buffer{}, &MockRunStore{}, "out")
		assert.ErrorContains(t, err, "does not support export")
	})

	t.Run("empty history", func(t *testing.T) {
		err := ExecuteRunExport(&bytes.Buffer{}, newSQLiteRunStore(t), filepath.Join(t.TempDir(), "out"))
		assert.ErrorContains(t, err, "no run history")
	})

	t.Run("writes both files", func(t *testing.T) {
		store := newSQLiteRunStore(t)
		runID, err := store.BeginRun("xdate", "a.rwl", time.Now(), nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordSeriesResult(runID, schema.RunSeriesRecord{SeriesName: "a", BinsTested: 2}))
		require.NoError(t, store.EndRun(runID, time.Now(), 1, 0))

		out := filepath.Join(t.TempDir(), "history")
		var buf bytes.Buffer
		require.NoError(t, ExecuteRunExport(&buf, store, out))

		for _, suffix := range []string{".runs.parquet", ".series_results.parquet"} {
			info, err := os.Stat(out + suffix)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		}
		assert.Contains(t, buf.String(), "Exported 1 runs")
		assert.Contains(t, buf.String(), "Exported 1 series records")
	})
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rings.csv")
	require.NoError(t, os.WriteFile(path, []byte("Year,a,b\n1900,1,2\n1901,3,4\n"), 0o644))

	t.Run("nil cache reads from disk", func(t *testing.T) {
		ds, err := LoadDataset(nil, path, dataio.ReadOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ds.Names())
	})

	t.Run("cache hit returns the same dataset", func(t *testing.T) {
		cache := NewDatasetCache(time.Minute, time.Minute)
		first, err := LoadDataset(cache, path, dataio.ReadOptions{})
		require.NoError(t, err)
		second, err := LoadDataset(cache, path, dataio.ReadOptions{})
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, 1, cache.Len())

		// Different read options are a different entry.
		_, err = LoadDataset(cache, path, dataio.ReadOptions{SkipLines: 0, Header: true})
		require.NoError(t, err)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("modified file is read again", func(t *testing.T) {
		cache := NewDatasetCache(time.Minute, time.Minute)
		edited := filepath.Join(dir, "edited.csv")
		require.NoError(t, os.WriteFile(edited, []byte("Year,a\n1900,1\n"), 0o644))
		first, err := LoadDataset(cache, edited, dataio.ReadOptions{})
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(edited, []byte("Year,a,b\n1900,1,2\n1901,3,4\n"), 0o644))
		later := time.Now().Add(time.Minute)
		require.NoError(t, os.Chtimes(edited, later, later))

		second, err := LoadDataset(cache, edited, dataio.ReadOptions{})
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.Equal(t, []string{"a", "b"}, second.Names())
	})

	t.Run("missing file", func(t *testing.T) {
		cache := NewDatasetCache(time.Minute, time.Minute)
		_, err := LoadDataset(cache, filepath.Join(dir, "missing.csv"), dataio.ReadOptions{})
		assert.Error(t, err)
		assert.Zero(t, cache.Len())
	})
}

func TestDatasetCacheGetWrongType(t *testing.T) {
	cache := NewDatasetCache(time.Minute, time.Minute)
	cache.cache.SetDefault("k", "not a dataset")
	_, ok := cache.Get("k")
	assert.False(t, ok)
}
