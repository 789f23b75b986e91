package iocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/dendro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRuns_NoneBackend(t *testing.T) {
	err := MigrateRuns(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateRuns_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	// Run migration to latest version
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// Running again is a no-op
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

	// Step down to a specific version
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1))

	// Rollback to version 0
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0))

	// Migrate back up to version 3
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 3))
}

func TestMigrateRuns_CompatibleWithRunStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	// The store creates its tables on open; migrations must tolerate that.
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
}

func TestMigrateRuns_SQLiteInMemory(t *testing.T) {
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, ":memory:", -1))
}

func TestMigrationFilesPerBackend(t *testing.T) {
	for backend, dir := range migrationDir {
		t.Run(string(backend), func(t *testing.T) {
			entries, err := migrationsFS.ReadDir(dir)
			require.NoError(t, err)
			// Each version ships an up and a down file.
			assert.Len(t, entries, 6)
		})
	}
}
