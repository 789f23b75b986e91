//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDendroWithMySQL records crossdating runs in a MySQL backend.
func TestDendroWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "dendro",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/dendro?parseTime=true", host, port.Port())
	exerciseRunHistory(t, "mysql", connStr)
}

// TestDendroWithPostgres records crossdating runs in a PostgreSQL backend.
func TestDendroWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseRunHistory(t, "postgresql", connStr)
}

// TestDendroWithSQLite records crossdating runs in a SQLite file.
func TestDendroWithSQLite(t *testing.T) {
	exerciseRunHistory(t, "sqlite", filepath.Join(t.TempDir(), "runs.db"))
}

// exerciseRunHistory drives the runs lifecycle against one backend through
// DENDRO_ environment variables.
func exerciseRunHistory(t *testing.T, backend, connStr string) {
	t.Setenv("DENDRO_RUN_BACKEND", backend)
	t.Setenv("DENDRO_RUN_DB_CONNECT", connStr)

	input := writeSite(t, 6, 1850, 1999, map[string]int{"SITE02": 1})

	_, err := runDendro(t, "runs", "migrate")
	require.NoError(t, err)

	_, err = runDendro(t, "runs", "clear")
	require.NoError(t, err)

	_, err = runDendro(t, "xdate", input, "--output", "json", "--output-file", filepath.Join(t.TempDir(), "xdate.json"))
	require.NoError(t, err)

	_, err = runDendro(t, "series-corr", input, "--series", "SITE02", "--output", "json",
		"--output-file", filepath.Join(t.TempDir(), "focus.json"))
	require.NoError(t, err)

	out, err := runDendro(t, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Run Backend: "+backend)
	assert.Contains(t, out, "Total Runs: 2")

	prefix := filepath.Join(t.TempDir(), "history")
	_, err = runDendro(t, "runs", "export", "--output-file", prefix)
	require.NoError(t, err)
	for _, suffix := range []string{".runs.parquet", ".series_results.parquet"} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
