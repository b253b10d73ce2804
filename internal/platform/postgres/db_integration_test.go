//go:build integration

package postgres_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/gatehouse/internal/apperr"
	"github.com/phrazzld/gatehouse/internal/config"
	"github.com/phrazzld/gatehouse/internal/platform/logger"
	"github.com/phrazzld/gatehouse/internal/platform/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container and returns a connected DB.
// Tests are skipped when no container runtime is available.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("gatehouse_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log, _ := logger.NewTestLogger()
	db := postgres.Connect(ctx, config.DatabaseConfig{
		URL:                   connStr,
		ConnectTimeoutSeconds: 10,
		QueryTimeoutSeconds:   5,
		MaxConns:              4,
	}, log)
	require.True(t, db.Available(), "database should be reachable")
	t.Cleanup(db.Close)

	return db
}

func TestQueryNamedParameters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.Query(ctx, `CREATE TABLE accounts (id TEXT PRIMARY KEY, name TEXT NOT NULL)`, nil)
	require.NoError(t, err)

	_, err = db.Query(ctx,
		`INSERT INTO accounts (id, name) VALUES (@id, @name)`,
		map[string]any{"id": "user123", "name": "Test User"})
	require.NoError(t, err)

	rows, err := db.Query(ctx, `SELECT id, name FROM accounts WHERE id = @id`, map[string]any{"id": "user123"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "user123", rows[0]["id"])
	assert.Equal(t, "Test User", rows[0]["name"])

	_, err = db.Query(ctx,
		`INSERT INTO accounts (id, name) VALUES (@id, @name)`,
		map[string]any{"id": "user123", "name": "Again"})
	require.Error(t, err)
	assert.True(t, postgres.IsUniqueViolation(err))
	structured, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, structured.StatusCode())
}

func TestAcquireAndPing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Ping(ctx))

	conn, err := db.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	var one int
	require.NoError(t, conn.QueryRow(ctx, "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestQueryTimeout(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Query(context.Background(), "SELECT pg_sleep(10)", nil)
	require.Error(t, err)

	structured, ok := apperr.As(err)
	require.True(t, ok, "timeout should map to a structured error: %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, structured.StatusCode())
}
