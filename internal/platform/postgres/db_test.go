package postgres_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/phrazzld/gatehouse/internal/apperr"
	"github.com/phrazzld/gatehouse/internal/config"
	"github.com/phrazzld/gatehouse/internal/platform/logger"
	"github.com/phrazzld/gatehouse/internal/platform/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireUnavailable checks that every operation degrades to ErrUnavailable.
func requireUnavailable(t *testing.T, db *postgres.DB) {
	t.Helper()
	ctx := context.Background()

	rows, err := db.Query(ctx, "SELECT 1", nil)
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, postgres.ErrUnavailable)

	conn, err := db.Acquire(ctx)
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, postgres.ErrUnavailable)

	assert.ErrorIs(t, db.Ping(ctx), postgres.ErrUnavailable)
	assert.NotPanics(t, db.Close)
}

func TestConnectWithoutConfiguration(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	db := postgres.Connect(context.Background(), config.DatabaseConfig{}, log)

	require.NotNil(t, db)
	assert.False(t, db.Enabled())
	assert.False(t, db.Available())
	assert.Contains(t, buf.String(), "database connection information is not provided")
	requireUnavailable(t, db)
}

func TestConnectUnreachable(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	cfg := config.DatabaseConfig{
		Host:                  "127.0.0.1",
		Port:                  1,
		Name:                  "app",
		User:                  "svc",
		Password:              "hunter22",
		SSLMode:               "disable",
		ConnectTimeoutSeconds: 1,
		QueryTimeoutSeconds:   1,
	}

	db := postgres.Connect(context.Background(), cfg, log)

	require.NotNil(t, db)
	assert.True(t, db.Enabled(), "settings were supplied")
	assert.False(t, db.Available(), "no server is listening")
	assert.Contains(t, buf.String(), "failed to connect to database")
	assert.NotContains(t, buf.String(), "hunter22")
	requireUnavailable(t, db)
}

func TestZeroValueAndNilDB(t *testing.T) {
	t.Parallel()

	requireUnavailable(t, &postgres.DB{})

	var db *postgres.DB
	assert.False(t, db.Enabled())
	assert.False(t, db.Available())
	requireUnavailable(t, db)
}

func TestErrUnavailableIsServiceUnavailable(t *testing.T) {
	t.Parallel()

	c := apperr.Classify(postgres.ErrUnavailable)
	assert.Equal(t, apperr.KindStructured, c.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, c.StatusCode)
}
