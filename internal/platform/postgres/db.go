package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phrazzld/gatehouse/internal/config"
	"github.com/phrazzld/gatehouse/internal/redact"
)

// DB wraps an optional pgx connection pool.
// The zero value is a usable, disabled DB.
type DB struct {
	pool         *pgxpool.Pool
	configured   bool
	queryTimeout time.Duration
	logger       *slog.Logger
}

// Connect creates the connection pool described by cfg and verifies it with a ping.
// It never fails: a missing configuration or an unreachable server is logged as a
// warning and yields a DB whose operations return ErrUnavailable.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "postgres")

	db := &DB{
		configured:   cfg.Configured(),
		queryTimeout: time.Duration(cfg.QueryTimeoutSeconds) * time.Second,
		logger:       logger,
	}

	if !db.configured {
		logger.Warn("database connection information is not provided; " +
			"set DATABASE_URL or DB_SERVER, DB_DATABASE, DB_USER and DB_PASSWORD to enable it")
		return db
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		logger.Warn("invalid database configuration, database will not be available",
			"error", redact.Error(err))
		return db
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Warn("failed to create database pool, database will not be available",
			"error", redact.Error(err))
		return db
	}

	pingCtx := ctx
	if cfg.ConnectTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, time.Duration(cfg.ConnectTimeoutSeconds)*time.Second)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logger.Warn("failed to connect to database, database will not be available",
			"error", redact.Error(err))
		return db
	}

	db.pool = pool
	logger.Info("database connected",
		"host", poolCfg.ConnConfig.Host,
		"port", poolCfg.ConnConfig.Port,
		"database", poolCfg.ConnConfig.Database)
	return db
}

// Enabled reports whether connection settings were supplied.
func (db *DB) Enabled() bool {
	return db != nil && db.configured
}

// Available reports whether a connection pool exists.
func (db *DB) Available() bool {
	return db != nil && db.pool != nil
}

// Query runs sql with named parameters (@name placeholders) and collects every row
// into a column-name keyed map. The configured query timeout bounds the call.
func (db *DB) Query(ctx context.Context, sql string, params map[string]any) ([]map[string]any, error) {
	if !db.Available() {
		return nil, ErrUnavailable
	}

	if db.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.queryTimeout)
		defer cancel()
	}

	var args []any
	if len(params) > 0 {
		args = append(args, pgx.NamedArgs(params))
	}

	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, MapError(fmt.Errorf("query failed: %w", err))
	}

	result, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, MapError(fmt.Errorf("reading query result failed: %w", err))
	}
	return result, nil
}

// Acquire checks out a dedicated connection for callers that need finer control,
// such as transactions or COPY. The caller must Release it.
func (db *DB) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if !db.Available() {
		return nil, ErrUnavailable
	}
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, MapError(fmt.Errorf("acquire connection failed: %w", err))
	}
	return conn, nil
}

// Ping verifies that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if !db.Available() {
		return ErrUnavailable
	}
	return db.pool.Ping(ctx)
}

// Close releases the pool. It is safe to call on a disabled DB.
func (db *DB) Close() {
	if !db.Available() {
		return
	}
	db.pool.Close()
	db.logger.Info("database pool closed")
}
