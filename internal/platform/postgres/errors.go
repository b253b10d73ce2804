package postgres

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/gatehouse/internal/apperr"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// queryCanceledCode is raised when statement_timeout or a cancel request stops a query
	queryCanceledCode = "57014"
)

// ErrUnavailable is returned by every operation when no connection pool exists.
var ErrUnavailable = apperr.ServiceUnavailable(
	"Database connection is not available. Please configure database connection settings.",
)

// MapError maps a database error to a structured application error. Constraint
// violations become client errors without the constraint details, timeouts become
// 503s, and anything else is returned unchanged so the funnel treats it as an
// unclassified fault. The original error is kept as the cause.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Resource not found").WithCause(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.ServiceUnavailable("Database request timed out").WithCause(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return apperr.New(http.StatusConflict, "Resource already exists").WithCause(err)
		case foreignKeyViolationCode, checkViolationCode, notNullViolationCode:
			return apperr.BadRequest("Invalid data").WithCause(err)
		case queryCanceledCode:
			return apperr.ServiceUnavailable("Database request timed out").WithCause(err)
		}
	}

	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
