// Package postgres provides the optional PostgreSQL connection pool shared by the
// service. The pool is established at startup when connection settings are present;
// when they are missing or the server cannot be reached the service still starts and
// every database operation fails with ErrUnavailable, which the error funnel renders
// as a 503.
package postgres
