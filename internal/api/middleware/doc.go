// Package middleware holds the HTTP middleware that runs before route handlers:
// bearer token authentication and per-request tracing.
package middleware
