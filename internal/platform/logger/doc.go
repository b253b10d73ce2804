// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package. The handler is chosen per
// deployment environment: human-readable text in development, JSON in production
// and a discarding handler under test. A request-scoped logger can be carried on a
// context.Context with WithLogger and retrieved with FromContext.
package logger
