// Package errorhandler converts every failure raised while serving a request into
// an HTTP response.
//
// Handler.Handle is the only place that writes error responses. For each failure
// it logs, dispatches an alert for server errors when a notifier is configured,
// and then writes a body of exactly {statusCode, error, message} unless the
// response has already been sent or the client has gone away.
//
// Handlers plug in by returning an error through Wrap. Panics reach Handle through
// Recover, and unmatched routes through NotFound and MethodNotAllowed. Track must
// wrap the writer for the already-sent check to work.
package errorhandler
