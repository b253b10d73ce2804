// Package api handles incoming HTTP requests for the auth and health routes.
// Handlers decode and validate requests, call the auth service, and return
// failures as errors so that the error handler writes every error response.
package api
