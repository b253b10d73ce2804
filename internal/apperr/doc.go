// Package apperr defines the structured application error used across the service
// and the classification every failure goes through before it becomes an HTTP
// response.
//
// A structured error carries its HTTP status and symbolic name by construction.
// Classify reduces any error to a Classified value whose Kind tells structured
// errors apart from faults that merely expose a status code and from everything
// else, which is always treated as a 500.
package apperr
