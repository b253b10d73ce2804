// Package alert delivers notifications about server errors to an external
// destination. Delivery is asynchronous: Dispatcher.Dispatch never blocks the
// caller, and a failed delivery is logged and counted but never reported back.
package alert

import (
	"context"
	"time"
)

// Alert describes one server error.
type Alert struct {
	StatusCode int
	ErrorName  string
	Method     string
	URL        string
	Message    string
	TraceID    string
	OccurredAt time.Time
}

// Sender delivers a single alert. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, a Alert) error
}
