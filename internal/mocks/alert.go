package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/gatehouse/internal/alert"
)

// MockAlertSender implements alert.Sender and records every alert it receives.
type MockAlertSender struct {
	// SendFn allows test cases to mock the Send behavior
	SendFn func(ctx context.Context, a alert.Alert) error

	// Err is returned when SendFn is nil
	Err error

	mu   sync.Mutex
	sent []alert.Alert
}

var _ alert.Sender = (*MockAlertSender)(nil)

// Send implements the alert.Sender interface
func (m *MockAlertSender) Send(ctx context.Context, a alert.Alert) error {
	m.mu.Lock()
	m.sent = append(m.sent, a)
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, a)
	}
	return m.Err
}

// Sent returns a copy of the alerts received so far.
func (m *MockAlertSender) Sent() []alert.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]alert.Alert(nil), m.sent...)
}

// RecordingNotifier records dispatched alerts synchronously, standing in for
// alert.Dispatcher where a test needs to count dispatch attempts.
type RecordingNotifier struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

// Dispatch records a.
func (n *RecordingNotifier) Dispatch(a alert.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
}

// Alerts returns a copy of the alerts dispatched so far.
func (n *RecordingNotifier) Alerts() []alert.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]alert.Alert(nil), n.alerts...)
}
