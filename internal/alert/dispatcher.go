package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/gatehouse/internal/observability"
	"github.com/phrazzld/gatehouse/internal/redact"
)

// DispatcherConfig holds configuration options for the dispatcher.
type DispatcherConfig struct {
	// QueueSize is the number of alerts that may wait for a worker.
	// If zero or negative, defaults to 1.
	QueueSize int

	// Workers is the number of concurrent senders. If zero or negative, defaults to 1.
	Workers int

	// Timeout bounds each Send call. If zero or negative, defaults to 5 seconds.
	Timeout time.Duration
}

// Dispatcher sends alerts on background workers. Dispatch enqueues without
// blocking and drops the alert when the queue is full.
type Dispatcher struct {
	sender  Sender
	queue   chan Alert
	timeout time.Duration
	logger  *slog.Logger

	wg   sync.WaitGroup
	done chan struct{}

	// mu orders enqueues before close(done), so workers drain every queued alert.
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewDispatcher creates a dispatcher and starts its workers.
func NewDispatcher(sender Sender, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.Workers <= 0 {
		logger.Warn("invalid alert worker count specified, using default",
			"specified_count", cfg.Workers,
			"default_count", 1)
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	d := &Dispatcher{
		sender:  sender,
		queue:   make(chan Alert, cfg.QueueSize),
		timeout: cfg.Timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker(i)
	}

	d.logger.Info("alert dispatcher started",
		"workers", cfg.Workers,
		"queue_size", cfg.QueueSize)

	return d
}

// Dispatch queues a for delivery and returns immediately. It is safe to call on a
// nil or closed dispatcher, in which case the alert is discarded.
func (d *Dispatcher) Dispatch(a Alert) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- a:
		observability.AlertQueueDepth.Inc()
	default:
		d.dropped.Add(1)
		observability.AlertsTotal.WithLabelValues(observability.AlertDropped).Inc()
		d.logger.Warn("alert queue full, dropping alert",
			"status_code", a.StatusCode,
			"trace_id", a.TraceID)
	}
}

// Dropped returns the number of alerts discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Close stops accepting alerts and waits for queued alerts to be sent. If ctx ends
// first, Close returns its error and the workers finish in the background.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.done)
	}
	d.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		d.logger.Info("alert dispatcher stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("alert dispatcher did not drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for {
		select {
		case a := <-d.queue:
			d.send(id, a)
		case <-d.done:
			for {
				select {
				case a := <-d.queue:
					d.send(id, a)
				default:
					return
				}
			}
		}
	}
}

// send delivers one alert. Failures and panics stop here.
func (d *Dispatcher) send(workerID int, a Alert) {
	observability.AlertQueueDepth.Dec()

	defer func() {
		if r := recover(); r != nil {
			observability.AlertsTotal.WithLabelValues(observability.AlertFailed).Inc()
			d.logger.Error("alert sender panicked",
				"worker_id", workerID,
				"panic", fmt.Sprint(r),
				"trace_id", a.TraceID)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, a); err != nil {
		observability.AlertsTotal.WithLabelValues(observability.AlertFailed).Inc()
		d.logger.Error("failed to send alert",
			"worker_id", workerID,
			"error", redact.Error(err),
			"status_code", a.StatusCode,
			"trace_id", a.TraceID)
		return
	}

	observability.AlertsTotal.WithLabelValues(observability.AlertSent).Inc()
	d.logger.Debug("alert sent",
		"worker_id", workerID,
		"status_code", a.StatusCode,
		"trace_id", a.TraceID)
}
