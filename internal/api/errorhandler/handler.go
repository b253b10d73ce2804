package errorhandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/gatehouse/internal/alert"
	"github.com/phrazzld/gatehouse/internal/api/shared"
	"github.com/phrazzld/gatehouse/internal/apperr"
	"github.com/phrazzld/gatehouse/internal/observability"
	"github.com/phrazzld/gatehouse/internal/platform/logger"
	"github.com/phrazzld/gatehouse/internal/redact"
)

// Notifier receives alerts for server errors. Dispatch must return without
// waiting for delivery.
type Notifier interface {
	Dispatch(a alert.Alert)
}

// HandlerFunc is an HTTP handler that reports failure by returning an error
// instead of writing an error response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handler is the error funnel. It is safe for concurrent use.
type Handler struct {
	logger   *slog.Logger
	notifier Notifier
	now      func() time.Time
}

// New creates a Handler. A nil notifier disables alerting.
func New(logger *slog.Logger, notifier Notifier) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		notifier: notifier,
		now:      time.Now,
	}
}

// Handle logs err, alerts on server errors and writes the error response.
// Calling it again for a request whose response was already written only logs.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	c := apperr.Classify(err)
	if c.Kind == apperr.KindUnclassified {
		// Arbitrary faults may carry connection strings or paths.
		c.Message = redact.String(c.Message)
	}

	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)
	traceID := shared.GetTraceID(ctx)

	attrs := []any{
		"status_code", c.StatusCode,
		"url", r.URL.RequestURI(),
		"method", r.Method,
		"error_kind", c.Kind.String(),
		"error_name", c.Name,
		"error", redact.Error(err),
	}
	if cause := errors.Unwrap(err); cause != nil && c.Kind == apperr.KindStructured {
		attrs = append(attrs, "cause", redact.Error(cause))
	}
	if traceID != "" {
		attrs = append(attrs, "trace_id", traceID)
	}
	log.Error(c.Message, attrs...)
	observability.ErrorsTotal.WithLabelValues(c.Kind.String(), strconv.Itoa(c.StatusCode)).Inc()

	if c.StatusCode >= http.StatusInternalServerError && h.notifier != nil {
		h.notifier.Dispatch(alert.Alert{
			StatusCode: c.StatusCode,
			ErrorName:  c.Name,
			Method:     r.Method,
			URL:        r.URL.RequestURI(),
			Message:    c.Message,
			TraceID:    traceID,
			OccurredAt: h.now(),
		})
	}

	if ResponseSent(w) {
		log.Debug("response already sent, skipping error response", "status_code", c.StatusCode)
		return
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debug("client gone, skipping error response", "reason", ctxErr.Error())
		return
	}

	shared.RespondWithJSON(w, r, c.StatusCode, shared.ErrorResponse{
		StatusCode: c.StatusCode,
		Error:      c.Name,
		Message:    c.Message,
	})
}

// Wrap adapts fn to http.HandlerFunc, sending any returned error to Handle.
func (h *Handler) Wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.Handle(w, r, err)
		}
	}
}

// NotFound reports a request that matched no route.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Handle(w, r, apperr.NotFound(fmt.Sprintf("Route %s:%s not found", r.Method, r.URL.Path)))
}

// MethodNotAllowed reports a request whose path matched a route registered for
// other methods.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.Handle(w, r, apperr.MethodNotAllowed(
		fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path),
	))
}
