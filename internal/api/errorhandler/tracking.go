package errorhandler

import "net/http"

// trackingWriter records whether anything has been written to the client.
type trackingWriter struct {
	http.ResponseWriter
	written bool
}

// WriteHeader delegates to the underlying writer and then marks the response as
// sent. An invalid status panics in the delegate and leaves the response unsent.
func (w *trackingWriter) WriteHeader(status int) {
	w.ResponseWriter.WriteHeader(status)
	w.written = true
}

// Write marks the response as sent and delegates to the underlying writer.
func (w *trackingWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Flush commits the headers, so it also marks the response as sent.
func (w *trackingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.written = true
		f.Flush()
	}
}

// Written reports whether the status line or body has been written.
func (w *trackingWriter) Written() bool {
	return w.written
}

// Unwrap returns the underlying ResponseWriter, enabling http.ResponseController.
func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Track wraps the response writer so Handle can tell whether a response has
// already been sent. It must run before any handler that may write.
func Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if findTracker(w) != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(&trackingWriter{ResponseWriter: w}, r)
	})
}

type writtenReporter interface {
	Written() bool
}

type unwrapper interface {
	Unwrap() http.ResponseWriter
}

// findTracker walks the writer's Unwrap chain looking for a tracking writer.
func findTracker(w http.ResponseWriter) writtenReporter {
	for w != nil {
		if t, ok := w.(writtenReporter); ok {
			return t
		}
		u, ok := w.(unwrapper)
		if !ok {
			return nil
		}
		w = u.Unwrap()
	}
	return nil
}

// ResponseSent reports whether a response has been written to w. Writers that are
// not wrapped by Track are assumed unsent.
func ResponseSent(w http.ResponseWriter) bool {
	t := findTracker(w)
	return t != nil && t.Written()
}
