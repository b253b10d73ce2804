package errorhandler

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/gatehouse/internal/platform/logger"
)

// panicError is a recovered panic value. A panic with an error value unwraps to
// it, so panic(apperr.Forbidden(...)) still produces a 403.
type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprint(p.value)
}

func (p *panicError) Unwrap() error {
	if err, ok := p.value.(error); ok {
		return err
	}
	return nil
}

// Recover turns a panic in next into a call to Handle. http.ErrAbortHandler is
// re-panicked so the server can abort the response as intended.
func (h *Handler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
				panic(rec)
			}

			logger.FromContextOrDefault(r.Context(), h.logger).Error("recovered from panic",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()))
			h.Handle(w, r, &panicError{value: rec})
		}()

		next.ServeHTTP(w, r)
	})
}
