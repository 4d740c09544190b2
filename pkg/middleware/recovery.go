package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	apperrors "villaops/pkg/errors"
	httputil "villaops/pkg/http"
	"villaops/pkg/logger"
	"villaops/pkg/metrics"
)

// Recovery turns a handler panic into a 500 response. It sits outside
// RequestLogging, so the request id is read back from the response header.
// http.ErrAbortHandler is re-raised for the server to handle.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}

				metrics.IncHTTPPanic()
				log.Error("Panic recovered",
					"request_id", w.Header().Get(RequestIDHeader),
					"panic", p,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				if err := httputil.WriteError(w, apperrors.Internal("Internal server error", nil)); err != nil {
					log.Error("Failed to write panic response", "error", err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
