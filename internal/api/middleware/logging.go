package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// statusRecorder captures the response status and body size for middleware
// that reports on completed requests. The status starts at 200 because a
// handler that writes a body without calling WriteHeader gets 200 from
// net/http.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// RequestLogging emits one line per completed request. When CorrelationID
// runs earlier in the chain the request-scoped logger from the context is
// used, so the line carries the request id; otherwise the given logger is
// the fallback.
func RequestLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := newStatusRecorder(w)

			next.ServeHTTP(recorder, r)

			entry := logger
			if ctxLogger := zerolog.Ctx(r.Context()); ctxLogger.GetLevel() != zerolog.Disabled {
				entry = *ctxLogger
			}
			entry.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", clientKey(r)).
				Int("status", recorder.status).
				Int("bytes", recorder.bytes).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}
