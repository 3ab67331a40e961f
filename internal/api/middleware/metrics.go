package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/eventconnect/server/internal/metrics"
)

// Metrics records request count, latency and the in-flight gauge.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		recorder := newStatusRecorder(w)

		next.ServeHTTP(recorder, r)

		elapsed := time.Since(start).Seconds()
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(recorder.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(elapsed)
	})
}
