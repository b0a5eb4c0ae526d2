package middleware

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// NewRequestCounter registers the request_count_total counter, labeled by
// method and response status, with reg.
func NewRequestCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_count_total",
			Help: "HTTP requests served, by method and status.",
		},
		[]string{"method", "status"},
	)
	reg.MustRegister(counter)
	return counter
}

// CountRequests returns middleware that increments counter once per request.
func CountRequests(counter *prometheus.CounterVec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			counter.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		})
	}
}
