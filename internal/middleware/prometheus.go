package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/destinote/destinote/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// Prometheus records request count, latency and in-flight gauge. Routes
// are labelled by chi pattern so path ids do not explode cardinality.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPInFlight.Inc()
		defer metrics.HTTPInFlight.Dec()

		start := time.Now()
		sw := wrap(w)
		next.ServeHTTP(sw, r)

		metrics.ObserveHTTP(r.Method, routePattern(r), strconv.Itoa(sw.status), time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
