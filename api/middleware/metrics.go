package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/metrics"
	"github.com/go-chi/chi/v5"
)

// Metrics records request latency and counts labelled by the matched chi route
// pattern, so /projects/{id} is one series regardless of id.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.Start()
			defer done()

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)

			m.Observe(r.Method, routeLabel(r), rec.Status(), time.Since(start))
		})
	}
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
