// Package httptransport assembles the chi router: student routes, the
// Prometheus endpoint and the health check.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"unemigw/internal/platform/middleware"
	studenthandler "unemigw/internal/student/handler"
)

// HealthChecker reports whether a backing dependency answers.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter wires middleware and routes. redisHealth may be nil when the
// gateway runs on the in-process cache.
func NewRouter(student *studenthandler.Handler, logger *slog.Logger, redisHealth HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))

	student.Register(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", handleHealth(redisHealth))

	return r
}

func handleHealth(redisHealth HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if redisHealth != nil {
			if err := redisHealth.Health(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body = map[string]string{"status": "degraded", "redis": err.Error()}
			} else {
				body["redis"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
