// Package metrics holds the Prometheus collectors for uploads and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadSteps counts orchestrator steps by phase and result (ok|error).
	UploadSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_image_upload_steps_total",
			Help: "Profile image upload steps by phase and result",
		},
		[]string{"phase", "result"},
	)

	// UploadBytes observes the size of stored objects.
	UploadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_image_object_bytes",
			Help:    "Size of stored profile image objects in bytes",
			Buckets: prometheus.ExponentialBuckets(4096, 4, 8),
		},
		[]string{"phase"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_image_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_image_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Step records the outcome of one upload step.
func Step(phase string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	UploadSteps.WithLabelValues(phase, result).Inc()
}

// Middleware records request counts and latency labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
