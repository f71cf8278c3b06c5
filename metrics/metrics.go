// Package metrics holds the Prometheus collectors for story runs, media
// processing and the HTTP API.
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
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storyflow_build_info",
			Help: "Build information of storyflow",
		},
		[]string{"version", "commit"},
	)

	// Workflow metrics
	StepExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyflow_step_executions_total",
			Help: "Total number of workflow step executions",
		},
		[]string{"step", "status"},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyflow_step_duration_seconds",
			Help:    "Duration of workflow steps in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~410s
		},
		[]string{"step"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyflow_runs_total",
			Help: "Total number of workflow invocations by outcome",
		},
		[]string{"outcome"}, // suspended, completed, failed
	)

	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyflow_feedback_total",
			Help: "Total number of feedback entries by category",
		},
		[]string{"category"},
	)

	// Media metrics
	ThumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyflow_thumbnails_total",
			Help: "Total number of thumbnail objects by result",
		},
		[]string{"result"}, // created, skipped, error
	)

	FaceVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyflow_face_verifications_total",
			Help: "Total number of face verifications by result",
		},
		[]string{"result"}, // match, mismatch, no_face, error
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyflow_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storyflow_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// RecordStep records one step execution.
func RecordStep(step string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StepExecutionsTotal.WithLabelValues(step, status).Inc()
	StepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordRun records the outcome of one engine invocation.
func RecordRun(outcome string) {
	RunsTotal.WithLabelValues(outcome).Inc()
}

// RecordFeedback counts an injected feedback entry.
func RecordFeedback(category string) {
	if category == "" {
		category = "none"
	}
	FeedbackTotal.WithLabelValues(category).Inc()
}

// RecordThumbnail counts a processed thumbnail object.
func RecordThumbnail(result string) {
	ThumbnailsTotal.WithLabelValues(result).Inc()
}

// RecordFaceVerification counts a verification outcome.
func RecordFaceVerification(result string) {
	FaceVerificationsTotal.WithLabelValues(result).Inc()
}

// Middleware records request counts and latency by route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Use the route pattern if available, otherwise use the path
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		status := strconv.Itoa(ww.Status())
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
