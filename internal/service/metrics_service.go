package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the
// questionnaire flow and the HTTP surface.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	sessionsStarted    prometheus.Counter
	sessionsCompleted  prometheus.Counter
	sessionsLive       prometheus.GaugeFunc
	validationFailures *prometheus.CounterVec
	submissions        *prometheus.CounterVec

	startedCount   uint64
	completedCount uint64
	submittedCount uint64
}

// NewMetricsService registers the core collectors. liveSessions reports
// the current registry size; pass nil to skip the gauge.
func NewMetricsService(liveSessions func() int) *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	sessionsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "intake_sessions_started_total",
		Help: "Total questionnaire sessions created",
	})

	sessionsCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "intake_sessions_completed_total",
		Help: "Total sessions that answered every question",
	})

	validationFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_validation_failures_total",
		Help: "Answer validation failures by rule kind",
	}, []string{"kind"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_submissions_total",
		Help: "Finalization pipeline outcomes",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	collectors := []prometheus.Collector{
		requestDuration, requestTotal, sessionsStarted, sessionsCompleted,
		validationFailures, submissions, goroutines,
	}

	var sessionsLive prometheus.GaugeFunc
	if liveSessions != nil {
		sessionsLive = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "intake_sessions_live",
			Help: "Sessions currently held in memory",
		}, func() float64 {
			return float64(liveSessions())
		})
		collectors = append(collectors, sessionsLive)
	}

	registry.MustRegister(collectors...)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		sessionsStarted:    sessionsStarted,
		sessionsCompleted:  sessionsCompleted,
		sessionsLive:       sessionsLive,
		validationFailures: validationFailures,
		submissions:        submissions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSessionStarted counts a new session.
func (m *MetricsService) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
	atomic.AddUint64(&m.startedCount, 1)
}

// RecordSessionCompleted counts a session reaching the end of the catalog.
func (m *MetricsService) RecordSessionCompleted() {
	if m == nil {
		return
	}
	m.sessionsCompleted.Inc()
	atomic.AddUint64(&m.completedCount, 1)
}

// RecordValidationFailure counts a rejected answer by rule kind.
func (m *MetricsService) RecordValidationFailure(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}

// RecordSubmission counts a finalization pipeline outcome.
func (m *MetricsService) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	if outcome == "submitted" {
		atomic.AddUint64(&m.submittedCount, 1)
	}
}

// Snapshot returns a compact view for the health endpoint.
func (m *MetricsService) Snapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	return map[string]uint64{
		"sessions_started":   atomic.LoadUint64(&m.startedCount),
		"sessions_completed": atomic.LoadUint64(&m.completedCount),
		"submissions":        atomic.LoadUint64(&m.submittedCount),
	}
}
