package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the scheduling
// API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	conflictChecks  *prometheus.CounterVec
	conflictLatency prometheus.Observer
	generatedTotal  prometheus.Counter
	skippedTotal    *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
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

	conflictChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conflict_checks_total",
		Help: "Total number of lesson conflict checks by result",
	}, []string{"result"})

	conflictLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "conflict_check_duration_seconds",
		Help:    "Latency of lesson conflict checks",
		Buckets: prometheus.DefBuckets,
	})

	generatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lessons_generated_total",
		Help: "Total lessons created by bulk generation",
	})

	skippedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lessons_skipped_total",
		Help: "Generation dates skipped by reason",
	}, []string{"reason"})

	registry.MustRegister(requestDuration, requestTotal, conflictChecks, conflictLatency, generatedTotal, skippedTotal)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		conflictChecks:  conflictChecks,
		conflictLatency: conflictLatency,
		generatedTotal:  generatedTotal,
		skippedTotal:    skippedTotal,
	}
}

// Handler exposes the /metrics endpoint handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveConflictCheck records one conflict check and its outcome.
func (s *MetricsService) ObserveConflictCheck(result string, duration time.Duration) {
	s.conflictChecks.WithLabelValues(result).Inc()
	s.conflictLatency.Observe(duration.Seconds())
}

// ObserveGeneration records a completed generation batch.
func (s *MetricsService) ObserveGeneration(created, skippedConflicts, skippedHolidays int) {
	s.generatedTotal.Add(float64(created))
	s.skippedTotal.WithLabelValues("conflict").Add(float64(skippedConflicts))
	s.skippedTotal.WithLabelValues("holiday").Add(float64(skippedHolidays))
}
