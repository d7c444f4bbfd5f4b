package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the engine and
// its HTTP surface.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	eventsCreated   prometheus.Counter
	conflictsTotal  *prometheus.CounterVec
	expansionSize   prometheus.Histogram
}

// NewMetricsService registers the collectors.
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

	eventsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "calendar_events_created_total",
		Help: "Total number of occurrences committed by create requests",
	})

	conflictsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_event_conflicts_total",
		Help: "Detected event conflicts by outcome",
	}, []string{"outcome"})

	expansionSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "calendar_recurrence_expansion_size",
		Help:    "Occurrences produced per recurrence expansion",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	registry.MustRegister(requestDuration, requestTotal, eventsCreated, conflictsTotal, expansionSize)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		eventsCreated:   eventsCreated,
		conflictsTotal:  conflictsTotal,
		expansionSize:   expansionSize,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// EventsCreated counts committed occurrences.
func (s *MetricsService) EventsCreated(n int) {
	s.eventsCreated.Add(float64(n))
}

// ConflictDetected counts a detected conflict by its outcome.
func (s *MetricsService) ConflictDetected(declined bool) {
	outcome := "tolerated"
	if declined {
		outcome = "declined"
	}
	s.conflictsTotal.WithLabelValues(outcome).Inc()
}

// ExpansionObserved records the size of one recurrence expansion.
func (s *MetricsService) ExpansionObserved(n int) {
	s.expansionSize.Observe(float64(n))
}
