package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the evaluation
// engine: HTTP traffic, AI provider calls, webhook deliveries and the
// version ledger.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	providerDuration *prometheus.HistogramVec
	providerTotal    *prometheus.CounterVec

	webhookReceived *prometheus.CounterVec
	webhookRejected *prometheus.CounterVec
	webhookOutcome  *prometheus.CounterVec

	analysisVersions *prometheus.CounterVec

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
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

	providerDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_provider_call_duration_seconds",
		Help:    "Duration of AI provider calls in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 45},
	}, []string{"provider"})

	providerTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_provider_calls_total",
		Help: "Total AI provider calls by outcome",
	}, []string{"provider", "outcome"})

	webhookReceived := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_received_total",
		Help: "Total webhook deliveries received",
	}, []string{"connector"})

	webhookRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_rejected_total",
		Help: "Total webhook deliveries rejected before processing",
	}, []string{"connector", "reason"})

	webhookOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_processed_total",
		Help: "Total processed webhook deliveries by outcome",
	}, []string{"connector", "outcome"})

	analysisVersions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_versions_created_total",
		Help: "Total analysis versions persisted",
	}, []string{"analysis_type"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, providerDuration, providerTotal,
		webhookReceived, webhookRejected, webhookOutcome, analysisVersions,
		cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		providerDuration: providerDuration,
		providerTotal:    providerTotal,
		webhookReceived:  webhookReceived,
		webhookRejected:  webhookRejected,
		webhookOutcome:   webhookOutcome,
		analysisVersions: analysisVersions,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
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

// ObserveProviderCall records one AI provider round trip.
func (m *MetricsService) ObserveProviderCall(provider string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.providerDuration.WithLabelValues(provider).Observe(duration.Seconds())
	m.providerTotal.WithLabelValues(provider, outcome).Inc()
}

// IncWebhookReceived counts an inbound delivery before any validation.
func (m *MetricsService) IncWebhookReceived(connectorName string) {
	if m == nil {
		return
	}
	m.webhookReceived.WithLabelValues(connectorName).Inc()
}

// IncWebhookRejected counts a delivery rejected before processing.
func (m *MetricsService) IncWebhookRejected(connectorName, reason string) {
	if m == nil {
		return
	}
	m.webhookRejected.WithLabelValues(connectorName, reason).Inc()
}

// IncWebhookOutcome counts a processed delivery by outcome.
func (m *MetricsService) IncWebhookOutcome(connectorName, outcome string) {
	if m == nil {
		return
	}
	m.webhookOutcome.WithLabelValues(connectorName, outcome).Inc()
}

// IncAnalysisVersions counts a persisted analysis version.
func (m *MetricsService) IncAnalysisVersions(analysisType string) {
	if m == nil {
		return
	}
	m.analysisVersions.WithLabelValues(analysisType).Inc()
}

// RecordCacheOperation counts cache hits and misses.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
