// Package metrics exposes prometheus collectors for extraction, rendering
// and the HTTP boundary.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "caredoc"

// Metrics holds the service collectors on their own registry
type Metrics struct {
	registry        *prometheus.Registry
	extractions     *prometheus.HistogramVec
	renders         *prometheus.HistogramVec
	documentsIssued *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates and registers every collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of language model extraction calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"provider", "outcome"}),
		renders: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of document rasterization.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"document_type", "outcome"}),
		documentsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_issued_total",
			Help:      "Documents exported and recorded in the history.",
		}, []string{"document_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.extractions,
		m.renders,
		m.documentsIssued,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObserveExtraction records one extraction call
func (m *Metrics) ObserveExtraction(provider, outcome string, d time.Duration) {
	m.extractions.WithLabelValues(provider, outcome).Observe(d.Seconds())
}

// ObserveRender records one rasterization
func (m *Metrics) ObserveRender(docType, outcome string, d time.Duration) {
	m.renders.WithLabelValues(docType, outcome).Observe(d.Seconds())
}

// IncDocumentsIssued counts one exported document
func (m *Metrics) IncDocumentsIssued(docType string) {
	m.documentsIssued.WithLabelValues(docType).Inc()
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware counts requests by matched route; unmatched paths share one label
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
