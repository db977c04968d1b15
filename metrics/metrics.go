// Package metrics exposes Prometheus collectors for the HTTP API, the
// extraction flows and live browser sessions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Extraction metrics
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec
}

// New creates the collectors. activeSessions, when non-nil, backs the
// pagegrab_browser_sessions_active gauge.
func New(activeSessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagegrab_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pagegrab_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path"},
		),

		ExtractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagegrab_extractions_total",
				Help: "Finished extractions by flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		ExtractionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pagegrab_extraction_duration_seconds",
				Help:    "Time spent rendering and reading a page",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"flow"},
		),
	}

	if activeSessions != nil {
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "pagegrab_browser_sessions_active",
				Help: "Browser sessions currently launched",
			},
			func() float64 { return float64(activeSessions()) },
		)
	}

	return m
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveExtraction records a finished extraction. Passthrough results
// never touch a browser, so no duration is recorded for them.
func (m *Metrics) ObserveExtraction(flow, outcome string, elapsed time.Duration) {
	m.ExtractionsTotal.WithLabelValues(flow, outcome).Inc()
	if outcome != "passthrough" {
		m.ExtractionDuration.WithLabelValues(flow).Observe(elapsed.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies. The route template is
// used as the path label so arbitrary URLs cannot blow up cardinality.
func Middleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
