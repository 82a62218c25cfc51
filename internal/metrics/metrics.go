// Package metrics exposes the Prometheus metrics of the jobboard service.
// Metrics are registered on an injected registry so tests can build as many
// instances as they need.
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

// Listing outcomes recorded by ingestion.
const (
	OutcomeSaved    = "saved"
	OutcomeSkipped  = "skipped"
	OutcomeFiltered = "filtered"
)

// Metrics holds all jobboard Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	ListingsIngested   *prometheus.CounterVec
	FeedFetchFailures  *prometheus.CounterVec
	IngestRuns         *prometheus.CounterVec
	RecomputeUsers     *prometheus.CounterVec
	RecomputeDuration  prometheus.Histogram
	HTTPRequestSeconds *prometheus.HistogramVec
}

// New registers every metric on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ListingsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_ingest_listings_total",
			Help: "Raw listings processed by ingestion, by source provider and outcome",
		}, []string{"provider", "outcome"}),
		FeedFetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_feed_fetch_failures_total",
			Help: "Feed fetches that failed and were reported as empty batches",
		}, []string{"provider"}),
		IngestRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_ingest_runs_total",
			Help: "Ingestion runs, by result (ok, error)",
		}, []string{"result"}),
		RecomputeUsers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_recompute_users_total",
			Help: "Users processed by recommendation recomputation, by result",
		}, []string{"result"}),
		RecomputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobboard_recompute_duration_seconds",
			Help:    "Wall time of a full recommendation recomputation",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		HTTPRequestSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// FetchFailed implements feed.FailureRecorder.
func (m *Metrics) FetchFailed(provider string) {
	m.FeedFetchFailures.WithLabelValues(provider).Inc()
}

// RecordListings adds n listings with the given outcome for provider.
func (m *Metrics) RecordListings(provider, outcome string, n int) {
	if n <= 0 {
		return
	}
	m.ListingsIngested.WithLabelValues(provider, outcome).Add(float64(n))
}

// RecordIngestRun counts one ingestion run.
func (m *Metrics) RecordIngestRun(err error) {
	m.IngestRuns.WithLabelValues(result(err)).Inc()
}

// RecordRecompute records the outcome of one recomputation pass.
func (m *Metrics) RecordRecompute(succeeded, failed int, took time.Duration) {
	if succeeded > 0 {
		m.RecomputeUsers.WithLabelValues("ok").Add(float64(succeeded))
	}
	if failed > 0 {
		m.RecomputeUsers.WithLabelValues("error").Add(float64(failed))
	}
	m.RecomputeDuration.Observe(took.Seconds())
}

// GinMiddleware observes request latency using the matched route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestSeconds.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
