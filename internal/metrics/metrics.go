// Package metrics provides Prometheus metrics for the Pokédex backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokedex_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// PokeAPI Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_pokeapi_requests_total",
			Help: "Total number of PokeAPI requests by endpoint and outcome",
		},
		[]string{"endpoint", "result"}, // result: "ok", "not_found", "error"
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokedex_pokeapi_latency_seconds",
			Help:    "PokeAPI call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	// Pipeline Metrics
	PageLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_page_loads_total",
			Help: "Page aggregations by mode and result",
		},
		[]string{"mode", "result"}, // mode: "normal", "alternate"; result: "ok", "failed"
	)

	PageLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokedex_page_load_duration_seconds",
			Help:    "Time taken to build a basic page",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"mode"},
	)

	SupersededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_superseded_results_total",
			Help: "Results discarded because a newer request replaced them",
		},
		[]string{"target"}, // "page", "enrichment", "detail"
	)

	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_item_fallbacks_total",
			Help: "Per-item fetches that degraded to a default",
		},
		[]string{"stage"}, // "enrichment", "rarity", "move", "evolution"
	)

	// Session Metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokedex_active_sessions",
			Help: "Number of view sessions currently held in memory",
		},
	)
)

// GinMiddleware records request count and latency for every routed request
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
