// Package metrics holds the Prometheus instruments shared across pixelgate.
// Everything registers with the default registry through promauto, so
// mounting promhttp.Handler() on /metrics exposes all of it.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelgate_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixelgate_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelgate_store_operations_total",
			Help: "Config store calls partitioned by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixelgate_store_operation_duration_seconds",
			Help:    "Config store call latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	ConversionEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelgate_conversion_events_total",
			Help: "Server-side conversion events partitioned by event name and outcome (sent, skipped, failed)",
		},
		[]string{"event", "outcome"},
	)
)

// HTTP records request counts and latencies. The matched route template is
// used as the label so slugs do not blow up cardinality.
func HTTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
