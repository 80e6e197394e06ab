package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Labels are bounded: route is the registered Gin pattern
// (e.g. /api/v1/listings/:id/rating), never the raw URL.
var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rental",
			Name:      "http_requests_total",
			Help:      "Host bridge requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rental",
			Name:      "http_request_duration_seconds",
			Help:      "Host bridge request latency.",
			// local KV calls: sub-millisecond to a few hundred ms
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rental",
		Name:      "http_requests_inflight",
		Help:      "Requests currently being served.",
	})

	idemReplays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rental",
			Name:      "idempotent_replays_total",
			Help:      "Mutations answered from a stored idempotency record.",
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, idemReplays)
}

// Metrics records request count, latency and in-flight requests. Unmatched
// routes are collapsed into a single "unmatched" label.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpReqs.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if IsReplay(c) {
			idemReplays.WithLabelValues(route).Inc()
		}
	}
}
