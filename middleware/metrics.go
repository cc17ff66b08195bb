package middleware

import (
	"strconv"
	"time"

	"github.com/banking/credit-scoring-engine/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request count, latency and in-flight requests.
// The endpoint label is the matched route pattern to keep cardinality bounded.
func MetricsMiddleware(metricsReg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		inFlight := metricsReg.HTTPRequestsInFlight.WithLabelValues(endpoint)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		c.Next()

		metricsReg.HTTPRequestsTotal.WithLabelValues(
			endpoint,
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		metricsReg.HTTPRequestDuration.WithLabelValues(
			endpoint,
			c.Request.Method,
		).Observe(time.Since(start).Seconds())
	}
}
