package middleware

import (
	"strconv"
	"time"

	"github.com/SscSPs/prompt_books/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request count, latency and in-flight requests.
// The route template is used as the path label so ids do not explode cardinality.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		m.HTTPInFlight.Inc()
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPInFlight.Dec()
	}
}
