package middleware

import (
	"strconv"
	"time"

	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// LoggerMiddleware logs every request and records its latency histogram.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestSeconds.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(latency.Seconds())

		// approval links carry the code in the query string
		if raw != "" && route != "/api/v1/approve" {
			path = path + "?" + raw
		}
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, status, latency, c.ClientIP())
	}
}
