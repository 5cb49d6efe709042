package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"notistore/internal/metrics"
)

// Metrics records the duration of every request under its route pattern.
func Metrics(m metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.ObserveHTTPRequestDuration(handler, c.Request.Method, http.StatusText(c.Writer.Status()), time.Since(start).Seconds())
	}
}
