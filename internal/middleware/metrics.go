package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/autocare/autocare-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records the duration and status of every request by route template.
// Requests under one of the skip prefixes (the scrape endpoint, static images) are not observed.
func Metrics(metricsSvc *service.MetricsService, skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || skipped(c.Request.URL.Path, skipPrefixes) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func skipped(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
