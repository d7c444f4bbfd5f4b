package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harborview/calendar-api/internal/service"
)

// Metrics observes every served request on the metrics service. The path
// label is the route template, so /calendars/work/events and
// /calendars/personal/events land in the same series; scrapes of the
// metrics endpoint itself are not observed.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		if route == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
