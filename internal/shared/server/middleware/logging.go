package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"student-backend/internal/shared/metrics"
	"student-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request and counts it.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()

		recordID, _ := c.Get("recordId")
		modelType, _ := c.Get("modelType")

		metrics.ObserveRequest(c.Request.Method, route, status)
		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       route,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"teacher_id":  TeacherIDFromContext(c),
			"record_id":   recordID,
			"model_type":  modelType,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
