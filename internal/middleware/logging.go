package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"payment-api/pkg/logging"
)

// LoggingMiddleware logs one line per request
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		fields := []interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", raw,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := PrincipalID(c); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			logging.Errorw("request failed", fields...)
		case c.Writer.Status() >= 400:
			logging.Warnw("request rejected", fields...)
		default:
			logging.Infow("request completed", fields...)
		}
	}
}
