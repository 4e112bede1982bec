package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"authgate/internal/shared/logger"
)

// RequestLogger logs each completed request with a severity matching its
// status code.
func RequestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Error("request completed", args...)
		case status >= 400:
			log.Warn("request completed", args...)
		default:
			log.Debug("request completed", args...)
		}
	}
}
