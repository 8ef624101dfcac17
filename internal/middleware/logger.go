package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akulbansal1/carelink/pkg/logger"
)

// Logger returns a middleware that logs HTTP requests through l.
func Logger(l *logger.Logger) gin.HandlerFunc {
	if l == nil {
		l = logger.NewLogger(nil)
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		fields := []interface{}{
			"request_id", c.GetString(ContextRequestID),
			"method", c.Request.Method,
			"path", path,
			"client_ip", c.ClientIP(),
			"status", statusCode,
			"latency", latency.String(),
			"user_agent", c.Request.UserAgent(),
		}

		switch {
		case statusCode >= 500:
			l.Error(nil, "Server error", fields...)
		case statusCode >= 400:
			l.Warn("Client error", fields...)
		default:
			l.Info("Request processed", fields...)
		}
	}
}
