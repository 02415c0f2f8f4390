package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"jobboard_chat/pkg/logger"
)

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		keyvals := []interface{}{
			"request_id", c.GetString(ContextRequestID),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("Request failed", keyvals...)
		case status >= 400:
			log.Warn("Request rejected", keyvals...)
		default:
			log.Info("Request handled", keyvals...)
		}
	}
}
