package middleware

import (
	"time"

	"github.com/banking/credit-scoring-engine/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs one structured line per request. Successful probe
// traffic is logged at debug so kubelet polling does not flood the logs.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.GetLogger()
		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		switch {
		case status >= 500:
			log.Warnw("HTTP request completed", fields...)
		case status >= 400:
			log.Infow("HTTP request completed", fields...)
		default:
			log.Debugw("HTTP request completed", fields...)
		}
	}
}
