package middleware

import (
	"github.com/banking/credit-scoring-engine/config"
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds the bank's baseline response headers.
// Health responses must never be cached by intermediaries, so Cache-Control
// is always no-store.
func SecurityHeadersMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")

		// HSTS only in production to keep local plain-HTTP runs working
		if cfg.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
