package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banking/credit-scoring-engine/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		environment  config.Environment
		expectedHSTS string
	}{
		{name: "development has no HSTS", environment: config.EnvDevelopment, expectedHSTS: ""},
		{name: "production sets HSTS", environment: config.EnvProduction, expectedHSTS: "max-age=31536000; includeSubDomains"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Server: config.ServerConfig{Environment: tt.environment}}

			r := gin.New()
			r.Use(SecurityHeadersMiddleware(cfg))
			r.GET("/actuator/health/liveness", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/actuator/health/liveness", nil))

			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			assert.Equal(t, tt.expectedHSTS, w.Header().Get("Strict-Transport-Security"))
		})
	}
}
