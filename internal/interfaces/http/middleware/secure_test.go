package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func secureResponse(t *testing.T, cfg SecureConfig) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecureWithConfig(cfg))
	r.GET("/api/v1/system/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil))
	return w.Header()
}

func TestSecureSetsBaselineHeaders(t *testing.T) {
	h := secureResponse(t, DefaultSecureConfig())

	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", h.Get("Content-Security-Policy"))
	assert.Empty(t, h.Get("Strict-Transport-Security"))
}

func TestSecureHSTSWhenConfigured(t *testing.T) {
	h := secureResponse(t, SecureConfig{
		HSTSMaxAgeSeconds: 31536000,
		HSTSSubdomains:    true,
	})

	assert.Equal(t, "max-age=31536000; includeSubDomains", h.Get("Strict-Transport-Security"))
	assert.Empty(t, h.Get("Content-Security-Policy"))
}
