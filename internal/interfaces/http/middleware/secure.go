package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// SecureConfig tunes the security response headers. HSTS is off unless
// the deployment terminates TLS itself.
type SecureConfig struct {
	HSTSMaxAgeSeconds  int
	HSTSSubdomains     bool
	ContentSecurityPol string
}

// DefaultSecureConfig returns the header set used by the settlement API.
// The API serves JSON only, so the CSP locks everything to 'none'.
func DefaultSecureConfig() SecureConfig {
	return SecureConfig{
		ContentSecurityPol: "default-src 'none'; frame-ancestors 'none'",
	}
}

// Secure applies the default security headers.
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecureConfig())
}

// SecureWithConfig applies standard hardening headers to every response.
func SecureWithConfig(cfg SecureConfig) gin.HandlerFunc {
	hsts := ""
	if cfg.HSTSMaxAgeSeconds > 0 {
		hsts = fmt.Sprintf("max-age=%d", cfg.HSTSMaxAgeSeconds)
		if cfg.HSTSSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg.ContentSecurityPol != "" {
			h.Set("Content-Security-Policy", cfg.ContentSecurityPol)
		}
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}
