package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newBodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), BodyLimit(limit))
	r.POST("/api/v1/settlement/decompose", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestBodyLimitRejectsOversizedPayload(t *testing.T) {
	r := newBodyLimitRouter(16)

	body := strings.NewReader(`{"lines":[{"material_code":"GOLD","weight_g":3.75}]}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlement/decompose", body)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

func TestBodyLimitPassesSmallPayload(t *testing.T) {
	r := newBodyLimitRouter(1 << 20)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlement/decompose", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
