package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type confirmMatchBody struct {
	OrderLineID  string   `json:"order_line_id" binding:"required,uuid"`
	MaterialCode string   `json:"material_code" binding:"required"`
	WeightG      *float64 `json:"weight_g" binding:"omitempty,gt=0"`
}

func bindConfirmMatch(t *testing.T, payload string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	SetupValidator()

	r := gin.New()
	r.Use(RequestID())
	r.POST("/api/v1/match/receipt-lines/:id/confirm", func(c *gin.Context) {
		var body confirmMatchBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match/receipt-lines/rl-1/confirm", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestValidationReportsJSONFieldNames(t *testing.T) {
	w := bindConfirmMatch(t, `{"material_code":"GOLD"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "order_line_id")
	assert.Contains(t, w.Body.String(), "This field is required")
	assert.NotContains(t, w.Body.String(), "OrderLineID")
}

func TestValidationRendersParameterizedMessages(t *testing.T) {
	w := bindConfirmMatch(t, `{"order_line_id":"b6f1a9be-9a2f-4e94-9d3b-0d5a0a5a1f10","material_code":"SILVER","weight_g":-2.5}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "weight_g")
	assert.Contains(t, w.Body.String(), "Must be greater than 0")
}

func TestValidationFlagsMalformedUUID(t *testing.T) {
	w := bindConfirmMatch(t, `{"order_line_id":"not-a-uuid","material_code":"GOLD"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid UUID format")
}

func TestValidationAcceptsWellFormedRequest(t *testing.T) {
	w := bindConfirmMatch(t, `{"order_line_id":"b6f1a9be-9a2f-4e94-9d3b-0d5a0a5a1f10","material_code":"GOLD","weight_g":3.75}`)

	assert.Equal(t, http.StatusOK, w.Code)
}
