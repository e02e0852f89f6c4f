package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jtrade/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies larger than maxBytes. Settlement payloads
// are small line arrays, so anything oversized is a client bug or abuse.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				"REQUEST_TOO_LARGE",
				"Request body exceeds the allowed size",
				c.GetString(ContextRequestID),
			))
			return
		}

		// Chunked uploads report no ContentLength, cap those while streaming.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
