// Package middleware provides HTTP middleware for the settlement API.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the header clients may use to carry their own request ID.
const HeaderRequestID = "X-Request-ID"

// ContextRequestID is the gin context key the request ID is stored under.
const ContextRequestID = "request_id"

// RequestID tags every request with an ID so a settlement decomposition or a
// match confirmation can be traced end to end through the logs. A
// caller-supplied X-Request-ID is honored, otherwise a fresh UUID is issued.
// The ID is echoed back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}
