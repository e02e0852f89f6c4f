package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens an OpenTelemetry server span for every request, named after
// the route pattern (for example "GET /api/v1/parties/:id/positions").
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceEnrichment runs inside the span opened by Tracing. It stamps the
// request ID on the span so traces join up with log lines, and marks
// 4xx/5xx responses as errored. Register it after Tracing and RequestID.
func TraceEnrichment() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := c.GetString(ContextRequestID); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
