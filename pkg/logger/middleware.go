package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out of the service
const RequestIDHeader = "X-Request-ID"

// Middleware returns a Gin middleware function that logs requests
func Middleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Reuse an upstream request ID when present
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = c.GetString("requestID")
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		reqLogger := logger.WithRequestID(requestID)
		c.Set("logger", reqLogger)

		start := time.Now()

		c.Next()

		reqLogger.LogRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// FromContext returns the request-scoped logger, or the global one outside a request
func FromContext(c *gin.Context) *Logger {
	if c != nil {
		if l, ok := c.Get("logger"); ok {
			if log, ok := l.(*Logger); ok {
				return log
			}
		}
	}
	return GetGlobal()
}
