package middleware

import (
	"net/http"

	"ice-breakun/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// BodyLimit rejects request bodies larger than max bytes with 413.
// Declared lengths are rejected up front; streamed bodies fail on read with
// *http.MaxBytesError, which handlers report the same way.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > max {
			_ = c.Error(PayloadTooLarge())
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

// PayloadTooLarge is the error reported for oversized bodies
func PayloadTooLarge() *errors.AppError {
	return errors.NewError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
}
