// file: internal/server/middleware/requestid.go
// version: 1.0.0
// guid: 2442816b-96dc-4269-a3f6-6df314e9b1f8

package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
)

// RequestIDHeader carries the request id back to the client and is
// honored on the way in so upstream proxies can correlate.
const RequestIDHeader = "X-Request-ID"

const contextRequestIDKey = "request_id"

// RequestID returns a middleware that assigns a ULID to each request and
// logs an access line once the handler chain completes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(contextRequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := "INFO"
		if status >= 500 {
			level = "ERROR"
		}
		log.Printf("[%s] %s %s %s -> %d (%s)",
			level, id, c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond))
	}
}

// GetRequestID returns the request id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(contextRequestIDKey)
}
