package httpx

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ridKey = "rid"

// RequestID tags every request with an id, honoring one supplied by the
// caller, and echoes it back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ridKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// RequestIDFrom returns the id set by RequestID, or "" outside of it.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ridKey)
}

// Logger writes one access-log line per request. The route template is
// logged next to the raw path so cart/order ids don't explode log
// cardinality when grepping.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		log.Printf("[http] rid=%s %s %s route=%s status=%d ip=%s dur=%s",
			RequestIDFrom(c), c.Request.Method, c.Request.URL.Path, route,
			c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}
