package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// bodyLimitMiddleware caps request bodies. Reading past the limit fails with
// *http.MaxBytesError, which maps to 413.
func bodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
