package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// timeoutMiddleware puts a deadline on the request context. Handlers are
// expected to honor it; when the deadline passes before anything was written
// the request fails with 504.
func timeoutMiddleware(timeout time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() || len(c.Errors) > 0 {
			return
		}
		log.Warn("HTTP request timeout", append(requestFields(c), zap.Duration("timeout", timeout))...)
		reject(c, failure.Wrap(failure.KindTimeout, ctx.Err(), "request took too long to process"))
	}
}
