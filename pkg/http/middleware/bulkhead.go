package middleware

import (
	"context"
	"time"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// bulkheadMiddleware limits concurrent requests. A request waits at most
// timeout for a free slot.
func bulkheadMiddleware(sem *semaphore.Weighted, timeout time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn("HTTP bulkhead full, rejecting request", append(requestFields(c), zap.Error(err))...)
			reject(c, failure.Wrap(failure.KindUnavailable, err, "too many concurrent requests, please try again later"))
			return
		}
		defer sem.Release(1)

		c.Next()
	}
}
