package middleware

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// rateLimitMiddleware shares one token bucket across all requests.
func rateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if !limiter.Allow() {
			reject(c, failure.New(failure.KindTooManyRequests, "rate limit exceeded, please try again later"))
			return
		}
		c.Next()
	}
}
