package middleware

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 128

// requestIDMiddleware accepts a well-formed incoming id or generates one. The
// id is echoed back and added to the request logger.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Header(HeaderRequestID, id)
		ctx := c.Request.Context()
		log := logger.FromContext(ctx).With(zap.String("request_id", id))
		c.Request = c.Request.WithContext(logger.WithLogger(ctx, log))

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
