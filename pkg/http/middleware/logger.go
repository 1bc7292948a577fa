package middleware

import (
	"time"

	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"github.com/gin-gonic/gin"
	ogenmw "github.com/ogen-go/ogen/middleware"
	"go.uber.org/zap"
)

// loggerMiddleware writes a debug access log entry per request. Responses
// for recorded errors are written later by the problem boundary, so the entry
// counts errors instead of trusting the writer status.
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := append(requestFields(c),
			zap.Int("status", c.Writer.Status()),
			zap.Int("errors", len(c.Errors)),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
		)
		logger.FromContext(c).Debug("incoming request", fields...)
	}
}

// OgenLogger is the access log for ogen generated servers, passed through
// their WithMiddleware option.
func OgenLogger() ogenmw.Middleware {
	return func(req ogenmw.Request, next ogenmw.Next) (ogenmw.Response, error) {
		start := time.Now()
		resp, err := next(req)

		fields := []zap.Field{
			zap.String("method", req.Raw.Method),
			zap.String("path", req.Raw.URL.Path),
			zap.String("operation", req.OperationName),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.FromContext(req.Context).Debug("incoming request", fields...)
		return resp, err
	}
}
