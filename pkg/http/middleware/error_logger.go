package middleware

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorLoggerMiddleware logs every error recorded by inner handlers. Server
// faults are logged at error level, caller mistakes at warn.
func errorLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		log := logger.FromContext(c)
		for _, e := range c.Errors {
			fields := append(requestFields(c), zap.Error(e.Err))
			if e.Meta != nil {
				fields = append(fields, zap.Any("meta", e.Meta))
			}
			if serverFault(e.Err) {
				log.Error("request error", fields...)
			} else {
				log.Warn("request error", fields...)
			}
		}
	}
}
