package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// recoveryMiddleware turns a handler panic into a *failure.PanicError on the
// gin error chain, so it is logged and mapped like any other error.
func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(rec)
			}
			err := &failure.PanicError{Value: rec, Stack: debug.Stack()}
			logger.FromContext(c).Error("panic recovered",
				append(requestFields(c), zap.Any("panic", rec), zap.ByteString("stack", err.Stack))...)
			reject(c, err)
		}()
		c.Next()
	}
}
