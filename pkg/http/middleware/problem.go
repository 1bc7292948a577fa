package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/problems"
	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProblemBoundary writes the response for the first error recorded by the
// chain when nothing has been written yet. It also recovers panics from the
// whole chain.
//
// An error's Meta may carry a problem.Problem, which then replaces the error.
// A status set on the writer before the error (400 or above) is used for
// errors that match no category.
func ProblemBoundary(m *problems.Mapper) gin.HandlerFunc {
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
			logger.FromContext(c).Error("panic reached problem boundary",
				append(requestFields(c), zap.Error(err), zap.ByteString("stack", err.Stack))...)
			c.Abort()
			if !c.Writer.Written() {
				m.Intercept(c.Writer, c.Request, err)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		m.InterceptWithStatus(c.Writer, c.Request, firstError(c.Errors[0]), defaultStatus(c))
	}
}

func firstError(e *gin.Error) error {
	switch meta := e.Meta.(type) {
	case problem.Problem:
		return meta
	case *problem.Problem:
		if meta != nil {
			return *meta
		}
	}
	return e.Err
}

func defaultStatus(c *gin.Context) int {
	if status := c.Writer.Status(); status >= http.StatusBadRequest {
		return status
	}
	return http.StatusInternalServerError
}

// AbortWithProblem stops the chain; the boundary writes p verbatim.
func AbortWithProblem(c *gin.Context, p problem.Problem) {
	reject(c, p)
}
