package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTimeoutMiddleware(t *testing.T) {
	e := newTestEngine(t, timeoutMiddleware(20*time.Millisecond, zap.NewNop()))
	e.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	e.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	e.GET("/health/ready", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		assert.False(t, hasDeadline)
		c.Status(http.StatusOK)
	})

	slow := serve(e, http.MethodGet, "/slow")
	assert.Equal(t, http.StatusGatewayTimeout, slow.Code)
	p := decodeProblem(t, slow)
	assert.Equal(t, "Gateway Timeout", p.Title())
	assert.Contains(t, p.Detail(), "request took too long to process")

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/fast").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health/ready").Code)
}

func TestTimeoutMiddleware_HandlerReportsDeadline(t *testing.T) {
	e := newTestEngine(t, timeoutMiddleware(10*time.Millisecond, zap.NewNop()))
	e.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
		_ = c.Error(c.Request.Context().Err())
	})

	w := serve(e, http.MethodGet, "/slow")

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}
