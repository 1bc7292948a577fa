package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware(t *testing.T) {
	e := newTestEngine(t, rateLimitMiddleware(rate.NewLimiter(rate.Every(time.Hour), 1)))
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	e.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/").Code)

	limited := serve(e, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "rate limit exceeded, please try again later", decodeProblem(t, limited).Detail())

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health/live").Code)
}

func TestBulkheadMiddleware(t *testing.T) {
	sem := semaphore.NewWeighted(1)
	e := newTestEngine(t, bulkheadMiddleware(sem, 10*time.Millisecond, zap.NewNop()))
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/").Code)

	require.NoError(t, sem.Acquire(context.Background(), 1))
	defer sem.Release(1)

	full := serve(e, http.MethodGet, "/")
	assert.Equal(t, http.StatusServiceUnavailable, full.Code)
	assert.Contains(t, decodeProblem(t, full).Detail(), "too many concurrent requests")
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	cb := newCircuitBreaker(1, time.Minute, time.Minute, 2, zap.NewNop())
	e := newTestEngine(t, circuitBreakerMiddleware(cb))
	e.GET("/missing", func(c *gin.Context) { _ = c.Error(failure.NotFound("nope")) })
	e.GET("/broken", func(c *gin.Context) { _ = c.Error(errors.New("db down")) })
	e.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 3 {
		assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/missing").Code)
	}
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ok").Code)

	assert.Equal(t, http.StatusInternalServerError, serve(e, http.MethodGet, "/broken").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(e, http.MethodGet, "/broken").Code)

	open := serve(e, http.MethodGet, "/ok")
	assert.Equal(t, http.StatusServiceUnavailable, open.Code)
	assert.Equal(t, "service is temporarily unavailable: circuit breaker is open", decodeProblem(t, open).Detail())
}

func TestBodyLimitMiddleware(t *testing.T) {
	e := newTestEngine(t, bodyLimitMiddleware(8))
	e.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	small := httptest.NewRecorder()
	e.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("tiny")))
	assert.Equal(t, http.StatusNoContent, small.Code)

	large := httptest.NewRecorder()
	e.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("definitely too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, large.Code)
	assert.Equal(t, "Request Entity Too Large", decodeProblem(t, large).Title())
}
