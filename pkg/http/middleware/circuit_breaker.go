package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitBreakerOpen is the cause of requests rejected by an open breaker.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

var errServerFault = errors.New("server fault")

func newCircuitBreaker(maxRequests uint32, interval, timeout time.Duration, failureThreshold uint32, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "http",
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// circuitBreakerMiddleware counts server faults: a 5xx written by the
// handler, or a recorded error that is not the caller's fault.
func circuitBreakerMiddleware(cb *gobreaker.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		_, err := cb.Execute(func() (any, error) {
			c.Next()
			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errServerFault
			}
			for _, e := range c.Errors {
				if serverFault(e.Err) {
					return nil, errServerFault
				}
			}
			return nil, nil
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			reject(c, failure.Wrap(failure.KindUnavailable, ErrCircuitBreakerOpen, "service is temporarily unavailable"))
		}
	}
}
