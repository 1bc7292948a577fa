// Package middleware assembles the gin engine. Every middleware reports
// failures through c.Error and leaves the response to the problem boundary,
// which is always the outermost handler.
package middleware

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/Sokol111/ecommerce-problem-json/pkg/mapping"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Middleware is a gin handler with its position in the chain. Lower
// priorities run first. A nil Handler is skipped.
type Middleware struct {
	Priority int
	Handler  gin.HandlerFunc
}

// Chain priorities.
const (
	PriorityProblem          = 0
	PriorityRequestID        = 10
	PriorityTracing          = 15
	PriorityMetrics          = 16
	PriorityTraceLogger      = 17
	PriorityRecovery         = 20
	PriorityLogger           = 30
	PriorityErrorLogger      = 40
	PriorityBodyLimit        = 45
	PriorityOpenAPIValidator = 47
	PriorityTimeout          = 50
	PriorityRateLimit        = 60
	PriorityBulkhead         = 70
	PriorityCircuitBreaker   = 80
)

// HealthPaths are exempt from limits and access logging.
var HealthPaths = []string{"/health/live", "/health/ready"}

func isHealthPath(path string) bool {
	for _, p := range HealthPaths {
		if path == p {
			return true
		}
	}
	return false
}

// reject records err for the problem boundary and stops the chain.
func reject(c *gin.Context, err error) {
	_ = c.Error(err) //nolint:errcheck // returns err wrapped
	c.Abort()
}

// serverFault reports whether err is the service's fault rather than the caller's.
func serverFault(err error) bool {
	switch mapping.Classify(err).Kind {
	case failure.KindUnknown, failure.KindInternal, failure.KindUnavailable, failure.KindTimeout:
		return true
	default:
		return false
	}
}

func requestFields(c *gin.Context) []zap.Field {
	return []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("client_ip", c.ClientIP()),
	}
}

// provide registers a Middleware in the gin_mw group.
func provide(constructor any) fx.Option {
	return fx.Provide(
		fx.Annotate(constructor, fx.ResultTags(`group:"gin_mw"`)),
	)
}
