package middleware

import (
	"net/http"
	"sort"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/problems"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/server"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// NewGinModule provides the *gin.Engine, exposed as http.Handler, and the
// middleware chain. Other modules add middleware through the gin_mw group.
//
// Order (lower runs earlier, so it wraps everything after it):
//
//	 0 problem boundary  writes the problem response, recovers panics
//	10 request id
//	15 tracing           (observability)
//	16 metrics           (observability)
//	20 recovery          panic to error
//	30 access log
//	40 error log
//	45 body limit        413
//	47 openapi validator 400, 401 (only with an *openapi3.T in the container)
//	50 timeout           504
//	60 rate limit        429
//	70 bulkhead          503
//	80 circuit breaker   503
func NewGinModule() fx.Option {
	return fx.Module("gin",
		provide(func(m *problems.Mapper) Middleware {
			return Middleware{Priority: PriorityProblem, Handler: ProblemBoundary(m)}
		}),
		provide(func() Middleware {
			return Middleware{Priority: PriorityRequestID, Handler: requestIDMiddleware()}
		}),
		provide(func() Middleware {
			return Middleware{Priority: PriorityRecovery, Handler: recoveryMiddleware()}
		}),
		provide(func() Middleware {
			return Middleware{Priority: PriorityLogger, Handler: loggerMiddleware()}
		}),
		provide(func() Middleware {
			return Middleware{Priority: PriorityErrorLogger, Handler: errorLoggerMiddleware()}
		}),
		provide(newBodyLimit),
		provide(newOpenAPIValidator),
		provide(newTimeout),
		provide(newRateLimit),
		provide(newBulkhead),
		provide(newCircuitBreakerMiddleware),
		fx.Provide(provideGinAndHandler),
	)
}

func newBodyLimit(cfg server.Config) Middleware {
	if cfg.MaxBodyBytes <= 0 {
		return Middleware{Priority: PriorityBodyLimit}
	}
	return Middleware{Priority: PriorityBodyLimit, Handler: bodyLimitMiddleware(cfg.MaxBodyBytes)}
}

func newTimeout(cfg server.Config, log *zap.Logger) Middleware {
	if !lo.FromPtr(cfg.Timeout.Enabled) {
		return Middleware{Priority: PriorityTimeout}
	}
	log.Info("HTTP timeout middleware initialized", zap.Duration("request-timeout", cfg.Timeout.RequestTimeout))
	return Middleware{Priority: PriorityTimeout, Handler: timeoutMiddleware(cfg.Timeout.RequestTimeout, log)}
}

func newRateLimit(cfg server.Config) Middleware {
	if !lo.FromPtr(cfg.RateLimit.Enabled) {
		return Middleware{Priority: PriorityRateLimit}
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	return Middleware{Priority: PriorityRateLimit, Handler: rateLimitMiddleware(limiter)}
}

func newBulkhead(cfg server.Config, log *zap.Logger) Middleware {
	if !lo.FromPtr(cfg.Bulkhead.Enabled) {
		return Middleware{Priority: PriorityBulkhead}
	}
	log.Info("HTTP bulkhead initialized",
		zap.Int("max-concurrent", cfg.Bulkhead.MaxConcurrent),
		zap.Duration("timeout", cfg.Bulkhead.Timeout),
	)
	sem := semaphore.NewWeighted(int64(cfg.Bulkhead.MaxConcurrent))
	return Middleware{Priority: PriorityBulkhead, Handler: bulkheadMiddleware(sem, cfg.Bulkhead.Timeout, log)}
}

func newCircuitBreakerMiddleware(cfg server.Config, log *zap.Logger) Middleware {
	cb := cfg.CircuitBreaker
	if !lo.FromPtr(cb.Enabled) {
		return Middleware{Priority: PriorityCircuitBreaker}
	}
	log.Info("circuit breaker middleware initialized",
		zap.Uint32("failure-threshold", cb.FailureThreshold),
		zap.Duration("timeout", cb.Timeout),
		zap.Duration("interval", cb.Interval),
		zap.Uint32("max-requests", cb.MaxRequests),
	)
	breaker := newCircuitBreaker(cb.MaxRequests, cb.Interval, cb.Timeout, cb.FailureThreshold, log)
	return Middleware{Priority: PriorityCircuitBreaker, Handler: circuitBreakerMiddleware(breaker)}
}

type engineParams struct {
	fx.In
	Middlewares []Middleware `group:"gin_mw"`
}

func provideGinAndHandler(p engineParams) (*gin.Engine, http.Handler) {
	e := newEngine(p.Middlewares)
	return e, e
}

func newEngine(mws []Middleware) *gin.Engine {
	engine := gin.New(func(e *gin.Engine) {
		e.ContextWithFallback = true
		e.HandleMethodNotAllowed = true
	})

	sort.SliceStable(mws, func(i, j int) bool { return mws[i].Priority < mws[j].Priority })
	for _, m := range mws {
		if m.Handler == nil {
			continue
		}
		engine.Use(m.Handler)
	}

	engine.NoRoute(func(c *gin.Context) {
		reject(c, failure.New(failure.KindNotFound, "no route for "+c.Request.URL.Path))
	})
	engine.NoMethod(func(c *gin.Context) {
		reject(c, failure.New(failure.KindMethodNotAllowed, c.Request.Method+" is not supported for "+c.Request.URL.Path))
	})

	return engine
}
