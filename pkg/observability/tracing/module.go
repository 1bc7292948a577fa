package tracing

import (
	"context"

	appconfig "github.com/Sokol111/ecommerce-problem-json/pkg/core/config"
	"github.com/Sokol111/ecommerce-problem-json/pkg/core/health"
	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/middleware"
	otelconfig "github.com/Sokol111/ecommerce-problem-json/pkg/observability/config"
	otelinternal "github.com/Sokol111/ecommerce-problem-json/pkg/observability/internal"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// providerParams holds dependencies for tracing provider.
type providerParams struct {
	fx.In
	Lc        fx.Lifecycle
	Log       *zap.Logger
	Cfg       otelconfig.Config
	AppCfg    appconfig.AppConfig
	Readiness health.ComponentManager
}

type middlewareParams struct {
	fx.In
	Cfg    otelconfig.Config
	AppCfg appconfig.AppConfig
	TP     trace.TracerProvider
}

// NewTracingModule returns fx.Option for tracing.
// When tracing is disabled a noop TracerProvider is provided and the gin
// middlewares are left empty.
func NewTracingModule() fx.Option {
	return fx.Options(
		fx.Provide(
			func(p providerParams) (trace.TracerProvider, error) {
				if !p.Cfg.Tracing.Enabled {
					p.Log.Info("tracing: disabled")
					return noop.NewTracerProvider(), nil
				}
				return provideTracerProvider(p)
			},
			fx.Annotate(httpMiddleware, fx.ResultTags(`group:"gin_mw"`)),
			fx.Annotate(loggerMiddleware, fx.ResultTags(`group:"gin_mw"`)),
		),
		fx.Invoke(func(trace.TracerProvider) {}),
	)
}

func provideTracerProvider(p providerParams) (trace.TracerProvider, error) {
	tp, err := newTracerProvider(context.Background(), p.Log, p.Cfg, p.AppCfg)
	if err != nil {
		return nil, err
	}

	markReady := p.Readiness.AddComponent(otelconfig.TracingComponentName)

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			otel.SetTracerProvider(tp)
			otel.SetTextMapPropagator(propagator())
			p.Log.Info("tracing initialized",
				zap.String("endpoint", p.Cfg.OtelCollectorEndpoint),
				zap.Float64("sample_ratio", p.Cfg.Tracing.SampleRatio),
			)
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, otelconfig.DefaultShutdownTimeout)
			defer cancel()
			return tp.Shutdown(shutdownCtx)
		},
	})

	return tp, nil
}

func propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// httpMiddleware starts a server span per request. The problem boundary reads
// its span context for the traceId extension. Metrics come from the metrics module.
func httpMiddleware(p middlewareParams) middleware.Middleware {
	if !p.Cfg.Tracing.Enabled {
		return middleware.Middleware{}
	}
	return middleware.Middleware{
		Priority: middleware.PriorityTracing,
		Handler: otelgin.Middleware(p.AppCfg.ServiceName,
			otelgin.WithTracerProvider(p.TP),
			otelgin.WithPropagators(propagator()),
			otelgin.WithMeterProvider(metricnoop.NewMeterProvider()),
			otelgin.WithGinFilter(otelinternal.FilterPaths),
		),
	}
}

func loggerMiddleware(cfg otelconfig.Config) middleware.Middleware {
	if !cfg.Tracing.Enabled {
		return middleware.Middleware{}
	}
	return middleware.Middleware{
		Priority: middleware.PriorityTraceLogger,
		Handler:  traceLogger,
	}
}

// traceLogger adds trace_id and span_id to the request logger.
func traceLogger(c *gin.Context) {
	ctx := c.Request.Context()
	if traceID, spanID := GetTraceIDAndSpanID(ctx); traceID != "" {
		reqLog := logger.FromContext(ctx).With(zap.String("trace_id", traceID), zap.String("span_id", spanID))
		c.Request = c.Request.WithContext(logger.WithLogger(ctx, reqLog))
	}
	c.Next()
}
