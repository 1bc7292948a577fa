package metrics

import (
	"context"

	appconfig "github.com/Sokol111/ecommerce-problem-json/pkg/core/config"
	"github.com/Sokol111/ecommerce-problem-json/pkg/core/health"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/middleware"
	otelconfig "github.com/Sokol111/ecommerce-problem-json/pkg/observability/config"
	otelinternal "github.com/Sokol111/ecommerce-problem-json/pkg/observability/internal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// providerParams holds dependencies for metrics provider.
type providerParams struct {
	fx.In
	Lc        fx.Lifecycle
	Log       *zap.Logger
	Cfg       otelconfig.Config
	AppCfg    appconfig.AppConfig
	Readiness health.ComponentManager
}

// NewMetricsModule returns fx.Option for metrics. It also provides the
// *ProblemCounter. When metrics are disabled the provider is a noop.
func NewMetricsModule() fx.Option {
	return fx.Options(
		fx.Provide(
			func(p providerParams) (metric.MeterProvider, error) {
				if !p.Cfg.Metrics.Enabled {
					p.Log.Info("metrics: disabled")
					return noop.NewMeterProvider(), nil
				}
				return provideMeterProvider(p)
			},
			fx.Annotate(httpMiddleware, fx.ResultTags(`group:"gin_mw"`)),
			NewProblemCounter,
		),
		fx.Invoke(func(metric.MeterProvider) {}),
	)
}

func provideMeterProvider(p providerParams) (metric.MeterProvider, error) {
	provider, err := newProvider(context.Background(), p.Cfg.OtelCollectorEndpoint, p.Cfg.Metrics.Interval, p.AppCfg)
	if err != nil {
		return nil, err
	}

	markReady := p.Readiness.AddComponent(otelconfig.MetricsComponentName)

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			otel.SetMeterProvider(provider)
			if err := otelruntime.Start(
				otelruntime.WithMeterProvider(provider),
				otelruntime.WithMinimumReadMemStatsInterval(otelconfig.DefaultRuntimeStatsInterval),
			); err != nil {
				p.Log.Warn("runtime metrics not started", zap.Error(err))
			}
			p.Log.Info("metrics initialized",
				zap.String("endpoint", p.Cfg.OtelCollectorEndpoint),
				zap.Duration("interval", p.Cfg.Metrics.Interval),
			)
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, otelconfig.DefaultShutdownTimeout)
			defer cancel()
			return provider.Shutdown(shutdownCtx)
		},
	})

	return provider, nil
}

// httpMiddleware records request metrics. Spans come from the tracing module.
func httpMiddleware(cfg otelconfig.Config, appCfg appconfig.AppConfig, mp metric.MeterProvider) middleware.Middleware {
	if !cfg.Metrics.Enabled {
		return middleware.Middleware{}
	}
	return middleware.Middleware{
		Priority: middleware.PriorityMetrics,
		Handler: otelgin.Middleware(appCfg.ServiceName,
			otelgin.WithMeterProvider(mp),
			otelgin.WithTracerProvider(tracenoop.NewTracerProvider()),
			otelgin.WithGinFilter(otelinternal.FilterPaths),
		),
	}
}
