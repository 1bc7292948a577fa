// Package observability wires OpenTelemetry into problem responses.
//
// Tracing adds the traceId extension to every problem written while a span is
// active, and metrics count written problems by status and type. Both can be
// switched off independently of the exporters:
//
//	observability.NewObservabilityModule(
//	    observability.WithoutTraceID(),        // keep spans, hide trace ids from clients
//	    observability.WithoutProblemCounter(), // keep request metrics only
//	)
//
// The tracing and metrics subpackages can also be used on their own together
// with config.NewObservabilityConfigModule.
package observability

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/problems"
	"github.com/Sokol111/ecommerce-problem-json/pkg/observability/config"
	"github.com/Sokol111/ecommerce-problem-json/pkg/observability/metrics"
	"github.com/Sokol111/ecommerce-problem-json/pkg/observability/tracing"
	"go.uber.org/fx"
)

type observabilityOptions struct {
	config                *config.Config
	disableTracing        bool
	disableMetrics        bool
	disableTraceID        bool
	disableProblemCounter bool
}

// Option configures the observability module.
type Option func(*observabilityOptions)

// WithConfig provides a static Config instead of loading it from viper.
func WithConfig(cfg config.Config) Option {
	return func(opts *observabilityOptions) {
		opts.config = &cfg
	}
}

// WithoutTracing disables tracing regardless of configuration.
func WithoutTracing() Option {
	return func(opts *observabilityOptions) {
		opts.disableTracing = true
	}
}

// WithoutMetrics disables metrics regardless of configuration.
func WithoutMetrics() Option {
	return func(opts *observabilityOptions) {
		opts.disableMetrics = true
	}
}

// WithoutTraceID keeps tracing but stops problems from carrying the traceId
// extension.
func WithoutTraceID() Option {
	return func(opts *observabilityOptions) {
		opts.disableTraceID = true
	}
}

// WithoutProblemCounter keeps request metrics but stops counting problems.
func WithoutProblemCounter() Option {
	return func(opts *observabilityOptions) {
		opts.disableProblemCounter = true
	}
}

// NewObservabilityModule provides tracing, metrics and the problem mapper
// options that depend on them.
func NewObservabilityModule(opts ...Option) fx.Option {
	o := &observabilityOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Options(
		configModule(o),
		tracing.NewTracingModule(),
		metrics.NewMetricsModule(),
		fx.Provide(fx.Annotate(mapperOption(o), fx.ResultTags(problems.MapperOptionGroup))),
	)
}

// mapperOption attaches the problem counter when metrics are on and drops
// the traceId extension when tracing is off.
func mapperOption(o *observabilityOptions) func(config.Config, *metrics.ProblemCounter) problems.MapperOption {
	return func(cfg config.Config, counter *metrics.ProblemCounter) problems.MapperOption {
		countProblems := cfg.Metrics.Enabled && !o.disableProblemCounter
		traceIDs := cfg.Tracing.Enabled && !o.disableTraceID

		return func(m *problems.Mapper) {
			if countProblems {
				problems.WithRecorder(counter)(m)
			}
			if !traceIDs {
				problems.WithoutTraceID()(m)
			}
		}
	}
}

func configModule(opts *observabilityOptions) fx.Option {
	var configOpts []config.Option

	if opts.config != nil {
		configOpts = append(configOpts, config.WithConfig(*opts.config))
	}
	if opts.disableTracing {
		configOpts = append(configOpts, config.WithDisableTracing())
	}
	if opts.disableMetrics {
		configOpts = append(configOpts, config.WithDisableMetrics())
	}

	return config.NewObservabilityConfigModule(configOpts...)
}
