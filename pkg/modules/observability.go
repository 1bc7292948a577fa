package modules

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/observability"
	"go.uber.org/fx"
)

// NewObservabilityModule provides tracing, metrics and the problem counter.
// See observability.NewObservabilityModule for the options.
func NewObservabilityModule(opts ...observability.Option) fx.Option {
	return observability.NewObservabilityModule(opts...)
}
