package modules

import (
	"github.com/Sokol111/ecommerce-problem-json/pkg/core"
	"go.uber.org/fx"
)

// NewCoreModule provides core functionality: config, logger and readiness.
// See core.NewCoreModule for the options.
func NewCoreModule(opts ...core.Option) fx.Option {
	return core.NewCoreModule(opts...)
}
