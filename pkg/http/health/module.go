package health

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// NewHealthRoutesModule registers /health/ready and /health/live on the gin engine.
func NewHealthRoutesModule() fx.Option {
	return fx.Module("health-routes",
		fx.Provide(newHealthHandler),
		fx.Invoke(registerHealthRoutes),
	)
}

func registerHealthRoutes(r *gin.Engine, handler *healthHandler) {
	r.GET("/health/ready", handler.IsReady)
	r.HEAD("/health/ready", handler.IsReady)
	r.GET("/health/live", handler.IsLive)
}
