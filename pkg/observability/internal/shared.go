package internal

import (
	"context"
	"slices"
	"strings"

	appconfig "github.com/Sokol111/ecommerce-problem-json/pkg/core/config"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// metricsPath is the scrape endpoint, excluded alongside the health probes.
const metricsPath = "/metrics"

// NewResource creates a new OpenTelemetry resource with service information.
func NewResource(ctx context.Context, appCfg appconfig.AppConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(appCfg.ServiceName),
			semconv.ServiceVersionKey.String(appCfg.ServiceVersion),
			semconv.DeploymentEnvironmentNameKey.String(appCfg.Environment),
		),
	)
}

// FilterPaths reports whether a request should be instrumented. Health
// probes and the metrics endpoint are skipped.
func FilterPaths(c *gin.Context) bool {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	if slices.Contains(middleware.HealthPaths, path) {
		return false
	}
	return !strings.HasPrefix(path, metricsPath)
}
