package modules

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sokol111/ecommerce-problem-json/pkg/core"
	appconfig "github.com/Sokol111/ecommerce-problem-json/pkg/core/config"
	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/middleware"
	"github.com/Sokol111/ecommerce-problem-json/pkg/mapping"
	"github.com/Sokol111/ecommerce-problem-json/pkg/observability"
	"github.com/Sokol111/ecommerce-problem-json/pkg/security/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var handler http.Handler
	app := fxtest.New(t,
		NewCoreModule(
			core.WithAppConfig(appconfig.AppConfig{ServiceName: "orders", ServiceVersion: "1.0.0", Environment: "test"}),
			core.WithoutEnvFile(),
			core.WithoutConfigFile(),
		),
		NewObservabilityModule(observability.WithoutTracing(), observability.WithoutMetrics()),
		NewSecurityModule(WithTestClaims(token.Claims{
			UserID:      "user-1",
			Permissions: []string{"orders:read"},
			Type:        token.TypeAccess,
		})),
		NewHTTPModule(WithMappingConfig(mapping.Config{TypeBaseURI: "https://errors.example.com/"})),
		fx.Invoke(func(e *gin.Engine, v token.Validator) {
			orders := e.Group("/orders", middleware.BearerAuth(v, "orders:read"))
			orders.GET("/:id", func(c *gin.Context) {
				_ = c.Error(failure.NotFound("order %s not found", c.Param("id")))
			})
			e.DELETE("/orders/:id", middleware.BearerAuth(v, "orders:delete"), func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})
		}),
		fx.Populate(&handler),
	)
	require.NoError(t, app.Err())
	return handler
}

func TestHTTPStack(t *testing.T) {
	handler := newTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		auth   bool
		status int
		body   string
	}{
		{
			name:   "handler failure",
			method: http.MethodGet,
			path:   "/orders/42",
			auth:   true,
			status: http.StatusNotFound,
			body:   `{"type":"https://errors.example.com/not-found","title":"Not Found","status":404,"detail":"order 42 not found"}`,
		},
		{
			name:   "missing token",
			method: http.MethodGet,
			path:   "/orders/42",
			status: http.StatusUnauthorized,
		},
		{
			name:   "missing permission",
			method: http.MethodDelete,
			path:   "/orders/42",
			auth:   true,
			status: http.StatusForbidden,
		},
		{
			name:   "unknown route",
			method: http.MethodGet,
			path:   "/invoices",
			status: http.StatusNotFound,
			body:   `{"type":"https://errors.example.com/not-found","title":"Not Found","status":404,"detail":"no route for /invoices"}`,
		},
		{
			name:   "readiness before start",
			method: http.MethodGet,
			path:   "/health/ready",
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth {
				req.Header.Set("Authorization", "Bearer test-token")
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}
