package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sokol111/ecommerce-problem-json/pkg/mapping"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ordersAPI = `
openapi: 3.0.3
info:
  title: Orders
  version: "1.0"
paths:
  /orders/{id}:
    get:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
            minimum: 1
      responses:
        "200":
          description: order
  /orders:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [sku]
              properties:
                sku:
                  type: string
                  minLength: 3
                quantity:
                  type: integer
                  minimum: 1
      responses:
        "201":
          description: created
  /admin/orders:
    get:
      security:
        - bearerAuth: []
      responses:
        "200":
          description: orders
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
`

func newOpenAPIEngine(t *testing.T) *gin.Engine {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData([]byte(ordersAPI))
	require.NoError(t, err)

	mw, err := newOpenAPIValidator(openAPIParams{Doc: doc, Log: zap.NewNop()})
	require.NoError(t, err)
	require.NotNil(t, mw.Handler)
	assert.Equal(t, PriorityOpenAPIValidator, mw.Priority)

	e := newTestEngine(t, mw.Handler)
	e.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	e.POST("/orders", func(c *gin.Context) { c.Status(http.StatusCreated) })
	e.GET("/admin/orders", func(c *gin.Context) { c.Status(http.StatusOK) })
	return e
}

func TestOpenAPIValidator(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		target        string
		body          string
		authorization string
		wantStatus    int
		wantTitle     string
		wantPath      string
	}{
		{name: "valid parameter", method: http.MethodGet, target: "/orders/7", wantStatus: http.StatusOK},
		{
			name:       "parameter below minimum",
			method:     http.MethodGet,
			target:     "/orders/0",
			wantStatus: http.StatusBadRequest,
			wantTitle:  "Validation Failure",
			wantPath:   "id",
		},
		{name: "valid body", method: http.MethodPost, target: "/orders", body: `{"sku":"A-100","quantity":2}`, wantStatus: http.StatusCreated},
		{
			name:       "body field too short",
			method:     http.MethodPost,
			target:     "/orders",
			body:       `{"sku":"A1"}`,
			wantStatus: http.StatusBadRequest,
			wantTitle:  "Validation Failure",
			wantPath:   "sku",
		},
		{
			name:       "unparsable body",
			method:     http.MethodPost,
			target:     "/orders",
			body:       `{"sku":`,
			wantStatus: http.StatusBadRequest,
			wantTitle:  "Bad Request",
		},
		{
			name:       "missing credentials",
			method:     http.MethodGet,
			target:     "/admin/orders",
			wantStatus: http.StatusUnauthorized,
			wantTitle:  "Unauthorized",
		},
		{name: "bearer present", method: http.MethodGet, target: "/admin/orders", authorization: "Bearer v4.public.x", wantStatus: http.StatusOK},
		{
			name:       "unknown route left to the engine",
			method:     http.MethodGet,
			target:     "/invoices",
			wantStatus: http.StatusNotFound,
			wantTitle:  "Not Found",
		},
	}

	e := newOpenAPIEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()

			e.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantTitle == "" {
				return
			}
			p := decodeProblem(t, w)
			assert.Equal(t, tt.wantTitle, p.Title())
			if tt.wantPath != "" {
				path, ok := p.Extension(mapping.ExtensionPath)
				require.True(t, ok)
				assert.Equal(t, tt.wantPath, path)
			}
		})
	}
}

func TestNewOpenAPIValidator_WithoutDocument(t *testing.T) {
	mw, err := newOpenAPIValidator(openAPIParams{Log: zap.NewNop()})

	require.NoError(t, err)
	assert.Nil(t, mw.Handler)
	assert.Equal(t, PriorityOpenAPIValidator, mw.Priority)
}
