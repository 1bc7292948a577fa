package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var errMissingCredentials = errors.New("missing credentials")

// openAPIValidatorMiddleware checks requests against the operations of doc.
// Requests matching no operation pass through, so the engine still answers
// them with 404 or 405. Credentials are only checked for presence; verifying
// them is left to BearerAuth.
func openAPIValidatorMiddleware(doc *openapi3.T) (gin.HandlerFunc, error) {
	doc.Servers = nil
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}
	options := &openapi3filter.Options{AuthenticationFunc: requireCredentials}

	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		route, pathParams, err := router.FindRoute(c.Request)
		if err != nil {
			c.Next()
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options:    options,
		}
		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			reject(c, err)
			return
		}
		c.Next()
	}, nil
}

func requireCredentials(_ context.Context, in *openapi3filter.AuthenticationInput) error {
	req := in.RequestValidationInput.Request
	scheme := in.SecurityScheme

	var present bool
	switch {
	case scheme.Type == "http" && strings.EqualFold(scheme.Scheme, "bearer"):
		present = bearerFromHeader(req.Header.Get("Authorization")) != ""
	case scheme.Type == "apiKey" && scheme.In == "header":
		present = req.Header.Get(scheme.Name) != ""
	case scheme.Type == "apiKey" && scheme.In == "query":
		present = req.URL.Query().Get(scheme.Name) != ""
	case scheme.Type == "apiKey" && scheme.In == "cookie":
		_, cookieErr := req.Cookie(scheme.Name)
		present = cookieErr == nil
	default:
		present = req.Header.Get("Authorization") != ""
	}
	if !present {
		return fmt.Errorf("%w for %s", errMissingCredentials, in.SecuritySchemeName)
	}
	return nil
}

type openAPIParams struct {
	fx.In
	Doc *openapi3.T `optional:"true"`
	Log *zap.Logger
}

// newOpenAPIValidator enables request validation when an *openapi3.T is
// provided.
func newOpenAPIValidator(p openAPIParams) (Middleware, error) {
	if p.Doc == nil {
		return Middleware{Priority: PriorityOpenAPIValidator}, nil
	}
	handler, err := openAPIValidatorMiddleware(p.Doc)
	if err != nil {
		return Middleware{}, err
	}
	p.Log.Info("OpenAPI request validation enabled")
	return Middleware{Priority: PriorityOpenAPIValidator, Handler: handler}, nil
}
