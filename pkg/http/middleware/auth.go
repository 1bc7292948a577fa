package middleware

import (
	"errors"
	"strings"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/Sokol111/ecommerce-problem-json/pkg/security/token"
	"github.com/gin-gonic/gin"
)

// BearerAuth authenticates the request with validator and requires at least
// one of permissions. Attach it to route groups:
//
//	admin := engine.Group("/admin", middleware.BearerAuth(v, "product:write"))
//
// Failures become 401 problems, with a WWW-Authenticate challenge, or 403.
func BearerAuth(validator token.Validator, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _, err := token.Authorize(c.Request.Context(), validator, bearerToken(c), permissions)
		if err != nil {
			var fe *failure.Error
			if errors.As(err, &fe) && fe.Kind == failure.KindUnauthenticated {
				c.Header("WWW-Authenticate", `Bearer realm="api"`)
			}
			reject(c, err)
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	return bearerFromHeader(c.GetHeader("Authorization"))
}

func bearerFromHeader(header string) string {
	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
