// Package health serves the liveness and readiness probes.
package health

import (
	"net/http"

	corehealth "github.com/Sokol111/ecommerce-problem-json/pkg/core/health"
	"github.com/Sokol111/ecommerce-problem-json/pkg/http/problems"
	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
	"github.com/gin-gonic/gin"
)

// ExtensionPending lists components that are not ready yet.
const ExtensionPending = "pending"

type healthHandler struct {
	readiness corehealth.ReadinessChecker
	mapper    *problems.Mapper
}

func newHealthHandler(r corehealth.ReadinessChecker, m *problems.Mapper) *healthHandler {
	return &healthHandler{readiness: r, mapper: m}
}

// IsReady answers 200 once every component is ready. Otherwise it answers
// with a 503 problem naming the pending components.
func (h *healthHandler) IsReady(c *gin.Context) {
	if !h.readiness.IsReady() {
		h.notReady(c)
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, h.readiness.Status())
		return
	}
	c.String(http.StatusOK, "ready")
}

func (h *healthHandler) IsLive(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}

func (h *healthHandler) notReady(c *gin.Context) {
	p, err := problem.New(
		problem.WithTitle(http.StatusText(http.StatusServiceUnavailable)),
		problem.WithStatus(http.StatusServiceUnavailable),
		problem.WithDetail("service is starting"),
		problem.WithExtension(ExtensionPending, h.readiness.Pending()),
	)
	if err != nil {
		h.mapper.Intercept(c.Writer, c.Request, err)
		return
	}
	h.mapper.Write(c.Writer, c.Request, p)
}
