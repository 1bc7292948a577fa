package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sokol111/ecommerce-problem-json/pkg/http/problems"
	"github.com/Sokol111/ecommerce-problem-json/pkg/mapping"
	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestMapper(t *testing.T) *problems.Mapper {
	t.Helper()
	f, err := mapping.NewFactory(mapping.Config{})
	require.NoError(t, err)
	return problems.NewMapper(f, problems.Config{})
}

// newTestEngine builds an engine with the problem boundary in front of handlers.
func newTestEngine(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mws := []Middleware{{Priority: PriorityProblem, Handler: ProblemBoundary(newTestMapper(t))}}
	for i, h := range handlers {
		mws = append(mws, Middleware{Priority: 100 + i, Handler: h})
	}
	return newEngine(mws)
}

func serve(e http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) problem.Problem {
	t.Helper()
	require.Equal(t, problem.ContentType, w.Header().Get("Content-Type"))
	p, err := problem.Decode(w.Body.Bytes())
	require.NoError(t, err)
	return p
}
