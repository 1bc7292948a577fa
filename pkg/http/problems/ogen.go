package problems

import (
	"context"
	"net/http"

	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"github.com/ogen-go/ogen/ogenerrors"
	"go.uber.org/zap"
)

// NewOgenErrorHandler adapts m to ogen generated servers. The status ogen
// assigns to the error is used for errors that match no category.
func NewOgenErrorHandler(m *Mapper) ogenerrors.ErrorHandler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
		code := ogenerrors.ErrorCode(err)

		log := logger.FromContext(ctx)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("ogen_status", code),
			zap.Error(err),
		}
		if code >= http.StatusInternalServerError {
			log.Error("request error", fields...)
		} else {
			log.Debug("request error", fields...)
		}

		m.InterceptWithStatus(w, r.WithContext(ctx), err, code)
	}
}
