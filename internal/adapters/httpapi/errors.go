package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"genebank/internal/auth"
	"genebank/internal/catalog"
	"genebank/pkg/domain"
)

// classify maps an error onto a status code and the detail of the error body.
// Batch errors carry their item messages as a list.
func classify(err error) (int, any) {
	var (
		batch    *domain.BatchError
		invalid  *catalog.ValidationError
		ref      domain.ReferenceError
		identity domain.IdentityChangeError
		notFound domain.NotFoundError
		conflict domain.ConflictError
		inUse    domain.InUseError
		he       *echo.HTTPError
	)
	switch {
	case errors.As(err, &batch):
		return http.StatusBadRequest, batch.Messages
	case errors.As(err, &invalid), errors.As(err, &ref), errors.As(err, &identity):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &conflict), errors.As(err, &inUse):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, auth.ErrInvalidToken.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func statusOf(err error) int {
	status, _ := classify(err)
	return status
}

func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, detail := classify(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Request().URL.Path), zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, map[string]any{"detail": detail})
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
