package httpapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"

	"genebank/internal/auth"
	"genebank/internal/metrics"
	"genebank/internal/permission"
)

const actorKey = "genebank.actor"

// SetLevel sets the level of echo's own logger.
func SetLevel(e *echo.Echo, level string) {
	switch strings.ToLower(level) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
	}
}

// authenticate resolves the bearer token, if any, into the request actor.
// Requests without a token run as the anonymous actor.
func (s *server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			c.Set(actorKey, permission.Anonymous())
			return next(c)
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || s.signer == nil {
			return auth.ErrInvalidToken
		}
		username, err := s.signer.Verify(strings.TrimSpace(token))
		if err != nil {
			return err
		}
		actor, err := s.svc.Authenticate(c.Request().Context(), username)
		if err != nil {
			return err
		}
		c.Set(actorKey, actor)
		return next(c)
	}
}

func actorOf(c echo.Context) permission.Actor {
	if a, ok := c.Get(actorKey).(permission.Actor); ok {
		return a
	}
	return permission.Anonymous()
}

// requestLogger writes one line per request through zap.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			begin := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = statusOf(err)
			}
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(begin)),
				zap.String("actor", actorOf(c).Username),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			logger.Info("request", fields...)
			return err
		}
	}
}

// instrument counts requests per route and status.
func instrument(rec *metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = statusOf(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			rec.ObserveRequest(c.Request().Method, route, status, time.Since(begin))
			return err
		}
	}
}
