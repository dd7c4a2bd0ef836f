package observability

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// PrincipalKindLocal is the fiber local under which the session middleware
// stores the caller's principal kind for logging.
const PrincipalKindLocal = "principal_kind"

// RequestLogger logs each request once and records request metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = apperrors.ToDomainError(err).HTTPStatus
			}
		}

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		metrics.RecordRequest(route, c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if kind, ok := c.Locals(PrincipalKindLocal).(string); ok && kind != "" {
			fields = append(fields, zap.String("principal_kind", kind))
		}
		logger.Info("request", fields...)
		return err
	}
}
