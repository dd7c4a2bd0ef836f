package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/observability"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// WarningsHeader lists the codes of non-blocking warnings raised while
// serving a request.
const WarningsHeader = "X-Access-Warnings"

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			warnings := auth.Warnings(c)
			if len(warnings) > 0 {
				codes := make([]string, 0, len(warnings))
				for _, w := range warnings {
					codes = append(codes, w.Code)
				}
				c.Set(WarningsHeader, strings.Join(codes, ","))
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if len(warnings) > 0 {
					response["warnings"] = warnings
				}
				switch {
				case domainErr.Code == apperrors.CodeScopeViolation:
					metrics.RecordScopeViolation()
					p := auth.PrincipalFromContext(c)
					logger.Error("scope violation",
						zap.Bool("security_event", true),
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
						zap.String("principal_id", p.ID),
						zap.String("principal_kind", string(p.Kind)),
						zap.Any("details", domainErr.Details))
				case domainErr.HTTPStatus >= 500:
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// toDomainError keeps the status of framework errors such as unknown routes
// or unparsable bodies instead of reporting them as internal failures.
func toDomainError(err error) *apperrors.DomainError {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return apperrors.NewDomainError(codeForStatus(fe.Code), fe.Message, fe.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperrors.CodeValidation
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case fiber.StatusConflict:
		return apperrors.CodeConflict
	case fiber.StatusServiceUnavailable:
		return apperrors.CodeStoreUnavailable
	}
	return apperrors.CodeInternal
}
