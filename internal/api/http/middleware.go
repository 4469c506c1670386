package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/observability"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// NewServer returns a fiber app whose request values stay valid after the
// handler returns. Path params and bodies reach services that retain them.
func NewServer(name string) *fiber.App {
	return fiber.New(fiber.Config{AppName: name, Immutable: true})
}

// RegisterMiddlewares attaches global middlewares. The request logger wraps the
// error handler so it logs the status the client actually receives.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
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
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("path", c.Path()),
						zap.Any("request_id", c.Locals("request_id")),
						zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// toDomainError also maps framework errors such as unmatched routes and
// oversized bodies onto the API error shape.
func toDomainError(err error) *apperrors.DomainError {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return apperrors.FromStatus(fe.Code, fe.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewDomainError(apperrors.CodeInternal, "request timed out", fiber.StatusGatewayTimeout, nil)
	}
	return apperrors.ToDomainError(err)
}
