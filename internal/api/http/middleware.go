package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/casting-service/internal/auth"
	"github.com/spec-kit/casting-service/internal/observability"
	apperrors "github.com/spec-kit/casting-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
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
				if metrics != nil {
					metrics.RecordError(observability.RouteKey(c), c.Method(), domainErr.Code)
				}
				logFailure(c, logger, domainErr)
				err = c.Status(domainErr.HTTPStatus).JSON(domainErr.Envelope())
			}
		}()
		return c.Next()
	}
}

// logFailure keeps rejection details in the log since the envelope omits them.
func logFailure(c *fiber.Ctx, logger *zap.Logger, domainErr *apperrors.DomainError) {
	fields := []zap.Field{
		zap.String("request_id", observability.RequestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("code", domainErr.Code),
	}
	if claims, ok := auth.ClaimsFromCtx(c); ok {
		fields = append(fields, zap.String("subject", claims.Subject))
	}
	if len(domainErr.Details) > 0 {
		fields = append(fields, zap.Any("details", domainErr.Details))
	}
	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed", append(fields, zap.Error(domainErr))...)
		return
	}
	logger.Debug("request rejected", fields...)
}

// ErrorHandler renders errors that escape the middleware chain, such as
// body-limit rejections raised before routing.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		domainErr := toDomainError(err)
		if domainErr.HTTPStatus >= 500 {
			logger.Error("request failed", zap.Error(domainErr))
		}
		return c.Status(domainErr.HTTPStatus).JSON(domainErr.Envelope())
	}
}

// toDomainError extends apperrors.ToDomainError with fiber's own errors
// (unknown route, method not allowed, bad request framing).
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return apperrors.NewDomainError("NOT_FOUND", apperrors.MessageNotFound, fiber.StatusNotFound, nil)
		case fiber.StatusUnprocessableEntity:
			return apperrors.NewDomainError("UNPROCESSABLE", apperrors.MessageUnprocessable, fiber.StatusUnprocessableEntity, nil)
		case fiber.StatusInternalServerError:
			return apperrors.ToDomainError(err)
		default:
			return apperrors.NewDomainError("HTTP_ERROR", fiberErr.Message, fiberErr.Code, nil)
		}
	}
	return apperrors.ToDomainError(err)
}
