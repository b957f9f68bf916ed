package http

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// MiddlewareConfig carries the knobs for the global middleware chain.
type MiddlewareConfig struct {
	Timeout          time.Duration
	CORSAllowOrigins string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, cfg MiddlewareConfig) {
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
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

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code string) int {
	switch code {
	case apperrors.CodeValidation:
		return fiber.StatusBadRequest
	case apperrors.CodeInvalidCredentials, apperrors.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case apperrors.CodeForbidden:
		return fiber.StatusForbidden
	case apperrors.CodeNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeUserExists:
		return fiber.StatusConflict
	case apperrors.CodeRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders any error reaching the top of the stack. It is also
// installed as fiber's ErrorHandler so routing errors share the body shape.
func ErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		if errors.Is(err, repository.ErrDuplicateEmail) {
			err = apperrors.NewUserExists()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.NewDomainError(apperrors.CodeInternal, "Request timed out", nil)
		}

		domainErr := apperrors.ToDomainError(err)
		status := StatusFor(domainErr.Code)
		metrics.RecordError(routePath(c), c.Method(), domainErr.Code)

		message := domainErr.Message
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
				zap.String("code", domainErr.Code),
				zap.Error(err))
			message = "Internal server error"
		}

		response := fiber.Map{
			"success": false,
			"code":    domainErr.Code,
			"message": message,
		}
		if len(domainErr.Details) > 0 && status < fiber.StatusInternalServerError {
			response["details"] = domainErr.Details
		}
		return c.Status(status).JSON(response)
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	render := ErrorHandler(logger, metrics)
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				err = render(c, err)
			}
		}()
		return c.Next()
	}
}

func routePath(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && !strings.HasSuffix(r.Path, "*") {
		return r.Path
	}
	return c.Path()
}
