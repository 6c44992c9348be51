package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
)

// ErrorHandler returns the centralized error response used by the app.
// Domain errors are mapped to HTTP statuses; 5xx responses are logged.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		code := statusOf(err)
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err))
		}
		if code == fiber.StatusUnauthorized && c.Get(SessionHeader) != "" {
			c.Set("X-Session-Cleared", "true")
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": err.Error(),
		})
	}
}

func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, tourism.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, tourism.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, tourism.ErrAuthNotSupported):
		return fiber.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, tourism.ErrUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
