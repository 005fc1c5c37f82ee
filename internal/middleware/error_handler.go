package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"catalog/pkg/logger"
	"catalog/pkg/response"
)

// ErrorHandler is the terminal Fiber error handler. A *fiber.Error keeps its
// code and message; anything else becomes a 500 whose detail is only logged.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		}

		event := log.Warn()
		if code >= fiber.StatusInternalServerError {
			event = log.Error()
		}
		event.Err(err).
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.OriginalURL()).
			Msg("request failed")

		return response.Error(c, code, msg)
	}
}

// NotFound answers every request no route matched. It must be registered last.
func NotFound(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotFound, "Route not found")
}
