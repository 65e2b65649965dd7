package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// AppError is the one error type handlers produce. Every failure path maps
// to a status + message pair here so the renderer never leaks which internal
// check actually failed.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func BadRequest(message string) *AppError {
	return New(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return New(fiber.StatusUnauthorized, message)
}

func NotFound(message string) *AppError {
	return New(fiber.StatusNotFound, message)
}

func Internal(message string) *AppError {
	return New(fiber.StatusInternalServerError, message)
}

// ErrorHandler is wired into fiber.Config and renders every error returned
// by a handler. Anything that is not an *AppError is an unclassified store
// or crypto failure and must not reach the client unmapped.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(fiber.Map{"message": appErr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Unknown error - try again later"})
}
