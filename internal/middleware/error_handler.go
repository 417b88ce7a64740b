package middleware

import (
	"brickmark-backend/internal/pkg/apperror"
	"brickmark-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Returns the standard error format.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else if sc := apperror.StatusCode(err); sc != fiber.StatusInternalServerError {
		code = sc
		message = err.Error()
	}

	return response.Error(c, message, code, map[string]interface{}{})
}
