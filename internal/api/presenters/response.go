package presenters

import (
	"Foodgram-Backend/domain"
	"errors"

	"github.com/gofiber/fiber/v2"
)

type (
	Response struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    any    `json:"data,omitempty"`
	}

	ErrorBody struct {
		Status  bool                `json:"status"`
		Message string              `json:"message"`
		Error   string              `json:"error,omitempty"`
		Errors  map[string][]string `json:"errors,omitempty"`
	}
)

func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse renders err under "error". Field errors from a
// *domain.ValidationError are also listed under "errors".
func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	body := ErrorBody{
		Status:  false,
		Message: message,
	}
	if err != nil {
		body.Error = err.Error()
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		body.Errors = validationErr.Fields
	}

	return c.Status(statusCode).JSON(body)
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
