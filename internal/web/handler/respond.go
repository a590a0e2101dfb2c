package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorEnvelope is the JSON body of every failed API response.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Fail writes the error envelope with the given status and kind.
func Fail(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(ErrorEnvelope{Error: kind, Message: message})
}

// BadBody reports an unparseable request body.
func BadBody(c *fiber.Ctx) error {
	return Fail(c, fiber.StatusBadRequest, KindValidation, "Invalid request body")
}

// ValidationFail reports a failed struct validation, naming the first
// offending field.
func ValidationFail(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return Fail(c, fiber.StatusBadRequest, KindValidation,
			"Invalid value for field '"+verrs[0].Field()+"'")
	}

	return Fail(c, fiber.StatusBadRequest, KindValidation, "Validation failed")
}

// Internal reports an unexpected server-side failure without leaking
// the underlying error.
func Internal(c *fiber.Ctx) error {
	return Fail(c, fiber.StatusInternalServerError, KindInternal, "Internal server error")
}
