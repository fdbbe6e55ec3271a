package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tesoro-dev/tesoro/internal/logger"
	"github.com/tesoro-dev/tesoro/internal/model"
)

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(envelope{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(envelope{Success: true, Data: data})
}

// statusFor maps a domain error to an HTTP status and the message shown to
// the caller.
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case model.IsValidation(err):
		var ve *model.ValidationError
		errors.As(err, &ve)
		return fiber.StatusBadRequest, ve.Error()
	case errors.Is(err, model.ErrNotFound):
		return fiber.StatusNotFound, model.ErrNotFound.Error()
	case errors.Is(err, model.ErrHasDependents):
		return fiber.StatusConflict, model.ErrHasDependents.Error()
	case errors.Is(err, model.ErrAlreadyLinked):
		return fiber.StatusConflict, model.ErrAlreadyLinked.Error()
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code, msg := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		log := logger.FromContext(c.UserContext())
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return c.Status(code).JSON(envelope{Error: msg})
}
