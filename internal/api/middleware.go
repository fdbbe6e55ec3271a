package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tesoro-dev/tesoro/internal/logger"
	"github.com/tesoro-dev/tesoro/internal/model"
)

const ownerKey = "owner"

// requestLogger attaches log to the request context and writes one line per
// request.
func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.SetUserContext(logger.WithContext(c.UserContext(), log))

		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Str("remote_addr", c.IP()).
			Msg("HTTP request")
		return nil
	}
}

// owner resolves the calling owner from the request header.
func owner(fallback uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(OwnerHeader))
		id := fallback
		if raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				return model.Invalid(OwnerHeader, "invalid owner id")
			}
			id = parsed
		}
		if id == uuid.Nil {
			return model.Invalid(OwnerHeader, "is required")
		}
		c.Locals(ownerKey, id)
		return c.Next()
	}
}

func ownerOf(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(ownerKey).(uuid.UUID)
	return id
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, model.Invalid("id", "invalid id %q", c.Params("id"))
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return model.Invalid("body", "malformed request body")
	}
	return nil
}
