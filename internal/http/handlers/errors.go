package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smartforge/landing/internal/http/dto"
	"github.com/smartforge/landing/internal/middleware"
)

func respondError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetRequestID(c),
	})
}

// respondInternal hides details in production.
func respondInternal(c *fiber.Ctx, production bool, msg string, err error) error {
	body := dto.ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetRequestID(c),
	}
	if !production && err != nil {
		body.Details = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
