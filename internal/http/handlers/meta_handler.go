package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smartforge/landing/internal/http/dto"
	"github.com/smartforge/landing/internal/services"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

var endpoints = map[string]string{
	"subscribe":         "/api/subscribe",
	"chat":              "/api/chat",
	"generate-contract": "/api/generate-contract",
	"wallet":            "/api/wallet",
	"health":            "/health",
}

func (h *MetaHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// GET /api
func (h *MetaHandler) Banner(c *fiber.Ctx) error {
	return c.JSON(dto.BannerResponse{
		Status:    "ok",
		Message:   "SmartForge API is running",
		Version:   services.APIVersion,
		Endpoints: endpoints,
	})
}
