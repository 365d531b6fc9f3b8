package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/smartforge/landing/internal/config"
	"github.com/smartforge/landing/internal/http/dto"
	"github.com/smartforge/landing/internal/services"
	"go.uber.org/zap"
)

type SubscribeHandler struct {
	subscriptionService *services.SubscriptionService
	cfg                 *config.Config
	log                 *zap.Logger
}

func NewSubscribeHandler(subscriptionService *services.SubscriptionService, cfg *config.Config, log *zap.Logger) *SubscribeHandler {
	return &SubscribeHandler{subscriptionService: subscriptionService, cfg: cfg, log: log}
}

// Subscribe сохраняет email из формы раннего доступа.
// POST /api/subscribe
func (h *SubscribeHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	sub, err := h.subscriptionService.Subscribe(c.UserContext(), req.Email)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr) && verr.Rule == services.RuleRequired:
			return respondError(c, fiber.StatusBadRequest, "Email is required")
		case errors.As(err, &verr):
			return respondError(c, fiber.StatusBadRequest, "Invalid email format")
		case errors.Is(err, services.ErrDuplicateEmail):
			return respondError(c, fiber.StatusBadRequest, "Email already exists")
		}
		h.log.Error("subscribe failed", zap.Error(err))
		return respondInternal(c, h.cfg.IsProduction(), "Internal server error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{
		Success: true,
		Message: "Email stored successfully",
		Data:    sub,
	})
}
