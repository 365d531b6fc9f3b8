package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/smartforge/landing/internal/config"
	"github.com/smartforge/landing/internal/http/dto"
	"github.com/smartforge/landing/internal/services"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *services.ChatService
	cfg         *config.Config
	log         *zap.Logger
}

func NewChatHandler(chatService *services.ChatService, cfg *config.Config, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, cfg: cfg, log: log}
}

// Chat answers the landing page assistant widget.
// POST /api/chat
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.chatService.Reply(c.UserContext(), req.Prompt)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return respondError(c, fiber.StatusBadRequest, "Prompt is required")
		}
		h.log.Error("chat failed", zap.Error(err))
		return respondInternal(c, h.cfg.IsProduction(), "Internal server error", err)
	}

	return c.JSON(dto.SuccessResponse{Success: true, Data: reply})
}

// POST /api/generate-contract
func (h *ChatHandler) GenerateContract(c *fiber.Ctx) error {
	var req dto.GenerateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contract, err := h.chatService.GenerateContract(c.UserContext(), req.ContractType, req.ContractDetails)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return respondError(c, fiber.StatusBadRequest, verr.Error())
		}
		h.log.Error("contract generation failed", zap.Error(err))
		return respondInternal(c, h.cfg.IsProduction(), "Internal server error", err)
	}

	return c.JSON(dto.ContractResponse{Success: true, Contract: contract})
}
