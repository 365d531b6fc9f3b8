package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/smartforge/landing/internal/auth"
	"github.com/smartforge/landing/internal/config"
	"github.com/smartforge/landing/internal/http/dto"
	"github.com/smartforge/landing/internal/middleware"
	"github.com/smartforge/landing/internal/services"
	"github.com/smartforge/landing/internal/wallet"
	"go.uber.org/zap"
)

type WalletHandler struct {
	sessions *services.WalletSessions
	cfg      *config.Config
	log      *zap.Logger
}

func NewWalletHandler(sessions *services.WalletSessions, cfg *config.Config, log *zap.Logger) *WalletHandler {
	return &WalletHandler{sessions: sessions, cfg: cfg, log: log}
}

// CreateSession выдаёт токен новой браузерной сессии.
// POST /api/wallet/session
func (h *WalletHandler) CreateSession(c *fiber.Ctx) error {
	id := h.sessions.Create()

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, id, h.cfg.SessionTTL)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		_ = h.sessions.Close(c.UserContext(), id)
		return respondInternal(c, h.cfg.IsProduction(), "internal server error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{
		Success: true,
		Data: dto.SessionResponse{
			SessionID: id.String(),
			Token:     token,
			ExpiresIn: int64(h.cfg.SessionTTL.Seconds()),
		},
	})
}

// Connect подключает кошелёк выбранного типа.
// POST /api/wallet/connect
func (h *WalletHandler) Connect(c *fiber.Ctx) error {
	var req dto.WalletConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	kind, err := wallet.ParseKind(req.Kind)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	sess, err := h.sessions.Connect(c.UserContext(), middleware.GetSessionID(c), kind, req.Replace)
	if err != nil {
		return h.walletError(c, err)
	}

	return c.JSON(dto.SuccessResponse{
		Success: true,
		Message: "Wallet connected",
		Data:    sess,
	})
}

// POST /api/wallet/disconnect
func (h *WalletHandler) Disconnect(c *fiber.Ctx) error {
	if err := h.sessions.Disconnect(c.UserContext(), middleware.GetSessionID(c)); err != nil {
		return h.walletError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Wallet disconnected"})
}

// GET /api/wallet
func (h *WalletHandler) Status(c *fiber.Ctx) error {
	status, err := h.sessions.Status(middleware.GetSessionID(c))
	if err != nil {
		return h.walletError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Data: status})
}

// Balance reports null when the balance is unknown.
// GET /api/wallet/balance
func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	balance, err := h.sessions.Balance(c.UserContext(), middleware.GetSessionID(c))
	if err != nil {
		return h.walletError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Data: balance})
}

// DELETE /api/wallet/session
func (h *WalletHandler) CloseSession(c *fiber.Ctx) error {
	if err := h.sessions.Close(c.UserContext(), middleware.GetSessionID(c)); err != nil {
		return h.walletError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Session closed"})
}

func (h *WalletHandler) walletError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return respondError(c, fiber.StatusUnauthorized, "session expired")
	case errors.Is(err, services.ErrAlreadyConnected):
		return respondError(c, fiber.StatusConflict, "a wallet is already connected, set replace to switch")
	case errors.Is(err, wallet.ErrProviderMissing):
		return respondError(c, fiber.StatusNotFound, "wallet provider is not available")
	case errors.Is(err, wallet.ErrWrongProvider):
		return respondError(c, fiber.StatusUnprocessableEntity, "unexpected wallet provider")
	case errors.Is(err, wallet.ErrUserRejected):
		return respondError(c, fiber.StatusForbidden, "request rejected by the wallet")
	case errors.Is(err, wallet.ErrConnection):
		h.log.Warn("wallet connection error", zap.Error(err))
		return respondError(c, fiber.StatusBadGateway, "wallet connection failed")
	}
	h.log.Error("wallet operation failed", zap.Error(err))
	return respondInternal(c, h.cfg.IsProduction(), "internal server error", err)
}
