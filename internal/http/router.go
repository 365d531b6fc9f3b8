package http

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/smartforge/landing/internal/config"
	"github.com/smartforge/landing/internal/http/dto"
	"github.com/smartforge/landing/internal/http/handlers"
	"github.com/smartforge/landing/internal/middleware"
	"go.uber.org/zap"
)

// NewApp creates the fiber app with a JSON error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{
				Error:     err.Error(),
				RequestID: middleware.GetRequestID(c),
			})
		},
	})
}

// SetupRouter wires the routes. rdb may be nil, which disables rate limiting.
func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	subscribeHandler *handlers.SubscribeHandler,
	chatHandler *handlers.ChatHandler,
	walletHandler *handlers.WalletHandler,
	wsHub *handlers.WSHub,
) {
	origins := strings.Join(cfg.CORSOrigins, ",")
	if origins == "" {
		origins = "*"
	}

	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		// fiber rejects credentials together with a wildcard origin
		AllowCredentials: !slices.Contains(cfg.CORSOrigins, "*") && origins != "*",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	metaHandler := handlers.NewMetaHandler()

	// Health check
	app.Get("/health", metaHandler.Health)

	api := app.Group("/api")
	api.Get("/", metaHandler.Banner)

	if rdb != nil {
		api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute, log))
	}

	api.Post("/subscribe", subscribeHandler.Subscribe)
	api.Post("/chat", chatHandler.Chat)
	api.Post("/generate-contract", chatHandler.GenerateContract)

	// Wallet sessions
	api.Post("/wallet/session", walletHandler.CreateSession)

	protected := api.Group("/wallet", middleware.SessionAuthMiddleware(cfg.JWTSecret, log))
	protected.Post("/connect", walletHandler.Connect)
	protected.Post("/disconnect", walletHandler.Disconnect)
	protected.Get("/", walletHandler.Status)
	protected.Get("/balance", walletHandler.Balance)
	protected.Delete("/session", walletHandler.CloseSession)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))

	// Landing page assets
	if info, err := os.Stat(cfg.AssetsDir); err == nil && info.IsDir() {
		app.Static("/", cfg.AssetsDir)
	} else {
		log.Warn("assets directory not found, static files disabled", zap.String("dir", cfg.AssetsDir))
	}
}
