package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/smartforge/landing/internal/assistant"
	"github.com/smartforge/landing/internal/config"
	"github.com/smartforge/landing/internal/db"
	"github.com/smartforge/landing/internal/events"
	apphttp "github.com/smartforge/landing/internal/http"
	"github.com/smartforge/landing/internal/http/handlers"
	"github.com/smartforge/landing/internal/repositories"
	"github.com/smartforge/landing/internal/services"
	"github.com/smartforge/landing/migrations"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.PoolOptions{
		MaxConns:       cfg.PGMaxConns,
		ConnectTimeout: cfg.PGConnectTimeout,
		IdleTimeout:    cfg.PGIdleTimeout,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis is optional: without it events stay in-process and rate limiting is off.
	var (
		rdb        *redis.Client
		publisher  events.Publisher
		subscriber events.Subscriber
	)
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb, log)
		subscriber = events.NewRedisSubscriber(rdb, log)
	} else {
		bus := events.NewMemoryBus()
		publisher, subscriber = bus, bus
	}

	// Repositories
	subscriptionRepo := repositories.NewSubscriptionRepo(pool)

	// Chat
	responder, err := assistant.New(ctx, assistant.Config{
		Provider:     assistant.ProviderType(cfg.ChatProvider),
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
	}, log)
	if err != nil {
		log.Fatal("failed to create chat responder", zap.Error(err))
	}

	// Wallet providers
	providers, closeProviders, err := services.NewConfiguredProviders(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to configure wallet providers", zap.Error(err))
	}
	defer closeProviders()

	// Services
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, log)
	chatService := services.NewChatService(responder, log)
	walletSessions := services.NewWalletSessions(providers, services.ExpectedVendors(cfg), publisher, cfg.SessionTTL, log)
	go walletSessions.RunSweeper(ctx, time.Minute)

	// Handlers
	subscribeHandler := handlers.NewSubscribeHandler(subscriptionService, cfg, log)
	chatHandler := handlers.NewChatHandler(chatService, cfg, log)
	walletHandler := handlers.NewWalletHandler(walletSessions, cfg, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	if err := wsHub.Start(ctx); err != nil {
		log.Fatal("failed to subscribe to wallet events", zap.Error(err))
	}

	app := apphttp.NewApp()
	apphttp.SetupRouter(app, cfg, log, rdb, subscribeHandler, chatHandler, walletHandler, wsHub)

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", addr), zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("starting API server", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
	err = serve(app, ln, sigCh, log, func(shutdownCtx context.Context) {
		walletSessions.CloseAll(shutdownCtx)
		cancel()
	})
	if err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("server stopped")
}

// serve runs app on ln until a value arrives on stop. cleanup runs after the
// server has stopped accepting requests and before serve returns, so deferred
// closes in main happen after it.
func serve(app *fiber.App, ln net.Listener, stop <-chan os.Signal, log *zap.Logger, cleanup func(context.Context)) error {
	go func() {
		<-stop
		log.Info("shutting down...")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Warn("server shutdown", zap.Error(err))
		}
	}()

	if err := app.Listener(ln); err != nil {
		return err
	}

	ctx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	cleanup(ctx)
	return nil
}
