package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/handler"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/internal/ws"
	"go-stock-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	setupLogging(cfg)

	// 2. Setup Storage
	store, err := repository.OpenDocumentStore(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open document store: %v", err)
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	ledger, err := service.NewLedger(repository.NewCatalogRepo(store), wsHub, service.LedgerConfig{
		CompanyName: cfg.CompanyName,
	})
	if err != nil {
		logrus.Fatalf("Failed to load catalog: %v", err)
	}

	tokens := jwt.NewManager(cfg.JWT.SecretKey, cfg.JWT.TTL)
	accounts, err := service.NewAccountDirectory(repository.NewAccountRepo(store), tokens, wsHub, cfg.Admin.Username)
	if err != nil {
		logrus.Fatalf("Failed to load accounts: %v", err)
	}

	// 5. Seed the built-in administrator
	created, err := accounts.EnsureBootstrapAdmin(cfg.Admin.Password)
	if err != nil {
		logrus.Warnf("Failed to create administrator %s: %v", cfg.Admin.Username, err)
	} else if created {
		logrus.Infof("Administrator created: %s", cfg.Admin.Username)
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "Stock Ledger v1.0",
		Immutable: true,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	handler.RegisterRoutes(app, handler.Deps{
		Catalog:            ledger,
		Accounts:           accounts,
		Hub:                wsHub,
		LoginRatePerMinute: cfg.Server.LoginRatePerMinute,
	})

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logrus.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.Environment != "development" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
