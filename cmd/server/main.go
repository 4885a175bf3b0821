package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	tiers, err := config.LoadTierPolicy(cfg.RoleTiersPath)
	if err != nil {
		slog.Error("failed to load role tiers", "path", cfg.RoleTiersPath, "error", err)
		os.Exit(1)
	}
	slog.Info("role tiers loaded", "tiers", len(tiers.Tiers()))

	adminIDs, err := middleware.ParseUserIDs(cfg.AdminUserIDs)
	if err != nil {
		slog.Error("invalid ADMIN_USER_IDS", "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg.DatabaseURL, cfg.DBMaxConns); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records also go to system_logs
	dbLogHandler := logging.NewDBHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.SystemLogRetention, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Notification fan-out
	var publisher services.Publisher = services.NopPublisher{}
	var pinger handlers.Pinger
	var redisPublisher *services.RedisPublisher
	if cfg.RedisURL != "" {
		redisPublisher, err = services.NewRedisPublisher(cfg.RedisURL, cfg.RedisChannel)
		if err != nil {
			slog.Error("redis publisher setup failed", "error", err)
			os.Exit(1)
		}
		publisher = redisPublisher
		pinger = redisPublisher
		slog.Info("notification publishing enabled", "channel", cfg.RedisChannel)
	}

	// Services
	profileService := services.NewProfileService(database.DB)
	ledgerService := services.NewLedgerService(database.DB)
	notificationService := services.NewNotificationService(database.DB, profileService, publisher)
	roleService := services.NewRoleService(database.DB, profileService, ledgerService, notificationService, tiers)
	watchService := services.NewWatchService(database.DB)
	reviewService := services.NewReviewService(database.DB, profileService, ledgerService, notificationService, roleService, watchService, cfg.Points)
	contentService := services.NewContentService(database.DB, profileService)

	if err := roleService.EnsureAdmins(context.Background(), adminIDs); err != nil {
		slog.Error("failed to grant configured admins", "error", err)
		os.Exit(1)
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(pinger)
	contentHandler := handlers.NewContentHandler(reviewService, contentService, watchService)
	reviewHandler := handlers.NewReviewHandler(reviewService, contentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	profileHandler := handlers.NewProfileHandler(profileService, roleService, ledgerService)
	adminHandler := handlers.NewAdminHandler(reviewService, roleService)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, profileService, healthHandler, contentHandler, reviewHandler, notificationHandler, profileHandler, adminHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisPublisher != nil {
		if err := redisPublisher.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
