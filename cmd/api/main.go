package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/background"
	"github.com/BradenHooton/conecta/internal/config"
	"github.com/BradenHooton/conecta/internal/handlers"
	"github.com/BradenHooton/conecta/internal/repositories"
	"github.com/BradenHooton/conecta/internal/routes"
	"github.com/BradenHooton/conecta/internal/services"
	pkglogger "github.com/BradenHooton/conecta/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("store", cfg.Store.Driver),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := repositories.NewStore(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	// Verification code delivery
	var sender services.CodeSender
	switch cfg.Email.Provider {
	case config.EmailProviderSES:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sender, err = services.NewSESCodeSender(ctx, cfg.Email.AWSRegion, cfg.Email.From, logger)
		cancel()
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
	default:
		sender = services.NewLogCodeSender(logger, cfg.Server.Env)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	mediaService, err := services.NewMediaService(ctx, cfg.Media, logger)
	cancel()
	if err != nil {
		logger.Error("failed to initialize media service", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := pkglogger.NewAuditLogger(logger)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	timingDelay := auth.NewTimingDelay(auth.DefaultTimingConfig)

	// Initialize services
	directoryService := services.NewDirectoryService(store, sender, auditLogger, services.DirectoryConfig{
		VerificationCode:    cfg.Auth.VerificationCode,
		InstitutionalDomain: cfg.Auth.InstitutionalDomain,
		BcryptCost:          cfg.Auth.BcryptCost,
	}, logger)
	eventService := services.NewEventService(store, logger)
	notificationService := services.NewNotificationService(store, cfg.Notifications.MaxFeed, logger)
	profileService := services.NewProfileService(store, services.ProfileConfig{
		PerUser:             cfg.Profile.PerUser,
		MaxInterests:        cfg.Profile.MaxInterests,
		InstitutionalDomain: cfg.Auth.InstitutionalDomain,
	}, logger)

	// Seed admin and demo data
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	seeder := services.NewSeeder(store, notificationService, cfg.Seed, cfg.Auth.BcryptCost, logger)
	if err := seeder.Run(ctx); err != nil {
		logger.Error("failed to seed store", slog.Any("error", err))
	}
	cancel()

	router := routes.NewRouter(
		routes.Config{
			Env:                  cfg.Server.Env,
			AllowedOrigins:       cfg.Server.AllowedOrigins,
			RequestTimeout:       cfg.Server.RequestTimeout,
			AuthRatePerMinute:    cfg.Auth.RateLimitPerMinute,
			SessionRatePerMinute: cfg.Auth.SessionRatePerMinute,
			TrustedProxies:       cfg.Server.TrustedProxies,
		},
		routes.Handlers{
			Auth:          handlers.NewAuthHandler(directoryService, tokenManager, timingDelay, logger),
			Events:        handlers.NewEventHandler(eventService),
			Notifications: handlers.NewNotificationHandler(notificationService),
			Profile:       handlers.NewProfileHandler(profileService, tokenManager, logger),
			Admin:         handlers.NewAdminHandler(directoryService),
			Media:         handlers.NewMediaHandler(mediaService),
			Catalog:       handlers.CatalogHandler(cfg.Profile.MaxInterests),
			Health:        handlers.HealthHandler(store),
		},
		tokenManager,
		directoryService,
		logger,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start notification generator
	genCtx, genCancel := context.WithCancel(context.Background())
	defer genCancel()

	var generator *background.NotificationGenerator
	if cfg.Notifications.Enabled {
		generator = background.NewNotificationGenerator(notificationService, logger, cfg.Notifications.Interval)
		go generator.Start(genCtx)
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	genCancel()
	if generator != nil {
		generator.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
