package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devoriginal/account-backend/config"
	"github.com/devoriginal/account-backend/internal/app/controller"
	"github.com/devoriginal/account-backend/internal/app/repository"
	"github.com/devoriginal/account-backend/internal/app/service"
	"github.com/devoriginal/account-backend/internal/db"
	"github.com/devoriginal/account-backend/internal/middleware"
	"github.com/devoriginal/account-backend/internal/router"
	"github.com/devoriginal/account-backend/internal/scheduler"
	"github.com/devoriginal/account-backend/internal/storage"
	"github.com/devoriginal/account-backend/pkg/logger"
	"github.com/devoriginal/account-backend/pkg/mailer"
	"github.com/devoriginal/account-backend/pkg/redis"
	"github.com/devoriginal/account-backend/pkg/util"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting Account Backend Server", map[string]interface{}{
		"environment":  cfg.Server.Environment,
		"port":         cfg.Server.Port,
		"log_level":    logLevel,
		"photo_driver": cfg.Photo.Driver,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the recovery mail throttle; without it recovery is unthrottled
	var throttle service.ResetThrottle
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, password recovery will not be throttled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
			throttle = redis.NewResetThrottle(redis.GetClient(), cfg.Redis.ResetThrottleWindow)
		}
	}

	photoStore, err := newPhotoStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize photo storage", err)
	}
	if err := os.MkdirAll(cfg.Photo.TempDir, 0o755); err != nil {
		logger.Fatal("Failed to create upload temp directory", err)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db.GetDB())
	resetRepo := repository.NewPasswordResetRepository(db.GetDB())

	// Initialize services
	m := mailer.New(cfg.Mail)
	tokens := util.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	accountService := service.NewAccountService(accountRepo, m)
	authService := service.NewAuthService(accountService, tokens)
	passwordResetService := service.NewPasswordResetService(accountService, resetRepo, tokens, m, service.PasswordResetConfig{
		TokenExpiry: cfg.JWT.ResetExpiry,
		ResetURL:    cfg.Mail.ResetURL,
		Throttle:    throttle,
	})
	photoService := service.NewPhotoService(accountRepo, photoStore, cfg.Photo.DefaultPhoto)

	// Initialize controllers
	authController := controller.NewAuthController(accountService, authService, passwordResetService)
	userController := controller.NewUserController(accountService)
	photoController := controller.NewPhotoController(photoService, cfg.Photo.TempDir, cfg.Photo.MaxUploadSize)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Setup router
	r := router.NewRouter(
		authController,
		userController,
		photoController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	cleanup := scheduler.NewUploadCleanupScheduler(cfg.Photo.CleanupSchedule, cfg.Photo.TempDir, cfg.Photo.TempMaxAge)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start upload cleanup scheduler", err)
	}
	defer cleanup.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}

func newPhotoStorage(cfg *config.Config) (storage.PhotoStorage, error) {
	if cfg.Photo.Driver == "s3" {
		return storage.NewS3Storage(context.Background(), cfg.S3)
	}
	return storage.NewLocalStorage(cfg.Photo.Dir)
}
