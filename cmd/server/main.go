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

	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/controller"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/internal/router"
	"github.com/ikkim/storerating-backend/internal/scheduler"
	ws "github.com/ikkim/storerating-backend/internal/websocket"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logCfg := logger.ConfigForEnvironment(cfg.Server.Environment)
	logger.Initialize(logCfg)

	logger.Info("Starting store rating server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logCfg.Level,
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

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.SeedAdmin(db.GetDB(), cfg.Admin); err != nil {
		logger.Fatal("Failed to seed system administrator", err)
	}

	// Login guard is optional
	var guard service.LoginGuard
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, login guard disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			guard = redis.NewLoginGuard(redis.GetClient(), cfg.LoginGuard)
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	ratingRepo := repository.NewRatingRepository(db.GetDB())

	// Live rating feed for store owners
	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Initialize services
	authService := service.NewAuthService(userRepo, guard, cfg.JWT.Secret)
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)
	reportService := service.NewReportService(adminService)
	storeService := service.NewStoreService(storeRepo, ratingRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, hub)
	ownerService := service.NewOwnerService(storeRepo, ratingRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	adminController := controller.NewAdminController(adminService, reportService)
	storeController := controller.NewStoreController(storeService)
	ratingController := controller.NewRatingController(ratingService)
	ownerController := controller.NewOwnerController(ownerService, hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	limiterCleanup := scheduler.NewLimiterCleanupScheduler(cfg.RateLimit.CleanupSpec, authLimiter)
	if err := limiterCleanup.Start(); err != nil {
		logger.Fatal("Failed to start limiter cleanup scheduler", err)
	}
	defer limiterCleanup.Stop()

	r := router.NewRouter(
		authController,
		adminController,
		storeController,
		ratingController,
		ownerController,
		authMiddleware,
		authLimiter,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
