package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/iotregistry/backend/docs"
	"github.com/iotregistry/backend/internal/auth"
	authMiddleware "github.com/iotregistry/backend/internal/auth/middleware"
	"github.com/iotregistry/backend/internal/config"
	"github.com/iotregistry/backend/internal/database"
	"github.com/iotregistry/backend/internal/handlers"
	"github.com/iotregistry/backend/internal/logger"
	"github.com/iotregistry/backend/internal/middleware"
	"github.com/iotregistry/backend/internal/repositories"
	"github.com/iotregistry/backend/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title IoT Registry API
// @version 1.0
// @description User accounts and IoT device registration

// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting IoT registry service")

	// Connect to database; on failure keep serving, store-backed routes answer 500
	conn := database.NewConnection(zapLogger)
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	if err := conn.Connect(connectCtx, cfg.URI(), cfg.Database.DBName); err != nil {
		zapLogger.Error("Failed to connect to database, running without storage", zap.Error(err))
	} else if err := conn.EnsureIndexes(connectCtx); err != nil {
		zapLogger.Error("Failed to create indexes", zap.Error(err))
	}
	cancelConnect()

	// Initialize JWT token generator
	tokenGenerator := auth.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(conn, zapLogger)
	deviceRepo := repositories.NewDeviceRepository(conn, zapLogger)

	// Initialize services
	userService := services.NewUserService(userRepo, tokenGenerator, zapLogger)
	authService := services.NewAuthService(userRepo, tokenGenerator, zapLogger)
	deviceService := services.NewDeviceService(deviceRepo, zapLogger)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, zapLogger)
	authHandler := handlers.NewAuthHandler(authService, zapLogger)
	deviceHandler := handlers.NewDeviceHandler(deviceService, zapLogger)
	healthHandler := handlers.NewHealthHandler(conn, zapLogger)

	requireToken := authMiddleware.AuthMiddleware(tokenGenerator)
	loginLimiter := httprate.LimitByIP(cfg.RateLimit.LoginPerMinute, time.Minute)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(zapLogger))
	r.Use(middleware.RecoveryMiddleware(zapLogger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	healthHandler.RegisterRoutes(r)
	userHandler.RegisterRoutes(r)
	authHandler.RegisterRoutes(r, loginLimiter, requireToken)
	deviceHandler.RegisterRoutes(r, requireToken)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	// Graceful shutdown: stop accepting requests, then release the database client
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := conn.Disconnect(ctx); err != nil {
		zapLogger.Error("Failed to close database connection", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}
