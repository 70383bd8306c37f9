package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/gylounge/internal/config"
	"github.com/joshua-takyi/gylounge/internal/connect"
	"github.com/joshua-takyi/gylounge/internal/container"
	"github.com/joshua-takyi/gylounge/internal/helpers"
	"github.com/joshua-takyi/gylounge/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting GYLounge API server", "environment", cfg.Environment, "data_store", cfg.DataStore)

	ctx := context.Background()

	store, closeStore, err := connect.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open data store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	journal, closeJournal, err := connect.OpenJournal(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open reservation journal", "error", err)
		os.Exit(1)
	}
	defer closeJournal()

	redisClient := connect.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if redisClient == nil {
		logger.Warn("Redis not available, rate limiting disabled")
	} else {
		defer redisClient.Close()
	}

	var tokens *helpers.TokenValidator
	if cfg.SupabaseURL != "" || cfg.SupabaseJWTSecret != "" {
		tokens, err = helpers.NewTokenValidator(ctx, cfg.SupabaseURL, cfg.SupabaseJWTSecret)
		if err != nil {
			logger.Warn("Admin token validation unavailable, admin routes disabled", "error", err)
			tokens = nil
		} else {
			defer tokens.Close()
		}
	}

	appContainer := container.NewContainer(cfg, logger, store, journal, connect.NewMailer(cfg, logger), redisClient, tokens)
	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		logger.Error("Server failed to start", "error", err)
		return
	}

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}
