// ABOUTME: HTTP and WebSocket service for the nutrition coach
// ABOUTME: Serves the chat API behind session identity with graceful shutdown
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/harper/nutricoach/internal/api"
	"github.com/harper/nutricoach/internal/app"
	"github.com/harper/nutricoach/internal/config"
	"github.com/harper/nutricoach/internal/logging"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// logger settings come from config, so this one goes to a bootstrap logger
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	if err != nil {
		zap.NewExample().Fatal("failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start coach", zap.Error(err))
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Error("failed to close storage", zap.Error(closeErr))
		}
	}()

	if err := a.Store.Ping(ctx); err != nil {
		logger.Fatal("database health check failed", zap.Error(err))
	}
	logger.Info("database connected", zap.String("path", a.Store.Path()))

	router := api.NewRouter(api.RouterConfig{
		Agent:          a.Agent,
		Sessions:       a.Store,
		DB:             a.Store,
		Provider:       a.Provider.Name(),
		HistoryLimit:   cfg.HistoryLimit,
		OriginPatterns: cfg.AllowedOrigins,
		Logger:         logger.Named("http"),
	})

	// WriteTimeout stays 0: chat turns wait on the model and /ws/chat is long-lived
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("provider", a.Provider.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	}
	stop()

	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
