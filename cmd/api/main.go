package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hamstergame/platform/internal/app"
	"github.com/hamstergame/platform/internal/auth"
	"github.com/hamstergame/platform/internal/guard"
	"github.com/hamstergame/platform/internal/infra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	logger = cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	store, closeStore, err := infra.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var limiter *guard.RateLimiter
	if cfg.RateLimitEnabled() {
		limiter = guard.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter.StartSweeper(time.Minute, 10*time.Minute, ctx.Done())
	}

	r := app.NewRouter(app.RouterDeps{
		Store:               store,
		JWTMgr:              auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry),
		Logger:              logger,
		StartingCashCents:   cfg.StartingCashCents,
		DailyQuestionCount:  cfg.DailyQuestionCount,
		MaxPurchaseQuantity: cfg.MaxPurchaseQuantity,
		CORSOrigin:          cfg.CORSAllowedOrigins,
		Limiter:             limiter,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
