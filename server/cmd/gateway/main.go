package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/api/gateway"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/config"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/helpers"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/services/auth"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/services/crypt"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := helpers.NewLoggerWithLevel("gateway", cfg.Log.Level, nil)
	logger.Debug("configuration loaded", "config", cfg.String())

	if len(cfg.Auth.Clients) == 0 {
		logger.Warn("AUTH_CLIENTS is empty, no client can obtain a token")
	}

	// Create services
	authService := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Clients, logger.Named("auth"))
	cryptService := crypt.NewService(crypt.Defaults{
		Algorithm: cfg.Cipher.Algorithm,
		Padding:   cfg.Cipher.Padding,
		UseMDS:    cfg.Cipher.UseMDS,
	}, cfg.Cipher.CacheSize, logger.Named("crypt"))

	gatewayServer := gateway.New(cfg.Addr(), authService, cryptService, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- gatewayServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("gateway server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := gatewayServer.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
