package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RS-Eagle/krema-admin-go/internal/config"
	"github.com/RS-Eagle/krema-admin-go/internal/mockapi"
	"github.com/RS-Eagle/krema-admin-go/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	shutdownTracing := telemetry.Setup("krema-mockapi", logger)

	gin.SetMode(cfg.Mock.GinMode)

	server := mockapi.New(mockapi.Options{
		JWTSecret: cfg.Mock.JWTSecret,
		TokenTTL:  time.Duration(cfg.Mock.TokenTTLHours) * time.Hour,
		Log:       logger,
	})
	email, password, err := server.SeedDemo()
	if err != nil {
		logger.Error("failed to seed demo data", "error", err)
		os.Exit(1)
	}
	logger.Info("demo login seeded", "email", email, "password", password)

	srv := &http.Server{
		Addr:    ":" + cfg.Mock.Port,
		Handler: server.Router(),
	}

	go func() {
		logger.Info("mock api listening", "port", cfg.Mock.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("forced shutdown", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}
}
