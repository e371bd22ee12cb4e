// Package main is the entry point for the hpn-codepilot server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-codepilot/internal/config"
	"github.com/hpn/hpn-codepilot/internal/ui"
)

// configFileEnv points at an explicit config file; the search paths are used otherwise.
const configFileEnv = "CODEPILOT_CONFIG_FILE"

func main() {
	// =========================================================================
	// 1. Bootstrap logger until the configured one exists
	// =========================================================================
	logger, _, _ := newLogger(config.LoggingConfig{Level: os.Getenv("CODEPILOT_LOGGING_LEVEL")}, os.Stdout)
	slog.SetDefault(logger)

	// =========================================================================
	// 2. Load configuration into a live store
	// =========================================================================
	store, err := config.NewStore(os.Getenv(configFileEnv), config.WithStoreLogger(logger))
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg := store.Config()

	logger, logCloser, err := newLogger(cfg.Logging, os.Stdout)
	if err != nil {
		slog.Error("failed to open log output", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("config_file", store.ConfigFileUsed()),
		slog.String("address", cfg.Address()),
		slog.Bool("use_local", cfg.Assistant.UseLocal),
		slog.String("cloud_provider", cfg.Assistant.CloudProvider),
		slog.String("workspace_root", cfg.Workspace.Root),
	)

	// =========================================================================
	// 3. Wire the assistant and the HTTP surface
	// =========================================================================
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	app := newApplication(store, logger, appOptions{console: true})
	if err := store.Watch(); err != nil {
		logger.Warn("config file changes will not be picked up", slog.String("error", err.Error()))
	}
	defer store.Close()

	// =========================================================================
	// 4. Start HTTP server with graceful shutdown
	// =========================================================================
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      app.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	ui.PrintBanner()
	ui.PrintStartupInfo(app.startupInfo())

	go func() {
		logger.Info("server starting", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	ui.PrintShutdown()

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
	ui.PrintGoodbye()
}
