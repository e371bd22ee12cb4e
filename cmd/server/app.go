package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-codepilot/internal/adapter"
	"github.com/hpn/hpn-codepilot/internal/analyzer"
	"github.com/hpn/hpn-codepilot/internal/assistant"
	"github.com/hpn/hpn-codepilot/internal/backend"
	"github.com/hpn/hpn-codepilot/internal/config"
	"github.com/hpn/hpn-codepilot/internal/domain"
	"github.com/hpn/hpn-codepilot/internal/handler"
	"github.com/hpn/hpn-codepilot/internal/prompt"
	"github.com/hpn/hpn-codepilot/internal/security"
	"github.com/hpn/hpn-codepilot/internal/ui"
)

// application wires the configuration store to the HTTP surface.
type application struct {
	store     *config.Store
	assistant *assistant.Service
	router    *gin.Engine
	logger    *slog.Logger
	console   bool

	mu           sync.Mutex
	lastProvider string
}

type appOptions struct {
	// console enables the colored request and backend-switch lines on ui.Output.
	console     bool
	backendOpts []backend.Option
}

// newApplication builds every component from the current configuration.
// Backend switches need no rebuild: the assistant reads settings from the
// store on every call.
func newApplication(store *config.Store, logger *slog.Logger, opts appOptions) *application {
	cfg := store.Config()

	backendOpts := append([]backend.Option{backend.WithLogger(logger)}, opts.backendOpts...)
	svc := assistant.New(
		store,
		backend.NewCloudClient(backendOpts...),
		backend.NewLocalClient(backendOpts...),
		assistant.WithLogger(logger),
	)

	az := analyzer.New(analyzer.WithWorkspaceRoot(cfg.Workspace.Root))
	h := handler.New(svc, az, prompt.NewBuilder(),
		handler.WithLogger(logger),
		handler.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)

	router := gin.New()
	router.Use(handler.RecoveryMiddleware(logger))
	router.Use(handler.RequestIDMiddleware())
	router.Use(handler.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(handler.LoggingMiddleware(logger))
	if opts.console {
		router.Use(handler.ConsoleMiddleware())
	}
	h.RegisterRoutes(router)

	app := &application{
		store:        store,
		assistant:    svc,
		router:       router,
		logger:       logger,
		console:      opts.console,
		lastProvider: svc.CurrentProvider(),
	}
	store.OnChange(app.onConfigChange)
	return app
}

// onConfigChange announces backend switches made by a config edit or Store.Set.
func (a *application) onConfigChange(_ *config.Configuration) {
	current := a.assistant.CurrentProvider()

	a.mu.Lock()
	previous := a.lastProvider
	a.lastProvider = current
	a.mu.Unlock()

	if previous == current {
		return
	}
	a.logger.Info("backend switched", slog.String("from", previous), slog.String("to", current))
	if a.console {
		ui.PrintBackendChange(previous, current)
	}
}

func (a *application) startupInfo() ui.StartupInfo {
	cfg := a.store.Config()
	info := ui.StartupInfo{
		Address:    cfg.Address(),
		Provider:   a.assistant.CurrentProvider(),
		ConfigFile: a.store.ConfigFileUsed(),
	}
	switch sel := cfg.Assistant.Selection().(type) {
	case domain.LocalSelection:
		info.Model = sel.Model
		info.Server = adapter.LocalProviderInfo(adapter.DetectLocalProvider(sel.BaseURL)).Name
	case domain.CloudSelection:
		info.Model = cfg.Assistant.CloudModel
		info.Credential = security.MaskCredential(cfg.Assistant.CloudAPIKey)
	}
	return info
}

// newLogger builds the slog logger described by cfg. Every handler is wrapped
// in security.RedactedHandler.
func newLogger(cfg config.LoggingConfig, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	out, closer := stdout, io.Closer(nopCloser{})
	if cfg.OutputPath != "" {
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var inner slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		inner = slog.NewTextHandler(out, opts)
	} else {
		inner = slog.NewJSONHandler(out, opts)
	}
	return slog.New(security.NewRedactedHandler(inner)), closer, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
