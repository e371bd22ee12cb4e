// Package assistant routes questions to the cloud or local backend according to
// the current settings. Settings are re-read on every call, so a configuration
// change takes effect on the next request without restarting anything.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

// SettingsSource supplies the current assistant settings.
type SettingsSource interface {
	Assistant() domain.AssistantSettings
}

// SettingsFunc adapts a plain function to SettingsSource.
type SettingsFunc func() domain.AssistantSettings

func (f SettingsFunc) Assistant() domain.AssistantSettings { return f() }

// CloudBackend is the cloud half of the dispatcher.
type CloudBackend interface {
	Ask(ctx context.Context, question string, sel domain.CloudSelection, opts domain.RuntimeOptions) (string, error)
	ValidateConfiguration(ctx context.Context, sel domain.CloudSelection, opts domain.RuntimeOptions) (bool, error)
	SupportedProviders() []string
	DefaultModel(provider domain.ProviderType) (string, bool)
}

// LocalBackend is the local half of the dispatcher.
type LocalBackend interface {
	Ask(ctx context.Context, question string, sel domain.LocalSelection, opts domain.RuntimeOptions) (string, error)
	ValidateConfiguration(ctx context.Context, sel domain.LocalSelection, opts domain.RuntimeOptions) (bool, error)
	AvailableModels(ctx context.Context, sel domain.LocalSelection) []string
	SupportedProviders() []string
}

// Service is the single entry point for asking questions.
type Service struct {
	settings SettingsSource
	cloud    CloudBackend
	local    LocalBackend
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Service.
func New(settings SettingsSource, cloud CloudBackend, local LocalBackend, opts ...Option) *Service {
	s := &Service{
		settings: settings,
		cloud:    cloud,
		local:    local,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AskQuestion sends question to whichever backend the settings select.
func (s *Service) AskQuestion(ctx context.Context, question string) (string, error) {
	settings := s.settings.Assistant()
	opts := settings.RuntimeOptions()
	start := time.Now()

	var (
		answer string
		err    error
	)
	switch sel := settings.Selection().(type) {
	case domain.LocalSelection:
		answer, err = s.local.Ask(ctx, question, sel, opts)
	case domain.CloudSelection:
		answer, err = s.cloud.Ask(ctx, question, sel, opts)
	default:
		return "", fmt.Errorf("unknown backend selection %T", sel)
	}

	s.logger.Info("question answered",
		slog.String("backend", describe(settings)),
		slog.Int("question_chars", len(question)),
		slog.Duration("latency", time.Since(start)),
		slog.Bool("ok", err == nil),
	)
	return answer, err
}

// ValidateConfiguration checks the selected backend with one canary ask.
func (s *Service) ValidateConfiguration(ctx context.Context) (bool, error) {
	settings := s.settings.Assistant()
	opts := settings.RuntimeOptions()

	switch sel := settings.Selection().(type) {
	case domain.LocalSelection:
		return s.local.ValidateConfiguration(ctx, sel, opts)
	case domain.CloudSelection:
		return s.cloud.ValidateConfiguration(ctx, sel, opts)
	default:
		return false, fmt.Errorf("unknown backend selection %T", sel)
	}
}

// AvailableModels lists models of the local server. In cloud mode it returns
// the configured model, or the provider default.
func (s *Service) AvailableModels(ctx context.Context) []string {
	settings := s.settings.Assistant()
	switch sel := settings.Selection().(type) {
	case domain.LocalSelection:
		return s.local.AvailableModels(ctx, sel)
	case domain.CloudSelection:
		if m := settings.RuntimeOptions().Model; m != "" {
			return []string{m}
		}
		if m, ok := s.cloud.DefaultModel(sel.Provider); ok {
			return []string{m}
		}
	}
	return []string{}
}

// SupportedProviders returns the provider keys of the active mode.
func (s *Service) SupportedProviders() []string {
	if s.settings.Assistant().UseLocal {
		return s.local.SupportedProviders()
	}
	return s.cloud.SupportedProviders()
}

// CurrentProvider describes the active backend, e.g. "Local (codellama)" or "Cloud (openai)".
func (s *Service) CurrentProvider() string {
	return describe(s.settings.Assistant())
}

// IsLocal reports whether the local backend is selected.
func (s *Service) IsLocal() bool {
	return s.settings.Assistant().UseLocal
}

func describe(settings domain.AssistantSettings) string {
	switch sel := settings.Selection().(type) {
	case domain.LocalSelection:
		return fmt.Sprintf("Local (%s)", sel.Model)
	case domain.CloudSelection:
		return fmt.Sprintf("Cloud (%s)", sel.Provider)
	}
	return "Unknown"
}
