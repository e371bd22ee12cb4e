// Package config provides configuration management.
// It loads configuration from defaults, config.yaml, .env and environment
// variables using Viper, and can keep a live snapshot in sync with the file.
package config

import (
	"fmt"
	"net/url"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Assistant holds the aiCodingAssistant namespace.
	Assistant domain.AssistantSettings `json:"aiCodingAssistant" mapstructure:"aiCodingAssistant"`

	// Workspace configures project structure listing.
	Workspace WorkspaceConfig `json:"workspace" mapstructure:"workspace"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeoutSeconds is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds response writes. It must exceed the local
	// backend timeout, or slow local answers are cut off.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeoutSeconds is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`

	// AllowedOrigins lists origins accepted for CORS and the chat socket. Empty allows any.
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
}

// WorkspaceConfig points the analyzer at a project tree.
type WorkspaceConfig struct {
	// Root is the directory listed as project structure. Empty disables listing.
	Root string `json:"root" mapstructure:"root"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`

	// OutputPath is the file path for log output (empty for stdout).
	OutputPath string `json:"output_path" mapstructure:"output_path"`
}

// Validate validates the configuration and returns an error if any value is unusable.
// A missing cloud credential is not a validation error: it is reported when a
// question is asked, so a local-only setup starts without one.
func (c *Configuration) Validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	a := c.Assistant
	if a.CloudProvider != "" {
		if _, ok := domain.ParseProviderType(a.CloudProvider); !ok {
			validationErrors = append(validationErrors, (&InvalidValueError{
				Key:           "aiCodingAssistant.cloudProvider",
				Value:         a.CloudProvider,
				AllowedValues: providerNames(),
			}).Error())
		}
	}

	if a.MaxTokens < 0 {
		validationErrors = append(validationErrors, "aiCodingAssistant.maxTokens must not be negative")
	}

	if a.Temperature < 0 || a.Temperature > domain.MaxTemperature {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"aiCodingAssistant.temperature %.2f is out of range, must be between 0.0 and %.1f",
			a.Temperature, domain.MaxTemperature,
		))
	}

	if a.LocalAPIURL != "" {
		if u, err := url.Parse(a.LocalAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
			validationErrors = append(validationErrors, fmt.Sprintf(
				"aiCodingAssistant.localApiUrl '%s' is not an absolute URL", a.LocalAPIURL,
			))
		}
	}

	if a.CloudEndpoint != "" {
		if u, err := url.Parse(a.CloudEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
			validationErrors = append(validationErrors, fmt.Sprintf(
				"aiCodingAssistant.cloudEndpoint '%s' is not an absolute URL", a.CloudEndpoint,
			))
		}
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level '%s' is invalid, must be one of: debug, info, warn, error",
			c.Logging.Level,
		))
	}

	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.format '%s' is invalid, must be one of: json, text",
			c.Logging.Format,
		))
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

func providerNames() []string {
	names := make([]string, 0, len(domain.CloudProviders))
	for _, p := range domain.CloudProviders {
		names = append(names, string(p))
	}
	return names
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// Address returns host:port for the HTTP listener.
func (c *Configuration) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
