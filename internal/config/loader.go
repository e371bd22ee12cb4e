package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "CODEPILOT"

	// EnvAPIKey is the preferred way to supply the cloud credential.
	// It overrides aiCodingAssistant.cloudApiKey from any other source.
	EnvAPIKey = "CODEPILOT_API_KEY"
)

// providerKeyEnv lists the vendor variables consulted when no credential is configured.
var providerKeyEnv = map[domain.ProviderType][]string{
	domain.ProviderOpenAI:    {"OPENAI_API_KEY"},
	domain.ProviderAnthropic: {"ANTHROPIC_API_KEY"},
	domain.ProviderGoogle:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	domain.ProviderAzure:     {"AZURE_OPENAI_API_KEY"},
}

// loadConfig loads the configuration once, without watching the file.
func loadConfig(configPath string) (*Configuration, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// newViper builds a viper instance and reads the config file if one exists.
// Priority order (highest to lowest):
// 1. CODEPILOT_API_KEY for the credential
// 2. Environment variables (prefixed with CODEPILOT_), including those from .env
// 3. config.yaml
// 4. Default values
func newViper(configPath string) (*viper.Viper, error) {
	// .env never overrides variables already set in the process.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.hpn-codepilot")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
		fmt.Fprintf(os.Stderr, "[config] no config file found, using defaults and environment\n")
	}
	return v, nil
}

// decode unmarshals, applies credential environment variables and validates.
func decode(v *viper.Viper) (*Configuration, error) {
	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}

	applyCredentialEnv(&cfg, providerExplicit(v))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values. Every key needs a default so
// AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 90)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.allowed_origins", []string{})

	// Assistant defaults
	v.SetDefault("aiCodingAssistant.useLocal", false)
	v.SetDefault("aiCodingAssistant.cloudProvider", string(domain.ProviderOpenAI))
	v.SetDefault("aiCodingAssistant.cloudApiKey", "")
	v.SetDefault("aiCodingAssistant.cloudEndpoint", "")
	v.SetDefault("aiCodingAssistant.cloudModel", "")
	v.SetDefault("aiCodingAssistant.localApiUrl", domain.DefaultLocalAPIURL)
	v.SetDefault("aiCodingAssistant.localModel", domain.DefaultLocalModel)
	v.SetDefault("aiCodingAssistant.maxTokens", domain.DefaultMaxTokens)
	v.SetDefault("aiCodingAssistant.temperature", domain.DefaultTemperature)

	v.SetDefault("workspace.root", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "")
}

// providerExplicit reports whether cloudProvider came from the file or the environment
// rather than from its default.
func providerExplicit(v *viper.Viper) bool {
	if v.InConfig("aicodingassistant.cloudprovider") {
		return true
	}
	_, ok := os.LookupEnv(envPrefix + "_AICODINGASSISTANT_CLOUDPROVIDER")
	return ok
}

// applyCredentialEnv fills the cloud credential from CODEPILOT_API_KEY or, when
// nothing is configured, from the vendor variable of the selected provider.
func applyCredentialEnv(cfg *Configuration, providerSet bool) {
	a := &cfg.Assistant

	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		a.CloudAPIKey = key
		if !providerSet {
			if p, ok := detectProviderFromKey(key); ok {
				a.CloudProvider = string(p)
			}
		}
		return
	}

	if strings.TrimSpace(a.CloudAPIKey) != "" {
		return
	}
	provider, _ := domain.ParseProviderType(a.CloudProvider)
	for _, name := range providerKeyEnv[provider] {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			a.CloudAPIKey = key
			return
		}
	}
}

// detectProviderFromKey identifies the provider from well-known key prefixes.
func detectProviderFromKey(key string) (domain.ProviderType, bool) {
	switch {
	case strings.HasPrefix(key, "sk-ant-"):
		return domain.ProviderAnthropic, true
	case strings.HasPrefix(key, "sk-"):
		return domain.ProviderOpenAI, true
	case strings.HasPrefix(key, "AIza"):
		return domain.ProviderGoogle, true
	default:
		return "", false
	}
}
