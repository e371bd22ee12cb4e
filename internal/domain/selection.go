package domain

import "strings"

const (
	// DefaultLocalAPIURL is where a stock Ollama install listens.
	DefaultLocalAPIURL = "http://localhost:11434"

	// DefaultLocalModel is the model requested from local servers when none is configured.
	DefaultLocalModel = "codellama"
)

// AssistantSettings mirrors the aiCodingAssistant configuration namespace.
type AssistantSettings struct {
	// UseLocal selects the locally hosted backend instead of a cloud provider.
	UseLocal bool `json:"useLocal" mapstructure:"useLocal"`

	// CloudProvider is one of openai, anthropic, google, azure.
	CloudProvider string `json:"cloudProvider" mapstructure:"cloudProvider"`

	// CloudAPIKey is the credential for CloudProvider.
	CloudAPIKey string `json:"-" mapstructure:"cloudApiKey"`

	// CloudEndpoint overrides the provider's default URL (required for Azure deployments).
	CloudEndpoint string `json:"cloudEndpoint,omitempty" mapstructure:"cloudEndpoint"`

	// CloudModel overrides the provider's default model.
	CloudModel string `json:"cloudModel,omitempty" mapstructure:"cloudModel"`

	// LocalAPIURL is the base URL of the local inference server.
	LocalAPIURL string `json:"localApiUrl" mapstructure:"localApiUrl"`

	// LocalModel is the model name sent to the local server.
	LocalModel string `json:"localModel" mapstructure:"localModel"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"maxTokens" mapstructure:"maxTokens"`

	// Temperature controls randomness (0.0-2.0).
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
}

// Selection is the active backend: exactly one of CloudSelection or LocalSelection.
type Selection interface {
	isSelection()
}

// CloudSelection routes an ask to a cloud provider.
type CloudSelection struct {
	Provider   ProviderType
	Credential string
	// Endpoint, when set, replaces the adapter's built-in URL.
	Endpoint string
}

// LocalSelection routes an ask to a locally hosted server.
type LocalSelection struct {
	BaseURL string
	Model   string
}

func (CloudSelection) isSelection() {}
func (LocalSelection) isSelection() {}

// Selection builds the tagged backend choice from the settings snapshot.
func (s AssistantSettings) Selection() Selection {
	if s.UseLocal {
		base := strings.TrimSpace(s.LocalAPIURL)
		if base == "" {
			base = DefaultLocalAPIURL
		}
		model := strings.TrimSpace(s.LocalModel)
		if model == "" {
			model = DefaultLocalModel
		}
		return LocalSelection{BaseURL: strings.TrimSuffix(base, "/"), Model: model}
	}

	provider := ProviderType(strings.ToLower(strings.TrimSpace(s.CloudProvider)))
	if provider == "" {
		provider = ProviderOpenAI
	}
	return CloudSelection{
		Provider:   provider,
		Credential: strings.TrimSpace(s.CloudAPIKey),
		Endpoint:   strings.TrimSpace(s.CloudEndpoint),
	}
}

// RuntimeOptions returns the generation parameters for the active backend.
// Defaults are applied later by the adapter, which knows its model.
func (s AssistantSettings) RuntimeOptions() RuntimeOptions {
	opts := RuntimeOptions{MaxTokens: s.MaxTokens}
	t := s.Temperature
	opts.Temperature = &t
	if s.UseLocal {
		opts.Model = strings.TrimSpace(s.LocalModel)
		if opts.Model == "" {
			opts.Model = DefaultLocalModel
		}
	} else {
		opts.Model = strings.TrimSpace(s.CloudModel)
	}
	return opts
}
