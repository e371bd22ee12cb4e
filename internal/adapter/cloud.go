package adapter

import (
	"github.com/hpn/hpn-codepilot/internal/domain"
)

const (
	// DefaultOpenAIURL is the OpenAI chat completions endpoint.
	DefaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

	// DefaultAzureURL is a template; Azure deployments must configure their own endpoint.
	DefaultAzureURL = "https://YOUR_RESOURCE_NAME.openai.azure.com/openai/deployments/YOUR_DEPLOYMENT_NAME/chat/completions?api-version=2023-05-15"

	// DefaultAnthropicURL is the Anthropic messages endpoint.
	DefaultAnthropicURL = "https://api.anthropic.com/v1/messages"

	// AnthropicVersion is sent in the anthropic-version header.
	AnthropicVersion = "2023-06-01"
)

// OpenAIAdapter speaks the OpenAI chat completions dialect.
// Azure OpenAI uses the same body with a different auth header.
type OpenAIAdapter struct {
	key          domain.ProviderType
	name         string
	url          string
	model        string
	authHeader   string
	bearer       bool
	needEndpoint bool
}

// NewOpenAIAdapter creates the adapter for api.openai.com.
func NewOpenAIAdapter() *OpenAIAdapter {
	return &OpenAIAdapter{
		key:        domain.ProviderOpenAI,
		name:       "OpenAI",
		url:        DefaultOpenAIURL,
		model:      "gpt-3.5-turbo",
		authHeader: "Authorization",
		bearer:     true,
	}
}

// NewAzureAdapter creates the adapter for Azure OpenAI deployments.
func NewAzureAdapter() *OpenAIAdapter {
	return &OpenAIAdapter{
		key:          domain.ProviderAzure,
		name:         "Azure OpenAI",
		url:          DefaultAzureURL,
		model:        "gpt-35-turbo",
		authHeader:   "api-key",
		needEndpoint: true,
	}
}

func (a *OpenAIAdapter) Key() string          { return string(a.key) }
func (a *OpenAIAdapter) DisplayName() string  { return a.name }
func (a *OpenAIAdapter) DefaultModel() string { return a.model }

// Endpoint returns the chat completions URL; the model travels in the body.
func (a *OpenAIAdapter) Endpoint(string) string { return a.url }

// RequiresEndpoint reports whether the built-in URL is only a template.
func (a *OpenAIAdapter) RequiresEndpoint() bool { return a.needEndpoint }

// Headers returns Content-Type plus the provider's auth header.
func (a *OpenAIAdapter) Headers(credential string) map[string]string {
	value := credential
	if a.bearer {
		value = "Bearer " + credential
	}
	return map[string]string{
		"Content-Type": "application/json",
		a.authHeader:   value,
	}
}

// BuildRequest returns {model, messages:[system, user], max_tokens, temperature}.
func (a *OpenAIAdapter) BuildRequest(prompt string, opts domain.RuntimeOptions) any {
	return ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    chatMessages(prompt, true),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.TemperatureValue(),
	}
}

// Extract reads choices[0].message.content.
func (a *OpenAIAdapter) Extract(payload any) string {
	return textAt(payload, "choices", 0, "message", "content")
}

// AnthropicAdapter speaks the Anthropic messages dialect.
type AnthropicAdapter struct{}

// NewAnthropicAdapter creates the adapter for api.anthropic.com.
func NewAnthropicAdapter() *AnthropicAdapter {
	return &AnthropicAdapter{}
}

func (a *AnthropicAdapter) Key() string            { return string(domain.ProviderAnthropic) }
func (a *AnthropicAdapter) DisplayName() string    { return "Anthropic" }
func (a *AnthropicAdapter) DefaultModel() string   { return "claude-3-sonnet-20240229" }
func (a *AnthropicAdapter) Endpoint(string) string { return DefaultAnthropicURL }

// Headers returns x-api-key and anthropic-version.
func (a *AnthropicAdapter) Headers(credential string) map[string]string {
	return map[string]string{
		"Content-Type":      "application/json",
		"x-api-key":         credential,
		"anthropic-version": AnthropicVersion,
	}
}

// BuildRequest returns {model, max_tokens, temperature, messages:[user]}.
func (a *AnthropicAdapter) BuildRequest(prompt string, opts domain.RuntimeOptions) any {
	return AnthropicMessagesRequest{
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.TemperatureValue(),
		Messages:    chatMessages(prompt, false),
	}
}

// Extract reads content[0].text.
func (a *AnthropicAdapter) Extract(payload any) string {
	return textAt(payload, "content", 0, "text")
}

// Compile-time interface checks.
var (
	_ ProviderAdapter  = (*OpenAIAdapter)(nil)
	_ EndpointRequirer = (*OpenAIAdapter)(nil)
	_ ProviderAdapter  = (*AnthropicAdapter)(nil)
)
