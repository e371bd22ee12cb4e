// Package domain contains the core business entities and value objects.
// These structs are framework-agnostic and are created fresh for every request.
package domain

import "strings"

// ProviderType identifies a cloud chat-completion provider (e.g., OpenAI, Anthropic, Google).
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGoogle    ProviderType = "google"
	ProviderAzure     ProviderType = "azure"
)

// CloudProviders lists the supported cloud providers in display order.
var CloudProviders = []ProviderType{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderAzure}

// LocalProviderType identifies the kind of locally hosted inference server.
type LocalProviderType string

const (
	LocalOllama              LocalProviderType = "ollama"
	LocalLMStudio            LocalProviderType = "lmstudio"
	LocalTextGenerationWebUI LocalProviderType = "textgenerationwebui"
	LocalOobabooga           LocalProviderType = "oobabooga"
)

// LocalProviders lists the supported local server kinds in detection order.
var LocalProviders = []LocalProviderType{LocalOllama, LocalLMStudio, LocalTextGenerationWebUI, LocalOobabooga}

// ParseProviderType normalizes a configured provider name.
// The second return value is false for unknown providers.
func ParseProviderType(s string) (ProviderType, bool) {
	p := ProviderType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range CloudProviders {
		if p == known {
			return p, true
		}
	}
	return p, false
}
