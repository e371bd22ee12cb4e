// Package adapter provides the wire dialects of the supported LLM backends.
// It uses the Adapter pattern to describe each provider-specific API behind a common interface;
// the adapters only build and read payloads, the backend package performs the calls.
package adapter

import (
	"net/url"
	"sort"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

// FallbackResponse is returned by every extractor when a payload carries no answer text.
const FallbackResponse = "No response generated"

// SystemPersona is the system message sent to chat-style backends.
const SystemPersona = "You are a helpful coding assistant. Provide clear, concise, and accurate responses."

// ProviderAdapter defines how to speak one backend's wire dialect.
// All provider implementations must satisfy this interface.
type ProviderAdapter interface {
	// Key returns the registry key (e.g., "openai", "ollama").
	Key() string

	// DisplayName returns the human-readable provider name.
	DisplayName() string

	// DefaultModel is used when the caller does not name a model.
	DefaultModel() string

	// Endpoint returns the absolute URL (cloud) or the path suffix (local) for model.
	Endpoint(model string) string

	// Headers returns the request headers, including any credential header.
	Headers(credential string) map[string]string

	// BuildRequest returns the JSON-serializable request body.
	// opts must already be normalized.
	BuildRequest(prompt string, opts domain.RuntimeOptions) any

	// Extract pulls the answer out of a decoded JSON payload.
	// It never panics and returns FallbackResponse when nothing usable is found.
	Extract(payload any) string
}

// QueryAuthenticator is implemented by adapters that pass the credential in the URL
// instead of a header.
type QueryAuthenticator interface {
	AuthQuery(credential string) url.Values
}

// EndpointRequirer is implemented by adapters whose default endpoint is only a template,
// so a configured endpoint is mandatory.
type EndpointRequirer interface {
	RequiresEndpoint() bool
}

// Registry maps provider keys to their adapters. It is immutable after construction.
type Registry[K ~string] struct {
	adapters map[K]ProviderAdapter
}

func newRegistry[K ~string](adapters ...ProviderAdapter) *Registry[K] {
	r := &Registry[K]{adapters: make(map[K]ProviderAdapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[K(a.Key())] = a
	}
	return r
}

// Lookup returns the adapter registered under key.
func (r *Registry[K]) Lookup(key K) (ProviderAdapter, bool) {
	a, ok := r.adapters[key]
	return a, ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry[K]) Keys() []string {
	keys := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

var (
	cloudRegistry = newRegistry[domain.ProviderType](
		NewOpenAIAdapter(),
		NewAzureAdapter(),
		NewAnthropicAdapter(),
		NewGoogleAdapter(),
	)

	localRegistry = newRegistry[domain.LocalProviderType](
		NewOllamaAdapter(),
		NewChatCompletionsAdapter(),
		NewGenerateV1Adapter(domain.LocalTextGenerationWebUI, "Text Generation WebUI"),
		NewGenerateV1Adapter(domain.LocalOobabooga, "Oobabooga"),
	)
)

// CloudRegistry returns the built-in cloud provider adapters.
func CloudRegistry() *Registry[domain.ProviderType] {
	return cloudRegistry
}

// LocalRegistry returns the built-in local server adapters.
func LocalRegistry() *Registry[domain.LocalProviderType] {
	return localRegistry
}
