package adapter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

const (
	// DefaultGeminiBaseURL is the default Gemini API endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiAdapter speaks the Google generateContent dialect.
// Gemini takes the API key as the "key" query parameter, not as a header.
type GeminiAdapter struct {
	baseURL string
}

// GeminiAdapterOption is a functional option for configuring GeminiAdapter.
type GeminiAdapterOption func(*GeminiAdapter)

// WithBaseURL sets a custom base URL for the Gemini API.
func WithBaseURL(u string) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		g.baseURL = strings.TrimSuffix(u, "/")
	}
}

// NewGoogleAdapter creates the adapter for the Gemini API.
func NewGoogleAdapter(opts ...GeminiAdapterOption) *GeminiAdapter {
	g := &GeminiAdapter{baseURL: DefaultGeminiBaseURL}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiAdapter) Key() string          { return string(domain.ProviderGoogle) }
func (g *GeminiAdapter) DisplayName() string  { return "Google" }
func (g *GeminiAdapter) DefaultModel() string { return "gemini-pro" }

// Endpoint returns the generateContent URL for model.
func (g *GeminiAdapter) Endpoint(model string) string {
	if model == "" {
		model = g.DefaultModel()
	}
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
}

// Headers carries no credential; see AuthQuery.
func (g *GeminiAdapter) Headers(string) map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

// AuthQuery returns the key query parameter.
func (g *GeminiAdapter) AuthQuery(credential string) url.Values {
	return url.Values{"key": []string{credential}}
}

// BuildRequest returns {contents:[{parts:[{text}]}], generationConfig:{maxOutputTokens, temperature}}.
func (g *GeminiAdapter) BuildRequest(prompt string, opts domain.RuntimeOptions) any {
	return GeminiRequest{
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: prompt}}},
		},
		GenerationConfig: GeminiGenerationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.TemperatureValue(),
		},
	}
}

// Extract reads candidates[0].content.parts[0].text.
func (g *GeminiAdapter) Extract(payload any) string {
	return textAt(payload, "candidates", 0, "content", "parts", 0, "text")
}

var (
	_ ProviderAdapter    = (*GeminiAdapter)(nil)
	_ QueryAuthenticator = (*GeminiAdapter)(nil)
)

// ============================================================================
// Gemini API Types
// ============================================================================

// GeminiRequest represents a Gemini generateContent request.
type GeminiRequest struct {
	Contents         []GeminiContent        `json:"contents"`
	GenerationConfig GeminiGenerationConfig `json:"generationConfig"`
}

// GeminiContent represents a content block in Gemini format.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of a content block.
type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiGenerationConfig contains generation parameters.
type GeminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}
