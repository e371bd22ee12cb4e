package adapter

import (
	"strings"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

// DefaultModels is offered when a local server cannot list its models.
var DefaultModels = []string{"codellama", "llama2", "mistral", "phi", "gemma"}

// localHeaders is shared by every local server; none of them take a credential.
func localHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

// OllamaAdapter speaks Ollama's /api/generate dialect.
type OllamaAdapter struct{}

// NewOllamaAdapter creates the Ollama adapter.
func NewOllamaAdapter() *OllamaAdapter { return &OllamaAdapter{} }

// OllamaGenerateRequest is the non-streaming generate body.
type OllamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options OllamaOptions `json:"options"`
}

// OllamaOptions holds sampling parameters nested under "options".
type OllamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

func (a *OllamaAdapter) Key() string                      { return string(domain.LocalOllama) }
func (a *OllamaAdapter) DisplayName() string              { return "Ollama" }
func (a *OllamaAdapter) DefaultModel() string             { return domain.DefaultLocalModel }
func (a *OllamaAdapter) Endpoint(string) string           { return "/api/generate" }
func (a *OllamaAdapter) Headers(string) map[string]string { return localHeaders() }

func (a *OllamaAdapter) BuildRequest(prompt string, opts domain.RuntimeOptions) any {
	return OllamaGenerateRequest{
		Model:  opts.Model,
		Prompt: prompt,
		Stream: false,
		Options: OllamaOptions{
			Temperature: opts.TemperatureValue(),
			NumPredict:  opts.MaxTokens,
		},
	}
}

// Extract reads response.
func (a *OllamaAdapter) Extract(payload any) string {
	return textAt(payload, "response")
}

// ChatCompletionsAdapter speaks the OpenAI-compatible dialect served by LM Studio.
type ChatCompletionsAdapter struct{}

// NewChatCompletionsAdapter creates the LM Studio adapter.
func NewChatCompletionsAdapter() *ChatCompletionsAdapter { return &ChatCompletionsAdapter{} }

func (a *ChatCompletionsAdapter) Key() string                      { return string(domain.LocalLMStudio) }
func (a *ChatCompletionsAdapter) DisplayName() string              { return "LM Studio" }
func (a *ChatCompletionsAdapter) DefaultModel() string             { return domain.DefaultLocalModel }
func (a *ChatCompletionsAdapter) Endpoint(string) string           { return "/v1/chat/completions" }
func (a *ChatCompletionsAdapter) Headers(string) map[string]string { return localHeaders() }

func (a *ChatCompletionsAdapter) BuildRequest(prompt string, opts domain.RuntimeOptions) any {
	return ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    chatMessages(prompt, true),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.TemperatureValue(),
		Stream:      boolPtr(false),
	}
}

// Extract reads choices[0].message.content.
func (a *ChatCompletionsAdapter) Extract(payload any) string {
	return textAt(payload, "choices", 0, "message", "content")
}

// GenerateV1Adapter speaks the /api/v1/generate dialect shared by
// text-generation-webui and oobabooga.
type GenerateV1Adapter struct {
	key  domain.LocalProviderType
	name string
}

// NewGenerateV1Adapter creates a /api/v1/generate adapter registered under key.
func NewGenerateV1Adapter(key domain.LocalProviderType, name string) *GenerateV1Adapter {
	return &GenerateV1Adapter{key: key, name: name}
}

// GenerateV1Request is the generation-parameter body of /api/v1/generate.
type GenerateV1Request struct {
	Prompt            string   `json:"prompt"`
	MaxNewTokens      int      `json:"max_new_tokens"`
	Temperature       float64  `json:"temperature"`
	TopP              float64  `json:"top_p"`
	TypicalP          float64  `json:"typical_p"`
	DoSample          bool     `json:"do_sample"`
	Seed              int      `json:"seed"`
	AddBOSToken       bool     `json:"add_bos_token"`
	BanEOSToken       bool     `json:"ban_eos_token"`
	SkipSpecialTokens bool     `json:"skip_special_tokens"`
	StoppingStrings   []string `json:"stopping_strings"`
}

func (a *GenerateV1Adapter) Key() string                      { return string(a.key) }
func (a *GenerateV1Adapter) DisplayName() string              { return a.name }
func (a *GenerateV1Adapter) DefaultModel() string             { return domain.DefaultLocalModel }
func (a *GenerateV1Adapter) Endpoint(string) string           { return "/api/v1/generate" }
func (a *GenerateV1Adapter) Headers(string) map[string]string { return localHeaders() }

// BuildRequest ignores the model: these servers generate with whatever model is loaded.
func (a *GenerateV1Adapter) BuildRequest(prompt string, opts domain.RuntimeOptions) any {
	return GenerateV1Request{
		Prompt:            prompt,
		MaxNewTokens:      opts.MaxTokens,
		Temperature:       opts.TemperatureValue(),
		TopP:              0.9,
		TypicalP:          1,
		DoSample:          true,
		Seed:              -1,
		AddBOSToken:       true,
		BanEOSToken:       false,
		SkipSpecialTokens: true,
		StoppingStrings:   []string{},
	}
}

// Extract reads results[0].text.
func (a *GenerateV1Adapter) Extract(payload any) string {
	return textAt(payload, "results", 0, "text")
}

var (
	_ ProviderAdapter = (*OllamaAdapter)(nil)
	_ ProviderAdapter = (*ChatCompletionsAdapter)(nil)
	_ ProviderAdapter = (*GenerateV1Adapter)(nil)
)

// localSignatures is checked in order; the first hit wins.
var localSignatures = []struct {
	provider domain.LocalProviderType
	markers  []string
}{
	{domain.LocalOllama, []string{":11434", "ollama"}},
	{domain.LocalLMStudio, []string{":1234", "lmstudio"}},
	{domain.LocalTextGenerationWebUI, []string{":7860", "textgenerationwebui"}},
	{domain.LocalOobabooga, []string{":5000", "oobabooga"}},
}

// DetectLocalProvider infers the server kind from its base URL.
// Matching is case-insensitive; unrecognized URLs default to Ollama.
func DetectLocalProvider(baseURL string) domain.LocalProviderType {
	u := strings.ToLower(baseURL)
	for _, sig := range localSignatures {
		for _, m := range sig.markers {
			if strings.Contains(u, m) {
				return sig.provider
			}
		}
	}
	return domain.LocalOllama
}

// ProviderInfo describes a local server kind for setup screens.
type ProviderInfo struct {
	Name        string `json:"name"`
	DefaultURL  string `json:"defaultUrl"`
	Description string `json:"description"`
}

var localInfo = map[domain.LocalProviderType]ProviderInfo{
	domain.LocalOllama: {
		Name:        "Ollama",
		DefaultURL:  "http://localhost:11434",
		Description: "Local LLM server with easy model management",
	},
	domain.LocalLMStudio: {
		Name:        "LM Studio",
		DefaultURL:  "http://localhost:1234",
		Description: "Desktop app for running local LLMs",
	},
	domain.LocalTextGenerationWebUI: {
		Name:        "Text Generation WebUI",
		DefaultURL:  "http://localhost:7860",
		Description: "Web-based interface for running LLMs",
	},
	domain.LocalOobabooga: {
		Name:        "Oobabooga",
		DefaultURL:  "http://localhost:5000",
		Description: "Advanced web UI for running LLMs",
	},
}

// LocalProviderInfo returns setup details for a local server kind.
func LocalProviderInfo(p domain.LocalProviderType) ProviderInfo {
	if info, ok := localInfo[p]; ok {
		return info
	}
	return ProviderInfo{
		Name:        "Unknown",
		DefaultURL:  domain.DefaultLocalAPIURL,
		Description: "Unknown local provider",
	}
}
