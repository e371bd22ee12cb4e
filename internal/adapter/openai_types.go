package adapter

// OpenAI-compatible request types.
// OpenAI, Azure OpenAI and LM Studio all accept this shape.

// ChatMessage represents a single message in the conversation.
type ChatMessage struct {
	// Role is one of: "system", "user", "assistant".
	Role string `json:"role"`

	// Content is the message text content.
	Content string `json:"content"`
}

// ChatCompletionRequest represents an OpenAI chat completion request.
type ChatCompletionRequest struct {
	// Model specifies which model to use (e.g., "gpt-3.5-turbo").
	Model string `json:"model,omitempty"`

	// Messages contains the system persona and the user prompt.
	Messages []ChatMessage `json:"messages"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens"`

	// Temperature controls randomness (0.0-2.0).
	Temperature float64 `json:"temperature"`

	// Stream is sent explicitly as false by servers that default to streaming.
	Stream *bool `json:"stream,omitempty"`
}

// AnthropicMessagesRequest represents an Anthropic messages request.
type AnthropicMessagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []ChatMessage `json:"messages"`
}

func chatMessages(prompt string, withPersona bool) []ChatMessage {
	msgs := make([]ChatMessage, 0, 2)
	if withPersona {
		msgs = append(msgs, ChatMessage{Role: "system", Content: SystemPersona})
	}
	return append(msgs, ChatMessage{Role: "user", Content: prompt})
}

func boolPtr(v bool) *bool {
	return &v
}
