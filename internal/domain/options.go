package domain

const (
	// DefaultMaxTokens is used whenever the caller does not supply a positive limit.
	DefaultMaxTokens = 2000

	// DefaultTemperature is used whenever the caller does not supply a value in [0, 2].
	DefaultTemperature = 0.7

	// MaxTemperature is the upper bound accepted by every supported backend.
	MaxTemperature = 2.0
)

// RuntimeOptions are the generation parameters for a single ask.
// They are read from configuration on every call and never mutated afterwards.
type RuntimeOptions struct {
	// MaxTokens limits the response length. Zero means "use the default".
	MaxTokens int `json:"max_tokens"`

	// Temperature controls randomness (0.0-2.0). Nil means "use the default".
	Temperature *float64 `json:"temperature,omitempty"`

	// Model is the provider-specific model identifier. Empty means "provider default".
	Model string `json:"model,omitempty"`
}

// Normalize returns a copy with every absent or out-of-range value replaced
// by its default. defaultModel is the adapter's model for this provider.
func (o RuntimeOptions) Normalize(defaultModel string) RuntimeOptions {
	out := o
	if out.MaxTokens <= 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	if out.Temperature == nil || *out.Temperature < 0 || *out.Temperature > MaxTemperature {
		t := DefaultTemperature
		out.Temperature = &t
	} else {
		t := *out.Temperature
		out.Temperature = &t
	}
	if out.Model == "" {
		out.Model = defaultModel
	}
	return out
}

// TemperatureValue returns the temperature, or the default when unset.
func (o RuntimeOptions) TemperatureValue() float64 {
	if o.Temperature == nil {
		return DefaultTemperature
	}
	return *o.Temperature
}

// Float64 returns a pointer to v. It keeps optional option literals short.
func Float64(v float64) *float64 {
	return &v
}
