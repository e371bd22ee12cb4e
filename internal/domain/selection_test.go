package domain

import "testing"

func TestSelection(t *testing.T) {
	tests := []struct {
		name     string
		settings AssistantSettings
		want     Selection
	}{
		{
			name:     "cloud defaults to openai",
			settings: AssistantSettings{CloudAPIKey: " sk-test "},
			want:     CloudSelection{Provider: ProviderOpenAI, Credential: "sk-test"},
		},
		{
			name: "cloud provider is normalized",
			settings: AssistantSettings{
				CloudProvider: " Azure ",
				CloudAPIKey:   "key",
				CloudEndpoint: "https://example.openai.azure.com/deploy",
			},
			want: CloudSelection{
				Provider:   ProviderAzure,
				Credential: "key",
				Endpoint:   "https://example.openai.azure.com/deploy",
			},
		},
		{
			name:     "local defaults",
			settings: AssistantSettings{UseLocal: true},
			want:     LocalSelection{BaseURL: DefaultLocalAPIURL, Model: DefaultLocalModel},
		},
		{
			name: "local trims trailing slash",
			settings: AssistantSettings{
				UseLocal:    true,
				LocalAPIURL: "http://localhost:1234/",
				LocalModel:  "deepseek-coder",
			},
			want: LocalSelection{BaseURL: "http://localhost:1234", Model: "deepseek-coder"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.settings.Selection()
			if got != tt.want {
				t.Errorf("Selection() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRuntimeOptions(t *testing.T) {
	local := AssistantSettings{UseLocal: true, MaxTokens: 512, Temperature: 0.2}.RuntimeOptions()
	if local.Model != DefaultLocalModel {
		t.Errorf("local model = %q, want %q", local.Model, DefaultLocalModel)
	}
	if local.MaxTokens != 512 || local.TemperatureValue() != 0.2 {
		t.Errorf("local options = %+v", local)
	}

	cloud := AssistantSettings{CloudModel: " gpt-4o "}.RuntimeOptions()
	if cloud.Model != "gpt-4o" {
		t.Errorf("cloud model = %q, want gpt-4o", cloud.Model)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        RuntimeOptions
		wantMax   int
		wantTemp  float64
		wantModel string
	}{
		{"zero value", RuntimeOptions{}, DefaultMaxTokens, DefaultTemperature, "default-model"},
		{"kept", RuntimeOptions{MaxTokens: 100, Temperature: Float64(0), Model: "m"}, 100, 0, "m"},
		{"negative tokens", RuntimeOptions{MaxTokens: -5, Temperature: Float64(1.5)}, DefaultMaxTokens, 1.5, "default-model"},
		{"temperature too high", RuntimeOptions{Temperature: Float64(2.5)}, DefaultMaxTokens, DefaultTemperature, "default-model"},
		{"temperature negative", RuntimeOptions{Temperature: Float64(-0.1)}, DefaultMaxTokens, DefaultTemperature, "default-model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize("default-model")
			if got.MaxTokens != tt.wantMax {
				t.Errorf("MaxTokens = %d, want %d", got.MaxTokens, tt.wantMax)
			}
			if got.TemperatureValue() != tt.wantTemp {
				t.Errorf("Temperature = %v, want %v", got.TemperatureValue(), tt.wantTemp)
			}
			if got.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", got.Model, tt.wantModel)
			}
		})
	}
}

func TestNormalizeDoesNotAlias(t *testing.T) {
	temp := 1.0
	in := RuntimeOptions{Temperature: &temp}
	out := in.Normalize("m")
	*out.Temperature = 0.3
	if temp != 1.0 {
		t.Errorf("Normalize shared the caller's temperature pointer")
	}
}

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		in   string
		want ProviderType
		ok   bool
	}{
		{"openai", ProviderOpenAI, true},
		{" Anthropic ", ProviderAnthropic, true},
		{"GOOGLE", ProviderGoogle, true},
		{"azure", ProviderAzure, true},
		{"cohere", ProviderType("cohere"), false},
	}
	for _, tt := range tests {
		got, ok := ParseProviderType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseProviderType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
