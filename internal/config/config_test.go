package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

// isolateEnv clears every variable the loader reads so the host environment
// cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIKey, "")
	for _, names := range providerKeyEnv {
		for _, name := range names {
			t.Setenv(name, "")
		}
	}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, envPrefix+"_") {
			name := strings.SplitN(kv, "=", 2)[0]
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	a := cfg.Assistant
	if a.UseLocal {
		t.Error("useLocal should default to false")
	}
	if a.CloudProvider != "openai" {
		t.Errorf("cloudProvider = %q, want openai", a.CloudProvider)
	}
	if a.LocalAPIURL != "http://localhost:11434" || a.LocalModel != "codellama" {
		t.Errorf("local defaults = %q / %q", a.LocalAPIURL, a.LocalModel)
	}
	if a.MaxTokens != 2000 || a.Temperature != 0.7 {
		t.Errorf("generation defaults = %d / %v", a.MaxTokens, a.Temperature)
	}
	if a.CloudAPIKey != "" {
		t.Error("cloudApiKey should default to empty")
	}
	if cfg.Server.Port != 8080 || cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("server address = %s", cfg.Address())
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadConfig_File(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, t.TempDir(), `
server:
  port: 9090
aiCodingAssistant:
  useLocal: true
  cloudProvider: anthropic
  cloudApiKey: sk-ant-file
  localApiUrl: http://localhost:1234
  localModel: qwen2.5-coder
  maxTokens: 512
  temperature: 0.1
workspace:
  root: /srv/project
logging:
  level: debug
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	want := domain.AssistantSettings{
		UseLocal:      true,
		CloudProvider: "anthropic",
		CloudAPIKey:   "sk-ant-file",
		LocalAPIURL:   "http://localhost:1234",
		LocalModel:    "qwen2.5-coder",
		MaxTokens:     512,
		Temperature:   0.1,
	}
	if cfg.Assistant != want {
		t.Errorf("assistant = %+v\nwant %+v", cfg.Assistant, want)
	}
	if cfg.Server.Port != 9090 || cfg.Workspace.Root != "/srv/project" || cfg.Logging.Level != "debug" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, t.TempDir(), "aiCodingAssistant:\n  useLocal: false\n  localModel: llama2\n")
	t.Setenv("CODEPILOT_AICODINGASSISTANT_USELOCAL", "true")
	t.Setenv("CODEPILOT_AICODINGASSISTANT_LOCALMODEL", "mistral")
	t.Setenv("CODEPILOT_SERVER_PORT", "7000")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if !cfg.Assistant.UseLocal || cfg.Assistant.LocalModel != "mistral" || cfg.Server.Port != 7000 {
		t.Errorf("env overrides not applied: %+v / port %d", cfg.Assistant, cfg.Server.Port)
	}
}

func TestLoadConfig_CredentialEnv(t *testing.T) {
	tests := []struct {
		name         string
		file         string
		env          map[string]string
		wantProvider string
		wantKey      string
	}{
		{
			name:         "primary key infers anthropic",
			env:          map[string]string{EnvAPIKey: "sk-ant-123"},
			wantProvider: "anthropic",
			wantKey:      "sk-ant-123",
		},
		{
			name:         "primary key infers google",
			env:          map[string]string{EnvAPIKey: "AIzaSyX"},
			wantProvider: "google",
			wantKey:      "AIzaSyX",
		},
		{
			name:         "explicit provider wins over inference",
			file:         "aiCodingAssistant:\n  cloudProvider: azure\n  cloudApiKey: from-file\n",
			env:          map[string]string{EnvAPIKey: "sk-abc"},
			wantProvider: "azure",
			wantKey:      "sk-abc",
		},
		{
			name:         "unknown prefix keeps default provider",
			env:          map[string]string{EnvAPIKey: "opaque"},
			wantProvider: "openai",
			wantKey:      "opaque",
		},
		{
			name:         "vendor variable fills empty credential",
			file:         "aiCodingAssistant:\n  cloudProvider: google\n",
			env:          map[string]string{"GOOGLE_API_KEY": "AIza-vendor"},
			wantProvider: "google",
			wantKey:      "AIza-vendor",
		},
		{
			name:         "configured credential beats vendor variable",
			file:         "aiCodingAssistant:\n  cloudApiKey: sk-file\n",
			env:          map[string]string{"OPENAI_API_KEY": "sk-vendor"},
			wantProvider: "openai",
			wantKey:      "sk-file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			file := tt.file
			if file == "" {
				file = "logging:\n  level: info\n"
			}
			cfg, err := loadConfig(writeConfig(t, t.TempDir(), file))
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if cfg.Assistant.CloudProvider != tt.wantProvider || cfg.Assistant.CloudAPIKey != tt.wantKey {
				t.Errorf("got provider=%q key=%q, want %q/%q",
					cfg.Assistant.CloudProvider, cfg.Assistant.CloudAPIKey, tt.wantProvider, tt.wantKey)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Configuration {
		return &Configuration{
			Server: ServerConfig{Port: 8080},
			Assistant: domain.AssistantSettings{
				CloudProvider: "openai",
				LocalAPIURL:   "http://localhost:11434",
				MaxTokens:     2000,
				Temperature:   0.7,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Configuration)
		field  string
	}{
		{"bad port", func(c *Configuration) { c.Server.Port = 0 }, "server.port"},
		{"unknown provider", func(c *Configuration) { c.Assistant.CloudProvider = "cohere" }, "aiCodingAssistant.cloudProvider"},
		{"negative tokens", func(c *Configuration) { c.Assistant.MaxTokens = -1 }, "aiCodingAssistant.maxTokens"},
		{"hot temperature", func(c *Configuration) { c.Assistant.Temperature = 2.5 }, "aiCodingAssistant.temperature"},
		{"relative local url", func(c *Configuration) { c.Assistant.LocalAPIURL = "localhost:11434" }, "aiCodingAssistant.localApiUrl"},
		{"bad endpoint", func(c *Configuration) { c.Assistant.CloudEndpoint = "/v1/chat" }, "aiCodingAssistant.cloudEndpoint"},
		{"bad log level", func(c *Configuration) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad log format", func(c *Configuration) { c.Logging.Format = "xml" }, "logging.format"},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline config should be valid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if !IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !err.(*ValidationError).HasError(tt.field) {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
		})
	}
}

func TestValidate_MissingCredentialIsNotAnError(t *testing.T) {
	c := &Configuration{Server: ServerConfig{Port: 1}, Assistant: domain.AssistantSettings{CloudProvider: "openai"}}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	isolateEnv(t)

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !IsConfigError(err) {
		t.Errorf("missing explicit file: want ConfigError, got %v", err)
	}

	path := writeConfig(t, t.TempDir(), "aiCodingAssistant:\n  temperature: 9\n")
	if _, err := loadConfig(path); !IsValidationError(err) {
		t.Errorf("invalid file: want ValidationError, got %v", err)
	}
}

func TestStore_SetSwitchesBackend(t *testing.T) {
	isolateEnv(t)
	store, err := NewStore(writeConfig(t, t.TempDir(), "aiCodingAssistant:\n  cloudApiKey: sk-x\n"))
	if err != nil {
		t.Fatal(err)
	}

	var notified int32
	store.OnChange(func(c *Configuration) {
		if c.Assistant.UseLocal {
			atomic.AddInt32(&notified, 1)
		}
	})

	if store.Assistant().UseLocal {
		t.Fatal("expected cloud mode initially")
	}
	if err := store.Set("aiCodingAssistant.useLocal", true); err != nil {
		t.Fatal(err)
	}
	if !store.Assistant().UseLocal {
		t.Error("Set did not switch to local")
	}
	if atomic.LoadInt32(&notified) != 1 {
		t.Errorf("listener called %d times", notified)
	}

	if err := store.Set("aiCodingAssistant.temperature", 5.0); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := store.Assistant().Temperature; got != 0.7 {
		t.Errorf("invalid Set should roll back, temperature = %v", got)
	}
	if !store.Assistant().UseLocal {
		t.Error("rollback must not undo earlier overrides")
	}
}

func TestStore_Reload(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "aiCodingAssistant:\n  localModel: llama2\n")
	store, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}

	writeConfig(t, dir, "aiCodingAssistant:\n  localModel: phi\n")
	if err := store.Reload(); err != nil {
		t.Fatal(err)
	}
	if got := store.Assistant().LocalModel; got != "phi" {
		t.Errorf("localModel = %q after reload", got)
	}

	writeConfig(t, dir, "aiCodingAssistant:\n  cloudProvider: nope\n")
	if err := store.Reload(); err == nil {
		t.Fatal("expected reload of invalid file to fail")
	}
	if got := store.Assistant().LocalModel; got != "phi" {
		t.Errorf("invalid reload replaced snapshot, localModel = %q", got)
	}
	if cfg := store.Config(); cfg.Assistant.LocalModel != "phi" {
		t.Errorf("Config() = %+v", cfg.Assistant)
	}
}

func TestStore_WatchPicksUpFileEdits(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "aiCodingAssistant:\n  useLocal: false\n")
	store, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Watch(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tmp := filepath.Join(dir, "config.yaml.tmp")
	if err := os.WriteFile(tmp, []byte("aiCodingAssistant:\n  useLocal: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if store.Assistant().UseLocal {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("watcher did not apply the edited file")
}

func TestStore_WatchWithoutFileIsNoop(t *testing.T) {
	isolateEnv(t)
	store, err := NewStore("")
	if err != nil {
		t.Fatal(err)
	}
	if store.ConfigFileUsed() != "" {
		t.Skip("a config file exists on the search path")
	}
	if err := store.Watch(); err != nil {
		t.Errorf("Watch() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestStore_SetWhileFileChanges(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "aiCodingAssistant:\n  localModel: llama2\n")
	store, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Watch(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			tmp := filepath.Join(dir, "config.yaml.tmp")
			body := "aiCodingAssistant:\n  localModel: phi\n"
			if os.WriteFile(tmp, []byte(body), 0o644) == nil {
				_ = os.Rename(tmp, path)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
	for i := 0; i < 50; i++ {
		if err := store.Set("aiCodingAssistant.maxTokens", 100+i); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	<-done

	if got := store.Assistant().MaxTokens; got != 149 {
		t.Errorf("maxTokens = %d, want the last override 149", got)
	}
}

func TestStore_OnChangeListenersGetOwnSnapshot(t *testing.T) {
	isolateEnv(t)
	store, err := NewStore(writeConfig(t, t.TempDir(), "aiCodingAssistant:\n  localModel: llama2\n"))
	if err != nil {
		t.Fatal(err)
	}

	var seen []string
	store.OnChange(func(c *Configuration) {
		seen = append(seen, "first:"+c.Assistant.LocalModel)
		c.Assistant.LocalModel = "mutated"
	})
	store.OnChange(func(c *Configuration) {
		seen = append(seen, "second:"+c.Assistant.LocalModel)
	})

	if err := store.Set("aiCodingAssistant.localModel", "phi"); err != nil {
		t.Fatal(err)
	}
	want := []string{"first:phi", "second:phi"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Errorf("listeners saw %v, want %v", seen, want)
	}
	if got := store.Assistant().LocalModel; got != "phi" {
		t.Errorf("listener mutation leaked into the store, localModel = %q", got)
	}
}
