package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hpn/hpn-codepilot/internal/adapter"
	"github.com/hpn/hpn-codepilot/internal/domain"
)

// LocalClient asks locally hosted inference servers.
// The server kind is inferred from the base URL on every call.
type LocalClient struct {
	transport
	registry *adapter.Registry[domain.LocalProviderType]
}

// NewLocalClient creates a LocalClient with a 60s default timeout.
func NewLocalClient(opts ...Option) *LocalClient {
	return &LocalClient{
		transport: newTransport(LocalTimeout, opts),
		registry:  adapter.LocalRegistry(),
	}
}

// SupportedProviders returns the registered local server kinds.
func (c *LocalClient) SupportedProviders() []string {
	return c.registry.Keys()
}

func (c *LocalClient) resolve(sel domain.LocalSelection) (adapter.ProviderAdapter, string, error) {
	base := strings.TrimSuffix(strings.TrimSpace(sel.BaseURL), "/")
	if base == "" {
		return nil, "", &ConfigurationError{Reason: "local API URL not configured, set aiCodingAssistant.localApiUrl"}
	}

	kind := adapter.DetectLocalProvider(base)
	a, ok := c.registry.Lookup(kind)
	if !ok {
		return nil, "", &ConfigurationError{
			Provider: string(kind),
			Reason: fmt.Sprintf("unsupported local provider, supported providers: %s",
				strings.Join(c.SupportedProviders(), ", ")),
		}
	}
	return a, base, nil
}

// Ask sends question to the local server and returns the extracted answer.
func (c *LocalClient) Ask(ctx context.Context, question string, sel domain.LocalSelection, opts domain.RuntimeOptions) (string, error) {
	a, base, err := c.resolve(sel)
	if err != nil {
		return "", err
	}

	if opts.Model == "" {
		opts.Model = sel.Model
	}
	opts = opts.Normalize(a.DefaultModel())

	endpoint := base + a.Endpoint(opts.Model)
	answer, err := c.postJSON(ctx, a.Key(), endpoint, a.Headers(""), a.BuildRequest(question, opts), a.Extract)
	if err != nil {
		if IsUnreachableError(err) {
			c.logger.Warn("local server unreachable, make sure your local model server is running",
				slog.String("provider", a.Key()),
				slog.String("url", base),
			)
		}
		return "", err
	}
	return answer, nil
}

// ValidateConfiguration probes the base URL, then performs one canary ask.
// The probe only fails on transport errors: many servers answer their root
// path with 404, which still proves something is listening.
func (c *LocalClient) ValidateConfiguration(ctx context.Context, sel domain.LocalSelection, opts domain.RuntimeOptions) (bool, error) {
	a, base, err := c.resolve(sel)
	if err != nil {
		return false, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	if err := c.getJSON(probeCtx, a.Key(), base, nil); err != nil {
		return false, fmt.Errorf("local API validation failed: %w", err)
	}

	if _, err := c.Ask(ctx, CanaryQuestion, sel, opts); err != nil {
		return false, fmt.Errorf("local API validation failed: %w", err)
	}
	return true, nil
}

// AvailableModels lists the models the local server reports. Servers without a
// listing endpoint, or failed listings, yield adapter.DefaultModels.
func (c *LocalClient) AvailableModels(ctx context.Context, sel domain.LocalSelection) []string {
	a, base, err := c.resolve(sel)
	if err != nil {
		return append([]string(nil), adapter.DefaultModels...)
	}

	var models []string
	switch domain.LocalProviderType(a.Key()) {
	case domain.LocalOllama:
		var tags struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		err = c.getJSON(ctx, a.Key(), base+"/api/tags", &tags)
		for _, m := range tags.Models {
			models = append(models, m.Name)
		}
	case domain.LocalLMStudio:
		var list struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		err = c.getJSON(ctx, a.Key(), base+"/v1/models", &list)
		for _, m := range list.Data {
			models = append(models, m.ID)
		}
	default:
		return append([]string(nil), adapter.DefaultModels...)
	}

	if err != nil {
		c.logger.Warn("could not fetch available models",
			slog.String("provider", a.Key()),
			slog.String("error", err.Error()),
		)
		return append([]string(nil), adapter.DefaultModels...)
	}
	if models == nil {
		models = []string{}
	}
	return models
}
