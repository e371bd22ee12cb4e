package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hpn/hpn-codepilot/internal/adapter"
	"github.com/hpn/hpn-codepilot/internal/domain"
)

// CloudClient asks cloud chat-completion providers.
// It is safe for concurrent use; every call is independent.
type CloudClient struct {
	transport
	registry *adapter.Registry[domain.ProviderType]
}

// NewCloudClient creates a CloudClient with a 30s default timeout.
func NewCloudClient(opts ...Option) *CloudClient {
	return &CloudClient{
		transport: newTransport(CloudTimeout, opts),
		registry:  adapter.CloudRegistry(),
	}
}

// SupportedProviders returns the registered cloud provider keys.
func (c *CloudClient) SupportedProviders() []string {
	return c.registry.Keys()
}

// DefaultModel returns the built-in model of provider.
func (c *CloudClient) DefaultModel(provider domain.ProviderType) (string, bool) {
	a, ok := c.registry.Lookup(provider)
	if !ok {
		return "", false
	}
	return a.DefaultModel(), true
}

// resolve checks the selection and returns its adapter. It never touches the network.
func (c *CloudClient) resolve(sel domain.CloudSelection) (adapter.ProviderAdapter, error) {
	if sel.Credential == "" {
		return nil, &ConfigurationError{
			Provider: string(sel.Provider),
			Reason:   "API key not configured, set aiCodingAssistant.cloudApiKey",
		}
	}

	a, ok := c.registry.Lookup(sel.Provider)
	if !ok {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("unsupported provider %q, supported providers: %s",
				sel.Provider, strings.Join(c.SupportedProviders(), ", ")),
		}
	}

	if r, ok := a.(adapter.EndpointRequirer); ok && r.RequiresEndpoint() && sel.Endpoint == "" {
		return nil, &ConfigurationError{
			Provider: a.Key(),
			Reason:   "endpoint not configured, set aiCodingAssistant.cloudEndpoint to your deployment URL",
		}
	}
	return a, nil
}

// Ask sends question to the selected provider and returns the extracted answer.
func (c *CloudClient) Ask(ctx context.Context, question string, sel domain.CloudSelection, opts domain.RuntimeOptions) (string, error) {
	a, err := c.resolve(sel)
	if err != nil {
		return "", err
	}

	opts = opts.Normalize(a.DefaultModel())

	endpoint, err := cloudEndpoint(a, sel, opts.Model)
	if err != nil {
		return "", &RequestError{Provider: a.Key(), Err: err}
	}

	answer, err := c.postJSON(ctx, a.Key(), endpoint, a.Headers(sel.Credential), a.BuildRequest(question, opts), a.Extract)
	if err != nil {
		c.logger.Warn("cloud ask failed",
			slog.String("provider", a.Key()),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	return answer, nil
}

// ValidateConfiguration checks the selection and performs one canary ask.
// A failed ask is returned with its classification intact.
func (c *CloudClient) ValidateConfiguration(ctx context.Context, sel domain.CloudSelection, opts domain.RuntimeOptions) (bool, error) {
	if _, err := c.resolve(sel); err != nil {
		return false, err
	}
	if _, err := c.Ask(ctx, CanaryQuestion, sel, opts); err != nil {
		return false, fmt.Errorf("configuration validation failed: %w", err)
	}
	return true, nil
}

// cloudEndpoint builds the final URL, adding query-string credentials when the adapter uses them.
func cloudEndpoint(a adapter.ProviderAdapter, sel domain.CloudSelection, model string) (string, error) {
	endpoint := sel.Endpoint
	if endpoint == "" {
		endpoint = a.Endpoint(model)
	}

	qa, ok := a.(adapter.QueryAuthenticator)
	if !ok {
		return endpoint, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	for k, vs := range qa.AuthQuery(sel.Credential) {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
