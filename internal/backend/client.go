// Package backend performs the outbound calls to LLM backends.
// It resolves an adapter from the registry, sends exactly one request per ask
// and classifies every failure into ConfigurationError, HTTPError,
// UnreachableError or RequestError. Nothing here retries.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/hpn/hpn-codepilot/internal/security"
)

const (
	// CloudTimeout bounds a single cloud provider call.
	CloudTimeout = 30 * time.Second

	// LocalTimeout bounds a single local server call; local inference is slower.
	LocalTimeout = 60 * time.Second

	// ProbeTimeout bounds the reachability probe issued before validating a local server.
	ProbeTimeout = 5 * time.Second

	// CanaryQuestion is the fixed question used to validate a configuration.
	CanaryQuestion = "Hello, this is a test message."

	// maxErrorBody caps how much of a non-JSON error body is echoed back.
	maxErrorBody = 512
)

// Option is a functional option shared by CloudClient and LocalClient.
type Option func(*transport)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *transport) {
		t.httpClient = client
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(t *transport) {
		if timeout > 0 {
			t.timeout = timeout
			t.timeoutSet = true
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// transport owns the HTTP client and the failure classification.
type transport struct {
	httpClient *http.Client
	timeout    time.Duration
	timeoutSet bool
	logger     *slog.Logger
}

func newTransport(defaultTimeout time.Duration, opts []Option) transport {
	t := transport{
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&t)
	}

	var c http.Client
	if t.httpClient != nil {
		c = *t.httpClient
	}
	if c.Timeout == 0 || t.timeoutSet {
		c.Timeout = t.timeout
	}
	t.httpClient = &c
	return t
}

// Timeout returns the effective per-request timeout.
func (t *transport) Timeout() time.Duration {
	return t.httpClient.Timeout
}

// postJSON sends body to endpoint and runs extract over the decoded response.
func (t *transport) postJSON(
	ctx context.Context,
	provider, endpoint string,
	headers map[string]string,
	body any,
	extract func(any) string,
) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &RequestError{Provider: provider, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &RequestError{Provider: provider, Err: fmt.Errorf("failed to create http request: %w", err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	t.logger.Debug("sending backend request",
		slog.String("provider", provider),
		slog.String("endpoint", security.RedactURL(endpoint)),
		slog.Int("body_bytes", len(payload)),
	)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", t.classify(provider, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", t.classify(provider, endpoint, err)
	}

	t.logger.Debug("backend responded",
		slog.String("provider", provider),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody, resp.StatusCode),
		}
	}

	// A 2xx body that is not JSON degrades to the extractor's fallback.
	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		t.logger.Warn("undecodable backend response",
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
		decoded = nil
	}
	return extract(decoded), nil
}

// getJSON issues a bare GET and decodes the body into out. out may be nil.
func (t *transport) getJSON(ctx context.Context, provider, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &RequestError{Provider: provider, Err: fmt.Errorf("failed to create http request: %w", err)}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return t.classify(provider, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return t.classify(provider, endpoint, err)
	}
	if out == nil {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Provider: provider, StatusCode: resp.StatusCode, Message: errorMessage(body, resp.StatusCode)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RequestError{Provider: provider, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// classify maps a transport failure to UnreachableError or RequestError.
func (t *transport) classify(provider, endpoint string, err error) error {
	if isUnreachable(err) {
		return &UnreachableError{Provider: provider, URL: security.RedactURL(endpoint), Err: err}
	}
	return &RequestError{Provider: provider, Err: err}
}

// isUnreachable reports whether err means the request left but no response came back.
func isUnreachable(err error) bool {
	// *url.Error satisfies net.Error itself, so inspect what it wraps.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// errorMessage pulls the best-effort provider message out of an error body.
func errorMessage(body []byte, status int) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Error) > 0 {
			var detail struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(envelope.Error, &detail); err == nil && detail.Message != "" {
				return detail.Message
			}
			var text string
			if err := json.Unmarshal(envelope.Error, &text); err == nil && text != "" {
				return text
			}
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}

	if trimmed := strings.TrimSpace(string(body)); trimmed != "" && !strings.HasPrefix(trimmed, "{") {
		if len(trimmed) > maxErrorBody {
			trimmed = trimmed[:maxErrorBody]
		}
		return trimmed
	}
	return http.StatusText(status)
}
