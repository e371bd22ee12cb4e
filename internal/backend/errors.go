package backend

import (
	"errors"
	"fmt"

	"github.com/hpn/hpn-codepilot/internal/security"
)

// ConfigurationError reports a missing credential, URL or unsupported provider.
// It is always returned before any network call is made.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error for %s: %s", e.Provider, e.Reason)
}

// HTTPError reports a non-2xx response from the backend.
type HTTPError struct {
	Provider   string
	StatusCode int
	// Message is the provider-reported error message, or the status text.
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// UnreachableError reports that no response arrived: connection refused,
// DNS failure or timeout.
type UnreachableError struct {
	Provider string
	URL      string
	Err      error
}

func (e *UnreachableError) Error() string {
	// The wrapped *url.Error repeats the raw URL, query credentials included.
	return fmt.Sprintf("network error: unable to reach %s at %s: %s", e.Provider, e.URL, security.Redact(e.Err.Error()))
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// RequestError reports any other failure while building or sending a request.
type RequestError struct {
	Provider string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error (%s): %s", e.Provider, security.Redact(e.Err.Error()))
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsConfigurationError checks if err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsHTTPError checks if err is or wraps an HTTPError.
func IsHTTPError(err error) bool {
	var target *HTTPError
	return errors.As(err, &target)
}

// IsUnreachableError checks if err is or wraps an UnreachableError.
func IsUnreachableError(err error) bool {
	var target *UnreachableError
	return errors.As(err, &target)
}

// IsRequestError checks if err is or wraps a RequestError.
func IsRequestError(err error) bool {
	var target *RequestError
	return errors.As(err, &target)
}
