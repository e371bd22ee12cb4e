// Package security keeps provider credentials out of logs, errors and console output.
package security

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces every credential that is found.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns matches credential formats of the supported providers.
// Order matters: specific prefixes run before the generic fallbacks.
var sensitivePatterns = []*regexp.Regexp{
	// Anthropic: sk-ant-...
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{16,}`),
	// OpenAI: sk-... and sk-proj-...
	regexp.MustCompile(`sk-(?:proj-)?[a-zA-Z0-9_-]{20,}`),
	// Google AI Studio: AIza...
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{30,}`),
	// Authorization header values
	regexp.MustCompile(`(?i)Bearer\s+[a-zA-Z0-9._~+/=-]{8,}`),
	// api-key / x-api-key header values, as printed by %v of an http.Header
	regexp.MustCompile(`(?i)(x-api-key|api-key)(["']?\s*[:=]\s*\[?["']?)[a-zA-Z0-9_-]{8,}`),
	// Query-string credentials
	regexp.MustCompile(`([?&](?:key|api_key|apikey|token)=)[^&\s"']+`),
	// Long opaque tokens
	regexp.MustCompile(`[a-zA-Z0-9_-]{40,}`),
}

// Redact scans a string for credentials and replaces them.
func Redact(s string) string {
	for _, pattern := range sensitivePatterns {
		if pattern.NumSubexp() > 0 {
			s = pattern.ReplaceAllString(s, "${1}${2}"+RedactedPlaceholder)
			continue
		}
		s = pattern.ReplaceAllString(s, RedactedPlaceholder)
	}
	return s
}

// RedactURL masks credential query parameters while keeping the rest of the URL readable.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return Redact(raw)
	}
	q := u.Query()
	for name := range q {
		if isSensitiveKey(strings.ToLower(name)) {
			q[name] = []string{RedactedPlaceholder}
		}
	}
	// Encode escapes the brackets; keep the placeholder legible.
	u.RawQuery = strings.ReplaceAll(q.Encode(), url.QueryEscape(RedactedPlaceholder), RedactedPlaceholder)
	return u.String()
}

// MaskCredential shows just enough of a credential to recognize it, e.g. "sk-...wxyz".
func MaskCredential(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 8:
		return "****"
	}
	prefix := ""
	for _, p := range []string{"sk-ant-", "sk-proj-", "sk-", "AIza"} {
		if strings.HasPrefix(s, p) {
			prefix = p
			break
		}
	}
	return prefix + "..." + s[len(s)-4:]
}

// RedactedHandler wraps an slog.Handler and redacts sensitive data from log records.
type RedactedHandler struct {
	inner slog.Handler
}

// NewRedactedHandler wraps inner so that no record reaches it unredacted.
func NewRedactedHandler(inner slog.Handler) *RedactedHandler {
	return &RedactedHandler{inner: inner}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the message and every attribute, then forwards the record.
func (h *RedactedHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, Redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *RedactedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactedHandler{inner: h.inner.WithAttrs(redacted)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactedHandler) WithGroup(name string) slog.Handler {
	return &RedactedHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(strings.ToLower(a.Key)) {
		return slog.String(a.Key, RedactedPlaceholder)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, Redact(v.String()))
	case slog.KindGroup:
		group := v.Group()
		redacted := make([]any, len(group))
		for i, ga := range group {
			redacted[i] = redactAttr(ga)
		}
		return slog.Group(a.Key, redacted...)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return slog.String(a.Key, Redact(x.Error()))
		case []string:
			out := make([]string, len(x))
			for i, s := range x {
				out[i] = Redact(s)
			}
			return slog.Any(a.Key, out)
		}
	}
	return a
}

var sensitiveKeys = []string{
	"authorization",
	"api_key",
	"apikey",
	"api-key",
	"secret",
	"password",
	"token",
	"bearer",
	"credential",
}

// isSensitiveKey reports whether an attribute or parameter name holds a secret.
func isSensitiveKey(key string) bool {
	if key == "key" {
		return true
	}
	for _, k := range sensitiveKeys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}
