package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevNoColor := Output, color.NoColor
	Output, color.NoColor = &buf, true
	t.Cleanup(func() { Output, color.NoColor = prevOut, prevNoColor })
	return &buf
}

func TestPrintRequest(t *testing.T) {
	buf := captureOutput(t)

	PrintRequest("POST", "/v1/assist/refactor", 502, 1500*time.Millisecond, "Cloud (openai)")

	out := buf.String()
	for _, want := range []string{" POST ", "/v1/assist/refactor", " 502 ", "1500ms", "Cloud (openai)"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintRequest output %q missing %q", out, want)
		}
	}
}

func TestPrintStartupInfo(t *testing.T) {
	buf := captureOutput(t)

	PrintStartupInfo(StartupInfo{
		Address:    "127.0.0.1:8080",
		Provider:   "Local (codellama)",
		Credential: "sk-...wxyz",
	})

	out := buf.String()
	for _, want := range []string{"http://127.0.0.1:8080", "Local (codellama)", "key:sk-...wxyz", "defaults + environment", "/v1/chat"} {
		if !strings.Contains(out, want) {
			t.Errorf("startup output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path string
		max  int
		want string
	}{
		{"/health", 30, "/health"},
		{"/v1/assist/a-very-long-operation-name", 20, "/v1/assist/a-very..."},
	}
	for _, tt := range tests {
		if got := truncatePath(tt.path, tt.max); got != tt.want {
			t.Errorf("truncatePath(%q, %d) = %q, want %q", tt.path, tt.max, got, tt.want)
		}
	}
}
