package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// Output receives all console output. Tests may swap it.
var Output io.Writer = color.Output

var (
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)
	debugBadge   = color.New(color.FgMagenta)

	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)

	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// StartupInfo is what the server prints before it starts listening.
type StartupInfo struct {
	Address    string
	Provider   string // e.g. "Cloud (openai)"
	Model      string
	Server     string // local server kind, e.g. "Ollama"
	Credential string // already masked
	ConfigFile string
}

// PrintStartupInfo prints where the server listens and which backend answers.
func PrintStartupInfo(info StartupInfo) {
	fmt.Fprintln(Output)
	infoBadge.Fprint(Output, "[CODEPILOT]")
	fmt.Fprint(Output, " Server starting on ")
	neonBlue.Fprintf(Output, "http://%s\n", info.Address)

	infoBadge.Fprint(Output, "[CODEPILOT]")
	fmt.Fprint(Output, " Backend: ")
	accentText.Fprint(Output, info.Provider)
	if info.Server != "" {
		mutedText.Fprintf(Output, " server:%s", info.Server)
	}
	if info.Model != "" {
		mutedText.Fprintf(Output, " model:%s", info.Model)
	}
	if info.Credential != "" {
		mutedText.Fprintf(Output, " key:%s", info.Credential)
	}
	fmt.Fprintln(Output)

	infoBadge.Fprint(Output, "[CODEPILOT]")
	fmt.Fprint(Output, " Config: ")
	if info.ConfigFile != "" {
		successText.Fprintln(Output, info.ConfigFile)
	} else {
		warningText.Fprintln(Output, "defaults + environment")
	}

	fmt.Fprintln(Output)
	printEndpoints()
}

var endpoints = []struct {
	method, path, desc string
}{
	{"POST", "/v1/ask", "Ask a free-form question"},
	{"POST", "/v1/assist/:operation", "explain, refactor, fix, ..."},
	{"POST", "/v1/analyze", "Style issues + code context"},
	{"POST", "/v1/validate", "Probe the active backend"},
	{"GET", "/v1/provider", "Active backend"},
	{"GET", "/v1/providers", "Supported providers"},
	{"GET", "/v1/models", "Available models"},
	{"GET", "/v1/chat", "Chat (WebSocket)"},
	{"GET", "/health", "Health check"},
}

func printEndpoints() {
	mutedText.Fprintln(Output, "  ┌──────────────────────────────────────────────────────────────┐")
	for _, ep := range endpoints {
		mutedText.Fprint(Output, "  │ ")
		if ep.method == "POST" {
			methodPOST.Fprint(Output, " POST ")
		} else {
			methodGET.Fprint(Output, " GET  ")
		}
		fmt.Fprintf(Output, " %-22s ", ep.path)
		mutedText.Fprintf(Output, " %-30s", ep.desc)
		mutedText.Fprintln(Output, "│")
	}
	mutedText.Fprintln(Output, "  └──────────────────────────────────────────────────────────────┘")
	fmt.Fprintln(Output)
}

// PrintBackendChange announces that a configuration change switched the backend.
func PrintBackendChange(from, to string) {
	fmt.Fprint(Output, "⚡ ")
	warningBadge.Fprint(Output, "[SWITCHING]")
	fmt.Fprint(Output, " ")
	mutedText.Fprint(Output, from)
	warningText.Fprint(Output, " → ")
	accentText.Fprintln(Output, to)
}

// PrintRequest prints one colored line per request.
func PrintRequest(method, path string, status int, latency time.Duration, provider string) {
	mutedText.Fprintf(Output, "%s ", time.Now().Format("15:04:05"))

	printMethodBadge(method)
	fmt.Fprint(Output, " ")

	fmt.Fprintf(Output, "%-30s ", truncatePath(path, 30))

	printStatusBadge(status)
	fmt.Fprint(Output, " ")

	printLatency(latency)

	if provider != "" {
		mutedText.Fprintf(Output, " %s", provider)
	}
	fmt.Fprintln(Output)
}

func printMethodBadge(method string) {
	switch method {
	case "POST":
		methodPOST.Fprintf(Output, " %s ", method)
	case "GET":
		methodGET.Fprintf(Output, " %s ", method)
	default:
		debugBadge.Fprintf(Output, " %s ", method)
	}
}

func printStatusBadge(status int) {
	switch {
	case status >= 200 && status < 300:
		successBadge.Fprintf(Output, " %d ", status)
	case status >= 300 && status < 400:
		infoBadge.Fprintf(Output, " %d ", status)
	case status >= 400 && status < 500:
		warningBadge.Fprintf(Output, " %d ", status)
	default:
		errorBadge.Fprintf(Output, " %d ", status)
	}
}

// printLatency colors by provider round-trip: green under 2s, yellow under 10s.
func printLatency(latency time.Duration) {
	ms := latency.Milliseconds()
	s := fmt.Sprintf("%6dms", ms)

	switch {
	case latency < 2*time.Second:
		successText.Fprint(Output, s)
	case latency < 10*time.Second:
		warningText.Fprint(Output, s)
	default:
		errorText.Fprint(Output, s)
	}
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return path[:maxLen-3] + "..."
}

// PrintShutdown prints the shutdown notice.
func PrintShutdown() {
	fmt.Fprintln(Output)
	warningBadge.Fprint(Output, "[SHUTDOWN]")
	warningText.Fprintln(Output, " Graceful shutdown initiated...")
}

// PrintGoodbye prints the final line.
func PrintGoodbye() {
	successBadge.Fprint(Output, " OK ")
	fmt.Fprint(Output, " ")
	successText.Fprintln(Output, "Server stopped.")
}
