// Package ui prints the colored console output of the codepilot server.
package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// Version is printed in the banner.
const Version = "v0.2.0"

// PrintBanner displays the startup banner.
func PrintBanner() {
	fmt.Fprintln(Output)

	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	hiCyan := color.New(color.FgHiCyan)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite)
	dim := color.New(color.FgHiBlack)

	art := []struct{ left, right string }{
		{"██╗  ██╗██████╗ ███╗   ██╗", "  ██████╗ ██████╗ ██████╗ ███████╗██████╗ ██╗██╗      ██████╗ ████████╗"},
		{"██║  ██║██╔══██╗████╗  ██║", " ██╔════╝██╔═══██╗██╔══██╗██╔════╝██╔══██╗██║██║     ██╔═══██╗╚══██╔══╝"},
		{"███████║██████╔╝██╔██╗ ██║", " ██║     ██║   ██║██║  ██║█████╗  ██████╔╝██║██║     ██║   ██║   ██║   "},
		{"██╔══██║██╔═══╝ ██║╚██╗██║", " ██║     ██║   ██║██║  ██║██╔══╝  ██╔═══╝ ██║██║     ██║   ██║   ██║   "},
		{"██║  ██║██║     ██║ ╚████║", " ╚██████╗╚██████╔╝██████╔╝███████╗██║     ██║███████╗╚██████╔╝   ██║   "},
		{"╚═╝  ╚═╝╚═╝     ╚═╝  ╚═══╝", "  ╚═════╝ ╚═════╝ ╚═════╝ ╚══════╝╚═╝     ╚═╝╚══════╝ ╚═════╝    ╚═╝   "},
	}

	for _, row := range art {
		cyan.Fprint(Output, "  ")
		hiCyan.Fprint(Output, row.left)
		magenta.Fprintln(Output, row.right)
	}

	fmt.Fprintln(Output)
	cyan.Fprint(Output, "  ")
	yellow.Fprint(Output, "AI CODING ASSISTANT")
	dim.Fprint(Output, "  │  ")
	white.Fprint(Output, "cloud + local models")
	dim.Fprint(Output, "  │  ")
	white.Fprintln(Output, Version)
	fmt.Fprintln(Output)
}

// PrintMiniBanner displays a one-line banner for narrow terminals.
func PrintMiniBanner() {
	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)

	fmt.Fprintln(Output)
	magenta.Fprint(Output, "HPN CODEPILOT ")
	cyan.Fprintln(Output, Version)
	fmt.Fprintln(Output)
}
