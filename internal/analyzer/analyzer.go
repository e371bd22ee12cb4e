// Package analyzer holds the lexical code heuristics: line-level style checks
// and the import/function/class/variable extractors used as prompt context.
// Nothing here parses; every rule is a single-line pattern match.
package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

// MaxLineLength is the longest line accepted without a warning.
const MaxLineLength = 120

// Analyzer runs the heuristics. The zero value is not usable; call New.
type Analyzer struct {
	workspaceRoot string
	treeDepth     int
	treeEntries   int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWorkspaceRoot enables the project structure listing for CodeContext.
func WithWorkspaceRoot(root string) Option {
	return func(a *Analyzer) {
		a.workspaceRoot = root
	}
}

// WithTreeLimits bounds the project structure listing.
func WithTreeLimits(depth, entries int) Option {
	return func(a *Analyzer) {
		if depth > 0 {
			a.treeDepth = depth
		}
		if entries > 0 {
			a.treeEntries = entries
		}
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		treeDepth:   2,
		treeEntries: 200,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// lineCheck flags a single line.
type lineCheck struct {
	severity domain.Severity
	message  string
	match    func(line string) bool
}

// uncommented matches lines containing needle and no comment marker.
func uncommented(needle, marker string) func(string) bool {
	return func(line string) bool {
		return strings.Contains(line, needle) && !strings.Contains(line, marker)
	}
}

var varDecl = regexp.MustCompile(`\bvar\s+\w+`)

var genericChecks = []lineCheck{
	{
		severity: domain.SeverityWarning,
		message:  "Empty line contains whitespace",
		match: func(line string) bool {
			return line != "" && strings.TrimSpace(line) == ""
		},
	},
	{
		severity: domain.SeverityWarning,
		message:  "Line is too long (consider breaking it)",
		match: func(line string) bool {
			return utf8.RuneCountInString(line) > MaxLineLength
		},
	},
}

var jsChecks = []lineCheck{
	{
		severity: domain.SeverityInfo,
		message:  "Consider removing console.log statements in production code",
		match:    uncommented("console.log(", "//"),
	},
	{
		severity: domain.SeverityWarning,
		message:  "Consider using let or const instead of var",
		match:    varDecl.MatchString,
	},
	{
		severity: domain.SeverityWarning,
		message:  "Consider using === for strict equality comparison",
		match:    uncommented(" == ", "//"),
	},
}

var languageChecks = map[string][]lineCheck{
	"javascript": jsChecks,
	"typescript": jsChecks,
	"python": {
		{
			severity: domain.SeverityInfo,
			message:  "Consider using logging instead of print statements",
			match:    uncommented("print(", "#"),
		},
		{
			severity: domain.SeverityWarning,
			message:  "Bare except clause catches all exceptions - consider being more specific",
			match: func(line string) bool {
				return strings.HasPrefix(strings.TrimSpace(line), "except:")
			},
		},
	},
	"java": {
		{
			severity: domain.SeverityInfo,
			message:  "Consider using a proper logging framework instead of System.out.println",
			match:    uncommented("System.out.println(", "//"),
		},
	},
	"csharp": {
		{
			severity: domain.SeverityInfo,
			message:  "Consider using a proper logging framework instead of Console.WriteLine",
			match:    uncommented("Console.WriteLine(", "//"),
		},
	},
}

// SupportedLanguages returns the language ids with dedicated rules.
func SupportedLanguages() []string {
	return []string{"csharp", "java", "javascript", "python", "typescript"}
}

// AnalyzeCode runs the generic checks and the rules for language over every line.
// Issues are ordered by line, then by check. Unknown languages get generic checks only.
func (a *Analyzer) AnalyzeCode(code, language string) []domain.CodeIssue {
	checks := append(append([]lineCheck(nil), genericChecks...), languageChecks[language]...)

	issues := []domain.CodeIssue{}
	for i, line := range strings.Split(code, "\n") {
		for _, c := range checks {
			if !c.match(line) {
				continue
			}
			n := i + 1
			issues = append(issues, domain.CodeIssue{
				Severity: c.severity,
				Message:  c.message,
				Line:     &n,
			})
		}
	}
	return issues
}
