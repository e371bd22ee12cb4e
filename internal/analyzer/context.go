package analyzer

import (
	"regexp"
	"strings"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

// ProjectStructurePlaceholder is reported when no workspace root is configured.
const ProjectStructurePlaceholder = "Project structure analysis not implemented"

// Document is the slice of an editor document the analyzer needs.
type Document interface {
	Text() string
	LanguageID() string
	Path() string
}

// TextDocument is an in-memory Document.
type TextDocument struct {
	Content  string `json:"content"`
	Language string `json:"languageId"`
	FilePath string `json:"path,omitempty"`
}

func (d TextDocument) Text() string       { return d.Content }
func (d TextDocument) LanguageID() string { return d.Language }
func (d TextDocument) Path() string       { return d.FilePath }

// extractors picks declaration lines for one language. Each func sees a trimmed line.
type extractors struct {
	imports   func(string) bool
	functions func(string) bool
	classes   func(string) bool
	variables func(string) bool
}

func hasAnyPrefix(prefixes ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}

var (
	jsFunction = regexp.MustCompile(`^(function\s+\w+|const\s+\w+\s*=\s*\(|let\s+\w+\s*=\s*\(|var\s+\w+\s*=\s*\()`)
	jsVariable = regexp.MustCompile(`^(const|let|var)\s+\w+`)
	pyVariable = regexp.MustCompile(`^\w+\s*=`)

	// Java and C# share the "type name(" / "type name =" shapes.
	typedMethod   = regexp.MustCompile(`^\w+\s+\w+\s*\(`)
	typedVariable = regexp.MustCompile(`^\w+\s+\w+\s*=`)
)

var jsExtractors = extractors{
	imports:   hasAnyPrefix("import ", "require("),
	functions: jsFunction.MatchString,
	classes:   hasAnyPrefix("class "),
	variables: jsVariable.MatchString,
}

var languageExtractors = map[string]extractors{
	"javascript": jsExtractors,
	"typescript": jsExtractors,
	"python": {
		imports:   hasAnyPrefix("import ", "from "),
		functions: hasAnyPrefix("def "),
		classes:   hasAnyPrefix("class "),
		variables: pyVariable.MatchString,
	},
	"java": {
		imports:   hasAnyPrefix("import "),
		functions: typedMethod.MatchString,
		classes:   hasAnyPrefix("public class ", "class "),
		variables: typedVariable.MatchString,
	},
	"csharp": {
		imports:   hasAnyPrefix("using "),
		functions: typedMethod.MatchString,
		classes:   hasAnyPrefix("public class ", "class "),
		variables: typedVariable.MatchString,
	},
}

// CodeContext summarizes the whole document. The selection does not narrow
// extraction; it is accepted so callers can pass editor state through unchanged.
func (a *Analyzer) CodeContext(doc Document, _ domain.Range) domain.CodeContext {
	language := doc.LanguageID()
	ctx := domain.CodeContext{
		Imports:          []string{},
		Functions:        []string{},
		Classes:          []string{},
		Variables:        []string{},
		FileType:         language,
		ProjectStructure: a.ProjectStructure(),
	}

	ex, ok := languageExtractors[language]
	if !ok {
		return ctx
	}

	for _, line := range strings.Split(doc.Text(), "\n") {
		trimmed := strings.TrimSpace(line)
		if ex.imports(trimmed) {
			ctx.Imports = append(ctx.Imports, trimmed)
		}
		if ex.functions(trimmed) {
			ctx.Functions = append(ctx.Functions, trimmed)
		}
		if ex.classes(trimmed) {
			ctx.Classes = append(ctx.Classes, trimmed)
		}
		if ex.variables(trimmed) {
			ctx.Variables = append(ctx.Variables, trimmed)
		}
	}
	return ctx
}
