// Package prompt renders the operation prompts sent to the assistant.
// Rendering is pure: the same request always yields the same text.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

// Operation names a prompt kind.
type Operation string

const (
	OpExplain  Operation = "explain"
	OpRefactor Operation = "refactor"
	OpGenerate Operation = "generate"
	OpFix      Operation = "fix"
	OpOptimize Operation = "optimize"
	OpDocument Operation = "document"
	OpTest     Operation = "test"
	OpSecurity Operation = "security"
	OpMigrate  Operation = "migrate"
	OpReview   Operation = "review"
)

// Operations lists every operation in menu order.
var Operations = []Operation{
	OpExplain, OpRefactor, OpGenerate, OpFix, OpOptimize,
	OpDocument, OpTest, OpSecurity, OpMigrate, OpReview,
}

// ParseOperation converts s to an Operation, case-insensitively.
func ParseOperation(s string) (Operation, bool) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	_, ok := templateText[op]
	return op, ok
}

// AppliesToEditor reports whether the answer is code meant to replace or be
// inserted into the buffer, rather than prose.
func (op Operation) AppliesToEditor() bool {
	switch op {
	case OpRefactor, OpGenerate, OpFix:
		return true
	}
	return false
}

// ErrMissingField is returned by Build when a required request field is empty.
var ErrMissingField = errors.New("missing required field")

// Request carries everything any operation may need.
type Request struct {
	Operation      Operation
	Code           string
	Language       string
	Context        domain.CodeContext
	Issues         []domain.CodeIssue
	Description    string
	RefactorType   string
	TargetLanguage string
}

var funcs = template.FuncMap{
	"fence": Fence,
	"lower": strings.ToLower,
	"orNone": func(items []string) string {
		if len(items) == 0 {
			return "None"
		}
		return strings.Join(items, ", ")
	},
	"issues": formatIssues,
}

var templates = func() map[Operation]*template.Template {
	out := make(map[Operation]*template.Template, len(templateText))
	for op, text := range templateText {
		out[op] = template.Must(template.New(string(op)).Funcs(funcs).Parse(text))
	}
	return out
}()

func formatIssues(issues []domain.CodeIssue) string {
	if len(issues) == 0 {
		return "No specific issues detected, but please review for general improvements"
	}
	lines := make([]string, 0, len(issues))
	for _, is := range issues {
		line := fmt.Sprintf("- %s: %s", strings.ToUpper(string(is.Severity)), is.Message)
		if is.Line != nil && *is.Line > 0 {
			line += fmt.Sprintf(" (line %d)", *is.Line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Builder renders prompts. It holds no state; the zero value is ready to use.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder { return &Builder{} }

// Build validates req and renders the prompt for req.Operation.
func (b *Builder) Build(req Request) (string, error) {
	if _, ok := templates[req.Operation]; !ok {
		return "", fmt.Errorf("unknown operation %q", req.Operation)
	}
	if req.Language == "" {
		return "", fmt.Errorf("%w: language", ErrMissingField)
	}
	switch req.Operation {
	case OpGenerate:
		if strings.TrimSpace(req.Description) == "" {
			return "", fmt.Errorf("%w: description", ErrMissingField)
		}
	case OpRefactor:
		if strings.TrimSpace(req.RefactorType) == "" {
			return "", fmt.Errorf("%w: refactorType", ErrMissingField)
		}
	case OpMigrate:
		if strings.TrimSpace(req.TargetLanguage) == "" {
			return "", fmt.Errorf("%w: targetLanguage", ErrMissingField)
		}
	default:
		if req.Code == "" {
			return "", fmt.Errorf("%w: code", ErrMissingField)
		}
	}
	return b.render(req), nil
}

func (b *Builder) render(req Request) string {
	var sb strings.Builder
	// Templates are parsed at init and only see the Request fields above.
	if err := templates[req.Operation].Execute(&sb, req); err != nil {
		panic(fmt.Sprintf("prompt: render %s: %v", req.Operation, err))
	}
	return sb.String()
}

// Explain renders a prompt asking for a plain-language walkthrough of code.
func (b *Builder) Explain(code, language string, ctx domain.CodeContext) string {
	return b.render(Request{Operation: OpExplain, Code: code, Language: language, Context: ctx})
}

// Refactor renders a refactoring prompt; refactorType narrows the goal (e.g. "extract function").
func (b *Builder) Refactor(code, language string, ctx domain.CodeContext, refactorType string) string {
	return b.render(Request{Operation: OpRefactor, Code: code, Language: language, Context: ctx, RefactorType: refactorType})
}

// Generate renders a prompt that writes new code from a description.
func (b *Builder) Generate(description, language string) string {
	return b.render(Request{Operation: OpGenerate, Description: description, Language: language})
}

// Fix renders a prompt that lists issues and asks for corrected code.
func (b *Builder) Fix(code, language string, ctx domain.CodeContext, issues []domain.CodeIssue) string {
	return b.render(Request{Operation: OpFix, Code: code, Language: language, Context: ctx, Issues: issues})
}

// Optimize renders a performance-focused rewrite prompt.
func (b *Builder) Optimize(code, language string, ctx domain.CodeContext) string {
	return b.render(Request{Operation: OpOptimize, Code: code, Language: language, Context: ctx})
}

// Document renders a prompt that adds doc comments in the language's convention.
func (b *Builder) Document(code, language string, ctx domain.CodeContext) string {
	return b.render(Request{Operation: OpDocument, Code: code, Language: language, Context: ctx})
}

// Test renders a prompt that writes unit tests for code.
func (b *Builder) Test(code, language string, ctx domain.CodeContext) string {
	return b.render(Request{Operation: OpTest, Code: code, Language: language, Context: ctx})
}

// Security renders a vulnerability review prompt.
func (b *Builder) Security(code, language string, ctx domain.CodeContext) string {
	return b.render(Request{Operation: OpSecurity, Code: code, Language: language, Context: ctx})
}

// Migrate renders a translation prompt from sourceLanguage to targetLanguage.
func (b *Builder) Migrate(code, sourceLanguage, targetLanguage string) string {
	return b.render(Request{Operation: OpMigrate, Code: code, Language: sourceLanguage, TargetLanguage: targetLanguage})
}

// Review renders a general code review prompt.
func (b *Builder) Review(code, language string, ctx domain.CodeContext) string {
	return b.render(Request{Operation: OpReview, Code: code, Language: language, Context: ctx})
}
