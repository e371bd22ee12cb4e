package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

func sampleContext() domain.CodeContext {
	return domain.CodeContext{
		Imports:   []string{"import os", "from sys import argv"},
		Functions: []string{"def main():"},
		Classes:   []string{},
		FileType:  "python",
	}
}

func TestFence_RoundTrip(t *testing.T) {
	codes := []string{
		"print('hi')",
		"",
		"a\n",
		"\n\nindented\n\t\n",
		"x = \"```\"\nwrapped = '````'",
		"```python\nnested()\n```",
		"line\r\nwith crlf\r\n",
		"`single` and ``double``",
	}
	for _, code := range codes {
		got, ok := ExtractCodeBlock(Fence("python", code))
		if !ok {
			t.Fatalf("no block found for %q", code)
		}
		if got != code {
			t.Errorf("round trip mismatch\n got: %q\nwant: %q", got, code)
		}
	}
}

func TestFence_Length(t *testing.T) {
	tests := []struct {
		code   string
		marker string
	}{
		{"plain", "```"},
		{"one ` tick", "```"},
		{"three ``` ticks", "````"},
		{"five ````` ticks", "``````"},
	}
	for _, tt := range tests {
		got := Fence("go", tt.code)
		if !strings.HasPrefix(got, tt.marker+"go\n") || !strings.HasSuffix(got, "\n"+tt.marker) {
			t.Errorf("Fence(%q) = %q, want marker %q", tt.code, got, tt.marker)
		}
	}
}

func TestBuilder_EveryOperationRoundTrips(t *testing.T) {
	b := NewBuilder()
	code := "def f():\n    return \"```\"\n"
	ctx := sampleContext()
	line := 2
	issues := []domain.CodeIssue{{Severity: domain.SeverityWarning, Message: "Bare except", Line: &line}}

	prompts := map[Operation]string{
		OpExplain:  b.Explain(code, "python", ctx),
		OpRefactor: b.Refactor(code, "python", ctx, "Improve Readability"),
		OpFix:      b.Fix(code, "python", ctx, issues),
		OpOptimize: b.Optimize(code, "python", ctx),
		OpDocument: b.Document(code, "python", ctx),
		OpTest:     b.Test(code, "python", ctx),
		OpSecurity: b.Security(code, "python", ctx),
		OpMigrate:  b.Migrate(code, "python", "go"),
		OpReview:   b.Review(code, "python", ctx),
	}
	for op, p := range prompts {
		got, ok := ExtractCodeBlock(p)
		if !ok || got != code {
			t.Errorf("%s: embedded code = %q, ok=%v", op, got, ok)
		}
	}
}

func TestBuilder_Content(t *testing.T) {
	b := NewBuilder()
	ctx := sampleContext()

	tests := []struct {
		name    string
		prompt  string
		want    []string
		notWant []string
	}{
		{
			name:   "explain",
			prompt: b.Explain("x = 1", "python", ctx),
			want: []string{
				"Please explain the following python code in detail:",
				"- Imports: import os, from sys import argv",
				"- Functions in file: 1",
				"- Classes in file: 0",
				"Make your explanation beginner-friendly but comprehensive.",
			},
		},
		{
			name:   "refactor lowercases the goal in the heading only",
			prompt: b.Refactor("x = 1", "python", ctx, "Improve Readability"),
			want: []string{
				"refactor the following python code to improve readability:",
				"- Focus on: Improve Readability",
				"- Functions in file: def main():",
				"- Classes in file: None",
				"apply it directly to the editor",
			},
		},
		{
			name:    "generate has no code block",
			prompt:  b.Generate("a function that reverses a string", "go"),
			want:    []string{"Description: a function that reverses a string", "Follow go naming conventions"},
			notWant: []string{"```"},
		},
		{
			name:   "fix without issues",
			prompt: b.Fix("x", "javascript", domain.CodeContext{FileType: "javascript"}, nil),
			want: []string{
				"- Imports: None",
				"No specific issues detected, but please review for general improvements",
			},
		},
		{
			name:   "migrate",
			prompt: b.Migrate("print(1)", "python", "rust"),
			want:   []string{"migrate the following python code to rust:", "```python\n", "idiomatic rust"},
		},
		{
			name:   "security",
			prompt: b.Security("eval(x)", "python", ctx),
			want:   []string{"Follow python security best practices", "Consider common attack vectors"},
		},
		{
			name:   "review",
			prompt: b.Review("x", "java", domain.CodeContext{FileType: "java"}),
			want:   []string{"comprehensive code review", "Assess adherence to java best practices"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, w := range tt.want {
				if !strings.Contains(tt.prompt, w) {
					t.Errorf("prompt missing %q:\n%s", w, tt.prompt)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(tt.prompt, nw) {
					t.Errorf("prompt should not contain %q:\n%s", nw, tt.prompt)
				}
			}
		})
	}
}

func TestBuilder_FixListsIssues(t *testing.T) {
	one, three := 1, 3
	p := NewBuilder().Fix("code", "javascript", domain.CodeContext{}, []domain.CodeIssue{
		{Severity: domain.SeverityWarning, Message: "Consider using === for strict equality comparison", Line: &one},
		{Severity: domain.SeverityInfo, Message: "Consider removing console.log statements in production code", Line: &three},
		{Severity: domain.SeverityError, Message: "no line"},
	})
	want := "Issues found:\n" +
		"- WARNING: Consider using === for strict equality comparison (line 1)\n" +
		"- INFO: Consider removing console.log statements in production code (line 3)\n" +
		"- ERROR: no line\n"
	if !strings.Contains(p, want) {
		t.Errorf("issue block not rendered as expected:\n%s", p)
	}
}

func TestBuilder_Deterministic(t *testing.T) {
	b := NewBuilder()
	if b.Review("x", "go", sampleContext()) != b.Review("x", "go", sampleContext()) {
		t.Error("same input rendered differently")
	}
}

func TestBuild(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"explain", Request{Operation: OpExplain, Code: "x", Language: "go"}, nil},
		{"unknown op", Request{Operation: "dance", Code: "x", Language: "go"}, nil},
		{"missing language", Request{Operation: OpExplain, Code: "x"}, ErrMissingField},
		{"missing code", Request{Operation: OpReview, Language: "go"}, ErrMissingField},
		{"generate needs description", Request{Operation: OpGenerate, Language: "go"}, ErrMissingField},
		{"generate without code", Request{Operation: OpGenerate, Language: "go", Description: "hello world"}, nil},
		{"refactor needs type", Request{Operation: OpRefactor, Code: "x", Language: "go"}, ErrMissingField},
		{"migrate needs target", Request{Operation: OpMigrate, Code: "x", Language: "go"}, ErrMissingField},
		{"migrate", Request{Operation: OpMigrate, Code: "x", Language: "go", TargetLanguage: "rust"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build(tt.req)
			switch {
			case tt.name == "unknown op":
				if err == nil {
					t.Fatal("expected error for unknown operation")
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got == "" {
					t.Fatal("empty prompt")
				}
			}
		})
	}
}

func TestParseOperation(t *testing.T) {
	for _, op := range Operations {
		got, ok := ParseOperation(" " + strings.ToUpper(string(op)) + " ")
		if !ok || got != op {
			t.Errorf("ParseOperation(%q) = %q, %v", op, got, ok)
		}
	}
	if _, ok := ParseOperation("nope"); ok {
		t.Error("ParseOperation accepted an unknown operation")
	}
	if len(Operations) != len(templateText) {
		t.Errorf("Operations has %d entries, templates %d", len(Operations), len(templateText))
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{"fenced with prose", "Here you go:\n```go\nfunc main() {}\n```\nEnjoy.", "func main() {}"},
		{"no fence", "  func main() {}\n", "func main() {}"},
		{"unterminated", "```js\nconst a = 1;\n", "const a = 1;"},
		{"longer closing fence", "```\nx\n`````", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.answer); got != tt.want {
				t.Errorf("StripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}
