package prompt

import (
	"strings"
)

const minFence = 3

// longestBacktickRun returns the longest run of consecutive backticks in s.
func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}

// Fence wraps code in a fenced block tagged with language. The fence is longer
// than any backtick run inside code, so ExtractCodeBlock returns code unchanged.
func Fence(language, code string) string {
	n := longestBacktickRun(code) + 1
	if n < minFence {
		n = minFence
	}
	marker := strings.Repeat("`", n)

	var b strings.Builder
	b.Grow(len(code) + len(language) + 2*n + 2)
	b.WriteString(marker)
	b.WriteString(language)
	b.WriteByte('\n')
	b.WriteString(code)
	b.WriteByte('\n')
	b.WriteString(marker)
	return b.String()
}

// openingFence returns the backtick count of a fence-opening line, or 0.
func openingFence(line string) int {
	n := 0
	for n < len(line) && line[n] == '`' {
		n++
	}
	if n < minFence {
		return 0
	}
	return n
}

// closesFence reports whether line is a bare run of at least n backticks.
func closesFence(line string, n int) bool {
	trimmed := strings.TrimRight(line, " \t\r")
	return len(trimmed) >= n && strings.Trim(trimmed, "`") == ""
}

// ExtractCodeBlock returns the body of the first fenced block in text.
// An unterminated block runs to the end of text.
func ExtractCodeBlock(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		n := openingFence(strings.TrimLeft(line, " "))
		if n == 0 {
			continue
		}
		body := lines[i+1:]
		for j, l := range body {
			if closesFence(l, n) {
				return strings.Join(body[:j], "\n"), true
			}
		}
		return strings.Join(body, "\n"), true
	}
	return "", false
}

// StripFences returns the code of the first fenced block in a model answer,
// or the trimmed answer when it has no fence. Used before applying an answer
// to an editor buffer.
func StripFences(answer string) string {
	if code, ok := ExtractCodeBlock(answer); ok {
		return strings.TrimRight(code, "\r\n")
	}
	return strings.TrimSpace(answer)
}
