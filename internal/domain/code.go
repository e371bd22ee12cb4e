package domain

// Severity classifies a CodeIssue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// CodeIssue is a single style or quality finding. Line and Column are 1-based.
type CodeIssue struct {
	Severity Severity `json:"type"`
	Message  string   `json:"message"`
	Line     *int     `json:"line,omitempty"`
	Column   *int     `json:"column,omitempty"`
}

// CodeContext is the lexical summary of a document used as prompt context.
// Entries are raw matched source lines in document order.
type CodeContext struct {
	Imports          []string `json:"imports"`
	Functions        []string `json:"functions"`
	Classes          []string `json:"classes"`
	Variables        []string `json:"variables"`
	FileType         string   `json:"fileType"`
	ProjectStructure string   `json:"projectStructure,omitempty"`
}

// Position is a 0-based line/character location inside a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is the caller's selection within a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsEmpty reports whether the range selects nothing.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}
