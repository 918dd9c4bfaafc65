// Package source defines source locations shared by the lexer and diagnostics.
package source

import "fmt"

// Span represents a source location range. Lines and columns are 1-based;
// columns count runes, and EndCol is exclusive.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// String renders the start of the span as file:line:col.
func (s Span) String() string {
	file := s.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, s.StartLine, s.StartCol)
}
