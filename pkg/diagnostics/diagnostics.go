// Package diagnostics defines diagnostic types for lexical, usage, and I/O errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/asmlex/pkg/source"
)

// Diagnostic code constants.
const (
	ELex    = "E_LEX"
	EIO     = "E_IO"
	EUsage  = "E_USAGE"
	EConfig = "E_CONFIG"
)

// Diagnostic represents a lexical, configuration, or I/O diagnostic.
type Diagnostic struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Span    *source.Span `json:"span,omitempty"`
	Hint    string       `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *source.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// Line returns the 1-based line the diagnostic points at, or 0 without a span.
func (d Diagnostic) Line() int {
	if d.Span == nil {
		return 0
	}
	return d.Span.StartLine
}

// FormatLine renders the short "Line N: message" form used by the REPL.
func FormatLine(d Diagnostic) string {
	if d.Span == nil {
		return d.Message
	}
	return fmt.Sprintf("Line %d: %s", d.Line(), d.Message)
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = d.Span.String()
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		if diags == nil {
			diags = []Diagnostic{}
		}
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
