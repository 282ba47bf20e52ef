package schema

import (
	"fmt"
	"strings"
)

// Diagnostic is a single problem found while parsing or validating a fragment.
type Diagnostic struct {
	// Line and Column are 1-based; zero when the problem has no source position.
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// String formats the diagnostic as "line:col: message".
func (d Diagnostic) String() string {
	if d.Line == 0 {
		return d.Message
	}
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
}

// DiagnosticsError reports that a fragment is syntactically or internally invalid.
type DiagnosticsError struct {
	Origin      string       `json:"origin"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Error implements the error interface.
func (e *DiagnosticsError) Error() string {
	var b strings.Builder
	for i, d := range e.Diagnostics {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Origin)
		b.WriteString(":")
		b.WriteString(d.String())
	}
	if len(e.Diagnostics) == 0 {
		return e.Origin + ": invalid schema"
	}
	return b.String()
}
