// Package diagnostics defines pflc diagnostic types for lexical and syntax errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Limeth/pflc/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex      = "E_LEX"
	ESyntax   = "E_SYNTAX"
	ENumeric  = "E_NUMERIC"
	ETrailing = "E_TRAILING"
	EIO       = "E_IO"
	EConfig   = "E_CONFIG"
)

var (
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	arrowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Diagnostic represents a parse or tooling diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	out := errorStyle.Render(fmt.Sprintf("error[%s]", d.Code)) + ": " + d.Message
	out += "\n  " + arrowStyle.Render("-->") + " " + loc
	if d.Hint != "" {
		out += "\n  " + hintStyle.Render("hint:") + " " + d.Hint
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}

// FormatWithSource is the pretty form followed by an excerpt of source with a
// caret under the diagnostic's start column.
func FormatWithSource(d Diagnostic, source string) string {
	out := FormatDiagnostic(d, true)
	if d.Span == nil {
		return out
	}
	if ex := Excerpt(source, d.Span.StartLine, d.Span.StartCol); ex != "" {
		out += "\n" + ex
	}
	return out
}

// Excerpt renders the given 1-based line with one line of context on either
// side and a caret under col. Out-of-range positions are clamped.
func Excerpt(source string, line, col int) string {
	lines := strings.Split(source, "\n")
	if len(lines) == 0 || line < 1 {
		return ""
	}
	if line > len(lines) {
		line = len(lines)
	}
	first, last := line-1, line+1
	if first < 1 {
		first = 1
	}
	if last > len(lines) {
		last = len(lines)
	}
	width := len(fmt.Sprint(last))

	var b strings.Builder
	for n := first; n <= last; n++ {
		text := strings.TrimRight(lines[n-1], "\r")
		fmt.Fprintf(&b, "%*d | %s\n", width, n, text)
		if n == line {
			c := col
			if c < 1 {
				c = 1
			}
			if c > len(text)+1 {
				c = len(text) + 1
			}
			fmt.Fprintf(&b, "%s | %s^\n", strings.Repeat(" ", width), caretPad(text, c-1))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// caretPad keeps tabs so the caret lines up with the echoed source line.
func caretPad(text string, n int) string {
	var b strings.Builder
	for i := 0; i < n && i < len(text); i++ {
		if text[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
