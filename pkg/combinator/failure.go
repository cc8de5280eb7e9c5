package combinator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Limeth/pflc/pkg/ast"
	"github.com/Limeth/pflc/pkg/diagnostics"
)

// Kind classifies a failure.
type Kind int

const (
	// Lexical: the input does not match the expected character class.
	Lexical Kind = iota
	// Syntactic: a required keyword or punctuation token is missing.
	Syntactic
	// Numeric: a recognized literal does not convert to its target width.
	Numeric
	// Trailing: declarations parsed but unconsumed input remains.
	Trailing
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Syntactic:
		return "syntactic"
	case Numeric:
		return "numeric"
	case Trailing:
		return "trailing"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Code returns the diagnostic code for the kind.
func (k Kind) Code() string {
	switch k {
	case Lexical:
		return diagnostics.ELex
	case Numeric:
		return diagnostics.ENumeric
	case Trailing:
		return diagnostics.ETrailing
	default:
		return diagnostics.ESyntax
	}
}

// Failure is the error value every grammar rule reports.
type Failure struct {
	File     string
	Pos      ast.Pos
	Kind     Kind
	Expected []string
	Found    string
	Message  string
	Fatal    bool
}

// Describe returns the failure message without location.
func (f *Failure) Describe() string {
	if f.Message != "" {
		return f.Message
	}
	found := "end of input"
	if f.Found != "" {
		found = fmt.Sprintf("'%s'", f.Found)
	}
	if len(f.Expected) == 0 {
		return "unexpected " + found
	}
	return fmt.Sprintf("expected %s, found %s", joinExpected(f.Expected), found)
}

func (f *Failure) Error() string {
	if f.File == "" {
		return fmt.Sprintf("%s: %s", f.Pos, f.Describe())
	}
	return fmt.Sprintf("%s:%s: %s", f.File, f.Pos, f.Describe())
}

// Diagnostic converts the failure for display.
func (f *Failure) Diagnostic() diagnostics.Diagnostic {
	width := len(f.Found)
	if width == 0 {
		width = 1
	}
	span := &ast.Span{
		File:      f.File,
		StartLine: f.Pos.Line,
		StartCol:  f.Pos.Col,
		EndLine:   f.Pos.Line,
		EndCol:    f.Pos.Col + width,
	}
	hint := ""
	switch f.Kind {
	case Trailing:
		hint = "only function declarations may appear at the top level"
	case Numeric:
		hint = "i32 literals range from -2147483648 to 2147483647"
	}
	if f.Kind == Numeric && strings.Contains(f.Message, "float") {
		hint = "f32 literals must be finite"
	}
	return diagnostics.MakeDiag(f.Kind.Code(), f.Describe(), span, hint)
}

func joinExpected(labels []string) string {
	switch len(labels) {
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " or " + labels[1]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + " or " + labels[len(labels)-1]
	}
}

func normalize(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

const maxFound = 16

// foundAt returns the text at offset up to the next whitespace, capped.
func foundAt(source string, offset int) string {
	if offset >= len(source) {
		return ""
	}
	end := offset
	for end < len(source) && end-offset < maxFound {
		ch := source[end]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			break
		}
		end++
	}
	if end == offset {
		// Positioned on whitespace; show the single character escaped.
		return strings.Trim(fmt.Sprintf("%q", source[offset:offset+1]), `"`)
	}
	return source[offset:end]
}
