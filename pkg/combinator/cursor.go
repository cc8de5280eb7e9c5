// Package combinator provides the cursor, failure value and generic parser
// combinators the pflc grammar is assembled from.
//
// Every Parser follows one contract: on success it returns a value and leaves
// the cursor after the consumed input; on failure it returns a *Failure. Any
// combinator that recovers from a soft failure (Alt, Opt, Many, SepBy, Not)
// first resets the cursor to where the failed attempt started, so a rule that
// fails is never observed to have consumed input. Fatal failures are never
// recovered from.
package combinator

import (
	"fmt"

	"github.com/Limeth/pflc/pkg/ast"
)

// Mark is a saved cursor position, including the end of the last token.
type Mark struct {
	offset int
	line   int
	col    int
	end    ast.Pos
}

// Offset returns the byte offset of the mark.
func (m Mark) Offset() int { return m.offset }

// Pos returns the mark as an ast.Pos.
func (m Mark) Pos() ast.Pos {
	return ast.Pos{Offset: m.offset, Line: m.line, Col: m.col}
}

// Cursor is a position over an in-memory source text. It is owned by a single
// parse call.
type Cursor struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
	end      ast.Pos
	furthest *Failure
}

// NewCursor returns a cursor at the start of source.
func NewCursor(source, filename string) *Cursor {
	return &Cursor{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
		end:      ast.Pos{Offset: 0, Line: 1, Col: 1},
	}
}

func (c *Cursor) Source() string   { return c.source }
func (c *Cursor) Filename() string { return c.filename }
func (c *Cursor) Offset() int      { return c.pos }
func (c *Cursor) AtEnd() bool      { return c.pos >= len(c.source) }

// Rest returns the unconsumed input.
func (c *Cursor) Rest() string { return c.source[c.pos:] }

// Peek returns the current byte, or 0 at end of input.
func (c *Cursor) Peek() byte {
	if c.AtEnd() {
		return 0
	}
	return c.source[c.pos]
}

// PeekAt returns the byte offset bytes ahead, or 0 past the end.
func (c *Cursor) PeekAt(offset int) byte {
	p := c.pos + offset
	if p >= len(c.source) {
		return 0
	}
	return c.source[p]
}

// Advance consumes and returns one byte.
func (c *Cursor) Advance() byte {
	ch := c.source[c.pos]
	c.pos++
	if ch == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	return ch
}

// AdvanceN consumes n bytes.
func (c *Cursor) AdvanceN(n int) {
	for i := 0; i < n && !c.AtEnd(); i++ {
		c.Advance()
	}
}

func (c *Cursor) Mark() Mark {
	return Mark{offset: c.pos, line: c.line, col: c.col, end: c.end}
}

func (c *Cursor) Reset(m Mark) {
	c.pos, c.line, c.col = m.offset, m.line, m.col
	c.end = m.end
}

// EndToken records the current position as the end of the last significant
// token. Trivia consumed afterwards is excluded from node spans.
func (c *Cursor) EndToken() {
	c.end = c.Pos()
}

// Pos returns the current position.
func (c *Cursor) Pos() ast.Pos {
	return ast.Pos{Offset: c.pos, Line: c.line, Col: c.col}
}

// Slice returns the input consumed since m.
func (c *Cursor) Slice(m Mark) string {
	return c.source[m.offset:c.pos]
}

// SpanFrom returns the span from m to the current position.
func (c *Cursor) SpanFrom(m Mark) ast.Span {
	return ast.Span{
		File:      c.filename,
		StartLine: m.line,
		StartCol:  m.col,
		EndLine:   c.line,
		EndCol:    c.col,
	}
}

// NodeSpan returns the span from m to the end of the last token consumed
// since m.
func (c *Cursor) NodeSpan(m Mark) ast.Span {
	end := c.end
	if end.Offset < m.offset {
		end = m.Pos()
	}
	return ast.Span{
		File:      c.filename,
		StartLine: m.line,
		StartCol:  m.col,
		EndLine:   end.Line,
		EndCol:    end.Col,
	}
}

// Fail creates a soft failure at the current position and records it as a
// furthest-progress candidate.
func (c *Cursor) Fail(kind Kind, expected ...string) *Failure {
	return c.FailAt(c.Mark(), kind, expected...)
}

// FailAt is Fail at a saved position.
func (c *Cursor) FailAt(m Mark, kind Kind, expected ...string) *Failure {
	f := c.newFailure(m, kind)
	f.Expected = normalize(expected)
	c.record(f)
	return f
}

// Failf creates a soft failure at m with an explicit message.
func (c *Cursor) Failf(m Mark, kind Kind, format string, args ...any) *Failure {
	f := c.newFailure(m, kind)
	f.Message = fmt.Sprintf(format, args...)
	c.record(f)
	return f
}

// Fatal creates a failure at m that no combinator recovers from.
func (c *Cursor) Fatal(m Mark, kind Kind, message string) *Failure {
	f := c.newFailure(m, kind)
	f.Message = message
	f.Fatal = true
	c.record(f)
	return f
}

// Furthest returns the furthest soft failure recorded so far, or nil.
func (c *Cursor) Furthest() *Failure {
	return c.furthest
}

// Deepest picks the failure to report for a parse that ended with f: the
// furthest recorded failure if it lies strictly beyond f, otherwise f.
func (c *Cursor) Deepest(f *Failure) *Failure {
	if f == nil || f.Fatal {
		return f
	}
	if c.furthest != nil && c.furthest.Pos.Offset > f.Pos.Offset {
		return c.furthest
	}
	return f
}

func (c *Cursor) newFailure(m Mark, kind Kind) *Failure {
	return &Failure{
		File:  c.filename,
		Pos:   m.Pos(),
		Kind:  kind,
		Found: foundAt(c.source, m.offset),
	}
}

func (c *Cursor) record(f *Failure) {
	switch {
	case c.furthest == nil || f.Pos.Offset > c.furthest.Pos.Offset:
		cp := *f
		c.furthest = &cp
	case f.Pos.Offset == c.furthest.Pos.Offset:
		merged := *c.furthest
		merged.Expected = normalize(append(append([]string(nil), merged.Expected...), f.Expected...))
		if merged.Message == "" {
			merged.Message = f.Message
		}
		c.furthest = &merged
	}
}

// saveFurthest and restoreFurthest bracket attempts whose failures must not
// leak into diagnostics, such as lookahead.
func (c *Cursor) saveFurthest() *Failure      { return c.furthest }
func (c *Cursor) restoreFurthest(f *Failure) { c.furthest = f }
