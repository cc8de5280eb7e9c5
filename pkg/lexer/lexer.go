// Package lexer implements the pflc token rules: character classifiers,
// comment skipping, and the identifier, keyword and literal scanners the
// grammar is built from.
package lexer

import (
	"strings"

	"github.com/Limeth/pflc/pkg/ast"
	pc "github.com/Limeth/pflc/pkg/combinator"
)

// Class is the lexical class of a single character.
type Class int

const (
	ClassNone Class = iota
	ClassSeparator
	ClassIdentStart
	ClassIdentContinue
)

// separators delimit tokens. Whitespace is included.
const separators = " \t\r\n,;:.<>{}[]()+-%*/=^?\"'"

// Reserved words that may not be used as names.
var reserved = map[string]bool{
	"fn":    true,
	"true":  true,
	"false": true,
}

func IsWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func IsSeparator(ch byte) bool {
	return ch != 0 && strings.IndexByte(separators, ch) >= 0
}

func IsAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func IsDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func IsIdentStart(ch byte) bool {
	return IsAlpha(ch) || ch == '_'
}

func IsIdentContinue(ch byte) bool {
	return IsIdentStart(ch) || IsDigit(ch)
}

// Classify returns the most specific class of ch. Identifier-start
// characters are also identifier-continue characters.
func Classify(ch byte) Class {
	switch {
	case IsSeparator(ch):
		return ClassSeparator
	case IsIdentStart(ch):
		return ClassIdentStart
	case IsDigit(ch):
		return ClassIdentContinue
	default:
		return ClassNone
	}
}

// IsReserved reports whether word is a reserved word.
func IsReserved(word string) bool {
	return reserved[word]
}

// LineComment matches `//` up to, not including, the end of line or input and
// returns the comment text.
func LineComment() pc.Parser[string] {
	return pc.Preceded(pc.Tag("//"), pc.TakeWhile(func(ch byte) bool { return ch != '\n' }))
}

// BlockComment matches `/* ... */` and returns the text between the markers.
// Block comments do not nest. A missing terminator is fatal.
func BlockComment() pc.Parser[string] {
	return func(cur *pc.Cursor) (string, *pc.Failure) {
		start := cur.Mark()
		if _, f := pc.Tag("/*")(cur); f != nil {
			return "", f
		}
		body := cur.Mark()
		i := strings.Index(cur.Rest(), "*/")
		if i < 0 {
			return "", cur.Fatal(start, pc.Lexical, "unterminated block comment")
		}
		cur.AdvanceN(i)
		text := cur.Slice(body)
		cur.AdvanceN(2)
		return text, nil
	}
}

// Comment matches either comment form.
func Comment() pc.Parser[string] {
	return pc.Alt(LineComment(), BlockComment())
}

// Trivia skips any run of whitespace and comments. It only fails on an
// unterminated block comment.
func Trivia() pc.Parser[struct{}] {
	ws := pc.TakeWhile1(IsWhitespace, "whitespace", pc.Lexical)
	piece := pc.Alt(ws, Comment())
	return pc.Quiet(pc.Map(pc.Many(piece), func([]string) struct{} { return struct{}{} }))
}

// Lexeme runs p, marks the end of the token, then skips trailing trivia.
func Lexeme[T any](p pc.Parser[T]) pc.Parser[T] {
	trivia := Trivia()
	return func(cur *pc.Cursor) (T, *pc.Failure) {
		v, f := p(cur)
		if f != nil {
			return v, f
		}
		cur.EndToken()
		if _, f := trivia(cur); f != nil {
			var zero T
			return zero, f
		}
		return v, nil
	}
}

// Symbol matches fixed punctuation such as "->" followed by trivia.
func Symbol(s string) pc.Parser[string] {
	return Lexeme(pc.Tag(s))
}

// boundary succeeds when the next character cannot continue a word.
func boundary() pc.Parser[struct{}] {
	return pc.Not(pc.Satisfy(IsIdentContinue, "", pc.Lexical), "end of word")
}

// word matches w only when it is not a prefix of a longer identifier.
func word(w string) pc.Parser[string] {
	tag := pc.Quiet(pc.Terminated(pc.Tag(w), boundary()))
	label := "'" + w + "'"
	return func(cur *pc.Cursor) (string, *pc.Failure) {
		start := cur.Mark()
		v, f := tag(cur)
		if f != nil {
			cur.Reset(start)
			return "", cur.FailAt(start, pc.Syntactic, label)
		}
		return v, nil
	}
}

// Keyword matches the keyword w followed by trivia.
func Keyword(w string) pc.Parser[string] {
	return Lexeme(word(w))
}

// Identifier scans `[A-Za-z_][A-Za-z0-9_]*` and returns the span. Spans made
// only of underscores are rejected.
func Identifier() pc.Parser[string] {
	scan := pc.Recognize(pc.Preceded(
		pc.Satisfy(IsIdentStart, "identifier", pc.Lexical),
		pc.TakeWhile(IsIdentContinue),
	))
	return func(cur *pc.Cursor) (string, *pc.Failure) {
		start := cur.Mark()
		text, f := scan(cur)
		if f != nil {
			return "", f
		}
		if strings.Trim(text, "_") == "" {
			cur.Reset(start)
			return "", cur.Failf(start, pc.Lexical, "identifier '%s' must contain a letter or digit", text)
		}
		return text, nil
	}
}

// Name scans an identifier that is not a reserved word, followed by trivia.
func Name() pc.Parser[*ast.Ident] {
	ident := Identifier()
	return Lexeme(func(cur *pc.Cursor) (*ast.Ident, *pc.Failure) {
		start := cur.Mark()
		text, f := ident(cur)
		if f != nil {
			return nil, f
		}
		if IsReserved(text) {
			cur.Reset(start)
			return nil, cur.Failf(start, pc.Lexical, "reserved word '%s' cannot be used as a name", text)
		}
		return ast.MustIdent(text, cur.SpanFrom(start)), nil
	})
}
