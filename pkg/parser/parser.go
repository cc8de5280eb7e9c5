// Package parser implements the pflc grammar: types, expressions, function
// declarations and the root aggregator.
package parser

import (
	"fmt"
	"os"

	"github.com/Limeth/pflc/pkg/ast"
	pc "github.com/Limeth/pflc/pkg/combinator"
	"github.com/Limeth/pflc/pkg/lexer"
)

// grammar holds the assembled rules. Rules are stateless closures over a
// cursor, so one grammar serves any number of concurrent parses.
type grammar struct {
	typ  pc.Parser[ast.Type]
	expr pc.Parser[ast.Expr]
	decl pc.Parser[*ast.FnDecl]
	root pc.Parser[*ast.Root]
}

var std = newGrammar()

func newGrammar() *grammar {
	g := &grammar{}
	g.typ = g.typeRule()
	g.expr = g.exprRule()
	g.decl = g.declRule()
	g.root = g.rootRule()
	return g
}

// Parse parses a complete source unit. On failure the error is a
// *combinator.Failure positioned at the furthest point the grammar reached.
func Parse(source, filename string) (*ast.Root, error) {
	return pc.Parse(std.root, source, filename)
}

// ParseFile reads path and parses it. Read errors are returned wrapped and
// are never a *combinator.Failure.
func ParseFile(path string) (*ast.Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return Parse(string(data), path)
}

// Type returns the type rule. Leading trivia is not skipped.
func Type() pc.Parser[ast.Type] { return std.typ }

// Expr returns the expression rule.
func Expr() pc.Parser[ast.Expr] { return std.expr }

// FnDecl returns the function declaration rule.
func FnDecl() pc.Parser[*ast.FnDecl] { return std.decl }

// Root returns the root rule, which skips leading trivia and collects
// declarations until none match.
func Root() pc.Parser[*ast.Root] { return std.root }

var (
	comma  = lexer.Symbol(",")
	colon  = lexer.Symbol(":")
	lparen = lexer.Symbol("(")
	rparen = lexer.Symbol(")")
	arrow  = lexer.Symbol("->")
)

// spanned runs p and builds a node from its value and the span of the tokens
// it consumed.
func spanned[T, U any](p pc.Parser[T], build func(T, ast.Span) U) pc.Parser[U] {
	return func(cur *pc.Cursor) (U, *pc.Failure) {
		start := cur.Mark()
		v, f := p(cur)
		if f != nil {
			var zero U
			return zero, f
		}
		return build(v, cur.NodeSpan(start)), nil
	}
}

func (g *grammar) rootRule() pc.Parser[*ast.Root] {
	decls := pc.Preceded(lexer.Trivia(), pc.Many(g.decl))
	return spanned(decls, func(ds []*ast.FnDecl, span ast.Span) *ast.Root {
		items := make([]ast.Item, 0, len(ds))
		for _, d := range ds {
			items = append(items, d)
		}
		return &ast.Root{Span: span, Items: items}
	})
}
