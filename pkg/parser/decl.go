package parser

import (
	"github.com/Limeth/pflc/pkg/ast"
	pc "github.com/Limeth/pflc/pkg/combinator"
	"github.com/Limeth/pflc/pkg/lexer"
)

// variable is `name : type`.
func (g *grammar) variable() pc.Parser[*ast.Variable] {
	name := lexer.Name()
	return func(cur *pc.Cursor) (*ast.Variable, *pc.Failure) {
		start := cur.Mark()
		id, f := name(cur)
		if f != nil {
			return nil, f
		}
		if _, f := colon(cur); f != nil {
			return nil, f
		}
		t, f := g.typ(cur)
		if f != nil {
			return nil, f
		}
		return &ast.Variable{Span: cur.NodeSpan(start), Name: id, Type: t}, nil
	}
}

// declRule is `fn name ( params ) -> type = expr ;`. Clauses appear in this
// order only.
func (g *grammar) declRule() pc.Parser[*ast.FnDecl] {
	fn := lexer.Keyword("fn")
	name := lexer.Name()
	params := pc.Delimited(lparen, pc.SepBy(g.variable(), comma), rparen)
	equals := lexer.Symbol("=")
	semi := lexer.Symbol(";")

	return func(cur *pc.Cursor) (*ast.FnDecl, *pc.Failure) {
		start := cur.Mark()
		if _, f := fn(cur); f != nil {
			return nil, f
		}
		id, f := name(cur)
		if f != nil {
			return nil, f
		}
		ps, f := params(cur)
		if f != nil {
			return nil, f
		}
		if _, f := arrow(cur); f != nil {
			return nil, f
		}
		ret, f := g.typ(cur)
		if f != nil {
			return nil, f
		}
		if _, f := equals(cur); f != nil {
			return nil, f
		}
		body, f := g.expr(cur)
		if f != nil {
			return nil, f
		}
		if _, f := semi(cur); f != nil {
			return nil, f
		}
		return &ast.FnDecl{
			Span:   cur.NodeSpan(start),
			Name:   id,
			Params: ps,
			Return: ret,
			Body:   body,
		}, nil
	}
}
