package parser

import (
	"github.com/Limeth/pflc/pkg/ast"
	pc "github.com/Limeth/pflc/pkg/combinator"
	"github.com/Limeth/pflc/pkg/lexer"
)

// exprRule tries literals before names; integers precede floats, and the
// integer rule refuses to stop in front of a '.' so `1.5` reaches the float
// rule intact.
func (g *grammar) exprRule() pc.Parser[ast.Expr] {
	return pc.Label(pc.Alt(
		upcast[*ast.BoolLiteral](lexer.BoolLiteral()),
		upcast[*ast.IntLiteral](lexer.IntLiteral()),
		upcast[*ast.FloatLiteral](lexer.FloatLiteral()),
		reference(),
	), "expression")
}

func upcast[T ast.Expr](p pc.Parser[T]) pc.Parser[ast.Expr] {
	return pc.Map(p, func(v T) ast.Expr { return v })
}

// reference is a variable reference, or a call when the name is followed by
// an argument list.
func reference() pc.Parser[ast.Expr] {
	name := lexer.Name()
	opens := pc.Matched(pc.Peek(lparen))
	args := pc.Delimited(lparen, pc.SepBy(callArg(), comma), rparen)

	return func(cur *pc.Cursor) (ast.Expr, *pc.Failure) {
		start := cur.Mark()
		id, f := name(cur)
		if f != nil {
			return nil, f
		}
		call, f := opens(cur)
		if f != nil {
			return nil, f
		}
		if !call {
			return &ast.VarRef{Span: cur.NodeSpan(start), Name: id}, nil
		}
		list, f := args(cur)
		if f != nil {
			return nil, f
		}
		return &ast.FnCall{Span: cur.NodeSpan(start), Callee: id, Args: list}, nil
	}
}

// callArg is `name: value`, both plain names.
func callArg() pc.Parser[*ast.CallArg] {
	name := lexer.Name()
	pair := pc.Bind(pc.Terminated(name, colon), func(n *ast.Ident) pc.Parser[[2]*ast.Ident] {
		return pc.Map(name, func(v *ast.Ident) [2]*ast.Ident { return [2]*ast.Ident{n, v} })
	})
	return spanned(pair, func(p [2]*ast.Ident, span ast.Span) *ast.CallArg {
		return &ast.CallArg{Span: span, Name: p[0], Value: p[1]}
	})
}
