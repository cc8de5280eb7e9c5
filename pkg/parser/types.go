package parser

import (
	"github.com/Limeth/pflc/pkg/ast"
	pc "github.com/Limeth/pflc/pkg/combinator"
	"github.com/Limeth/pflc/pkg/lexer"
)

// typeRule is primitive | function | custom. Primitive keywords are tried
// first so that `i32` is never read as a custom type name.
func (g *grammar) typeRule() pc.Parser[ast.Type] {
	return pc.Label(pc.Alt(primitiveType(), g.functionType(), customType()), "type")
}

func primitiveType() pc.Parser[ast.Type] {
	keywords := ast.PrimitiveKeywords()
	alts := make([]pc.Parser[ast.Type], len(keywords))
	for i, kw := range keywords {
		prim, _ := ast.LookupPrimitive(kw)
		alts[i] = spanned(lexer.Keyword(kw), func(_ string, span ast.Span) ast.Type {
			return &ast.PrimitiveType{Span: span, Prim: prim}
		})
	}
	return pc.Alt(alts...)
}

// functionType is `( T, ... ) -> R`.
func (g *grammar) functionType() pc.Parser[ast.Type] {
	typ := pc.Lazy(func() pc.Parser[ast.Type] { return g.typ })
	params := pc.Delimited(lparen, pc.SepBy(typ, comma), rparen)

	return func(cur *pc.Cursor) (ast.Type, *pc.Failure) {
		start := cur.Mark()
		ps, f := params(cur)
		if f != nil {
			return nil, f
		}
		if _, f := arrow(cur); f != nil {
			return nil, f
		}
		ret, f := typ(cur)
		if f != nil {
			return nil, f
		}
		return &ast.FunctionType{Span: cur.NodeSpan(start), Params: ps, Return: ret}, nil
	}
}

// customType is `Name` or `Name<A, B>`.
func customType() pc.Parser[ast.Type] {
	generics := pc.Delimited(lexer.Symbol("<"), pc.SepBy1(lexer.Name(), comma), lexer.Symbol(">"))
	name := lexer.Name()

	return func(cur *pc.Cursor) (ast.Type, *pc.Failure) {
		start := cur.Mark()
		id, f := name(cur)
		if f != nil {
			return nil, f
		}
		params, f := pc.Opt(generics)(cur)
		if f != nil {
			return nil, f
		}
		t := &ast.CustomType{Span: cur.NodeSpan(start), Name: id.Name}
		for _, p := range params {
			t.Generics = append(t.Generics, p.Name)
		}
		return t, nil
	}
}
