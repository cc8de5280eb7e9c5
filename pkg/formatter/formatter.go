// Package formatter prints a pflc syntax tree as canonical source code.
package formatter

import (
	"strconv"
	"strings"

	"github.com/Limeth/pflc/pkg/ast"
)

// Format pretty-prints a Root back to source code, one declaration per line.
// Comments are not part of the tree and are not reproduced.
func Format(root *ast.Root) string {
	if len(root.Items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(root.Items))
	for _, it := range root.Items {
		lines = append(lines, formatItem(it))
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments reports whether source contains a comment. The language has no
// string literals, so any comment marker starts a comment.
func HasComments(source string) bool {
	return strings.Contains(source, "//") || strings.Contains(source, "/*")
}

func formatItem(it ast.Item) string {
	switch item := it.(type) {
	case *ast.FnDecl:
		params := make([]string, len(item.Params))
		for i, p := range item.Params {
			params[i] = p.Name.Name + ": " + FormatType(p.Type)
		}
		return "fn " + item.Name.Name + "(" + strings.Join(params, ", ") + ") -> " +
			FormatType(item.Return) + " = " + FormatExpr(item.Body) + ";"
	}
	return ""
}

// FormatType prints a type in source form.
func FormatType(t ast.Type) string {
	switch typ := t.(type) {
	case *ast.PrimitiveType:
		return typ.Prim.String()
	case *ast.FunctionType:
		params := make([]string, len(typ.Params))
		for i, p := range typ.Params {
			params[i] = FormatType(p)
		}
		return "(" + strings.Join(params, ", ") + ") -> " + FormatType(typ.Return)
	case *ast.CustomType:
		if len(typ.Generics) == 0 {
			return typ.Name
		}
		return typ.Name + "<" + strings.Join(typ.Generics, ", ") + ">"
	}
	return ""
}

// FormatExpr prints an expression in source form. Numeric literals keep the
// lexeme they were parsed from.
func FormatExpr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.BoolLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.IntLiteral:
		if expr.Text != "" {
			return expr.Text
		}
		return strconv.FormatInt(int64(expr.Value), 10)
	case *ast.FloatLiteral:
		if expr.Text != "" {
			return expr.Text
		}
		return formatFloatLiteral(expr.Value)
	case *ast.VarRef:
		return expr.Name.Name
	case *ast.FnCall:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = a.Name.Name + ": " + a.Value.Name
		}
		return expr.Callee.Name + "(" + strings.Join(args, ", ") + ")"
	}
	return ""
}

// formatFloatLiteral renders v so that it reads back as a float: a decimal
// point is always present.
func formatFloatLiteral(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		if !strings.Contains(s[:i], ".") {
			s = s[:i] + ".0" + s[i:]
		}
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
