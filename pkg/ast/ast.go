// Package ast defines the syntax tree produced by the pflc parser.
package ast

import (
	"errors"
	"fmt"
)

// Pos is a single point in the source: a byte offset plus 1-based line and column.
type Pos struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Col    int `json:"col"`
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// --- Identifiers ---

// ErrInvalidIdent is returned by NewIdent for names that are not legal identifiers.
var ErrInvalidIdent = errors.New("invalid identifier")

// Ident is a validated name.
type Ident struct {
	Span Span
	Name string
}

func (n *Ident) Kind() string   { return "Ident" }
func (n *Ident) NodeSpan() Span { return n.Span }
func (n *Ident) String() string { return n.Name }

// NewIdent validates name and wraps it. A legal name starts with a letter or
// underscore, continues with letters, digits or underscores, and contains at
// least one letter or digit.
func NewIdent(name string, span Span) (*Ident, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdent, name)
	}
	return &Ident{Span: span, Name: name}, nil
}

// MustIdent is NewIdent for spans the identifier scanner already validated.
func MustIdent(name string, span Span) *Ident {
	id, err := NewIdent(name, span)
	if err != nil {
		panic(err)
	}
	return id
}

// ValidName reports whether name satisfies the identifier invariant.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	alnum := false
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch == '_':
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
			alnum = true
		case ch >= '0' && ch <= '9':
			if i == 0 {
				return false
			}
			alnum = true
		default:
			return false
		}
	}
	return alnum
}

// --- Types ---

// Type is the sealed union of PrimitiveType, FunctionType and CustomType.
type Type interface {
	Node
	typeNode() // sealed marker
}

// Primitive enumerates the built-in base types.
type Primitive int

const (
	Bool Primitive = iota
	I32
	F32
)

var primitiveNames = [...]string{Bool: "bool", I32: "i32", F32: "f32"}

func (p Primitive) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
	return primitiveNames[p]
}

// LookupPrimitive maps a primitive keyword to its Primitive.
func LookupPrimitive(keyword string) (Primitive, bool) {
	for i, name := range primitiveNames {
		if name == keyword {
			return Primitive(i), true
		}
	}
	return 0, false
}

// PrimitiveKeywords lists the primitive type keywords in declaration order.
func PrimitiveKeywords() []string {
	out := make([]string, len(primitiveNames))
	copy(out, primitiveNames[:])
	return out
}

type PrimitiveType struct {
	Span Span
	Prim Primitive
}

func (n *PrimitiveType) Kind() string   { return "PrimitiveType" }
func (n *PrimitiveType) NodeSpan() Span { return n.Span }
func (n *PrimitiveType) typeNode()      {}

// FunctionType is a signature: ordered parameter types and a return type.
type FunctionType struct {
	Span   Span
	Params []Type
	Return Type
}

func (n *FunctionType) Kind() string   { return "FunctionType" }
func (n *FunctionType) NodeSpan() Span { return n.Span }
func (n *FunctionType) typeNode()      {}

// CustomType is a user-defined, possibly generic, named type.
type CustomType struct {
	Span     Span
	Name     string
	Generics []string
}

func (n *CustomType) Kind() string   { return "CustomType" }
func (n *CustomType) NodeSpan() Span { return n.Span }
func (n *CustomType) typeNode()      {}

// Variable is a typed binding such as a function parameter.
type Variable struct {
	Span Span
	Name *Ident
	Type Type
}

func (n *Variable) Kind() string   { return "Variable" }
func (n *Variable) NodeSpan() Span { return n.Span }

// --- Expressions ---

// Expr is the sealed union of literals, variable references and calls.
type Expr interface {
	Node
	exprNode() // sealed marker
}

// Literal is the subset of Expr holding literal values.
type Literal interface {
	Expr
	literalNode() // sealed marker
}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}
func (n *BoolLiteral) literalNode()   {}

// IntLiteral keeps the lexeme as written alongside its converted value.
type IntLiteral struct {
	Span  Span
	Text  string
	Value int32
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}
func (n *IntLiteral) literalNode()   {}

// FloatLiteral keeps the lexeme as written alongside its converted value.
type FloatLiteral struct {
	Span  Span
	Text  string
	Value float32
}

func (n *FloatLiteral) Kind() string   { return "FloatLiteral" }
func (n *FloatLiteral) NodeSpan() Span { return n.Span }
func (n *FloatLiteral) exprNode()      {}
func (n *FloatLiteral) literalNode()   {}

// VarRef is a bare identifier used as an expression.
type VarRef struct {
	Span Span
	Name *Ident
}

func (n *VarRef) Kind() string   { return "VarRef" }
func (n *VarRef) NodeSpan() Span { return n.Span }
func (n *VarRef) exprNode()      {}

// CallArg binds a callee parameter name to a value name: `name: value`.
type CallArg struct {
	Span  Span
	Name  *Ident
	Value *Ident
}

func (n *CallArg) Kind() string   { return "CallArg" }
func (n *CallArg) NodeSpan() Span { return n.Span }

// FnCall is a call with named arguments.
type FnCall struct {
	Span   Span
	Callee *Ident
	Args   []*CallArg
}

func (n *FnCall) Kind() string   { return "FnCall" }
func (n *FnCall) NodeSpan() Span { return n.Span }
func (n *FnCall) exprNode()      {}

// --- Items ---

// Item is the sealed union of top-level declarations.
type Item interface {
	Node
	itemNode() // sealed marker
}

type FnDecl struct {
	Span   Span
	Name   *Ident
	Params []*Variable
	Return Type
	Body   Expr
}

func (n *FnDecl) Kind() string   { return "FnDecl" }
func (n *FnDecl) NodeSpan() Span { return n.Span }
func (n *FnDecl) itemNode()      {}

// Signature returns the declaration's type, independent of its name.
func (n *FnDecl) Signature() *FunctionType {
	params := make([]Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Type
	}
	return &FunctionType{Span: n.Span, Params: params, Return: n.Return}
}

// --- Root ---

type Root struct {
	Span  Span
	Items []Item
}

func (n *Root) Kind() string   { return "Root" }
func (n *Root) NodeSpan() Span { return n.Span }
