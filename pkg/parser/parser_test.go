package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Limeth/pflc/pkg/ast"
	pc "github.com/Limeth/pflc/pkg/combinator"
	"github.com/Limeth/pflc/pkg/parser"
)

// helper: parse source and assert success
func mustParse(t *testing.T, source string) *ast.Root {
	t.Helper()
	root, err := parser.Parse(source, "test.pf")
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if root == nil {
		t.Fatal("expected non-nil root")
	}
	return root
}

// helper: parse source and return the failure, which must be a *combinator.Failure
func mustFail(t *testing.T, source string) *pc.Failure {
	t.Helper()
	root, err := parser.Parse(source, "test.pf")
	if err == nil {
		t.Fatalf("expected parse to fail, got %d items", len(root.Items))
	}
	var f *pc.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *combinator.Failure, got %T", err)
	}
	return f
}

// helper: parse a single declaration
func singleDecl(t *testing.T, source string) *ast.FnDecl {
	t.Helper()
	root := mustParse(t, source)
	if len(root.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(root.Items))
	}
	fn, ok := root.Items[0].(*ast.FnDecl)
	if !ok {
		t.Fatalf("expected FnDecl, got %T", root.Items[0])
	}
	return fn
}

// helper: wrap a body expression in a declaration and return the body
func body(t *testing.T, expr string) ast.Expr {
	t.Helper()
	return singleDecl(t, "fn f() -> i32 = "+expr+";").Body
}

// helper: wrap a type in a declaration and return the return type
func returnType(t *testing.T, typ string) ast.Type {
	t.Helper()
	return singleDecl(t, "fn f() -> "+typ+" = x;").Return
}

// ---- 1. Scenarios ----

func TestIdentityFunction(t *testing.T) {
	fn := singleDecl(t, "fn id(x: i32) -> i32 = x;")
	if fn.Name.Name != "id" {
		t.Errorf("got name %q, want id", fn.Name.Name)
	}
	if len(fn.Params) != 1 {
		t.Fatalf("expected 1 param, got %d", len(fn.Params))
	}
	p := fn.Params[0]
	if p.Name.Name != "x" {
		t.Errorf("got param %q, want x", p.Name.Name)
	}
	if pt, ok := p.Type.(*ast.PrimitiveType); !ok || pt.Prim != ast.I32 {
		t.Errorf("got param type %#v, want i32", p.Type)
	}
	if rt, ok := fn.Return.(*ast.PrimitiveType); !ok || rt.Prim != ast.I32 {
		t.Errorf("got return type %#v, want i32", fn.Return)
	}
	ref, ok := fn.Body.(*ast.VarRef)
	if !ok {
		t.Fatalf("expected VarRef, got %T", fn.Body)
	}
	if ref.Name.Name != "x" {
		t.Errorf("got body %q, want x", ref.Name.Name)
	}
}

func TestNamedArgumentCall(t *testing.T) {
	fn := singleDecl(t, "fn add(a: i32, b: i32) -> i32 = add(a: a, b: b);")
	call, ok := fn.Body.(*ast.FnCall)
	if !ok {
		t.Fatalf("expected FnCall, got %T", fn.Body)
	}
	if call.Callee.Name != "add" {
		t.Errorf("got callee %q", call.Callee.Name)
	}
	want := [][2]string{{"a", "a"}, {"b", "b"}}
	if len(call.Args) != len(want) {
		t.Fatalf("expected %d args, got %d", len(want), len(call.Args))
	}
	for i, a := range call.Args {
		if a.Name.Name != want[i][0] || a.Value.Name != want[i][1] {
			t.Errorf("arg %d: got (%s, %s), want %v", i, a.Name, a.Value, want[i])
		}
	}
}

func TestMissingCloseParen(t *testing.T) {
	f := mustFail(t, "fn broken(x: i32 -> i32 = x;")
	if f.Kind != pc.Syntactic {
		t.Errorf("got kind %s, want syntactic", f.Kind)
	}
	if f.Pos.Line != 1 || f.Pos.Col != 18 || f.Pos.Offset != 17 {
		t.Errorf("got position %s (offset %d), want 1:18", f.Pos, f.Pos.Offset)
	}
	if got, want := f.Describe(), "expected ')' or ',', found '->'"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTrailingGarbage(t *testing.T) {
	f := mustFail(t, "fn f() -> bool = true; ###")
	if f.Kind != pc.Trailing {
		t.Errorf("got kind %s, want trailing", f.Kind)
	}
	if f.Pos.Offset != strings.Index("fn f() -> bool = true; ###", "###") {
		t.Errorf("got offset %d", f.Pos.Offset)
	}
	if f.Found != "###" {
		t.Errorf("got found %q", f.Found)
	}
}

func TestIntegerOverflowIsNumeric(t *testing.T) {
	f := mustFail(t, "fn f() -> i32 = 99999999999i32;")
	if f.Kind != pc.Numeric || !f.Fatal {
		t.Errorf("got kind %s fatal=%v, want fatal numeric", f.Kind, f.Fatal)
	}
	if f.Pos.Col != 17 {
		t.Errorf("got col %d, want 17", f.Pos.Col)
	}

	_, err := pc.Parse(parser.Expr(), "99999999999i32", "expr.pf")
	var ef *pc.Failure
	if !errors.As(err, &ef) || ef.Kind != pc.Numeric {
		t.Errorf("got %v, want numeric failure", err)
	}
}

// ---- 2. Root aggregation ----

func TestRootCountsDeclarations(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\t ", nil},
		{"comments only", "// nothing\n/* here */", nil},
		{"one", "fn a() -> bool = true;", []string{"a"}},
		{"adjacent", "fn a() -> bool = true;fn b() -> bool = false;", []string{"a", "b"}},
		{"with comments", `
// first
fn a() -> i32 = 1;
/* second */ fn b(x: f32) -> f32 = x; // trailing
fn c() -> i32 = a();
`, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.source)
			if root.Items == nil {
				t.Fatal("Items must be non-nil")
			}
			var names []string
			for _, it := range root.Items {
				names = append(names, it.(*ast.FnDecl).Name.Name)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Errorf("got %v, want %v", names, tt.want)
			}
		})
	}
}

func TestCommentsDoNotChangeTokens(t *testing.T) {
	plain := mustParse(t, "fn add(a: i32, b: i32) -> i32 = add(a: a, b: b);")
	commented := mustParse(t, "fn/**/add(a/* x */: i32,// c\n b: i32)->i32=add(a:a,b:b)/*end*/;")

	a := plain.Items[0].(*ast.FnDecl)
	b := commented.Items[0].(*ast.FnDecl)
	if a.Name.Name != b.Name.Name || len(a.Params) != len(b.Params) {
		t.Fatalf("declarations differ: %+v vs %+v", a, b)
	}
	ca, cb := a.Body.(*ast.FnCall), b.Body.(*ast.FnCall)
	if len(ca.Args) != len(cb.Args) {
		t.Errorf("got %d args, want %d", len(cb.Args), len(ca.Args))
	}
}

// ---- 3. Types ----

func TestPrimitiveTypes(t *testing.T) {
	tests := []struct {
		source string
		want   ast.Primitive
	}{
		{"bool", ast.Bool},
		{"i32", ast.I32},
		{"f32", ast.F32},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			pt, ok := returnType(t, tt.source).(*ast.PrimitiveType)
			if !ok {
				t.Fatalf("expected PrimitiveType, got %T", returnType(t, tt.source))
			}
			if pt.Prim != tt.want {
				t.Errorf("got %s, want %s", pt.Prim, tt.want)
			}
		})
	}
}

func TestKeywordPrefixIsCustomType(t *testing.T) {
	ct, ok := returnType(t, "i32x").(*ast.CustomType)
	if !ok {
		t.Fatalf("expected CustomType, got %T", returnType(t, "i32x"))
	}
	if ct.Name != "i32x" {
		t.Errorf("got %q", ct.Name)
	}
}

func TestFunctionType(t *testing.T) {
	ft, ok := returnType(t, "(i32, bool) -> f32").(*ast.FunctionType)
	if !ok {
		t.Fatal("expected FunctionType")
	}
	if len(ft.Params) != 2 {
		t.Fatalf("got %d params", len(ft.Params))
	}
	if p := ft.Params[1].(*ast.PrimitiveType); p.Prim != ast.Bool {
		t.Errorf("got %s", p.Prim)
	}
	if r := ft.Return.(*ast.PrimitiveType); r.Prim != ast.F32 {
		t.Errorf("got %s", r.Prim)
	}

	empty := returnType(t, "() -> bool").(*ast.FunctionType)
	if len(empty.Params) != 0 {
		t.Errorf("got %d params", len(empty.Params))
	}

	// Function types nest on both sides of the arrow.
	nested := returnType(t, "((i32) -> i32) -> () -> bool").(*ast.FunctionType)
	if _, ok := nested.Params[0].(*ast.FunctionType); !ok {
		t.Errorf("got param %T", nested.Params[0])
	}
	if _, ok := nested.Return.(*ast.FunctionType); !ok {
		t.Errorf("got return %T", nested.Return)
	}
}

func TestCustomType(t *testing.T) {
	tests := []struct {
		source   string
		name     string
		generics []string
	}{
		{"Point", "Point", nil},
		{"List<T>", "List", []string{"T"}},
		{"Map < K , V >", "Map", []string{"K", "V"}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			ct, ok := returnType(t, tt.source).(*ast.CustomType)
			if !ok {
				t.Fatal("expected CustomType")
			}
			if ct.Name != tt.name || !reflect.DeepEqual(ct.Generics, tt.generics) {
				t.Errorf("got %s %v", ct.Name, ct.Generics)
			}
		})
	}
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing type", "fn f(x: ) -> i32 = x;", "expected type, found ')'"},
		{"empty generics", "fn f() -> List<> = x;", "expected identifier"},
		{"trailing comma generics", "fn f() -> Map<K,> = x;", "expected identifier"},
		{"missing arrow", "fn f() -> (i32) = x;", "expected '->'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFail(t, tt.source)
			if !strings.HasPrefix(f.Describe(), tt.want) {
				t.Errorf("got %q, want prefix %q", f.Describe(), tt.want)
			}
		})
	}
}

// ---- 4. Expressions ----

func TestLiteralExpressions(t *testing.T) {
	if b, ok := body(t, "true").(*ast.BoolLiteral); !ok || !b.Value {
		t.Errorf("got %#v", body(t, "true"))
	}
	if i, ok := body(t, "-42").(*ast.IntLiteral); !ok || i.Value != -42 || i.Text != "-42" {
		t.Errorf("got %#v", body(t, "-42"))
	}
	if i, ok := body(t, "1e3i32").(*ast.IntLiteral); !ok || i.Value != 1000 {
		t.Errorf("got %#v", body(t, "1e3i32"))
	}
	if f, ok := body(t, "1.5").(*ast.FloatLiteral); !ok || f.Value != 1.5 {
		t.Errorf("got %#v", body(t, "1.5"))
	}
	if f, ok := body(t, ".5f32").(*ast.FloatLiteral); !ok || f.Value != 0.5 {
		t.Errorf("got %#v", body(t, ".5f32"))
	}
}

func TestReferenceExpressions(t *testing.T) {
	if r, ok := body(t, "trueish").(*ast.VarRef); !ok || r.Name.Name != "trueish" {
		t.Errorf("got %#v", body(t, "trueish"))
	}
	if r, ok := body(t, "_tmp").(*ast.VarRef); !ok || r.Name.Name != "_tmp" {
		t.Errorf("got %#v", body(t, "_tmp"))
	}
	call, ok := body(t, "now()").(*ast.FnCall)
	if !ok {
		t.Fatalf("got %T", body(t, "now()"))
	}
	if call.Args == nil || len(call.Args) != 0 {
		t.Errorf("got %v, want empty non-nil args", call.Args)
	}
	// Whitespace between callee and '(' still makes a call.
	if _, ok := body(t, "g (x: y)").(*ast.FnCall); !ok {
		t.Errorf("got %T", body(t, "g (x: y)"))
	}
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   pc.Kind
		want   string
	}{
		{"missing body", "fn f() -> i32 = ;", pc.Syntactic, "expected expression"},
		{"reserved body", "fn f() -> i32 = fn;", pc.Syntactic, "expected expression"},
		{"expression argument", "fn f() -> i32 = g(a: 1);", pc.Lexical, "expected identifier"},
		{"positional argument", "fn f() -> i32 = g(a);", pc.Syntactic, "expected ':'"},
		{"trailing comma", "fn f() -> i32 = g(a: b,);", pc.Lexical, "expected identifier"},
		{"missing semicolon", "fn f() -> i32 = x", pc.Syntactic, "expected '(' or ';'"},
		{"float overflow", "fn f() -> f32 = 1.0e39;", pc.Numeric, "float literal out of f32 range"},
		{"not integral", "fn f() -> i32 = 15e-1;", pc.Numeric, "integer literal is not a whole number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFail(t, tt.source)
			if f.Kind != tt.kind {
				t.Errorf("got kind %s, want %s (%v)", f.Kind, tt.kind, f)
			}
			if !strings.HasPrefix(f.Describe(), tt.want) {
				t.Errorf("got %q, want prefix %q", f.Describe(), tt.want)
			}
		})
	}
}

// ---- 5. Declarations ----

func TestDeclarationShapes(t *testing.T) {
	fn := singleDecl(t, "fn   pick ( a :bool,b: Pair<A, B> , c:(i32)->i32 )->f32=c(x: a);")
	if fn.Name.Name != "pick" || len(fn.Params) != 3 {
		t.Fatalf("got %s with %d params", fn.Name.Name, len(fn.Params))
	}
	if _, ok := fn.Params[1].Type.(*ast.CustomType); !ok {
		t.Errorf("got %T", fn.Params[1].Type)
	}
	if _, ok := fn.Params[2].Type.(*ast.FunctionType); !ok {
		t.Errorf("got %T", fn.Params[2].Type)
	}
}

func TestDeclarationErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"keyword glued to name", "fnadd() -> i32 = x;"},
		{"reserved name", "fn true() -> i32 = x;"},
		{"underscore name", "fn _() -> i32 = x;"},
		{"digit name", "fn 1f() -> i32 = x;"},
		{"missing arrow", "fn f() i32 = x;"},
		{"clauses reordered", "fn f() = x -> i32;"},
		{"trailing comma params", "fn f(a: i32,) -> i32 = a;"},
		{"untyped param", "fn f(a) -> i32 = a;"},
		{"unterminated comment", "fn f() -> i32 = x; /* open"},
		{"missing semicolon at eof", "fn f() -> i32 = 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, tt.source)
		})
	}
}

func TestUnterminatedCommentIsLexical(t *testing.T) {
	f := mustFail(t, "fn f() -> i32 = x;\n/* open")
	if f.Kind != pc.Lexical || f.Pos.Line != 2 || f.Pos.Col != 1 {
		t.Errorf("got %s at %s", f.Kind, f.Pos)
	}
}

// ---- 6. Spans ----

func TestSpansExcludeTrivia(t *testing.T) {
	src := "  fn id(x: i32) -> i32 = x;  // done\n"
	fn := singleDecl(t, src)
	want := ast.Span{File: "test.pf", StartLine: 1, StartCol: 3, EndLine: 1, EndCol: 28}
	if fn.Span != want {
		t.Errorf("got %+v, want %+v", fn.Span, want)
	}
	if got := fn.Params[0].Span; got.StartCol != 9 || got.EndCol != 15 {
		t.Errorf("got param span %+v", got)
	}
	if got := fn.Body.NodeSpan(); got.StartCol != 26 || got.EndCol != 27 {
		t.Errorf("got body span %+v", got)
	}
}

func TestSpansAcrossLines(t *testing.T) {
	fn := singleDecl(t, "fn f(\n  a: i32\n) -> i32 =\n  g(a: a);")
	if fn.Span.StartLine != 1 || fn.Span.EndLine != 4 {
		t.Errorf("got %+v", fn.Span)
	}
	if got := fn.Body.NodeSpan(); got.StartLine != 4 || got.StartCol != 3 || got.EndCol != 10 {
		t.Errorf("got body span %+v", got)
	}
}

// ---- 7. ParseFile ----

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.pf")
	if err := os.WriteFile(path, []byte("fn id(x: i32) -> i32 = x;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	root, err := parser.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Span.File != path || len(root.Items) != 1 {
		t.Errorf("got %+v", root)
	}

	_, err = parser.ParseFile(filepath.Join(dir, "missing.pf"))
	if err == nil {
		t.Fatal("expected error")
	}
	var f *pc.Failure
	if errors.As(err, &f) {
		t.Error("read errors must not be parse failures")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want wrapped ErrNotExist", err)
	}
}

// ---- 8. Concurrency ----

func TestConcurrentParses(t *testing.T) {
	sources := []string{
		"fn id(x: i32) -> i32 = x;",
		"fn add(a: i32, b: i32) -> i32 = add(a: a, b: b);",
		"fn k() -> (i32) -> bool = pred;",
	}
	done := make(chan error, 30)
	for i := 0; i < 30; i++ {
		src := sources[i%len(sources)]
		go func() {
			_, err := parser.Parse(src, "c.pf")
			done <- err
		}()
	}
	for i := 0; i < 30; i++ {
		if err := <-done; err != nil {
			t.Error(err)
		}
	}
}
