// Package render dumps a pflc syntax tree for inspection as an indented
// outline, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Limeth/pflc/pkg/ast"
	"github.com/Limeth/pflc/pkg/formatter"
)

// Format selects the output encoding.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// Formats lists the accepted output formats.
func Formats() []Format { return []Format{Text, JSON, YAML} }

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Options tune the dump.
type Options struct {
	// Spans adds each node's source location.
	Spans bool
}

// Node is the serializable form of a tree node. Field order is the output
// order.
type Node struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	Text     string   `json:"text,omitempty" yaml:"text,omitempty"`
	Span     string   `json:"span,omitempty" yaml:"span,omitempty"`
	Generics []string `json:"generics,omitempty" yaml:"generics,omitempty"`
	Params   []*Node  `json:"params,omitempty" yaml:"params,omitempty"`
	Type     *Node    `json:"type,omitempty" yaml:"type,omitempty"`
	Return   *Node    `json:"return,omitempty" yaml:"return,omitempty"`
	Body     *Node    `json:"body,omitempty" yaml:"body,omitempty"`
	Args     []*Node  `json:"args,omitempty" yaml:"args,omitempty"`
	Items    []*Node  `json:"items,omitempty" yaml:"items,omitempty"`
}

// Tree converts a Root into its serializable form.
func Tree(root *ast.Root, opts Options) *Node {
	b := builder{opts: opts}
	n := b.node(root, root.Kind())
	for _, it := range root.Items {
		n.Items = append(n.Items, b.item(it))
	}
	return n
}

// Render writes root to w in the requested format.
func Render(w io.Writer, root *ast.Root, format Format, opts Options) error {
	tree := Tree(root, opts)
	switch format {
	case JSON:
		b, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case Text, "":
		_, err := io.WriteString(w, Outline(tree))
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

// Outline renders a tree as an indented outline, one node per line, with the
// role of each child in front of its kind.
func Outline(n *Node) string {
	var sb strings.Builder
	writeOutline(&sb, n, "", 0)
	return sb.String()
}

func writeOutline(sb *strings.Builder, n *Node, role string, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if role != "" {
		sb.WriteString(role + " ")
	}
	sb.WriteString(n.Kind)
	if n.Name != "" {
		sb.WriteString(" " + n.Name)
	}
	if len(n.Generics) > 0 {
		sb.WriteString("<" + strings.Join(n.Generics, ", ") + ">")
	}
	if n.Value != "" {
		sb.WriteString(" = " + n.Value)
	}
	if n.Text != "" && n.Text != n.Value {
		sb.WriteString(" (" + n.Text + ")")
	}
	if n.Span != "" {
		sb.WriteString(" @ " + n.Span)
	}
	sb.WriteByte('\n')

	for _, c := range n.Items {
		writeOutline(sb, c, "", depth+1)
	}
	for _, c := range n.Params {
		writeOutline(sb, c, "param", depth+1)
	}
	if n.Type != nil {
		writeOutline(sb, n.Type, "type", depth+1)
	}
	if n.Return != nil {
		writeOutline(sb, n.Return, "return", depth+1)
	}
	if n.Body != nil {
		writeOutline(sb, n.Body, "body", depth+1)
	}
	for _, c := range n.Args {
		writeOutline(sb, c, "arg", depth+1)
	}
}

type builder struct {
	opts Options
}

func (b builder) node(n ast.Node, kind string) *Node {
	out := &Node{Kind: kind}
	if b.opts.Spans {
		s := n.NodeSpan()
		out.Span = fmt.Sprintf("%s:%d:%d-%d:%d", s.File, s.StartLine, s.StartCol, s.EndLine, s.EndCol)
	}
	return out
}

func (b builder) item(it ast.Item) *Node {
	switch item := it.(type) {
	case *ast.FnDecl:
		n := b.node(item, item.Kind())
		n.Name = item.Name.Name
		for _, p := range item.Params {
			pn := b.node(p, p.Kind())
			pn.Name = p.Name.Name
			pn.Type = b.typ(p.Type)
			n.Params = append(n.Params, pn)
		}
		n.Return = b.typ(item.Return)
		n.Body = b.expr(item.Body)
		return n
	}
	return &Node{Kind: fmt.Sprintf("%T", it)}
}

func (b builder) typ(t ast.Type) *Node {
	n := b.node(t, t.Kind())
	switch typ := t.(type) {
	case *ast.PrimitiveType:
		n.Name = typ.Prim.String()
	case *ast.FunctionType:
		for _, p := range typ.Params {
			n.Params = append(n.Params, b.typ(p))
		}
		n.Return = b.typ(typ.Return)
	case *ast.CustomType:
		n.Name = typ.Name
		n.Generics = typ.Generics
	}
	return n
}

func (b builder) expr(e ast.Expr) *Node {
	n := b.node(e, e.Kind())
	switch expr := e.(type) {
	case *ast.BoolLiteral:
		n.Value = strconv.FormatBool(expr.Value)
	case *ast.IntLiteral:
		n.Value = strconv.FormatInt(int64(expr.Value), 10)
		n.Text = expr.Text
	case *ast.FloatLiteral:
		n.Value = strconv.FormatFloat(float64(expr.Value), 'g', -1, 32)
		n.Text = expr.Text
	case *ast.VarRef:
		n.Name = expr.Name.Name
	case *ast.FnCall:
		n.Name = expr.Callee.Name
		for _, a := range expr.Args {
			an := b.node(a, a.Kind())
			an.Name = a.Name.Name
			an.Value = a.Value.Name
			n.Args = append(n.Args, an)
		}
	}
	return n
}

// Summary is a one-line description of each declaration, as printed by the
// check command.
func Summary(root *ast.Root) []string {
	out := make([]string, 0, len(root.Items))
	for _, it := range root.Items {
		if fn, ok := it.(*ast.FnDecl); ok {
			out = append(out, fn.Name.Name+": "+formatter.FormatType(fn.Signature()))
		}
	}
	return out
}
