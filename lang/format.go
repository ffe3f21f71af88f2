package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes exprs as native source text to w, one top-level construct per
// statement, each terminated by ";".
//
// If indent > 0, every construct starts on its own line and block bodies are
// broken over lines indented by indent spaces per level. Otherwise the
// output is a single line.
func Format(w io.Writer, indent int, exprs ...Expr) error {
	var b strings.Builder

	p := printer{b: &b, indent: indent}

	for i, e := range exprs {
		if i > 0 {
			if indent > 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}

		p.expr(e)
		b.WriteByte(';')
	}

	if len(exprs) > 0 {
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// FormatResult renders an evaluation result for display.
func FormatResult(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatJSON writes the expression trees as a JSON array to w.
func FormatJSON(_ context.Context, w io.Writer, indent int, exprs ...Expr) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(ToNative(exprs...), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(ToNative(exprs...))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the expression trees as a YAML sequence to w.
func FormatYAML(ctx context.Context, w io.Writer, indent int, exprs ...Expr) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, ToNative(exprs...), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func (n *Number) String() string { return render(n) }
func (n *Var) String() string    { return render(n) }
func (n *Binary) String() string { return render(n) }
func (n *Let) String() string    { return render(n) }
func (n *Define) String() string { return render(n) }
func (n *Call) String() string   { return render(n) }
func (n *Return) String() string { return render(n) }
func (n *If) String() string     { return render(n) }

func render(e Expr) string {
	var b strings.Builder

	p := printer{b: &b}
	p.expr(e)

	return b.String()
}

// printer renders expression trees with the minimum parentheses required to
// reproduce the same tree when parsed.
type printer struct {
	b      *strings.Builder
	indent int
	depth  int
}

func (p *printer) expr(e Expr) {
	switch n := e.(type) {
	case *Number:
		p.b.WriteString(formatNumber(n.Value))

	case *Var:
		p.b.WriteString(n.Name)

	case *Binary:
		p.operand(n.Left, n.Op, false)
		p.b.WriteString(" " + n.Op.String() + " ")
		p.operand(n.Right, n.Op, true)

	case *Let:
		p.b.WriteString("let " + n.Name + " = ")
		p.expr(n.Value)

	case *Return:
		p.b.WriteString("return ")
		p.expr(n.Value)

	case *Call:
		p.b.WriteString(n.Name + "(")

		for i, arg := range n.Args {
			if i > 0 {
				p.b.WriteString(", ")
			}

			p.expr(arg)
		}

		p.b.WriteByte(')')

	case *Define:
		p.b.WriteString("define " + n.Name + "(" + strings.Join(n.Params, ", ") + ") ")
		p.block(n.Body)

	case *If:
		for i, br := range n.Branches {
			if i > 0 {
				p.b.WriteString(" else ")
			}

			p.b.WriteString("if (")
			p.expr(br.Left)
			p.b.WriteString(" == ")
			p.expr(br.Right)
			p.b.WriteString(") ")
			p.block(br.Body)
		}

		p.b.WriteString(" else ")
		p.block(n.Else)

	default:
		p.b.WriteString("<nil>")
	}
}

// operand writes a child of a binary operation, parenthesized if its own
// binding power would otherwise regroup it.
func (p *printer) operand(e Expr, parent Op, right bool) {
	prec := 4 // atoms

	switch n := e.(type) {
	case *Binary:
		prec = n.Op.precedence()
	case *Let, *Define, *Return, *If:
		prec = 0
	}

	wrap := prec < parent.precedence()
	if prec == parent.precedence() {
		// Same level: only the side opposite the associativity needs grouping.
		wrap = right != parent.rightAssoc()
	}

	if wrap {
		p.b.WriteByte('(')
		p.expr(e)
		p.b.WriteByte(')')

		return
	}

	p.expr(e)
}

func (p *printer) block(body []Expr) {
	if len(body) == 0 {
		p.b.WriteString("{}")

		return
	}

	if p.indent <= 0 {
		p.b.WriteString("{ ")

		for _, e := range body {
			p.expr(e)
			p.b.WriteString("; ")
		}

		p.b.WriteByte('}')

		return
	}

	p.b.WriteString("{\n")
	p.depth++

	for _, e := range body {
		p.b.WriteString(strings.Repeat(" ", p.depth*p.indent))
		p.expr(e)
		p.b.WriteString(";\n")
	}

	p.depth--
	p.b.WriteString(strings.Repeat(" ", p.depth*p.indent) + "}")
}

// formatNumber renders a literal value in a form the parser accepts.
// The grammar has no unary minus or non-finite literals, so those values are
// rendered as equivalent arithmetic.
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "(0 / 0)"
	case math.IsInf(v, 1):
		return "(1 / 0)"
	case math.IsInf(v, -1):
		return "(0 - 1 / 0)"
	case v < 0:
		return "(0 - " + formatNumber(-v) + ")"
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
