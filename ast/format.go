package ast

import (
	"fmt"
	"strings"
)

// Format prints e in canonical source form: single spaces around binary
// operators and parentheses only where precedence requires them. Parsing
// the output yields an equivalent tree.
func Format(e Expr) string {
	var b strings.Builder
	format(&b, e, 0)
	return b.String()
}

// format writes e, parenthesizing it when its precedence is below prec.
func format(b *strings.Builder, e Expr, prec int) {
	switch n := e.(type) {
	case *IntLit:
		b.WriteString(n.Raw)
	case *FloatLit:
		b.WriteString(n.Raw)
	case *BoolLit:
		fmt.Fprint(b, n.Value)
	case *StringLit:
		b.WriteString(Quote(n.Value))
	case *NullLit:
		b.WriteString("null")
	case *DateLit:
		b.WriteString("@" + n.Raw)
	case *DateTimeLit:
		b.WriteString("@" + n.Raw)
	case *DurationLit:
		b.WriteString("@" + n.Raw)
	case *FieldPath:
		b.WriteString(n.Path())
	case *Temporal:
		b.WriteString(n.Keyword.String())

	case *Unary:
		open(b, prec > 9)
		b.WriteString(n.Op.String())
		format(b, n.X, 9)
		closeParen(b, prec > 9)

	case *Binary:
		p := n.Op.Precedence()
		open(b, prec > p)
		lp, rp := p, p+1
		if n.Op == Pow {
			lp, rp = p+1, p // right associative
		}
		format(b, n.X, lp)
		b.WriteString(" " + n.Op.String() + " ")
		format(b, n.Y, rp)
		closeParen(b, prec > p)

	case *Call:
		if n.Infix && len(n.Args) == 2 {
			open(b, prec > 4)
			format(b, n.Args[0], 5)
			b.WriteString(" " + n.Name + " ")
			format(b, n.Args[1], 5)
			closeParen(b, prec > 4)
			return
		}
		args := n.Args
		if n.Piped && len(args) > 0 {
			format(b, args[0], 10)
			b.WriteString(" |> ")
			args = args[1:]
		}
		b.WriteString(n.Name + "(")
		for i, a := range args {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, a, 0)
		}
		b.WriteString(")")

	case *Lambda:
		b.WriteString("fn(" + n.Param + " ~> ")
		format(b, n.Body, 0)
		b.WriteString(")")

	case *Let:
		open(b, prec > 0)
		b.WriteString("let " + n.Name + " = ")
		format(b, n.Value, 0)
		b.WriteString(" in ")
		format(b, n.Body, 0)
		closeParen(b, prec > 0)

	case *Guard:
		open(b, prec > 0)
		b.WriteString("guard ")
		format(b, n.Cond, 0)
		b.WriteString(" in ")
		format(b, n.Body, 0)
		closeParen(b, prec > 0)

	case *If:
		open(b, prec > 0)
		b.WriteString("if ")
		format(b, n.Cond, 0)
		b.WriteString(" then ")
		format(b, n.Then, 0)
		b.WriteString(" else ")
		format(b, n.Else, 0)
		closeParen(b, prec > 0)

	case *ArrayLit:
		b.WriteString("[")
		for i, el := range n.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, el, 0)
		}
		b.WriteString("]")

	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

func open(b *strings.Builder, paren bool) {
	if paren {
		b.WriteByte('(')
	}
}

func closeParen(b *strings.Builder, paren bool) {
	if paren {
		b.WriteByte(')')
	}
}

// Quote returns s as a double-quoted rule string literal.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
