// Package optimize folds constant sub-expressions of a typed rule.
//
// The pass runs once, bottom-up. A node is replaced only when the operands
// it depends on are literals; temporal keywords are never literals. Nodes
// are never modified: a changed node is rebuilt, unchanged subtrees are
// reused as they are.
package optimize

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/diag"
	"github.com/evoludigit/elo/elort"
	"github.com/evoludigit/elo/infer"
	"github.com/evoludigit/elo/internal/iso8601"
	"github.com/evoludigit/elo/schema"
)

// Optimize returns e with constant sub-expressions folded. info is the
// inference result for e; it decides whether an operand is boolean for the
// absorption rules and which overload a call resolved to. A nil info
// disables the rewrites that depend on it.
func Optimize(e ast.Expr, info *infer.Info) ast.Expr {
	o := optimizer{info: info}
	return o.expr(e)
}

type optimizer struct {
	info *infer.Info
}

func (o optimizer) expr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Unary:
		x := o.expr(n.X)
		if r := foldUnary(n, x); r != nil {
			return r
		}
		if x == n.X {
			return n
		}
		return &ast.Unary{Op: n.Op, X: x, OpLoc: n.OpLoc}

	case *ast.Binary:
		x, y := o.expr(n.X), o.expr(n.Y)
		if r := o.foldBinary(n, x, y); r != nil {
			return r
		}
		if x == n.X && y == n.Y {
			return n
		}
		return &ast.Binary{Op: n.Op, X: x, Y: y, OpLoc: n.OpLoc}

	case *ast.Call:
		args, changed := o.list(n.Args)
		if r := o.foldCall(n, args); r != nil {
			return r
		}
		if !changed {
			return n
		}
		c := *n
		c.Args = args
		return &c

	case *ast.Lambda:
		body := o.expr(n.Body)
		if body == n.Body {
			return n
		}
		l := *n
		l.Body = body
		return &l

	case *ast.Let:
		value, body := o.expr(n.Value), o.expr(n.Body)
		if value == n.Value && body == n.Body {
			return n
		}
		l := *n
		l.Value, l.Body = value, body
		return &l

	case *ast.Guard:
		cond, body := o.expr(n.Cond), o.expr(n.Body)
		if b, ok := cond.(*ast.BoolLit); ok {
			if b.Value && o.boolean(n.Body) {
				return body
			}
			if !b.Value {
				return &ast.BoolLit{Value: false, Loc: n.Loc}
			}
		}
		if cond == n.Cond && body == n.Body {
			return n
		}
		return &ast.Guard{Cond: cond, Body: body, Loc: n.Loc}

	case *ast.If:
		cond, then, els := o.expr(n.Cond), o.expr(n.Then), o.expr(n.Else)
		if b, ok := cond.(*ast.BoolLit); ok && o.sameType(n, n.Then) && o.sameType(n, n.Else) {
			if b.Value {
				return then
			}
			return els
		}
		if cond == n.Cond && then == n.Then && els == n.Else {
			return n
		}
		return &ast.If{Cond: cond, Then: then, Else: els, Loc: n.Loc}

	case *ast.ArrayLit:
		elems, changed := o.list(n.Elems)
		if !changed {
			return n
		}
		return &ast.ArrayLit{Elems: elems, Loc: n.Loc}
	}
	return e
}

func (o optimizer) list(es []ast.Expr) ([]ast.Expr, bool) {
	out := make([]ast.Expr, len(es))
	changed := false
	for i, e := range es {
		out[i] = o.expr(e)
		changed = changed || out[i] != e
	}
	return out, changed
}

// boolean reports whether e of the original tree is statically Boolean.
func (o optimizer) boolean(e ast.Expr) bool {
	if o.info == nil {
		return false
	}
	return schema.Equal(o.info.TypeOf(e), schema.Boolean{})
}

func (o optimizer) sameType(a, b ast.Expr) bool {
	if o.info == nil {
		return false
	}
	return schema.Equal(o.info.TypeOf(a), o.info.TypeOf(b))
}

func foldUnary(n *ast.Unary, x ast.Expr) ast.Expr {
	loc := n.Span()
	switch v := x.(type) {
	case *ast.BoolLit:
		if n.Op == ast.Not {
			return &ast.BoolLit{Value: !v.Value, Loc: loc}
		}
	case *ast.IntLit:
		switch n.Op {
		case ast.Neg:
			if v.Value != math.MinInt64 {
				return intLit(-v.Value, loc)
			}
		case ast.Plus:
			return intLit(v.Value, loc)
		}
	case *ast.FloatLit:
		switch n.Op {
		case ast.Neg:
			return floatLit(-v.Value, loc)
		case ast.Plus:
			return floatLit(v.Value, loc)
		}
	}
	return nil
}

func (o optimizer) foldBinary(n *ast.Binary, x, y ast.Expr) ast.Expr {
	loc := n.Span()
	if n.Op.IsLogical() {
		return o.absorb(n, x, y)
	}
	if n.Op == ast.Alt {
		if _, ok := x.(*ast.NullLit); ok {
			return y
		}
		return nil
	}

	switch a := x.(type) {
	case *ast.IntLit:
		switch b := y.(type) {
		case *ast.IntLit:
			return foldInts(n.Op, a.Value, b.Value, loc)
		case *ast.FloatLit:
			return foldFloats(n.Op, float64(a.Value), b.Value, loc)
		}
	case *ast.FloatLit:
		switch b := y.(type) {
		case *ast.IntLit:
			return foldFloats(n.Op, a.Value, float64(b.Value), loc)
		case *ast.FloatLit:
			return foldFloats(n.Op, a.Value, b.Value, loc)
		}
	case *ast.StringLit:
		if b, ok := y.(*ast.StringLit); ok {
			return foldStrings(n.Op, a.Value, b.Value, loc)
		}
	case *ast.BoolLit:
		if b, ok := y.(*ast.BoolLit); ok {
			switch n.Op {
			case ast.Eq:
				return &ast.BoolLit{Value: a.Value == b.Value, Loc: loc}
			case ast.Ne:
				return &ast.BoolLit{Value: a.Value != b.Value, Loc: loc}
			}
		}
	case *ast.DurationLit:
		if b, ok := y.(*ast.DurationLit); ok {
			return foldDurations(n.Op, a.Value, b.Value, loc)
		}
	}
	return nil
}

// absorb applies the identities of && and ||. The left operand is always
// evaluated first, so an operand is dropped only when the result no longer
// depends on it. Identity rewrites (true && x to x) need x to be Boolean to
// keep the type of the expression.
func (o optimizer) absorb(n *ast.Binary, x, y ast.Expr) ast.Expr {
	loc := n.Span()
	and := n.Op == ast.And
	a, aok := x.(*ast.BoolLit)
	b, bok := y.(*ast.BoolLit)

	switch {
	case aok && bok:
		if and {
			return &ast.BoolLit{Value: a.Value && b.Value, Loc: loc}
		}
		return &ast.BoolLit{Value: a.Value || b.Value, Loc: loc}
	case aok:
		if a.Value != and {
			// false && y, true || y
			return &ast.BoolLit{Value: a.Value, Loc: loc}
		}
		if o.boolean(n.Y) {
			return y
		}
	case bok:
		if b.Value != and {
			// x && false, x || true
			return &ast.BoolLit{Value: b.Value, Loc: loc}
		}
		if o.boolean(n.X) {
			return x
		}
	}
	return nil
}

func foldInts(op ast.Op, a, b int64, loc diag.Span) ast.Expr {
	if r, ok := compareOrdered(op, a, b, loc); ok {
		return r
	}
	var v int64
	switch op {
	case ast.Add:
		v = a + b
		if (v > a) != (b > 0) {
			return nil
		}
	case ast.Sub:
		v = a - b
		if (v < a) != (b > 0) {
			return nil
		}
	case ast.Mul:
		var ok bool
		if v, ok = elort.CheckedMulInt(a, b); !ok {
			return nil
		}
	case ast.Div:
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return nil
		}
		v = a / b
	case ast.Mod:
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return nil
		}
		v = a % b
	case ast.Pow:
		var ok bool
		if v, ok = elort.CheckedPowInt(a, b); !ok {
			return nil
		}
	default:
		return nil
	}
	return intLit(v, loc)
}

func foldFloats(op ast.Op, a, b float64, loc diag.Span) ast.Expr {
	if r, ok := compareOrdered(op, a, b, loc); ok {
		return r
	}
	var v float64
	switch op {
	case ast.Add:
		v = a + b
	case ast.Sub:
		v = a - b
	case ast.Mul:
		v = a * b
	case ast.Div:
		if b == 0 {
			return nil
		}
		v = a / b
	case ast.Pow:
		v = math.Pow(a, b)
	default:
		return nil
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return floatLit(v, loc)
}

func foldStrings(op ast.Op, a, b string, loc diag.Span) ast.Expr {
	if r, ok := compareOrdered(op, a, b, loc); ok {
		return r
	}
	if op == ast.Add {
		return &ast.StringLit{Value: a + b, Loc: loc}
	}
	return nil
}

func foldDurations(op ast.Op, a, b time.Duration, loc diag.Span) ast.Expr {
	if r, ok := compareOrdered(op, a, b, loc); ok {
		return r
	}
	var v time.Duration
	switch op {
	case ast.Add:
		v = a + b
		if (v > a) != (b > 0) {
			return nil
		}
	case ast.Sub:
		v = a - b
		if (v < a) != (b > 0) {
			return nil
		}
	default:
		return nil
	}
	if v < 0 {
		// negative durations have no literal form
		return nil
	}
	return &ast.DurationLit{Value: v, Raw: iso8601.FormatDuration(v), Loc: loc}
}

type ordered interface {
	~int64 | ~float64 | ~string
}

func compareOrdered[T ordered](op ast.Op, a, b T, loc diag.Span) (ast.Expr, bool) {
	var v bool
	switch op {
	case ast.Eq:
		v = a == b
	case ast.Ne:
		v = a != b
	case ast.Lt:
		v = a < b
	case ast.Le:
		v = a <= b
	case ast.Gt:
		v = a > b
	case ast.Ge:
		v = a >= b
	default:
		return nil, false
	}
	return &ast.BoolLit{Value: v, Loc: loc}, true
}

// foldCall evaluates string functions of literals and the date, datetime and
// duration constructors. matches is left to run time.
func (o optimizer) foldCall(n *ast.Call, args []ast.Expr) ast.Expr {
	if o.info == nil {
		return nil
	}
	sig, ok := o.info.Calls[n]
	if !ok {
		return nil
	}
	loc := n.Loc
	strs := make([]string, 0, len(args))
	for _, a := range args {
		s, ok := a.(*ast.StringLit)
		if !ok {
			return nil
		}
		strs = append(strs, s.Value)
	}

	switch len(strs) {
	case 1:
		s := strs[0]
		switch sig.Name {
		case "length":
			return intLit(int64(utf8.RuneCountInString(s)), loc)
		case "is_empty":
			return &ast.BoolLit{Value: s == "", Loc: loc}
		case "uppercase":
			return &ast.StringLit{Value: strings.ToUpper(s), Loc: loc}
		case "lowercase":
			return &ast.StringLit{Value: strings.ToLower(s), Loc: loc}
		case "trim":
			return &ast.StringLit{Value: strings.TrimSpace(s), Loc: loc}
		case "date":
			if t, err := iso8601.ParseDate(s); err == nil {
				return &ast.DateLit{Value: t, Raw: s, Loc: loc}
			}
		case "datetime":
			if t, err := iso8601.ParseDateTime(s); err == nil {
				return &ast.DateTimeLit{Value: t, Raw: s, Loc: loc}
			}
		case "duration":
			if d, err := iso8601.ParseDuration(s); err == nil {
				return &ast.DurationLit{Value: d, Raw: s, Loc: loc}
			}
		}
	case 2:
		switch sig.Name {
		case "contains":
			return &ast.BoolLit{Value: strings.Contains(strs[0], strs[1]), Loc: loc}
		case "starts_with":
			return &ast.BoolLit{Value: strings.HasPrefix(strs[0], strs[1]), Loc: loc}
		case "ends_with":
			return &ast.BoolLit{Value: strings.HasSuffix(strs[0], strs[1]), Loc: loc}
		}
	}
	return nil
}

func intLit(v int64, loc diag.Span) *ast.IntLit {
	return &ast.IntLit{Value: v, Raw: strconv.FormatInt(v, 10), Loc: loc}
}

// floatLit keeps a decimal point in Raw so the literal reads back as a float.
func floatLit(v float64, loc diag.Span) *ast.FloatLit {
	raw := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(raw, ".") {
		raw += ".0"
	}
	return &ast.FloatLit{Value: v, Raw: raw, Loc: loc}
}
