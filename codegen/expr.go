package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/diag"
	"github.com/evoludigit/elo/infer"
	"github.com/evoludigit/elo/schema"
	"github.com/evoludigit/elo/stdlib"
)

var (
	integerT  = schema.Integer{}
	floatT    = schema.Float{}
	booleanT  = schema.Boolean{}
	stringT   = schema.String{}
	durationT = schema.Duration{}
	nullT     = schema.Option{Elem: schema.Unknown{}}
)

func unsupported(e ast.Expr, format string, args ...interface{}) error {
	return diag.New(diag.CodeGenError, diag.Unsupported, e.Span(), format, args...)
}

// cond generates e as a Go bool.
func (g *generator) cond(e ast.Expr) (string, error) {
	code, err := g.expr(e)
	if err != nil {
		return "", err
	}
	return convert(code, g.info.TypeOf(e), booleanT), nil
}

// as generates e converted to type t.
func (g *generator) as(e ast.Expr, t schema.Type) (string, error) {
	code, err := g.expr(e)
	if err != nil {
		return "", err
	}
	return convert(code, g.info.TypeOf(e), t), nil
}

// typed generates e for a position where Go infers the variable type from
// the value, so untyped constants get their elo type.
func (g *generator) typed(e ast.Expr) (string, error) {
	code, err := g.expr(e)
	if err != nil {
		return "", err
	}
	t := g.info.TypeOf(e)
	switch {
	case isNullLit(e):
		return "(*any)(nil)", nil
	case isConst(e) && (schema.Equal(t, integerT) || schema.Equal(t, floatT)):
		return t.GoType() + "(" + code + ")", nil
	}
	return code, nil
}

// convert adapts code of type from to a position expecting type to.
func convert(code string, from, to schema.Type) string {
	switch {
	case schema.Equal(from, to):
		return code
	case schema.IsUnknown(from):
		switch to.(type) {
		case schema.Integer:
			return "elort.AsInt(" + code + ")"
		case schema.Float:
			return "elort.AsFloat(" + code + ")"
		case schema.String:
			return "elort.AsString(" + code + ")"
		case schema.Boolean:
			return "elort.Truthy(" + code + ")"
		case schema.Date, schema.DateTime:
			return "elort.AsTime(" + code + ")"
		case schema.Duration:
			return "elort.AsDuration(" + code + ")"
		case schema.Array:
			return "elort.AsList(" + code + ")"
		}
	case schema.Equal(from, nullT):
		if _, ok := to.(schema.Option); ok {
			return "(" + to.GoType() + ")(nil)"
		}
	case schema.Equal(from, integerT) && schema.Equal(to, floatT):
		return "float64(" + code + ")"
	}
	return code
}

func (g *generator) expr(e ast.Expr) (string, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		s := strconv.FormatInt(n.Value, 10)
		if n.Value < 0 {
			s = "(" + s + ")"
		}
		return s, nil
	case *ast.FloatLit:
		return floatCode(n.Value), nil
	case *ast.BoolLit:
		return strconv.FormatBool(n.Value), nil
	case *ast.StringLit:
		return strconv.Quote(n.Value), nil
	case *ast.NullLit:
		return "nil", nil
	case *ast.DateLit:
		g.require("time")
		return timeCode(n.Value), nil
	case *ast.DateTimeLit:
		g.require("time")
		return timeCode(n.Value), nil
	case *ast.DurationLit:
		g.require("time")
		return durationCode(n.Value), nil
	case *ast.Temporal:
		return "elort." + n.Keyword.GoName() + "()", nil
	case *ast.FieldPath:
		return g.fieldPath(n)
	case *ast.Unary:
		return g.unary(n)
	case *ast.Binary:
		return g.binary(n)
	case *ast.Call:
		return g.call(n)
	case *ast.Let:
		return g.let(n)
	case *ast.Guard:
		c, err := g.cond(n.Cond)
		if err != nil {
			return "", err
		}
		b, err := g.cond(n.Body)
		if err != nil {
			return "", err
		}
		return "(" + c + " && " + b + ")", nil
	case *ast.If:
		return g.ifExpr(n)
	case *ast.ArrayLit:
		return g.array(n)
	case *ast.Lambda:
		return "", unsupported(e, "fn(%s ~> ...) outside any or all", n.Param)
	}
	return "", unsupported(e, "cannot generate %T", e)
}

func floatCode(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	if v < 0 {
		s = "(" + s + ")"
	}
	return s
}

func timeCode(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("time.Date(%d, time.%s, %d, %d, %d, %d, %d, time.UTC)",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

var durationUnits = []struct {
	size time.Duration
	name string
}{
	{time.Hour, "time.Hour"},
	{time.Minute, "time.Minute"},
	{time.Second, "time.Second"},
	{time.Millisecond, "time.Millisecond"},
	{time.Microsecond, "time.Microsecond"},
}

func durationCode(d time.Duration) string {
	if d != 0 {
		for _, u := range durationUnits {
			if d%u.size == 0 {
				return fmt.Sprintf("(%d * %s)", int64(d/u.size), u.name)
			}
		}
	}
	return fmt.Sprintf("time.Duration(%d)", int64(d))
}

// isConst reports whether e is emitted as a Go constant expression.
func isConst(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.BoolLit:
		return true
	case *ast.Unary:
		return isConst(n.X)
	case *ast.Binary:
		switch n.Op {
		case ast.Pow, ast.Alt:
			return false
		}
		return isConst(n.X) && isConst(n.Y)
	}
	return false
}

// durConst is isConst extended to duration literals, which are emitted as
// constants of type time.Duration.
func durConst(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.DurationLit:
		return true
	case *ast.Unary:
		return durConst(n.X)
	case *ast.Binary:
		if n.Op.IsArithmetic() && n.Op != ast.Pow {
			return durConst(n.X) && durConst(n.Y)
		}
	}
	return isConst(e)
}

func isNullLit(e ast.Expr) bool {
	_, ok := e.(*ast.NullLit)
	return ok
}

func (g *generator) fieldPath(p *ast.FieldPath) (string, error) {
	ref, ok := g.info.Refs[p]
	if !ok {
		return "", unsupported(p, "unresolved reference %s", p.Path())
	}
	code := "input"
	if ref.Kind != infer.InputField {
		name, ok := g.vars[ref.Decl]
		if !ok {
			return "", unsupported(p, "%s refers to a binding outside the expression", p.Path())
		}
		g.used[name] = true
		code = name
	}
	for _, f := range ref.Fields {
		code += "." + f.GoField()
	}
	for _, name := range ref.Dynamic {
		code = fmt.Sprintf("elort.Field(%s, %q)", code, name)
	}
	if ref.Deref {
		code = "(*" + code + ")"
	}
	return code, nil
}

func (g *generator) unary(n *ast.Unary) (string, error) {
	switch n.Op {
	case ast.Not:
		x, err := g.cond(n.X)
		if err != nil {
			return "", err
		}
		return "!" + x, nil
	case ast.Plus:
		return g.expr(n.X)
	case ast.Neg:
		x, err := g.expr(n.X)
		if err != nil {
			return "", err
		}
		if schema.IsUnknown(g.info.TypeOf(n.X)) {
			return "elort.Arith(\"-\", 0, " + x + ")", nil
		}
		return "(-" + x + ")", nil
	}
	return "", unsupported(n, "unsupported operator %s", n.Op)
}

func (g *generator) binary(n *ast.Binary) (string, error) {
	switch {
	case n.Op.IsLogical():
		x, err := g.cond(n.X)
		if err != nil {
			return "", err
		}
		y, err := g.cond(n.Y)
		if err != nil {
			return "", err
		}
		return "(" + x + " " + n.Op.String() + " " + y + ")", nil
	case n.Op == ast.Alt:
		return g.alternative(n)
	case n.Op == ast.Eq || n.Op == ast.Ne:
		return g.equality(n)
	case n.Op.IsComparison():
		return g.ordering(n)
	case n.Op.IsArithmetic():
		return g.arith(n)
	}
	return "", unsupported(n, "unsupported operator %s", n.Op)
}

func (g *generator) operands(n *ast.Binary) (x, y string, xt, yt schema.Type, err error) {
	if x, err = g.expr(n.X); err != nil {
		return
	}
	if y, err = g.expr(n.Y); err != nil {
		return
	}
	return x, y, g.info.TypeOf(n.X), g.info.TypeOf(n.Y), nil
}

func isTime(t schema.Type) bool {
	switch t.(type) {
	case schema.Date, schema.DateTime:
		return true
	}
	return false
}

// equal compares two non-optional values of known types.
func equal(x string, xt schema.Type, y string, yt schema.Type) string {
	switch {
	case schema.IsUnknown(xt) || schema.IsUnknown(yt):
		return "elort.Equal(" + x + ", " + y + ")"
	case isTime(xt) && isTime(yt):
		return x + ".Equal(" + y + ")"
	case schema.IsNumeric(xt) && schema.IsNumeric(yt) && !schema.Equal(xt, yt):
		return "(" + convert(x, xt, floatT) + " == " + convert(y, yt, floatT) + ")"
	}
	return "(" + x + " == " + y + ")"
}

func (g *generator) equality(n *ast.Binary) (string, error) {
	negate := func(s string) string {
		if n.Op == ast.Ne {
			return "!" + s
		}
		return s
	}

	xn, yn := isNullLit(n.X), isNullLit(n.Y)
	if xn && yn {
		return strconv.FormatBool(n.Op == ast.Eq), nil
	}
	if xn || yn {
		other := n.X
		if xn {
			other = n.Y
		}
		code, err := g.expr(other)
		if err != nil {
			return "", err
		}
		if schema.IsUnknown(g.info.TypeOf(other)) {
			return negate("elort.IsNull(" + code + ")"), nil
		}
		if n.Op == ast.Eq {
			return "(" + code + " == nil)", nil
		}
		return "(" + code + " != nil)", nil
	}

	x, y, xt, yt, err := g.operands(n)
	if err != nil {
		return "", err
	}
	if schema.IsUnknown(xt) || schema.IsUnknown(yt) {
		return negate(equal(x, xt, y, yt)), nil
	}

	// One side may be optional: null is never equal to a value.
	opt, val, ot, vt := x, y, xt, yt
	if _, ok := yt.(schema.Option); ok {
		opt, val, ot, vt = y, x, yt, xt
	}
	if o, ok := ot.(schema.Option); ok {
		inner := equal("(*"+opt+")", o.Elem, val, vt)
		if n.Op == ast.Eq {
			return "(" + opt + " != nil && " + inner + ")", nil
		}
		return "(" + opt + " == nil || !" + inner + ")", nil
	}
	return negate(equal(x, xt, y, yt)), nil
}

func (g *generator) ordering(n *ast.Binary) (string, error) {
	x, y, xt, yt, err := g.operands(n)
	if err != nil {
		return "", err
	}
	op := n.Op.String()
	switch {
	case schema.IsUnknown(xt) || schema.IsUnknown(yt):
		return fmt.Sprintf("elort.Compare(%q, %s, %s)", op, x, y), nil
	case isTime(xt) && isTime(yt):
		return "(" + x + ".Compare(" + y + ") " + op + " 0)", nil
	case schema.IsNumeric(xt) && schema.IsNumeric(yt) && !schema.Equal(xt, yt):
		x, y = convert(x, xt, floatT), convert(y, yt, floatT)
	}
	return "(" + x + " " + op + " " + y + ")", nil
}

func (g *generator) arith(n *ast.Binary) (string, error) {
	x, y, xt, yt, err := g.operands(n)
	if err != nil {
		return "", err
	}
	t := g.info.TypeOf(n)
	op := n.Op.String()

	switch {
	case schema.IsUnknown(t):
		return fmt.Sprintf("elort.Arith(%q, %s, %s)", op, x, y), nil

	case isTime(xt) || isTime(yt):
		switch {
		case isTime(xt) && isTime(yt):
			return x + ".Sub(" + y + ")", nil
		case n.Op == ast.Sub:
			return x + ".Add(-" + y + ")", nil
		case isTime(xt):
			return x + ".Add(" + y + ")", nil
		}
		return y + ".Add(" + x + ")", nil

	case schema.Equal(t, durationT):
		div := n.Op == ast.Div
		if durConst(n.X) && durConst(n.Y) {
			if schema.Equal(xt, integerT) {
				x = "elort.Int(" + x + ")"
			} else {
				x = "time.Duration(elort.Int(int64(" + x + ")))"
			}
		}
		switch {
		case schema.Equal(yt, integerT):
			if div {
				y = g.divisor(n.Y, y)
			}
			y = "time.Duration(" + y + ")"
		case schema.Equal(xt, integerT):
			x = "time.Duration(" + x + ")"
		}
		g.require("time")
		return "(" + x + " " + op + " " + y + ")", nil

	case schema.Equal(t, stringT):
		return "(" + x + " + " + y + ")", nil
	}

	// numbers
	x, y = convert(x, xt, t), convert(y, yt, t)
	ints := schema.Equal(t, integerT)
	if n.Op == ast.Pow {
		if ints {
			g.partial = true
			return "elort.PowInt(" + x + ", " + y + ")", nil
		}
		g.require("math")
		return "math.Pow(" + x + ", " + y + ")", nil
	}
	if isConst(n.X) && isConst(n.Y) {
		// Keep Go from folding, and rejecting, an expression that
		// overflows.
		if ints {
			x = "elort.Int(" + x + ")"
		} else {
			x = "elort.Float(" + x + ")"
		}
	}
	switch {
	case ints && (n.Op == ast.Div || n.Op == ast.Mod):
		y = g.divisor(n.Y, y)
	case n.Op == ast.Div && isConst(n.Y):
		// Go rejects a division by the constant 0.0.
		y = "elort.Float(" + y + ")"
	}
	return "(" + x + " " + op + " " + y + ")", nil
}

// divisor marks integer division as partial unless the divisor is a
// non-zero literal, and keeps constant divisors out of Go constant folding.
func (g *generator) divisor(e ast.Expr, code string) string {
	if lit, ok := e.(*ast.IntLit); ok && lit.Value != 0 {
		return code
	}
	g.partial = true
	if isConst(e) {
		return "elort.Int(" + code + ")"
	}
	return code
}

func (g *generator) alternative(n *ast.Binary) (string, error) {
	x, y, xt, yt, err := g.operands(n)
	if err != nil {
		return "", err
	}
	t := g.info.TypeOf(n)
	o, ok := xt.(schema.Option)
	if !ok || schema.IsUnknown(o.Elem) || schema.IsUnknown(t) {
		return "elort.Coalesce(" + x + ", " + y + ")", nil
	}
	return fmt.Sprintf("func() %s {\nif v := %s; v != nil {\nreturn %s\n}\nreturn %s\n}()",
		t.GoType(), x, convert("*v", o.Elem, t), convert(y, yt, t)), nil
}

func (g *generator) let(n *ast.Let) (string, error) {
	value, err := g.typed(n.Value)
	if err != nil {
		return "", err
	}
	name := g.declare(n, "let_"+n.Name)
	body, err := g.expr(n.Body)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "func() %s {\n%s := %s\n", g.info.TypeOf(n).GoType(), name, value)
	if !g.used[name] {
		fmt.Fprintf(&b, "_ = %s\n", name)
	}
	fmt.Fprintf(&b, "return %s\n}()", body)
	return b.String(), nil
}

func (g *generator) ifExpr(n *ast.If) (string, error) {
	t := g.info.TypeOf(n)
	c, err := g.cond(n.Cond)
	if err != nil {
		return "", err
	}
	then, err := g.as(n.Then, t)
	if err != nil {
		return "", err
	}
	els, err := g.as(n.Else, t)
	if err != nil {
		return "", err
	}
	g.requireType(t)
	return fmt.Sprintf("func() %s {\nif %s {\nreturn %s\n}\nreturn %s\n}()", t.GoType(), c, then, els), nil
}

func (g *generator) array(n *ast.ArrayLit) (string, error) {
	elem := schema.Type(schema.Unknown{})
	if a, ok := g.info.TypeOf(n).(schema.Array); ok {
		elem = a.Elem
	}
	g.requireType(elem)
	elems := make([]string, len(n.Elems))
	for i, x := range n.Elems {
		code, err := g.as(x, elem)
		if err != nil {
			return "", err
		}
		elems[i] = code
	}
	return "[]" + elem.GoType() + "{" + strings.Join(elems, ", ") + "}", nil
}

// requireType imports what the Go spelling of t needs.
func (g *generator) requireType(t schema.Type) {
	if schema.Contains(t, schema.IsTemporal) {
		g.require("time")
	}
}

// paramType is the type an argument is converted to for a parameter.
func paramType(k stdlib.Kind, arg schema.Type) schema.Type {
	switch k {
	case stdlib.KString:
		return stringT
	case stdlib.KInteger:
		return integerT
	case stdlib.KFloat:
		return floatT
	case stdlib.KBoolean:
		return booleanT
	case stdlib.KDate:
		return schema.Date{}
	case stdlib.KTime:
		if schema.IsUnknown(arg) {
			return schema.DateTime{}
		}
	case stdlib.KDuration:
		return durationT
	}
	return arg
}

func (g *generator) call(n *ast.Call) (string, error) {
	sig, ok := g.info.Calls[n]
	if !ok {
		return "", unsupported(n, "unresolved call to %s", n.Name)
	}
	switch sig.Strategy.Kind {
	case stdlib.Template:
		return g.template(n, sig)
	case stdlib.Regex:
		return g.match(n)
	case stdlib.Loop:
		if n.Name == "contains" {
			return g.contains(n)
		}
		return g.quantifier(n)
	case stdlib.Presence:
		return g.presence(n)
	case stdlib.TypeTest:
		return g.typeTest(n, sig)
	}
	return "", unsupported(n, "no code strategy for %s", sig)
}

func (g *generator) template(n *ast.Call, sig stdlib.Signature) (string, error) {
	args := make([]interface{}, len(n.Args))
	for i, a := range n.Args {
		t := g.info.TypeOf(a)
		if i < len(sig.Params) {
			t = paramType(sig.Params[i], t)
		}
		code, err := g.as(a, t)
		if err != nil {
			return "", err
		}
		args[i] = code
	}
	if partialCall(n, sig) {
		g.partial = true
	}
	g.require(sig.Strategy.Imports...)
	return fmt.Sprintf(sig.Strategy.Template, args...), nil
}

// partialCall reports whether the call panics for some inputs.
func partialCall(n *ast.Call, sig stdlib.Signature) bool {
	switch n.Name {
	case "date", "datetime", "duration":
		_, lit := n.Args[0].(*ast.StringLit)
		return !lit
	case "abs":
		return sig.Params[0] == stdlib.KInteger
	}
	return false
}

func (g *generator) match(n *ast.Call) (string, error) {
	s, err := g.as(n.Args[0], stringT)
	if err != nil {
		return "", err
	}
	if lit, ok := n.Args[1].(*ast.StringLit); ok {
		return fmt.Sprintf("elort.Match(eloPatterns[%d], %s)", g.pattern(lit.Value), s), nil
	}
	p, err := g.as(n.Args[1], stringT)
	if err != nil {
		return "", err
	}
	return "elort.Matches(" + s + ", " + p + ")", nil
}

// rangeOver generates the array operand of a loop.
func (g *generator) rangeOver(e ast.Expr) (string, schema.Type, error) {
	code, err := g.expr(e)
	if err != nil {
		return "", nil, err
	}
	if a, ok := g.info.TypeOf(e).(schema.Array); ok {
		return code, a.Elem, nil
	}
	return "elort.AsList(" + code + ")", schema.Unknown{}, nil
}

func (g *generator) contains(n *ast.Call) (string, error) {
	list, elem, err := g.rangeOver(n.Args[0])
	if err != nil {
		return "", err
	}
	v, err := g.expr(n.Args[1])
	if err != nil {
		return "", err
	}
	el := g.elemVar(n)
	match := equal(el, elem, v, g.info.TypeOf(n.Args[1]))
	return fmt.Sprintf("func() bool {\nfor _, %s := range %s {\nif %s {\nreturn true\n}\n}\nreturn false\n}()", el, list, match), nil
}

func (g *generator) quantifier(n *ast.Call) (string, error) {
	list, _, err := g.rangeOver(n.Args[0])
	if err != nil {
		return "", err
	}
	var decl ast.Expr = n
	pred := n.Args[1]
	if l, ok := pred.(*ast.Lambda); ok {
		decl, pred = l, l.Body
	}
	el := g.elemVar(decl)
	body, err := g.cond(pred)
	if err != nil {
		return "", err
	}

	loop := "for _, " + el + " := range " + list
	if !g.used[el] {
		loop = "for range " + list
	}
	if n.Name == "any" {
		return fmt.Sprintf("func() bool {\n%s {\nif %s {\nreturn true\n}\n}\nreturn false\n}()", loop, body), nil
	}
	return fmt.Sprintf("func() bool {\n%s {\nif !%s {\nreturn false\n}\n}\nreturn true\n}()", loop, body), nil
}

func (g *generator) presence(n *ast.Call) (string, error) {
	some := n.Name == "is_some"
	arg := n.Args[0]
	if isNullLit(arg) {
		return strconv.FormatBool(!some), nil
	}
	t := g.info.TypeOf(arg)
	_, opt := t.(schema.Option)
	if !opt && !schema.IsUnknown(t) {
		return strconv.FormatBool(some), nil
	}
	x, err := g.expr(arg)
	if err != nil {
		return "", err
	}
	switch {
	case schema.IsUnknown(t) && some:
		return "!elort.IsNull(" + x + ")", nil
	case schema.IsUnknown(t):
		return "elort.IsNull(" + x + ")", nil
	case some:
		return "(" + x + " != nil)", nil
	}
	return "(" + x + " == nil)", nil
}

func (g *generator) typeTest(n *ast.Call, sig stdlib.Signature) (string, error) {
	arg := n.Args[0]
	t := g.info.TypeOf(arg)
	is := func(t schema.Type) bool {
		switch n.Name {
		case "is_string":
			return schema.Equal(t, stringT)
		case "is_number":
			return schema.IsNumeric(t)
		}
		return schema.Equal(t, booleanT)
	}

	o, opt := t.(schema.Option)
	switch {
	case schema.IsUnknown(t) || opt && schema.IsUnknown(o.Elem):
		x, err := g.expr(arg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(sig.Strategy.Template, x), nil
	case opt && is(o.Elem):
		x, err := g.expr(arg)
		if err != nil {
			return "", err
		}
		return "(" + x + " != nil)", nil
	}
	return strconv.FormatBool(is(t)), nil
}
