package infer

import (
	"fmt"
	"strings"

	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/diag"
	"github.com/evoludigit/elo/internal/iso8601"
	"github.com/evoludigit/elo/schema"
	"github.com/evoludigit/elo/stdlib"
)

// nullType is the type of the null literal: an optional value of any type
// that is never present.
var nullType = schema.Option{Elem: schema.Unknown{}}

type config struct {
	strict   bool
	registry *stdlib.Registry
}

// Option configures Infer.
type Option func(*config)

// WithStrictUnknown makes any value whose type is not known at compile time
// a type error, instead of a value checked when the validator runs.
func WithStrictUnknown() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithRegistry resolves calls against r instead of the standard library.
func WithRegistry(r *stdlib.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// Infer types the rule e, whose field references resolve against the type
// inputType in ctx. The rule must be boolean. The returned error is always
// a *diag.Diagnostic.
func Infer(e ast.Expr, ctx *schema.TypeContext, inputType string, opts ...Option) (*Info, error) {
	cfg := config{registry: stdlib.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if ctx == nil {
		ctx = schema.MustTypeContext()
	}
	if _, ok := ctx.Lookup(inputType); !ok {
		return nil, diag.New(diag.TypeError, diag.UnresolvedType, diag.Span{}, "unknown input type %s", inputType)
	}

	c := &checker{
		cfg: cfg,
		ctx: ctx,
		info: &Info{
			Input: schema.Custom{Name: inputType},
			Types: map[ast.Expr]schema.Type{},
			Refs:  map[*ast.FieldPath]Ref{},
			Calls: map[*ast.Call]stdlib.Signature{},
		},
		keys: map[*ast.FieldPath]string{},
	}

	input := &binding{kind: InputField, typ: c.info.Input}
	t, err := c.expr(e, env{input: input})
	if err != nil {
		return nil, err
	}
	if !isBoolean(t) {
		return nil, diag.New(diag.TypeError, diag.NotBoolean, e.Span(), "rule must be boolean, got %s", t)
	}
	return c.info, nil
}

type checker struct {
	cfg  config
	ctx  *schema.TypeContext
	info *Info

	// keys identify the value a field path denotes, for narrowing. Two paths
	// have the same key when they select the same fields from the same binding.
	keys map[*ast.FieldPath]string
}

type binding struct {
	kind RefKind
	name string // empty for element scopes
	typ  schema.Type
	decl ast.Expr
}

type scope struct {
	outer *scope
	b     *binding
}

// env is the lexical environment of a node. It is passed by value; bind and
// assume return extended copies.
type env struct {
	scope   *scope
	input   *binding
	// present maps the keys of optional values known to be present to the
	// condition that established it.
	present map[string]ast.Expr
}

func (e env) bind(b *binding) env {
	e.scope = &scope{outer: e.scope, b: b}
	return e
}

func (e env) assume(keys []string, cond ast.Expr) env {
	if len(keys) == 0 {
		return e
	}
	present := make(map[string]ast.Expr, len(e.present)+len(keys))
	for k, c := range e.present {
		present[k] = c
	}
	for _, k := range keys {
		present[k] = cond
	}
	e.present = present
	return e
}

func (c *checker) expr(e ast.Expr, env env) (schema.Type, error) {
	t, err := c.infer(e, env)
	if err != nil {
		return nil, err
	}
	c.info.Types[e] = t
	return t, nil
}

func (c *checker) infer(e ast.Expr, env env) (schema.Type, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return schema.Integer{}, nil
	case *ast.FloatLit:
		return schema.Float{}, nil
	case *ast.BoolLit:
		return schema.Boolean{}, nil
	case *ast.StringLit:
		return schema.String{}, nil
	case *ast.NullLit:
		return nullType, nil
	case *ast.DateLit:
		return schema.Date{}, nil
	case *ast.DateTimeLit:
		return schema.DateTime{}, nil
	case *ast.DurationLit:
		return schema.Duration{}, nil
	case *ast.Temporal:
		if e.Keyword.IsDateTime() {
			return schema.DateTime{}, nil
		}
		return schema.Date{}, nil
	case *ast.FieldPath:
		return c.fieldPath(e, env)
	case *ast.Unary:
		return c.unary(e, env)
	case *ast.Binary:
		return c.binary(e, env)
	case *ast.Call:
		return c.call(e, env)
	case *ast.Lambda:
		return nil, diag.New(diag.TypeError, diag.InvalidPredicate, e.Loc, "fn(%s ~> ...) is only allowed as the predicate of any or all", e.Param)

	case *ast.Let:
		vt, err := c.expr(e.Value, env)
		if err != nil {
			return nil, err
		}
		return c.expr(e.Body, env.bind(&binding{kind: LetBinding, name: e.Name, typ: vt, decl: e}))

	case *ast.Guard:
		ct, err := c.expr(e.Cond, env)
		if err != nil {
			return nil, err
		}
		if err := c.wantBoolean(e.Cond, ct, "guard condition"); err != nil {
			return nil, err
		}
		bt, err := c.expr(e.Body, env.assume(c.facts(e.Cond, true), e.Cond))
		if err != nil {
			return nil, err
		}
		if err := c.wantBoolean(e.Body, bt, "guard body"); err != nil {
			return nil, err
		}
		return schema.Boolean{}, nil

	case *ast.If:
		ct, err := c.expr(e.Cond, env)
		if err != nil {
			return nil, err
		}
		if err := c.wantBoolean(e.Cond, ct, "if condition"); err != nil {
			return nil, err
		}
		tt, err := c.expr(e.Then, env.assume(c.facts(e.Cond, true), e.Cond))
		if err != nil {
			return nil, err
		}
		et, err := c.expr(e.Else, env.assume(c.facts(e.Cond, false), e.Cond))
		if err != nil {
			return nil, err
		}
		t, ok := unify(tt, et)
		if !ok {
			return nil, diag.New(diag.TypeError, diag.TypeMismatch, e.Else.Span(), "branches of if have different types: %s and %s", tt, et)
		}
		return t, nil

	case *ast.ArrayLit:
		var elem schema.Type = schema.Unknown{}
		for i, x := range e.Elems {
			t, err := c.expr(x, env)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				elem = t
				continue
			}
			u, ok := unify(elem, t)
			if !ok {
				return nil, diag.New(diag.TypeError, diag.TypeMismatch, x.Span(), "array elements must have the same type: %s and %s", elem, t)
			}
			elem = u
		}
		return schema.Array{Elem: elem}, nil
	}
	return nil, diag.New(diag.TypeError, diag.Unsupported, e.Span(), "unsupported expression %T", e)
}

// resolve finds the binding the first segment of p names, and how many
// segments the binding itself accounts for.
func (c *checker) resolve(p *ast.FieldPath, env env) (*binding, int) {
	root := p.Root()
	for s := env.scope; s != nil; s = s.outer {
		if s.b.kind == LambdaParam && s.b.name == root {
			return s.b, 1
		}
	}
	for s := env.scope; s != nil; s = s.outer {
		if s.b.kind != ElementField {
			continue
		}
		if cu, ok := s.b.typ.(schema.Custom); ok {
			if _, ok := c.ctx.Field(cu.Name, root); ok {
				return s.b, 0
			}
		}
	}
	for s := env.scope; s != nil; s = s.outer {
		if s.b.kind == LetBinding && s.b.name == root {
			return s.b, 1
		}
	}
	if _, ok := c.ctx.Field(c.info.Input.Name, root); ok {
		return env.input, 0
	}
	return nil, 0
}

func (c *checker) fieldPath(p *ast.FieldPath, env env) (schema.Type, error) {
	b, skip := c.resolve(p, env)
	if b == nil {
		root := p.Segments[0]
		return nil, diag.New(diag.TypeError, diag.UnknownField, root.Loc, "unknown field %s on %s", root.Name, c.info.Input.Name).WithField(root.Name)
	}

	ref := Ref{Kind: b.kind, Decl: b.decl}
	if b.kind == InputField {
		ref.Decl = nil
	}
	t := b.typ
	key := fmt.Sprintf("%p", b)

	for i := skip; i < len(p.Segments); i++ {
		seg := p.Segments[i]
		prefix := pathOf(p.Segments[:i])
		if schema.IsUnknown(t) {
			for _, s := range p.Segments[i:] {
				ref.Dynamic = append(ref.Dynamic, s.Name)
			}
			break
		}
		if o, ok := t.(schema.Option); ok {
			cond, ok := env.present[key]
			if !ok {
				return nil, diag.New(diag.TypeError, diag.TypeMismatch, seg.Loc, "%s is optional; check is_some(%s) before selecting %s", prefix, prefix, seg.Name).WithField(prefix)
			}
			ref.NarrowedBy = append(ref.NarrowedBy, cond)
			t = o.Elem
		}
		cu, ok := t.(schema.Custom)
		if !ok {
			return nil, diag.New(diag.TypeError, diag.TypeMismatch, seg.Loc, "%s has type %s, which has no field %s", prefix, t, seg.Name).WithField(pathOf(p.Segments[:i+1]))
		}
		f, ok := c.ctx.Field(cu.Name, seg.Name)
		if !ok {
			return nil, diag.New(diag.TypeError, diag.UnknownField, seg.Loc, "unknown field %s on %s", seg.Name, cu.Name).WithField(pathOf(p.Segments[:i+1]))
		}
		ref.Fields = append(ref.Fields, f)
		t = f.Type
		key += "." + seg.Name
	}
	if len(ref.Dynamic) > 0 {
		t = schema.Unknown{}
	}

	ref.Declared = t
	if o, ok := t.(schema.Option); ok {
		if cond, ok := env.present[key]; ok {
			ref.Deref = true
			ref.NarrowedBy = append(ref.NarrowedBy, cond)
			t = o.Elem
		}
	}
	if c.cfg.strict && schema.IsUnknown(t) {
		return nil, diag.New(diag.TypeError, diag.UnresolvedType, p.Span(), "type of %s is not known at compile time", p.Path()).WithField(p.Path())
	}

	c.info.Refs[p] = ref
	c.keys[p] = key
	return t, nil
}

func pathOf(segs []ast.Segment) string {
	names := make([]string, len(segs))
	for i, s := range segs {
		names[i] = s.Name
	}
	return strings.Join(names, ".")
}

func (c *checker) unary(e *ast.Unary, env env) (schema.Type, error) {
	t, err := c.expr(e.X, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.Not:
		if err := c.wantBoolean(e.X, t, "operand of !"); err != nil {
			return nil, err
		}
		return schema.Boolean{}, nil
	case ast.Neg, ast.Plus:
		if schema.IsNumeric(t) || schema.IsUnknown(t) || schema.Equal(t, schema.Duration{}) {
			return t, nil
		}
		return nil, mismatch(e.X, e.Span(), "operator %s needs a number, got %s", e.Op, t)
	}
	return nil, diag.New(diag.TypeError, diag.Unsupported, e.OpLoc, "unsupported unary operator %s", e.Op)
}

func (c *checker) binary(e *ast.Binary, env env) (schema.Type, error) {
	xt, err := c.expr(e.X, env)
	if err != nil {
		return nil, err
	}

	if e.Op.IsLogical() {
		if err := c.wantBoolean(e.X, xt, "operand of "+e.Op.String()); err != nil {
			return nil, err
		}
		yt, err := c.expr(e.Y, env.assume(c.facts(e.X, e.Op == ast.And), e.X))
		if err != nil {
			return nil, err
		}
		if err := c.wantBoolean(e.Y, yt, "operand of "+e.Op.String()); err != nil {
			return nil, err
		}
		return schema.Boolean{}, nil
	}

	yt, err := c.expr(e.Y, env)
	if err != nil {
		return nil, err
	}

	switch {
	case e.Op == ast.Alt:
		return c.alternative(e, xt, yt)
	case e.Op.IsComparison():
		return c.compare(e, xt, yt)
	case e.Op.IsArithmetic():
		if t := arith(e.Op, xt, yt); t != nil {
			return t, nil
		}
		return nil, mismatch(blamed(e), e.Span(), "operator %s cannot be applied to %s and %s", e.Op, xt, yt)
	}
	return nil, diag.New(diag.TypeError, diag.Unsupported, e.OpLoc, "unsupported operator %s", e.Op)
}

func (c *checker) alternative(e *ast.Binary, xt, yt schema.Type) (schema.Type, error) {
	if isNull(e.Y) {
		return nil, diag.New(diag.TypeError, diag.TypeMismatch, e.Y.Span(), "the fallback of ?| cannot be null")
	}
	if schema.IsUnknown(xt) {
		return schema.Unknown{}, nil
	}
	o, ok := xt.(schema.Option)
	if !ok {
		return nil, mismatch(e.X, e.X.Span(), "left operand of ?| must be optional, got %s", xt)
	}
	t, ok := unify(o.Elem, yt)
	if !ok {
		return nil, mismatch(e.Y, e.Y.Span(), "fallback of type %s does not match %s", yt, o.Elem)
	}
	return t, nil
}

func (c *checker) compare(e *ast.Binary, xt, yt schema.Type) (schema.Type, error) {
	if e.Op == ast.Eq || e.Op == ast.Ne {
		xn, yn := isNull(e.X), isNull(e.Y)
		switch {
		case xn && yn:
		case xn || yn:
			other, ot := e.X, xt
			if xn {
				other, ot = e.Y, yt
			}
			if _, ok := ot.(schema.Option); !ok && !schema.IsUnknown(ot) {
				return nil, mismatch(other, e.Span(), "%s is never null", ot)
			}
		default:
			_, xo := xt.(schema.Option)
			_, yo := yt.(schema.Option)
			if xo && yo {
				return nil, mismatch(blamed(e), e.Span(), "cannot compare two optional values; narrow one with is_some or ?|")
			}
			a, b := schema.Unwrap(xt), schema.Unwrap(yt)
			if !scalar(a) || !scalar(b) {
				return nil, mismatch(blamed(e), e.Span(), "cannot compare %s with %s; only scalar values are comparable", xt, yt)
			}
			if !equatable(a, b) {
				return nil, mismatch(blamed(e), e.Span(), "cannot compare %s with %s", xt, yt)
			}
		}
		return schema.Boolean{}, nil
	}

	for _, side := range []struct {
		x ast.Expr
		t schema.Type
	}{{e.X, xt}, {e.Y, yt}} {
		if _, ok := side.t.(schema.Option); ok {
			return nil, mismatch(side.x, e.Span(), "cannot order optional %s; check is_some first or supply a fallback with ?|", side.t)
		}
	}
	if !ordered(xt, yt) {
		return nil, mismatch(blamed(e), e.Span(), "cannot compare %s with %s", xt, yt)
	}
	return schema.Boolean{}, nil
}

func (c *checker) call(e *ast.Call, env env) (schema.Type, error) {
	reg := c.cfg.registry
	if !reg.Has(e.Name) {
		return nil, diag.New(diag.TypeError, diag.UnknownFunction, e.NameLoc, "unknown function %s", e.Name)
	}
	if e.Name == "any" || e.Name == "all" {
		return c.quantifier(e, env)
	}

	args := make([]schema.Type, len(e.Args))
	for i, a := range e.Args {
		t, err := c.expr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}

	sig, err := reg.Resolve(e.Name, args)
	if err != nil {
		return nil, c.resolveError(e, err)
	}
	if err := checkLiteralArg(e); err != nil {
		return nil, err
	}
	c.info.Calls[e] = sig
	return sig.Result(args), nil
}

// quantifier types any and all. The predicate is a fn lambda bound to each
// element, or an expression over the fields of the element.
func (c *checker) quantifier(e *ast.Call, env env) (schema.Type, error) {
	if len(e.Args) != 2 {
		_, err := c.cfg.registry.Resolve(e.Name, make([]schema.Type, len(e.Args)))
		return nil, c.resolveError(e, err)
	}

	at, err := c.expr(e.Args[0], env)
	if err != nil {
		return nil, err
	}
	var elem schema.Type
	switch t := at.(type) {
	case schema.Array:
		elem = t.Elem
	case schema.Unknown:
		elem = t
	default:
		return nil, mismatch(e.Args[0], e.Args[0].Span(), "%s needs an array, got %s", e.Name, at)
	}

	pred := e.Args[1]
	if l, ok := pred.(*ast.Lambda); ok {
		bt, err := c.expr(l.Body, env.bind(&binding{kind: LambdaParam, name: l.Param, typ: elem, decl: l}))
		if err != nil {
			return nil, err
		}
		if err := c.wantBoolean(l.Body, bt, "predicate"); err != nil {
			return nil, err
		}
		c.info.Types[l] = schema.Boolean{}
	} else {
		if _, ok := elem.(schema.Custom); !ok {
			return nil, diag.New(diag.TypeError, diag.InvalidPredicate, pred.Span(), "elements of %s have no fields; write the predicate as fn(x ~> ...)", at)
		}
		pt, err := c.expr(pred, env.bind(&binding{kind: ElementField, typ: elem, decl: e}))
		if err != nil {
			return nil, err
		}
		if err := c.wantBoolean(pred, pt, "predicate"); err != nil {
			return nil, err
		}
	}

	sig, err := c.cfg.registry.Resolve(e.Name, []schema.Type{at, schema.Boolean{}})
	if err != nil {
		return nil, c.resolveError(e, err)
	}
	c.info.Calls[e] = sig
	return schema.Boolean{}, nil
}

func (c *checker) resolveError(e *ast.Call, err error) error {
	re, ok := err.(*stdlib.ResolveError)
	if !ok {
		return diag.New(diag.TypeError, diag.Unsupported, e.Loc, "%v", err)
	}
	switch re.Kind {
	case stdlib.UnknownFunction:
		return diag.New(diag.TypeError, diag.UnknownFunction, e.NameLoc, "%s", re.Error())
	case stdlib.WrongArity:
		return diag.New(diag.TypeError, diag.ArityError, e.Loc, "%s", re.Error())
	}
	arg := e.Args[re.Arg]
	return mismatch(arg, arg.Span(), "%s", re.Error())
}

// checkLiteralArg validates the literal argument of a parsing function.
func checkLiteralArg(e *ast.Call) error {
	if len(e.Args) != 1 {
		return nil
	}
	lit, ok := e.Args[0].(*ast.StringLit)
	if !ok {
		return nil
	}
	var err error
	var want string
	switch e.Name {
	case "date":
		_, err = iso8601.ParseDate(lit.Value)
		want = "YYYY-MM-DD"
	case "datetime":
		_, err = iso8601.ParseDateTime(lit.Value)
		want = "an RFC 3339 timestamp"
	case "duration":
		_, err = iso8601.ParseDuration(lit.Value)
		want = "an ISO-8601 duration such as P1DT2H"
	}
	if err != nil {
		return diag.New(diag.ParseError, diag.MalformedLiteral, lit.Loc, "malformed %s %s, expected %s", e.Name, ast.Quote(lit.Value), want)
	}
	return nil
}

func (c *checker) wantBoolean(e ast.Expr, t schema.Type, what string) error {
	if isBoolean(t) {
		return nil
	}
	return mismatch(e, e.Span(), "%s must be boolean, got %s", what, t)
}

// mismatch reports a TypeMismatch. When blame is a field path the
// diagnostic points at its last segment and records the path, otherwise
// it covers span.
func mismatch(blame ast.Expr, span diag.Span, format string, args ...interface{}) *diag.Diagnostic {
	if p, ok := blame.(*ast.FieldPath); ok {
		return diag.New(diag.TypeError, diag.TypeMismatch, p.Segments[len(p.Segments)-1].Loc, format, args...).WithField(p.Path())
	}
	return diag.New(diag.TypeError, diag.TypeMismatch, span, format, args...)
}

// blamed picks the operand of e a mismatch is reported against: the first
// one that is a field path.
func blamed(e *ast.Binary) ast.Expr {
	if _, ok := e.X.(*ast.FieldPath); ok {
		return e.X
	}
	if _, ok := e.Y.(*ast.FieldPath); ok {
		return e.Y
	}
	return nil
}

func isNull(e ast.Expr) bool {
	_, ok := e.(*ast.NullLit)
	return ok
}

func isBoolean(t schema.Type) bool {
	switch t.(type) {
	case schema.Boolean, schema.Unknown:
		return true
	}
	return false
}
