// Package codegen turns a typed rule expression into the Go source of a
// validator function.
//
// The generated function takes a pointer to the input type and returns nil
// or an elort.ValidationErrors value listing every independent check that
// failed. A top-level && chain is split into one check per conjunct; a
// top-level let becomes a local variable and a top-level guard becomes a
// precondition for the checks of its body.
//
// Checks that contain an operation that can fail at run time (integer
// division, exponentiation, parsing a date from a field) run under
// elort.Guard, so that the failure fails the check instead of panicking.
package codegen

import (
	"fmt"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/diag"
	"github.com/evoludigit/elo/infer"
	"github.com/evoludigit/elo/schema"
	"github.com/markbates/inflect"
)

// RuntimeImport is the import path of the package generated code depends on.
const RuntimeImport = "github.com/evoludigit/elo/elort"

// DefaultPackage is the package clause used when none is configured.
const DefaultPackage = "validators"

type config struct {
	pkg    string
	source string
	strict bool
	types  *schema.TypeContext
}

// Option configures Generate.
type Option func(*config)

// WithPackage sets the package clause of the generated file.
func WithPackage(name string) Option {
	return func(c *config) {
		c.pkg = name
	}
}

// WithSource sets the rule text quoted in the doc comment of the validator.
// By default the expression is printed in canonical form.
func WithSource(src string) Option {
	return func(c *config) {
		c.source = src
	}
}

// WithStrictUnknown rejects expressions with nodes of unknown type instead
// of emitting run-time checks for them.
func WithStrictUnknown() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithTypes includes Go declarations for the types of ctx in the generated
// file, so that it compiles on its own.
func WithTypes(ctx *schema.TypeContext) Option {
	return func(c *config) {
		c.types = ctx
	}
}

// Generate emits a file holding the validator functionName for inputType.
// The expression must have been inferred with info; the result is formatted
// Go source. Errors are *diag.Diagnostic values of kind CodeGenError, or
// TypeError when strict mode rejects an Unknown node.
func Generate(e ast.Expr, info *infer.Info, functionName, inputType string, opts ...Option) (string, error) {
	cfg := config{pkg: DefaultPackage}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkNames(cfg.pkg, functionName, inputType); err != nil {
		return "", err
	}
	if info == nil {
		return "", diag.New(diag.CodeGenError, diag.Unsupported, e.Span(), "expression has not been type checked")
	}
	if info.Input.Name != "" && info.Input.Name != inputType {
		return "", diag.New(diag.CodeGenError, diag.Unsupported, diag.Span{}, "expression was checked against %s, not %s", info.Input.Name, inputType)
	}
	if cfg.strict {
		if err := rejectUnknown(e, info); err != nil {
			return "", err
		}
	}

	g := newGenerator(info, functionName)
	if err := g.checks(e); err != nil {
		return "", err
	}

	f := file{
		pkg:      cfg.pkg,
		patterns: g.patterns,
		function: &function{
			name:  functionName,
			input: inputType,
			doc:   docComment(functionName, inputType, cfg.source, e),
			body:  g.body.String(),
		},
	}
	if cfg.types != nil {
		decls, imps := typeDecls(cfg.types)
		f.types = decls
		for _, imp := range imps {
			g.require(imp)
		}
	}
	f.imports = g.importList()

	return f.render(strings.ToLower(functionName) + ".go")
}

func checkNames(pkg, functionName, inputType string) error {
	switch {
	case !token.IsIdentifier(pkg):
		return diag.New(diag.CodeGenError, diag.Unsupported, diag.Span{}, "%q is not a valid package name", pkg)
	case !token.IsIdentifier(functionName) || !token.IsExported(functionName):
		return diag.New(diag.CodeGenError, diag.Unsupported, diag.Span{}, "%q is not an exported Go identifier", functionName)
	case !token.IsIdentifier(inputType):
		return diag.New(diag.CodeGenError, diag.Unsupported, diag.Span{}, "%q is not a valid Go type name", inputType)
	}
	return nil
}

// rejectUnknown fails on the first node whose type is Unknown.
func rejectUnknown(e ast.Expr, info *infer.Info) error {
	var err error
	ast.Inspect(e, func(n ast.Expr) bool {
		if n == nil || err != nil {
			return false
		}
		if schema.IsUnknown(info.TypeOf(n)) {
			err = diag.New(diag.TypeError, diag.UnresolvedType, n.Span(), "type of %s is not known until run time", ast.Format(n))
			return false
		}
		return true
	})
	return err
}

func docComment(name, input, source string, e ast.Expr) string {
	text := strings.Join(strings.Fields(source), " ")
	if text == "" {
		text = ast.Format(e)
	}
	return fmt.Sprintf("// %s validates %s against: %s", name, input, text)
}

type generator struct {
	info     *infer.Info
	funcName string

	imports   map[string]bool
	patterns  []string // quoted, in order of first use
	patternAt map[string]int

	// vars names the Go variable introduced for a let, a lambda, or an
	// any/all call whose predicate selects element fields.
	vars  map[ast.Expr]string
	taken map[string]bool
	used  map[string]bool
	elems int

	// partial is set while generating a check that needs elort.Guard.
	partial bool

	body  strings.Builder
	depth int
}

func newGenerator(info *infer.Info, funcName string) *generator {
	g := &generator{
		info:      info,
		funcName:  funcName,
		imports:   map[string]bool{},
		patternAt: map[string]int{},
		vars:      map[ast.Expr]string{},
		taken:     map[string]bool{"input": true, "errs": true},
		used:      map[string]bool{},
	}
	g.require(RuntimeImport)
	return g
}

func (g *generator) require(paths ...string) {
	for _, p := range paths {
		g.imports[p] = true
	}
}

func (g *generator) importList() []string {
	list := make([]string, 0, len(g.imports))
	for p := range g.imports {
		list = append(list, strconv.Quote(p))
	}
	sort.Strings(list)
	return list
}

// pattern returns the index of a literal pattern in the package table.
func (g *generator) pattern(p string) int {
	if i, ok := g.patternAt[p]; ok {
		return i
	}
	g.require("regexp")
	g.patternAt[p] = len(g.patterns)
	g.patterns = append(g.patterns, strconv.Quote(p))
	return len(g.patterns) - 1
}

// declare picks a fresh Go name for the variable introduced by decl.
func (g *generator) declare(decl ast.Expr, base string) string {
	name := base
	for i := 2; g.taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	g.taken[name] = true
	g.vars[decl] = name
	return name
}

func (g *generator) elemVar(decl ast.Expr) string {
	name := "el" + strconv.Itoa(g.elems)
	g.elems++
	g.taken[name] = true
	g.vars[decl] = name
	return name
}

func (g *generator) line(format string, args ...interface{}) {
	g.body.WriteString(strings.Repeat("\t", g.depth+1))
	fmt.Fprintf(&g.body, format, args...)
	g.body.WriteByte('\n')
}

// checks emits the independent checks of a rule.
func (g *generator) checks(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Binary:
		if n.Op != ast.And {
			break
		}
		if err := g.checks(n.X); err != nil {
			return err
		}
		if !g.narrowed(n.Y, n.X) {
			return g.checks(n.Y)
		}
		// The right side relies on the left side holding, for
		// example to select fields of a value checked with is_some.
		conds := presenceConds(n.X)
		if len(conds) == 0 {
			conds = []ast.Expr{n.X}
		}
		code := make([]string, len(conds))
		for i, c := range conds {
			var err error
			if code[i], err = g.condition(c); err != nil {
				return err
			}
		}
		g.line("if %s {", strings.Join(code, " && "))
		g.depth++
		err := g.checks(n.Y)
		g.depth--
		g.line("}")
		return err

	case *ast.Let:
		g.partial = false
		value, err := g.typed(n.Value)
		if err != nil {
			return err
		}
		if g.partial {
			break
		}
		name := g.declare(n, "let_"+n.Name)
		g.line("%s := %s", name, value)
		if err := g.checks(n.Body); err != nil {
			return err
		}
		if !g.used[name] {
			g.line("_ = %s", name)
		}
		return nil

	case *ast.Guard:
		cond, err := g.condition(n.Cond)
		if err != nil {
			return err
		}
		path := g.pathOf(n.Cond)
		g.line("if !%s {", cond)
		g.line("\terrs.Add(%q, %q, %q)", path, g.rule(path), "precondition failed: "+ast.Format(n.Cond))
		g.line("} else {")
		g.depth++
		err = g.checks(n.Body)
		g.depth--
		g.line("}")
		return err
	}
	return g.leaf(e)
}

// leaf emits a single check.
func (g *generator) leaf(e ast.Expr) error {
	cond, err := g.condition(e)
	if err != nil {
		return err
	}
	path := g.pathOf(e)
	g.line("if !%s {", cond)
	g.line("\terrs.Add(%q, %q, %q)", path, g.rule(path), "expected "+ast.Format(e))
	g.line("}")
	return nil
}

// condition generates e as a boolean operand, wrapped in elort.Guard when it
// contains a partial operation.
func (g *generator) condition(e ast.Expr) (string, error) {
	g.partial = false
	code, err := g.cond(e)
	if err != nil {
		return "", err
	}
	if g.partial {
		g.partial = false
		return "elort.Guard(func() bool {\nreturn " + code + "\n})", nil
	}
	return code, nil
}

// pathOf is the dotted path of the first input field e refers to. A let
// binding stands for the path of its value.
func (g *generator) pathOf(e ast.Expr) string {
	var path string
	ast.Inspect(e, func(n ast.Expr) bool {
		if path != "" {
			return false
		}
		p, ok := n.(*ast.FieldPath)
		if !ok {
			return true
		}
		ref, ok := g.info.Refs[p]
		switch {
		case !ok:
		case ref.Kind == infer.InputField:
			path = p.Path()
		case ref.Kind == infer.LetBinding:
			if l, ok := ref.Decl.(*ast.Let); ok {
				path = g.letPath(l, p)
			}
		}
		return true
	})
	return path
}

// letPath is the path of p, whose root is the name bound by l.
func (g *generator) letPath(l *ast.Let, p *ast.FieldPath) string {
	base := g.pathOf(l.Value)
	if _, ok := l.Value.(*ast.FieldPath); !ok || base == "" {
		return base
	}
	for _, s := range p.Segments[1:] {
		base += "." + s.Name
	}
	return base
}

func (g *generator) rule(path string) string {
	if path == "" {
		return inflect.Underscore(g.funcName) + "_check"
	}
	return inflect.Underscore(strings.ReplaceAll(path, ".", "_")) + "_check"
}

// narrowed reports whether e selects through an optional value whose
// presence is established by left, so that e is only safe when left holds.
func (g *generator) narrowed(e, left ast.Expr) bool {
	within := map[ast.Expr]bool{}
	ast.Inspect(left, func(n ast.Expr) bool {
		if n != nil {
			within[n] = true
		}
		return true
	})

	found := false
	ast.Inspect(e, func(n ast.Expr) bool {
		if found {
			return false
		}
		if p, ok := n.(*ast.FieldPath); ok {
			for _, cond := range g.info.Refs[p].NarrowedBy {
				if within[cond] {
					found = true
				}
			}
		}
		return !found
	})
	return found
}

// presenceConds returns the conjuncts of e that can establish that an optional
// value is present.
func presenceConds(e ast.Expr) []ast.Expr {
	if b, ok := e.(*ast.Binary); ok && b.Op == ast.And {
		return append(presenceConds(b.X), presenceConds(b.Y)...)
	}
	found := false
	ast.Inspect(e, func(n ast.Expr) bool {
		switch n := n.(type) {
		case *ast.Call:
			if n.Name == "is_some" || n.Name == "is_null" {
				found = true
			}
		case *ast.NullLit:
			found = true
		}
		return !found
	})
	if found {
		return []ast.Expr{e}
	}
	return nil
}
