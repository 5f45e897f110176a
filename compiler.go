package elo

import (
	"errors"
	"io"
	"log/slog"

	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/codegen"
	"github.com/evoludigit/elo/diag"
	"github.com/evoludigit/elo/infer"
	"github.com/evoludigit/elo/optimize"
	"github.com/evoludigit/elo/parser"
	"github.com/evoludigit/elo/schema"
)

// DefaultMaxSourceLength is the longest rule source accepted by default, in bytes.
const DefaultMaxSourceLength = 1 << 20

// Compiler turns rule source into validator source. A Compiler holds only
// configuration; it is safe for concurrent use.
type Compiler struct {
	opts options
}

type options struct {
	logger    *slog.Logger
	pkg       string
	optimize  bool
	strict    bool
	types     bool
	maxSource int
}

// Option configures a Compiler.
type Option func(o *options)

// WithLogger sets the logger that receives a Debug record per compiler stage.
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithPackageName sets the package clause of generated files.
// Default: validators
func WithPackageName(name string) Option {
	return func(o *options) {
		o.pkg = name
	}
}

// WithoutOptimization generates code for the expression as written, without
// constant folding or boolean simplification.
func WithoutOptimization() Option {
	return func(o *options) {
		o.optimize = false
	}
}

// WithStrictUnknown makes any expression whose type cannot be determined at
// compile time a type error. By default such expressions are checked when the
// validator runs.
func WithStrictUnknown() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithTypeDeclarations includes Go declarations of every type in the type
// context in the generated file, so that it compiles without other files.
func WithTypeDeclarations() Option {
	return func(o *options) {
		o.types = true
	}
}

// WithMaxSourceLength sets the longest source accepted, in bytes.
// Default: DefaultMaxSourceLength
func WithMaxSourceLength(n int) Option {
	return func(o *options) {
		o.maxSource = n
	}
}

// NewCompiler creates a compiler with the given options.
func NewCompiler(opts ...Option) *Compiler {
	o := options{
		pkg:       codegen.DefaultPackage,
		optimize:  true,
		maxSource: DefaultMaxSourceLength,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Compiler{opts: o}
}

// Compile compiles source into the Go source of a validator named
// functionName for inputTypeName, with the default options and opts.
// A non-nil error is always a *diag.Diagnostic.
func Compile(source string, ctx *schema.TypeContext, functionName, inputTypeName string, opts ...Option) (string, error) {
	return NewCompiler(opts...).Compile(source, ctx, functionName, inputTypeName)
}

// ValidateSyntax reports whether source lexes and parses. It does not check types.
func ValidateSyntax(source string) error {
	return NewCompiler().ValidateSyntax(source)
}

// ValidateSyntax lexes and parses source.
func (c *Compiler) ValidateSyntax(source string) error {
	_, err := c.parse(source)
	return err
}

// Check parses and type checks source against inputTypeName. It returns the
// parsed expression and the types inferred for it.
func (c *Compiler) Check(source string, ctx *schema.TypeContext, inputTypeName string) (ast.Expr, *infer.Info, error) {
	e, err := c.parse(source)
	if err != nil {
		return nil, nil, err
	}
	info, err := c.infer(source, e, ctx, inputTypeName)
	if err != nil {
		return nil, nil, err
	}
	return e, info, nil
}

// Compile runs every stage: lexing, parsing, inference, optimization and
// code generation.
func (c *Compiler) Compile(source string, ctx *schema.TypeContext, functionName, inputTypeName string) (string, error) {
	e, info, err := c.Check(source, ctx, inputTypeName)
	if err != nil {
		return "", err
	}

	if c.opts.optimize {
		if opt := optimize.Optimize(e, info); opt != e {
			c.opts.logger.Debug("optimized", "before", ast.Count(e), "after", ast.Count(opt))
			if info, err = c.infer(source, opt, ctx, inputTypeName); err != nil {
				return "", err
			}
			e = opt
		}
	}

	opts := []codegen.Option{codegen.WithPackage(c.opts.pkg), codegen.WithSource(source)}
	if c.opts.strict {
		opts = append(opts, codegen.WithStrictUnknown())
	}
	if c.opts.types {
		opts = append(opts, codegen.WithTypes(ctx))
	}
	src, err := codegen.Generate(e, info, functionName, inputTypeName, opts...)
	if err != nil {
		return "", attach(err, source)
	}
	c.opts.logger.Debug("generated", "func", functionName, "input", inputTypeName)
	return src, nil
}

func (c *Compiler) parse(source string) (ast.Expr, error) {
	if c.opts.maxSource > 0 && len(source) > c.opts.maxSource {
		return nil, diag.New(diag.ParseError, diag.SourceTooLong, diag.Span{},
			"source is %d bytes; the limit is %d", len(source), c.opts.maxSource)
	}
	e, err := parser.Parse(source)
	if err != nil {
		return nil, attach(err, source)
	}
	c.opts.logger.Debug("parsed", "nodes", ast.Count(e))
	return e, nil
}

func (c *Compiler) infer(source string, e ast.Expr, ctx *schema.TypeContext, inputTypeName string) (*infer.Info, error) {
	if ctx == nil {
		return nil, diag.New(diag.TypeError, diag.UnresolvedType, diag.Span{}, "no type context for %s", inputTypeName)
	}
	var opts []infer.Option
	if c.opts.strict {
		opts = append(opts, infer.WithStrictUnknown())
	}
	info, err := infer.Infer(e, ctx, inputTypeName, opts...)
	if err != nil {
		return nil, attach(err, source)
	}
	c.opts.logger.Debug("inferred", "input", inputTypeName, "types", len(info.Types))
	return info, nil
}

// attach gives a diagnostic the source text, so that it renders with a caret.
func attach(err error, source string) error {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		return d.WithSource(source)
	}
	return diag.New(diag.CodeGenError, diag.Unsupported, diag.Span{}, "%v", err).WithSource(source)
}
