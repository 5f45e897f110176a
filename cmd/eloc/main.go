// Command eloc compiles elo rules into Go validators.
//
// Usage:
//
//	eloc compile  -input rules.elo -types types.hcl -type User [-func ValidateUser] [-package p] [-output out.go]
//	eloc validate -input rules.elo
//	eloc explain  -input rules.elo -types types.hcl -type User
//	eloc types    -types types.hcl [-package p] [-output types.go]
//	eloc check    -input rules.elo -types types.hcl -type User -data data.json
//
// An input of - is read from standard input.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/evoludigit/elo"
	"github.com/evoludigit/elo/codegen"
	"github.com/evoludigit/elo/internal/ctxlog"
	"github.com/evoludigit/elo/internal/sandbox"
	"github.com/evoludigit/elo/schema"
	"github.com/pkg/errors"
)

// maxInput is the largest file eloc reads.
const maxInput = 1 << 20

// ErrChecksFailed is returned by check when the data does not satisfy the rule.
var ErrChecksFailed = errors.New("validation failed")

var (
	stdin  io.Reader = os.Stdin
	stderr io.Writer = os.Stderr
)

func main() {
	if err := run(os.Stdout, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

const usage = `usage:
	eloc compile  -input rules.elo -types types.hcl -type User [-func ValidateUser] [-package p] [-output out.go]
	eloc validate -input rules.elo
	eloc explain  -input rules.elo -types types.hcl -type User
	eloc types    -types types.hcl [-package p] [-output types.go]
	eloc check    -input rules.elo -types types.hcl -type User -data data.json`

type config struct {
	input      string
	types      string
	typeName   string
	funcName   string
	pkg        string
	output     string
	data       string
	strict     bool
	noOptimize bool
	decls      bool
	verbose    bool
	logLevel   string
	logFormat  string
}

func run(stdout io.Writer, args []string) error {
	if len(args) < 2 {
		return errors.New(usage)
	}
	cmd := args[1]

	flags := flag.NewFlagSet(args[0]+" "+cmd, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, usage)
		flags.PrintDefaults()
	}

	var c config
	flags.StringVar(&c.input, "input", "", "rule source file, or - for standard input")
	flags.StringVar(&c.types, "types", "", "HCL file declaring the types")
	flags.StringVar(&c.typeName, "type", "", "input type of the rule")
	flags.StringVar(&c.funcName, "func", "", "name of the generated function (default Validate<type>)")
	flags.StringVar(&c.pkg, "package", codegen.DefaultPackage, "package clause of generated files")
	flags.StringVar(&c.output, "output", "", "write generated source to this file instead of standard output")
	flags.StringVar(&c.data, "data", "", "JSON document to check")
	flags.BoolVar(&c.strict, "strict", false, "reject expressions whose type is only known at run time")
	flags.BoolVar(&c.noOptimize, "no-optimize", false, "generate code for the rule as written")
	flags.BoolVar(&c.decls, "with-types", false, "include the type declarations in the generated file")
	flags.BoolVar(&c.verbose, "v", false, "produce verbose output")
	flags.StringVar(&c.logLevel, "log-level", envOr("ELO_LOG_LEVEL", "info"), "debug, info, warn or error")
	flags.StringVar(&c.logFormat, "log-format", "text", "text or json")
	if err := flags.Parse(args[2:]); err != nil {
		return err
	}

	logger, err := newLogger(c.logLevel, c.logFormat, stderr)
	if err != nil {
		return err
	}
	ctx := ctxlog.WithLogger(context.Background(), logger)

	switch cmd {
	case "compile":
		return compile(ctx, stdout, c)
	case "validate":
		return validate(stdout, c)
	case "explain":
		return explain(ctx, stdout, c)
	case "types":
		return types(ctx, stdout, c)
	case "check":
		return check(ctx, stdout, c)
	}
	return errors.Errorf("unknown command %q\n%s", cmd, usage)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c config) compiler(ctx context.Context) *elo.Compiler {
	opts := []elo.Option{elo.WithLogger(ctxlog.FromContext(ctx)), elo.WithPackageName(c.pkg)}
	if c.strict {
		opts = append(opts, elo.WithStrictUnknown())
	}
	if c.noOptimize {
		opts = append(opts, elo.WithoutOptimization())
	}
	if c.decls {
		opts = append(opts, elo.WithTypeDeclarations())
	}
	return elo.NewCompiler(opts...)
}

func (c config) function() string {
	if c.funcName != "" {
		return c.funcName
	}
	return "Validate" + schema.GoIdent(c.typeName)
}

// rule reads the rule source and the type context named by the flags.
func (c config) rule(ctx context.Context) (string, *schema.TypeContext, error) {
	if c.typeName == "" {
		return "", nil, errors.New("missing -type")
	}
	src, err := readInput(c.input)
	if err != nil {
		return "", nil, err
	}
	tc, err := c.typeContext(ctx)
	if err != nil {
		return "", nil, err
	}
	return string(src), tc, nil
}

func (c config) typeContext(ctx context.Context) (*schema.TypeContext, error) {
	if c.types == "" {
		return nil, errors.New("missing -types")
	}
	path, err := safePath(c.types)
	if err != nil {
		return nil, err
	}
	return schema.LoadHCLFile(ctx, path)
}

func compile(ctx context.Context, stdout io.Writer, c config) error {
	src, tc, err := c.rule(ctx)
	if err != nil {
		return err
	}
	out, err := c.compiler(ctx).Compile(src, tc, c.function(), c.typeName)
	if err != nil {
		return err
	}
	if err := write(stdout, c.output, out); err != nil {
		return err
	}
	if c.verbose {
		fmt.Fprintf(stderr, "\tFunction: %s(input *%s)\n", c.function(), c.typeName)
		fmt.Fprintf(stderr, "\tOutput size: %s\n", humanize.Bytes(uint64(len(out))))
	}
	return nil
}

func validate(stdout io.Writer, c config) error {
	src, err := readInput(c.input)
	if err != nil {
		return err
	}
	if err := elo.ValidateSyntax(string(src)); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

func explain(ctx context.Context, stdout io.Writer, c config) error {
	src, tc, err := c.rule(ctx)
	if err != nil {
		return err
	}
	out, err := c.compiler(ctx).Explain(src, tc, c.typeName)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}

func types(ctx context.Context, stdout io.Writer, c config) error {
	tc, err := c.typeContext(ctx)
	if err != nil {
		return err
	}
	out, err := codegen.GenerateTypes(tc, c.pkg)
	if err != nil {
		return err
	}
	return write(stdout, c.output, out)
}

// check compiles the rule, runs it on the -data document and prints the
// failed checks.
func check(ctx context.Context, stdout io.Writer, c config) error {
	if c.data == "" {
		return errors.New("missing -data")
	}
	src, tc, err := c.rule(ctx)
	if err != nil {
		return err
	}
	c.decls = true
	out, err := c.compiler(ctx).Compile(src, tc, c.function(), c.typeName)
	if err != nil {
		return err
	}
	data, err := readInput(c.data)
	if err != nil {
		return err
	}

	v, err := sandbox.Load(ctx, out, c.function(), c.typeName)
	if err != nil {
		return errors.Wrap(err, "loading validator")
	}
	failed, err := v.Validate(data)
	if err != nil {
		return err
	}
	if len(failed) == 0 {
		fmt.Fprintln(stdout, "ok")
		return nil
	}
	fmt.Fprintln(stdout, failed.Table())
	return errors.Wrapf(ErrChecksFailed, "%d failed checks", len(failed))
}

// readInput reads a file, or standard input for "-", refusing anything larger
// than maxInput.
func readInput(name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("missing -input")
	}
	var r io.Reader
	if name == "-" {
		r = stdin
	} else {
		path, err := safePath(name)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "opening input")
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(io.LimitReader(r, maxInput+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	if len(b) > maxInput {
		return nil, errors.Errorf("%s is larger than %s", name, humanize.Bytes(maxInput))
	}
	return b, nil
}

// safePath cleans name and refuses paths that climb out of the working
// directory.
func safePath(name string) (string, error) {
	clean := filepath.Clean(name)
	for _, seg := range strings.Split(filepath.ToSlash(clean), "/") {
		if seg == ".." {
			return "", errors.Errorf("refusing path %s: contains ..", name)
		}
	}
	return clean, nil
}

func write(stdout io.Writer, output, content string) error {
	if output == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	path, err := safePath(output)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return nil
}
