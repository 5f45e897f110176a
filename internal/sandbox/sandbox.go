// Package sandbox runs generated validators in process with the yaegi Go
// interpreter, so that a compiled rule can be checked against data without
// building a program around it.
package sandbox

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"reflect"

	"github.com/evoludigit/elo/elort"
	"github.com/evoludigit/elo/internal/ctxlog"
	"github.com/pkg/errors"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ErrDecode is returned when the input document does not decode into the
// input type.
var ErrDecode = errors.New("input does not match the input type")

// ErrPanic is returned when a validator panics.
var ErrPanic = errors.New("validator panicked")

// Validator is a generated validator loaded into an interpreter.
type Validator struct {
	interp   *interp.Interpreter
	pkg      string
	check    func([]byte) (error, error)
	checkNil func() error
}

// entry points appended to the interpreted file. They run on the
// interpreter's side so that the input type never crosses into native code.
const entryPoints = `

func ELOSandboxCheck(data []byte) (error, error) {
	var in %[2]s
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	return %[1]s(&in), nil
}

func ELOSandboxCheckNil() error {
	return %[1]s(nil)
}
`

// Load interprets src, a file produced by codegen that declares both the
// validator funcName and the struct type inputType.
func Load(ctx context.Context, src, funcName, inputType string) (*Validator, error) {
	log := ctxlog.FromContext(ctx)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "validator.go", src, parser.PackageClauseOnly)
	if err != nil {
		return nil, errors.Wrap(err, "reading package clause")
	}
	pkg := f.Name.Name
	end := fset.Position(f.Name.End()).Offset

	full := src[:end] + "\n\nimport \"encoding/json\"\n" + src[end:] + fmt.Sprintf(entryPoints, funcName, inputType)

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, errors.Wrap(err, "loading standard library symbols")
	}
	if err := i.Use(Symbols); err != nil {
		return nil, errors.Wrap(err, "loading runtime symbols")
	}

	log.Debug("interpreting validator", "package", pkg, "func", funcName, "input", inputType)
	if _, err := i.EvalWithContext(ctx, full); err != nil {
		return nil, errors.Wrapf(err, "interpreting %s.%s", pkg, funcName)
	}

	v := &Validator{interp: i, pkg: pkg}
	check, err := i.EvalWithContext(ctx, pkg+".ELOSandboxCheck")
	if err != nil {
		return nil, errors.Wrap(err, "locating entry point")
	}
	var ok bool
	if v.check, ok = check.Interface().(func([]byte) (error, error)); !ok {
		return nil, errors.Errorf("unexpected entry point type %s", check.Type())
	}
	checkNil, err := i.EvalWithContext(ctx, pkg+".ELOSandboxCheckNil")
	if err != nil {
		return nil, errors.Wrap(err, "locating entry point")
	}
	if v.checkNil, ok = checkNil.Interface().(func() error); !ok {
		return nil, errors.Errorf("unexpected entry point type %s", checkNil.Type())
	}
	return v, nil
}

// Symbol returns the value of a package level identifier of the
// interpreted file.
func (v *Validator) Symbol(name string) (reflect.Value, error) {
	val, err := v.interp.Eval(v.pkg + "." + name)
	if err != nil {
		return reflect.Value{}, errors.Wrapf(err, "looking up %s", name)
	}
	return val, nil
}

// Validate decodes the JSON document data into the input type and runs the
// validator on it. The result is empty when every check passes.
func (v *Validator) Validate(data []byte) (result elort.ValidationErrors, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrPanic, "%v", r)
		}
	}()
	verr, derr := v.check(data)
	if derr != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", derr)
	}
	return failures(verr)
}

// ValidateNil runs the validator with a nil input.
func (v *Validator) ValidateNil() (result elort.ValidationErrors, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrPanic, "%v", r)
		}
	}()
	return failures(v.checkNil())
}

func failures(err error) (elort.ValidationErrors, error) {
	if err == nil {
		return nil, nil
	}
	var verrs elort.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, nil
	}
	return nil, errors.Wrap(err, "validator returned an unexpected error")
}
