package stdlib_test

import (
	"errors"
	"testing"

	"github.com/evoludigit/elo/schema"
	"github.com/evoludigit/elo/stdlib"
	"github.com/matryer/is"
)

var (
	integer = schema.Integer{}
	float   = schema.Float{}
	str     = schema.String{}
	unknown = schema.Unknown{}
	date    = schema.Date{}
)

func TestResolve(t *testing.T) {
	reg := stdlib.Default()

	cases := []struct {
		name     string
		args     []schema.Type
		category stdlib.Category
		result   schema.Type
		kind     stdlib.StrategyKind
	}{
		{"contains", []schema.Type{str, str}, stdlib.String, schema.Boolean{}, stdlib.Template},
		{"contains", []schema.Type{schema.Array{Elem: integer}, integer}, stdlib.Array, schema.Boolean{}, stdlib.Loop},
		{"contains", []schema.Type{schema.Array{Elem: integer}, float}, stdlib.Array, schema.Boolean{}, stdlib.Loop},
		{"contains", []schema.Type{unknown, str}, stdlib.Array, schema.Boolean{}, stdlib.Template},
		{"length", []schema.Type{str}, stdlib.String, integer, stdlib.Template},
		{"length", []schema.Type{schema.Array{Elem: str}}, stdlib.Array, integer, stdlib.Template},
		{"is_empty", []schema.Type{schema.Array{Elem: str}}, stdlib.Array, schema.Boolean{}, stdlib.Template},
		{"matches", []schema.Type{str, str}, stdlib.String, schema.Boolean{}, stdlib.Regex},
		{"matches", []schema.Type{unknown, str}, stdlib.String, schema.Boolean{}, stdlib.Regex},
		{"age", []schema.Type{date}, stdlib.DateTime, integer, stdlib.Template},
		{"days_since", []schema.Type{schema.DateTime{}}, stdlib.DateTime, integer, stdlib.Template},
		{"today", nil, stdlib.DateTime, date, stdlib.Template},
		{"abs", []schema.Type{integer}, stdlib.Math, integer, stdlib.Template},
		{"abs", []schema.Type{float}, stdlib.Math, float, stdlib.Template},
		{"min", []schema.Type{integer, integer}, stdlib.Math, integer, stdlib.Template},
		{"min", []schema.Type{integer, float}, stdlib.Math, float, stdlib.Template},
		{"round", []schema.Type{integer}, stdlib.Math, integer, stdlib.Template},
		{"is_some", []schema.Type{schema.Option{Elem: str}}, stdlib.Type, schema.Boolean{}, stdlib.Presence},
		{"all", []schema.Type{schema.Array{Elem: schema.Custom{Name: "Item"}}, schema.Boolean{}}, stdlib.Array, schema.Boolean{}, stdlib.Loop},
	}

	for _, c := range cases {
		sig, err := reg.Resolve(c.name, c.args)
		if err != nil {
			t.Errorf("%s%v: %v", c.name, c.args, err)
			continue
		}
		if sig.Category != c.category {
			t.Errorf("%s%v: category %v, want %v", c.name, c.args, sig.Category, c.category)
		}
		if got := sig.Result(c.args); !schema.Equal(got, c.result) {
			t.Errorf("%s%v: result %v, want %v", c.name, c.args, got, c.result)
		}
		if sig.Strategy.Kind != c.kind {
			t.Errorf("%s%v: strategy %v, want %v", c.name, c.args, sig.Strategy.Kind, c.kind)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	reg := stdlib.Default()

	cases := map[string]struct {
		name string
		args []schema.Type
		kind stdlib.ResolveErrorKind
		arg  int
		msg  string
	}{
		"unknown": {
			name: "frobnicate",
			kind: stdlib.UnknownFunction,
			msg:  "unknown function frobnicate",
		},
		"arity": {
			name: "uppercase",
			args: []schema.Type{str, str},
			kind: stdlib.WrongArity,
			msg:  "uppercase expects 1 argument, got 2 arguments",
		},
		"overloaded arity": {
			name: "today",
			args: []schema.Type{str},
			kind: stdlib.WrongArity,
			msg:  "today expects 0 arguments, got 1 argument",
		},
		"wrong type": {
			name: "starts_with",
			args: []schema.Type{str, integer},
			kind: stdlib.WrongType,
			arg:  1,
			msg:  "argument 2 of starts_with must be string, got integer",
		},
		"element type": {
			name: "contains",
			args: []schema.Type{schema.Array{Elem: str}, integer},
			kind: stdlib.WrongType,
			arg:  1,
			msg:  "argument 2 of contains must be string, got integer",
		},
		"first argument": {
			name: "length",
			args: []schema.Type{integer},
			kind: stdlib.WrongType,
			msg:  "argument 1 of length must be string or array, got integer",
		},
	}

	for key, c := range cases {
		_, err := reg.Resolve(c.name, c.args)
		var re *stdlib.ResolveError
		if !errors.As(err, &re) {
			t.Errorf("case %s: wanted *ResolveError, got %v", key, err)
			continue
		}
		if re.Kind != c.kind || re.Arg != c.arg {
			t.Errorf("case %s: got kind %v arg %d, want kind %v arg %d", key, re.Kind, re.Arg, c.kind, c.arg)
		}
		if re.Error() != c.msg {
			t.Errorf("case %s: got message %q, want %q", key, re.Error(), c.msg)
		}
	}
}

func TestCatalogue(t *testing.T) {
	is := is.New(t)
	reg := stdlib.Default()

	is.True(reg == stdlib.Default()) // built once

	for _, name := range []string{
		"matches", "contains", "length", "uppercase", "lowercase", "trim", "starts_with", "ends_with",
		"today", "now", "age", "days_since", "date", "datetime", "duration", "duration_days",
		"any", "all", "is_empty", "is_null", "is_some", "is_string", "is_number", "is_bool",
		"abs", "min", "max", "round", "floor", "ceil",
	} {
		is.True(reg.Has(name)) // missing builtin
	}
	is.True(!reg.Has("eval"))

	names := reg.Names()
	for i := 1; i < len(names); i++ {
		is.True(names[i-1] < names[i]) // sorted and unique
	}

	for _, s := range reg.ByCategory(stdlib.Math) {
		is.Equal(s.Category, stdlib.Math)
	}

	o := reg.Overloads("length")
	is.Equal(len(o), 3)
	o[0].Name = "changed"
	is.Equal(reg.Overloads("length")[0].Name, "length") // copies
}

func TestSignatureString(t *testing.T) {
	is := is.New(t)
	sig, err := stdlib.Default().Resolve("contains", []schema.Type{schema.Array{Elem: integer}, integer})
	is.NoErr(err)
	is.Equal(sig.String(), "contains(array, array element)")
	is.Equal(stdlib.DateTime.String(), "datetime")
}
