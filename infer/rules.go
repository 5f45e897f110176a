package infer

import (
	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/schema"
)

func isTime(t schema.Type) bool {
	switch t.(type) {
	case schema.Date, schema.DateTime:
		return true
	}
	return false
}

var (
	integer  = schema.Integer{}
	float    = schema.Float{}
	duration = schema.Duration{}
)

// unify returns the type of a value that is either a or b: if branches,
// array elements and ?| fallbacks.
func unify(a, b schema.Type) (schema.Type, bool) {
	switch {
	case schema.Equal(a, b):
		return a, true
	case schema.IsUnknown(a) || schema.IsUnknown(b):
		return schema.Unknown{}, true
	case schema.IsNumeric(a) && schema.IsNumeric(b):
		return float, true
	case isTime(a) && isTime(b):
		return schema.DateTime{}, true
	case schema.Equal(a, nullType):
		if _, ok := b.(schema.Option); ok {
			return b, true
		}
	case schema.Equal(b, nullType):
		if _, ok := a.(schema.Option); ok {
			return a, true
		}
	}
	return nil, false
}

// scalar reports whether values of t may be compared with == and !=.
func scalar(t schema.Type) bool {
	switch t.(type) {
	case schema.Array, schema.Custom:
		return false
	}
	return true
}

func equatable(a, b schema.Type) bool {
	switch {
	case schema.IsUnknown(a) || schema.IsUnknown(b):
		return true
	case schema.IsNumeric(a) && schema.IsNumeric(b):
		return true
	case isTime(a) && isTime(b):
		return true
	}
	return schema.Equal(a, b)
}

// ordered reports whether a and b may be compared with < <= > >=.
func ordered(a, b schema.Type) bool {
	switch {
	case schema.IsUnknown(a) || schema.IsUnknown(b):
		return true
	case schema.IsNumeric(a) && schema.IsNumeric(b):
		return true
	case isTime(a) && isTime(b):
		return true
	}
	return schema.Equal(a, b) && (schema.Equal(a, schema.String{}) || schema.Equal(a, duration))
}

// arith returns the result type of a op b, or nil when the operator does not
// apply to the operand types.
func arith(op ast.Op, a, b schema.Type) schema.Type {
	if schema.IsUnknown(a) || schema.IsUnknown(b) {
		return schema.Unknown{}
	}
	num := schema.IsNumeric(a) && schema.IsNumeric(b)
	ints := schema.Equal(a, integer) && schema.Equal(b, integer)
	isDur := func(t schema.Type) bool { return schema.Equal(t, duration) }

	switch op {
	case ast.Add:
		switch {
		case ints:
			return integer
		case num:
			return float
		case schema.Equal(a, schema.String{}) && schema.Equal(b, schema.String{}):
			return a
		case isTime(a) && isDur(b):
			return a
		case isDur(a) && isTime(b):
			return b
		case isDur(a) && isDur(b):
			return duration
		}
	case ast.Sub:
		switch {
		case ints:
			return integer
		case num:
			return float
		case isTime(a) && isDur(b):
			return a
		case isTime(a) && isTime(b):
			return duration
		case isDur(a) && isDur(b):
			return duration
		}
	case ast.Mul:
		switch {
		case ints:
			return integer
		case num:
			return float
		case isDur(a) && schema.Equal(b, integer), schema.Equal(a, integer) && isDur(b):
			return duration
		}
	case ast.Div:
		switch {
		case ints:
			return integer
		case num:
			return float
		case isDur(a) && schema.Equal(b, integer):
			return duration
		}
	case ast.Mod:
		if ints {
			return integer
		}
	case ast.Pow:
		switch {
		case ints:
			return integer
		case num:
			return float
		}
	}
	return nil
}
