package schema

import "fmt"

// Type defines a type in the elo type system. Every type knows how it is
// spelled in the DSL and how values of the type are represented in the Go
// code emitted for a validator.
type Type interface {
	// Implements the stringer interface
	String() string

	// GoType is the Go type used for values of this type in generated code.
	GoType() string
}

// Integer is a 64-bit signed integer.
type Integer struct{}

// Float is a 64-bit IEEE-754 number.
type Float struct{}

// Boolean is true or false.
type Boolean struct{}

// String is a UTF-8 string.
type String struct{}

// Date is a calendar day, represented as a time.Time at midnight UTC.
type Date struct{}

// DateTime is an instant, represented as a time.Time.
type DateTime struct{}

// Duration is an elapsed amount of time, represented as a time.Duration.
type Duration struct{}

// Unknown is a value whose type is only known when the validator runs.
// Operations on Unknown values are checked at run time.
type Unknown struct{}

// Array is an ordered list of values of a single type.
type Array struct {
	Elem Type // the type of element stored in the array
}

// Option is a value that may be absent (null). It is represented as a
// pointer in generated code.
type Option struct {
	Elem Type // the type of the value when present
}

// Custom refers to a named type defined in a TypeContext. Custom types
// compare by name.
type Custom struct {
	Name string
}

// String Methods
func (Integer) String() string  { return "integer" }
func (Float) String() string    { return "float" }
func (Boolean) String() string  { return "boolean" }
func (String) String() string   { return "string" }
func (Date) String() string     { return "date" }
func (DateTime) String() string { return "datetime" }
func (Duration) String() string { return "duration" }
func (Unknown) String() string  { return "unknown" }
func (t Array) String() string  { return fmt.Sprintf("[]%v", t.Elem) }
func (t Option) String() string { return fmt.Sprintf("?%v", t.Elem) }
func (t Custom) String() string { return t.Name }

// GoType Methods
func (Integer) GoType() string  { return "int64" }
func (Float) GoType() string    { return "float64" }
func (Boolean) GoType() string  { return "bool" }
func (String) GoType() string   { return "string" }
func (Date) GoType() string     { return "time.Time" }
func (DateTime) GoType() string { return "time.Time" }
func (Duration) GoType() string { return "time.Duration" }
func (Unknown) GoType() string  { return "any" }
func (t Array) GoType() string  { return "[]" + t.Elem.GoType() }
func (t Option) GoType() string { return "*" + t.Elem.GoType() }
func (t Custom) GoType() string { return t.Name }

// Equal reports whether a and b are the same type. Types compare
// structurally; Custom types compare by name.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// IsNumeric reports whether t is Integer or Float.
func IsNumeric(t Type) bool {
	switch t.(type) {
	case Integer, Float:
		return true
	}
	return false
}

// IsTemporal reports whether t is Date, DateTime or Duration.
func IsTemporal(t Type) bool {
	switch t.(type) {
	case Date, DateTime, Duration:
		return true
	}
	return false
}

// IsUnknown reports whether t is Unknown.
func IsUnknown(t Type) bool {
	_, ok := t.(Unknown)
	return ok
}

// Unwrap returns the element type of an Option, or t itself.
func Unwrap(t Type) Type {
	if o, ok := t.(Option); ok {
		return o.Elem
	}
	return t
}

// Contains reports whether t mentions a type for which match returns true.
func Contains(t Type, match func(Type) bool) bool {
	if match(t) {
		return true
	}
	switch v := t.(type) {
	case Array:
		return Contains(v.Elem, match)
	case Option:
		return Contains(v.Elem, match)
	}
	return false
}
