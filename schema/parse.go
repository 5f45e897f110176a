package schema

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseType parses a string that represents an elo type and returns the type.
// The primitive types are their lower-case names (integer, string, date, etc.),
// with int and bool accepted as short forms. Arrays look like Go slices ([]string),
// and optional values are prefixed with a question mark (?integer).
// Any other identifier names a Custom type.
func ParseType(t string) (Type, error) {
	t = strings.TrimSpace(t)

	if strings.HasPrefix(t, "[]") {
		return parseArray(t)
	}

	if strings.HasPrefix(t, "?") {
		return parseOption(t)
	}

	switch t {
	case "integer", "int":
		return Integer{}, nil
	case "float":
		return Float{}, nil
	case "boolean", "bool":
		return Boolean{}, nil
	case "string":
		return String{}, nil
	case "date":
		return Date{}, nil
	case "datetime":
		return DateTime{}, nil
	case "duration":
		return Duration{}, nil
	case "any", "unknown":
		return Unknown{}, nil
	}

	if !isIdent(t) {
		return Unknown{}, fmt.Errorf("unrecognized type: %q", t)
	}
	return Custom{Name: t}, nil
}

// MustParseType is like ParseType but panics on error.
func MustParseType(t string) Type {
	typ, err := ParseType(t)
	if err != nil {
		panic(err)
	}
	return typ
}

// parseArray parses a string in the format []<elemtype>.
// Example: []string
func parseArray(t string) (Type, error) {
	elem, err := ParseType(strings.TrimPrefix(t, "[]"))
	if err != nil {
		return Unknown{}, err
	}
	return Array{Elem: elem}, nil
}

// parseOption parses a string in the format ?<elemtype>.
// Example: ?date
func parseOption(t string) (Type, error) {
	elem, err := ParseType(strings.TrimPrefix(t, "?"))
	if err != nil {
		return Unknown{}, err
	}
	if _, ok := elem.(Option); ok {
		return Unknown{}, fmt.Errorf("nested option in %q", t)
	}
	return Option{Elem: elem}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
