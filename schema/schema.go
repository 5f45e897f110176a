// Package schema defines the elo type system and the type context that
// describes the shape of the values validators inspect.
package schema

import (
	"sort"
	"strings"

	"github.com/markbates/inflect"
	"github.com/pkg/errors"
)

// Schema defines the fields of one custom type. Rule expressions refer to the
// fields by name; generated validators access them as Go struct fields.
type Schema struct {
	// Name of the type. This is also the Go type name used in generated code.
	Name string `json:"name"`
	// A user-friendly description of the type
	Description string `json:"description,omitempty"`
	// Fields in declaration order
	Fields []Field `json:"fields,omitempty"`
}

// Field defines a named, typed member of a Schema.
type Field struct {
	// Name used in rules, usually snake_case.
	Name string `json:"name"`

	// One of the Type values defined in this package.
	Type Type `json:"type"`

	// GoName overrides the Go struct field name. When empty, the rule name is
	// camelized: first_name becomes FirstName.
	GoName string `json:"go_name,omitempty"`

	// Optional description of the field.
	Description string `json:"description,omitempty"`
}

// GoField returns the Go struct field name for f.
func (f Field) GoField() string {
	if f.GoName != "" {
		return f.GoName
	}
	return GoIdent(f.Name)
}

// GoIdent converts a rule identifier into an exported Go identifier.
func GoIdent(name string) string {
	return inflect.Camelize(name)
}

func (s Schema) String() string {
	x := strings.Builder{}
	x.WriteString(s.Name)
	if s.Description != "" {
		x.WriteString("  '" + s.Description + "'")
	}
	x.WriteString("\n")
	for _, f := range s.Fields {
		x.WriteString(f.String())
		x.WriteString("\n")
	}
	return x.String()
}

func (f Field) String() string {
	return "  " + f.Name + " (" + f.Type.String() + ")"
}

// Field returns the field with the given name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ErrInvalidSchema is returned when a TypeContext cannot be built from the
// schemas given.
var ErrInvalidSchema = errors.New("invalid schema")

// TypeContext maps custom type names to their schemas. A TypeContext is
// immutable once created and is safe for concurrent use.
type TypeContext struct {
	schemas map[string]Schema
	order   []string
}

// NewTypeContext builds a TypeContext from the schemas. Type and field names
// must be unique, and every Custom type referenced by a field must itself be
// defined.
func NewTypeContext(schemas ...Schema) (*TypeContext, error) {
	c := &TypeContext{schemas: make(map[string]Schema, len(schemas))}

	for _, s := range schemas {
		if s.Name == "" {
			return nil, errors.Wrap(ErrInvalidSchema, "type without a name")
		}
		if _, ok := c.schemas[s.Name]; ok {
			return nil, errors.Wrapf(ErrInvalidSchema, "type %s defined twice", s.Name)
		}
		seen := map[string]bool{}
		fields := make([]Field, len(s.Fields))
		for i, f := range s.Fields {
			if f.Name == "" {
				return nil, errors.Wrapf(ErrInvalidSchema, "type %s: field %d has no name", s.Name, i)
			}
			if f.Type == nil {
				return nil, errors.Wrapf(ErrInvalidSchema, "type %s: field %s has no type", s.Name, f.Name)
			}
			if seen[f.Name] {
				return nil, errors.Wrapf(ErrInvalidSchema, "type %s: field %s defined twice", s.Name, f.Name)
			}
			seen[f.Name] = true
			fields[i] = f
		}
		s.Fields = fields
		c.schemas[s.Name] = s
		c.order = append(c.order, s.Name)
	}

	for _, name := range c.order {
		for _, f := range c.schemas[name].Fields {
			var missing string
			Contains(f.Type, func(t Type) bool {
				if ct, ok := t.(Custom); ok {
					if _, ok := c.schemas[ct.Name]; !ok {
						missing = ct.Name
						return true
					}
				}
				return false
			})
			if missing != "" {
				return nil, errors.Wrapf(ErrInvalidSchema, "type %s: field %s refers to undefined type %s", name, f.Name, missing)
			}
		}
	}
	return c, nil
}

// MustTypeContext is like NewTypeContext but panics on error. It is intended
// for tests and package-level declarations.
func MustTypeContext(schemas ...Schema) *TypeContext {
	c, err := NewTypeContext(schemas...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns a copy of the schema for the named type.
func (c *TypeContext) Lookup(name string) (Schema, bool) {
	if c == nil {
		return Schema{}, false
	}
	s, ok := c.schemas[name]
	if !ok {
		return Schema{}, false
	}
	s.Fields = append([]Field(nil), s.Fields...)
	return s, true
}

// Field returns the named field of the named type.
func (c *TypeContext) Field(typeName, field string) (Field, bool) {
	if c == nil {
		return Field{}, false
	}
	s, ok := c.schemas[typeName]
	if !ok {
		return Field{}, false
	}
	return s.Field(field)
}

// Names returns the type names in declaration order.
func (c *TypeContext) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}

// FieldNames returns the sorted field names of a type; used for suggestions
// in diagnostics.
func (c *TypeContext) FieldNames(typeName string) []string {
	s, ok := c.Lookup(typeName)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func (c *TypeContext) String() string {
	x := strings.Builder{}
	for _, n := range c.Names() {
		x.WriteString(c.schemas[n].String())
	}
	return x.String()
}
