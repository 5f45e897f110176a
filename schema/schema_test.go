package schema_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/evoludigit/elo/schema"
	"github.com/matryer/is"
)

func TestParser(t *testing.T) {

	cases := map[string]struct {
		str       string
		wantError bool
		wantType  schema.Type
	}{
		"int": {
			str:      "int",
			wantType: schema.Integer{},
		},
		"integer": {
			str:      "integer",
			wantType: schema.Integer{},
		},
		"datetime": {
			str:      "datetime",
			wantType: schema.DateTime{},
		},
		"any": {
			str:      "any",
			wantType: schema.Unknown{},
		},
		"array": {
			str:      "[]float",
			wantType: schema.Array{Elem: schema.Float{}},
		},
		"array of custom": {
			str:      "[]LineItem",
			wantType: schema.Array{Elem: schema.Custom{Name: "LineItem"}},
		},
		"option": {
			str:      "?date",
			wantType: schema.Option{Elem: schema.Date{}},
		},
		"array of options": {
			str:      "[]?string",
			wantType: schema.Array{Elem: schema.Option{Elem: schema.String{}}},
		},
		"custom": {
			str:      "Address",
			wantType: schema.Custom{Name: "Address"},
		},
		"empty array": {
			str:       "[]",
			wantError: true,
			wantType:  schema.Unknown{},
		},
		"nested option": {
			str:       "??int",
			wantError: true,
			wantType:  schema.Unknown{},
		},
		"not an identifier": {
			str:       "map[string]int",
			wantError: true,
			wantType:  schema.Unknown{},
		},
	}

	for key, c := range cases {
		typ, err := schema.ParseType(c.str)
		if c.wantError && err == nil {
			t.Errorf("case %s: wanted error", key)
		}
		if !c.wantError && err != nil {
			t.Errorf("case %s: didn't want error, got: %v", key, err)
		}
		if !reflect.DeepEqual(typ, c.wantType) {
			t.Errorf("case %s: deep equal fails. Want %+v, got %+v", key, c.wantType, typ)
		}
	}
}

func TestString(t *testing.T) {
	is := is.New(t)
	is.Equal(schema.Array{Elem: schema.Option{Elem: schema.Duration{}}}.String(), "[]?duration")
	is.Equal(schema.Array{Elem: schema.Option{Elem: schema.Duration{}}}.GoType(), "[]*time.Duration")
	is.Equal(schema.Custom{Name: "User"}.GoType(), "User")
	is.Equal(schema.Unknown{}.GoType(), "any")
}

func TestEqual(t *testing.T) {
	is := is.New(t)
	is.True(schema.Equal(schema.Array{Elem: schema.Integer{}}, schema.Array{Elem: schema.Integer{}}))
	is.True(!schema.Equal(schema.Array{Elem: schema.Integer{}}, schema.Array{Elem: schema.Float{}}))
	is.True(schema.Equal(schema.Custom{Name: "A"}, schema.Custom{Name: "A"}))
	is.True(!schema.Equal(schema.Custom{Name: "A"}, schema.Custom{Name: "B"}))
	is.True(!schema.Equal(schema.Date{}, schema.DateTime{}))
	is.True(schema.Equal(nil, nil))
	is.True(!schema.Equal(schema.String{}, nil))
}

func userContext(t *testing.T) *schema.TypeContext {
	t.Helper()
	c, err := schema.NewTypeContext(
		schema.Schema{
			Name: "User",
			Fields: []schema.Field{
				{Name: "age", Type: schema.Integer{}},
				{Name: "first_name", Type: schema.String{}},
				{Name: "nickname", Type: schema.Option{Elem: schema.String{}}, GoName: "Nick"},
				{Name: "items", Type: schema.Array{Elem: schema.Custom{Name: "Item"}}},
			},
		},
		schema.Schema{
			Name:   "Item",
			Fields: []schema.Field{{Name: "quantity", Type: schema.Integer{}}},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestTypeContext(t *testing.T) {
	is := is.New(t)
	c := userContext(t)

	is.Equal(c.Names(), []string{"User", "Item"})

	f, ok := c.Field("User", "first_name")
	is.True(ok)
	is.Equal(f.GoField(), "FirstName")

	f, ok = c.Field("User", "nickname")
	is.True(ok)
	is.Equal(f.GoField(), "Nick")

	_, ok = c.Field("User", "missing")
	is.True(!ok)
	_, ok = c.Field("Nobody", "age")
	is.True(!ok)

	is.Equal(c.FieldNames("User"), []string{"age", "first_name", "items", "nickname"})
}

func TestTypeContextIsImmutable(t *testing.T) {
	is := is.New(t)
	fields := []schema.Field{{Name: "age", Type: schema.Integer{}}}
	c := schema.MustTypeContext(schema.Schema{Name: "User", Fields: fields})

	fields[0].Name = "changed"
	s, ok := c.Lookup("User")
	is.True(ok)
	is.Equal(s.Fields[0].Name, "age") // caller's slice is copied

	s.Fields[0].Name = "changed again"
	s, _ = c.Lookup("User")
	is.Equal(s.Fields[0].Name, "age") // lookups return copies
}

func TestTypeContextErrors(t *testing.T) {

	cases := map[string][]schema.Schema{
		"unnamed type":   {{Fields: []schema.Field{{Name: "a", Type: schema.Integer{}}}}},
		"duplicate type": {{Name: "A"}, {Name: "A"}},
		"duplicate field": {{Name: "A", Fields: []schema.Field{
			{Name: "a", Type: schema.Integer{}},
			{Name: "a", Type: schema.String{}},
		}}},
		"missing type":   {{Name: "A", Fields: []schema.Field{{Name: "a"}}}},
		"undefined type": {{Name: "A", Fields: []schema.Field{{Name: "b", Type: schema.Array{Elem: schema.Custom{Name: "B"}}}}}},
	}

	for key, c := range cases {
		_, err := schema.NewTypeContext(c...)
		if err == nil {
			t.Errorf("case %s: wanted error", key)
			continue
		}
		if !errors.Is(err, schema.ErrInvalidSchema) {
			t.Errorf("case %s: wanted ErrInvalidSchema, got %v", key, err)
		}
	}
}

const typesHCL = `
type "Order" {
  id       = string
  total    = float
  placed   = datetime
  items    = list(LineItem)
  coupon   = optional(string)
  tags     = "[]string"

  field "customer_note" {
    type        = optional(string)
    go_name     = "Note"
    description = "free text from checkout"
  }
}

type "LineItem" {
  quantity = integer
  sku      = string
}
`

func TestLoadHCL(t *testing.T) {
	is := is.New(t)

	c, err := schema.LoadHCL(context.Background(), "types.hcl", []byte(typesHCL))
	is.NoErr(err)
	is.Equal(c.Names(), []string{"Order", "LineItem"})

	order, ok := c.Lookup("Order")
	is.True(ok)

	var names []string
	for _, f := range order.Fields {
		names = append(names, f.Name)
	}
	is.Equal(names, []string{"id", "total", "placed", "items", "coupon", "tags", "customer_note"}) // file order

	items, _ := order.Field("items")
	is.Equal(items.Type, schema.Array{Elem: schema.Custom{Name: "LineItem"}})

	tags, _ := order.Field("tags")
	is.Equal(tags.Type, schema.Array{Elem: schema.String{}})

	note, _ := order.Field("customer_note")
	is.Equal(note.Type, schema.Option{Elem: schema.String{}})
	is.Equal(note.GoField(), "Note")
	is.Equal(note.Description, "free text from checkout")
}

func TestLoadHCLErrors(t *testing.T) {

	cases := map[string]string{
		"syntax":          `type "A" {`,
		"top level":       `x = 1`,
		"wrong block":     `thing "A" {}`,
		"no label":        `type { a = integer }`,
		"bad constructor": `type "A" { a = map(string) }`,
		"two args":        `type "A" { a = list(string, integer) }`,
		"nested optional": `type "A" { a = optional(optional(string)) }`,
		"traversal":       `type "A" { a = b.c }`,
		"undefined":       `type "A" { a = B }`,
		"field without type": `type "A" {
  field "a" { go_name = "X" }
}`,
		"go_name not string": `type "A" {
  field "a" {
    type    = string
    go_name = 3
  }
}`,
	}

	for key, src := range cases {
		if _, err := schema.LoadHCL(context.Background(), "t.hcl", []byte(src)); err == nil {
			t.Errorf("case %s: wanted error", key)
		}
	}
}
