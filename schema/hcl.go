package schema

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/evoludigit/elo/internal/ctxlog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// LoadHCLFile reads a type context from an HCL file. See LoadHCL for the format.
func LoadHCLFile(ctx context.Context, path string) (*TypeContext, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading type file")
	}
	return LoadHCL(ctx, path, src)
}

// LoadHCL parses a type context declared in HCL. Each type is a block whose
// attributes are fields; a nested field block allows a Go name override and a
// description:
//
//	type "User" {
//	  age      = integer
//	  email    = string
//	  tags     = list(string)
//	  manager  = optional(Employee)
//
//	  field "nickname" {
//	    type        = optional(string)
//	    go_name     = "Nick"
//	    description = "shown in greetings"
//	  }
//	}
//
// Fields keep their order in the file.
func LoadHCL(ctx context.Context, filename string, src []byte) (*TypeContext, error) {
	logger := ctxlog.FromContext(ctx).With("file", filename)

	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.Wrap(diags, "parsing type file")
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.Errorf("%s: unexpected body type %T", filename, file.Body)
	}
	if len(body.Attributes) > 0 {
		names := make([]string, 0, len(body.Attributes))
		for name := range body.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, errors.Errorf("%s: unexpected top-level attribute %q", body.Attributes[names[0]].SrcRange, names[0])
	}

	var schemas []Schema
	for _, blk := range body.Blocks {
		if blk.Type != "type" {
			return nil, errors.Errorf("%s: unexpected block %q, expected \"type\"", blk.TypeRange, blk.Type)
		}
		if len(blk.Labels) != 1 {
			return nil, errors.Errorf("%s: type block needs exactly one label (the type name)", blk.TypeRange)
		}
		s, err := decodeTypeBlock(ctx, blk)
		if err != nil {
			return nil, errors.Wrapf(err, "in type %s", blk.Labels[0])
		}
		logger.Debug("Decoded type block.", "type", s.Name, "fields", len(s.Fields))
		schemas = append(schemas, s)
	}

	c, err := NewTypeContext(schemas...)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}
	return c, nil
}

type positionedField struct {
	offset int
	field  Field
}

func decodeTypeBlock(ctx context.Context, blk *hclsyntax.Block) (Schema, error) {
	var fields []positionedField

	for name, attr := range blk.Body.Attributes {
		t, err := typeExprToType(ctx, attr.Expr)
		if err != nil {
			return Schema{}, errors.Wrapf(err, "field %s", name)
		}
		fields = append(fields, positionedField{attr.SrcRange.Start.Byte, Field{Name: name, Type: t}})
	}

	for _, fb := range blk.Body.Blocks {
		if fb.Type != "field" || len(fb.Labels) != 1 {
			return Schema{}, errors.Errorf("%s: expected a field block with one label", fb.TypeRange)
		}
		f, err := decodeFieldBlock(ctx, fb)
		if err != nil {
			return Schema{}, errors.Wrapf(err, "field %s", fb.Labels[0])
		}
		fields = append(fields, positionedField{fb.TypeRange.Start.Byte, f})
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].offset < fields[j].offset })

	s := Schema{Name: blk.Labels[0]}
	for _, pf := range fields {
		s.Fields = append(s.Fields, pf.field)
	}
	return s, nil
}

func decodeFieldBlock(ctx context.Context, fb *hclsyntax.Block) (Field, error) {
	f := Field{Name: fb.Labels[0]}
	for name, attr := range fb.Body.Attributes {
		switch name {
		case "type":
			t, err := typeExprToType(ctx, attr.Expr)
			if err != nil {
				return Field{}, err
			}
			f.Type = t
		case "go_name", "description":
			s, err := stringAttr(attr)
			if err != nil {
				return Field{}, err
			}
			if name == "go_name" {
				f.GoName = s
			} else {
				f.Description = s
			}
		default:
			return Field{}, errors.Errorf("%s: unsupported attribute %q", attr.SrcRange, name)
		}
	}
	if f.Type == nil {
		return Field{}, errors.Errorf("%s: missing type attribute", fb.TypeRange)
	}
	return f, nil
}

func stringAttr(attr *hclsyntax.Attribute) (string, error) {
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", errors.Wrap(diags, attr.Name)
	}
	if v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.String) {
		return "", errors.Errorf("%s: %s must be a string", attr.SrcRange, attr.Name)
	}
	return v.AsString(), nil
}

// typeExprToType converts an HCL type expression into an elo Type.
func typeExprToType(ctx context.Context, expr hcl.Expression) (Type, error) {
	logger := ctxlog.FromContext(ctx)

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type constructor.", "call", v.Name)
		if len(v.Args) != 1 {
			return nil, fmt.Errorf("%s: type constructor %s requires exactly one argument, got %d", v.Range(), v.Name, len(v.Args))
		}
		elem, err := typeExprToType(ctx, v.Args[0])
		if err != nil {
			return nil, err
		}
		switch v.Name {
		case "list", "array":
			return Array{Elem: elem}, nil
		case "optional", "option":
			if _, ok := elem.(Option); ok {
				return nil, fmt.Errorf("%s: nested optional", v.Range())
			}
			return Option{Elem: elem}, nil
		default:
			return nil, fmt.Errorf("%s: unknown type constructor %q", v.Range(), v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return nil, fmt.Errorf("%s: invalid type keyword: traversal path is not a single identifier", v.SrcRange)
		}
		t, err := ParseType(v.Traversal.RootName())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.SrcRange, err)
		}
		return t, nil

	case *hclsyntax.TemplateExpr:
		// "[]string" or "?date" written as a quoted string
		if len(v.Parts) == 1 {
			if lit, ok := v.Parts[0].(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type().Equals(cty.String) {
				return ParseType(lit.Val.AsString())
			}
		}
	}
	return nil, fmt.Errorf("%s: invalid type expression", expr.Range())
}
