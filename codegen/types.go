package codegen

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"

	"github.com/evoludigit/elo/diag"
	"github.com/evoludigit/elo/schema"
)

// GenerateTypes emits Go struct declarations for every type in ctx. Field
// names follow schema.Field.GoField and carry json tags with the rule name,
// so that the structs decode from the same documents the rules describe.
func GenerateTypes(ctx *schema.TypeContext, pkg string) (string, error) {
	if pkg == "" {
		pkg = DefaultPackage
	}
	if !token.IsIdentifier(pkg) {
		return "", diag.New(diag.CodeGenError, diag.Unsupported, diag.Span{}, "%q is not a valid package name", pkg)
	}
	decls, imps := typeDecls(ctx)
	quoted := make([]string, len(imps))
	for i, p := range imps {
		quoted[i] = strconv.Quote(p)
	}
	return file{pkg: pkg, imports: quoted, types: decls}.render("types.go")
}

func typeDecls(ctx *schema.TypeContext) (decls []string, imports []string) {
	needTime := false
	for _, name := range ctx.Names() {
		s, _ := ctx.Lookup(name)

		var b strings.Builder
		if s.Description != "" {
			fmt.Fprintf(&b, "// %s is %s\n", s.Name, oneLine(s.Description))
		}
		fmt.Fprintf(&b, "type %s struct {\n", s.Name)
		for _, f := range s.Fields {
			if f.Description != "" {
				fmt.Fprintf(&b, "\t// %s\n", oneLine(f.Description))
			}
			tag := f.Name
			if _, ok := f.Type.(schema.Option); ok {
				tag += ",omitempty"
			}
			fmt.Fprintf(&b, "\t%s %s `json:%q`\n", f.GoField(), f.Type.GoType(), tag)
			if schema.Contains(f.Type, schema.IsTemporal) {
				needTime = true
			}
		}
		b.WriteString("}")
		decls = append(decls, b.String())
	}
	if needTime {
		imports = append(imports, "time")
	}
	return decls, imports
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
