package codegen

import (
	"html/template"

	"github.com/evoludigit/elo/diag"
	"github.com/gobuffalo/plush"
	"golang.org/x/tools/imports"
)

// fileTemplate lays out a generated file. Every value is passed as
// template.HTML so that plush writes Go source unescaped.
const fileTemplate = `// Code generated by elo. DO NOT EDIT.

package <%= pkgName %>

import (
<%= for (imp) in importList { %>	<%= imp %>
<% } %>)
<%= for (decl) in typeDecls { %>
<%= decl %>
<% } %><%= if (hasPatterns) { %>
var eloPatterns = [...]*regexp.Regexp{
<%= for (p) in patternList { %>	elort.CompilePattern(<%= p %>),
<% } %>}
<% } %><%= if (hasFunc) { %>
<%= docComment %>
func <%= funcName %>(input *<%= inputType %>) error {
	if input == nil {
		return elort.ValidationErrors{elort.ValidationError{Rule: "input_check", Message: "input is nil"}}
	}
	var errs elort.ValidationErrors
<%= funcBody %>
	return errs.Err()
}
<% } %>`

// file is the content of a generated file.
type file struct {
	pkg      string
	imports  []string // quoted import paths
	types    []string // type declarations
	patterns []string // quoted regular expressions
	function *function
}

type function struct {
	name  string
	input string
	doc   string
	body  string
}

func html(ss []string) []template.HTML {
	out := make([]template.HTML, len(ss))
	for i, s := range ss {
		out[i] = template.HTML(s)
	}
	return out
}

// render executes the template and formats the result.
func (f file) render(filename string) (string, error) {
	ctx := plush.NewContext()
	ctx.Set("pkgName", template.HTML(f.pkg))
	ctx.Set("importList", html(f.imports))
	ctx.Set("typeDecls", html(f.types))
	ctx.Set("hasPatterns", len(f.patterns) > 0)
	ctx.Set("patternList", html(f.patterns))
	ctx.Set("hasFunc", f.function != nil)
	if fn := f.function; fn != nil {
		ctx.Set("funcName", template.HTML(fn.name))
		ctx.Set("inputType", template.HTML(fn.input))
		ctx.Set("docComment", template.HTML(fn.doc))
		ctx.Set("funcBody", template.HTML(fn.body))
	}

	src, err := plush.Render(fileTemplate, ctx)
	if err != nil {
		return "", diag.New(diag.CodeGenError, diag.Unsupported, diag.Span{}, "rendering %s: %v", filename, err)
	}

	out, err := imports.Process(filename, []byte(src), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return "", diag.New(diag.CodeGenError, diag.Unsupported, diag.Span{}, "generated code for %s is not valid Go: %v", filename, err)
	}
	return string(out), nil
}
