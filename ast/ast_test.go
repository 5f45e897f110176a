package ast_test

import (
	"strconv"
	"testing"

	"github.com/evoludigit/elo/ast"
	"github.com/matryer/is"
)

func lit(n int64) *ast.IntLit {
	return &ast.IntLit{Value: n, Raw: strconv.FormatInt(n, 10)}
}

func field(path ...string) *ast.FieldPath {
	fp := &ast.FieldPath{}
	for _, p := range path {
		fp.Segments = append(fp.Segments, ast.Segment{Name: p})
	}
	return fp
}

func TestFormat(t *testing.T) {

	cases := map[string]struct {
		expr ast.Expr
		want string
	}{
		"minimal parens": {
			expr: &ast.Binary{Op: ast.Mul, X: &ast.Binary{Op: ast.Add, X: lit(1), Y: lit(2)}, Y: lit(3)},
			want: "(1 + 2) * 3",
		},
		"left associative": {
			expr: &ast.Binary{Op: ast.Sub, X: lit(10), Y: &ast.Binary{Op: ast.Sub, X: lit(4), Y: lit(3)}},
			want: "10 - (4 - 3)",
		},
		"power is right associative": {
			expr: &ast.Binary{Op: ast.Pow, X: &ast.Binary{Op: ast.Pow, X: lit(2), Y: lit(3)}, Y: lit(2)},
			want: "(2 ^ 3) ^ 2",
		},
		"piped call": {
			expr: &ast.Call{Name: "all", Piped: true, Args: []ast.Expr{field("items"), &ast.Binary{Op: ast.Gt, X: field("quantity"), Y: lit(0)}}},
			want: "items |> all(quantity > 0)",
		},
		"infix matches": {
			expr: &ast.Call{Name: "matches", Infix: true, Args: []ast.Expr{field("user", "email"), &ast.StringLit{Value: `^\w+$`}}},
			want: `user.email matches "^\\w+$"`,
		},
		"let in operand": {
			expr: &ast.Binary{Op: ast.And, X: field("a"), Y: &ast.Let{Name: "x", Value: lit(1), Body: field("x")}},
			want: "a && (let x = 1 in x)",
		},
		"temporal": {
			expr: &ast.Binary{Op: ast.Le, X: field("due"), Y: &ast.Temporal{Keyword: ast.EndOfMonth}},
			want: "due <= end_of_month",
		},
	}

	for name, c := range cases {
		if got := ast.Format(c.expr); got != c.want {
			t.Errorf("case %s: wanted %q, got %q", name, c.want, got)
		}
	}
}

func TestInspectVisitsInSourceOrder(t *testing.T) {
	is := is.New(t)
	e := &ast.If{
		Cond: field("a"),
		Then: &ast.Call{Name: "f", Args: []ast.Expr{field("b"), lit(1)}},
		Else: &ast.Unary{Op: ast.Not, X: field("c")},
	}

	var paths []string
	ast.Inspect(e, func(n ast.Expr) bool {
		if fp, ok := n.(*ast.FieldPath); ok {
			paths = append(paths, fp.Path())
		}
		return true
	})
	is.Equal(paths, []string{"a", "b", "c"})
	is.Equal(ast.Count(e), 7)
}

func TestInspectCanPrune(t *testing.T) {
	is := is.New(t)
	e := &ast.Binary{Op: ast.And, X: &ast.Call{Name: "f", Args: []ast.Expr{field("hidden")}}, Y: field("seen")}

	var paths []string
	ast.Inspect(e, func(n ast.Expr) bool {
		if _, ok := n.(*ast.Call); ok {
			return false
		}
		if fp, ok := n.(*ast.FieldPath); ok {
			paths = append(paths, fp.Path())
		}
		return true
	})
	is.Equal(paths, []string{"seen"})
}

func TestKeywords(t *testing.T) {
	is := is.New(t)
	is.Equal(len(ast.Keywords()), 16)

	for _, k := range ast.Keywords() {
		long, ok := ast.LookupKeyword(k.String())
		is.True(ok)
		is.Equal(long, k)
	}

	sow, ok := ast.LookupKeyword("SOW")
	is.True(ok)
	is.Equal(sow, ast.StartOfWeek)
	is.Equal(sow.GoName(), "StartOfWeek")

	_, ok = ast.LookupKeyword("Today")
	is.True(!ok) // case-sensitive

	is.True(ast.Now.IsDateTime())
	is.True(ast.StartOfDay.IsDateTime())
	is.True(!ast.Today.IsDateTime())
}

func TestIsLiteral(t *testing.T) {
	is := is.New(t)
	is.True(ast.IsLiteral(lit(1)))
	is.True(ast.IsLiteral(&ast.NullLit{}))
	is.True(!ast.IsLiteral(&ast.Temporal{Keyword: ast.Today}))
	is.True(!ast.IsLiteral(field("a")))
}
