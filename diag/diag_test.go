package diag_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/evoludigit/elo/diag"
	"github.com/matryer/is"
)

func TestPositionOf(t *testing.T) {
	src := "age >= 18 &&\n  name == \"é\" && x"

	cases := map[string]struct {
		offset int
		line   int
		col    int
	}{
		"start":        {0, 1, 1},
		"first line":   {4, 1, 5},
		"second line":  {15, 2, 3},
		"after rune":   {strings.Index(src, "\" &&") + 1, 2, 14},
		"past the end": {1000, 2, 19},
	}

	for name, c := range cases {
		p := diag.PositionOf(src, c.offset)
		if p.Line != c.line || p.Column != c.col {
			t.Errorf("case %s: wanted %d:%d, got %d:%d", name, c.line, c.col, p.Line, p.Column)
		}
	}
}

func TestRender(t *testing.T) {
	is := is.New(t)
	src := `user.age >= "eighteen"`
	d := diag.New(diag.TypeError, diag.TypeMismatch, diag.Span{Start: 5, End: 8}, "cannot compare integer with string").
		WithField("user.age")

	out := d.Render(src)
	lines := strings.Split(out, "\n")
	is.Equal(len(lines), 5)
	is.Equal(lines[0], "type error: cannot compare integer with string")
	is.Equal(lines[1], " --> 1:6")
	is.Equal(lines[3], `1 | user.age >= "eighteen"`)
	is.Equal(lines[4], "  |      ^~~")
	is.Equal(d.Field, "age")
	is.Equal(d.Path, "user.age")
}

func TestRenderKeepsTabs(t *testing.T) {
	is := is.New(t)
	src := "\tx @"
	d := diag.New(diag.LexError, diag.UnknownCharacter, diag.Span{Start: 3, End: 4}, "unexpected character '@'")
	lines := strings.Split(d.Render(src), "\n")
	is.Equal(lines[4], "  | \t  ^")
}

func TestErrorUsesSource(t *testing.T) {
	is := is.New(t)
	d := diag.New(diag.ParseError, diag.UnexpectedToken, diag.Span{Start: 2, End: 3}, "expected expression, found ')'")
	is.True(strings.HasPrefix(d.Error(), "parse error at offset 2"))

	d.WithSource("1 )")
	is.True(strings.Contains(d.Error(), "1 | 1 )"))

	var target *diag.Diagnostic
	var err error = d
	is.True(errors.As(err, &target))
	is.Equal(target.Kind, diag.ParseError)
}

func TestSpan(t *testing.T) {
	is := is.New(t)
	a := diag.Span{Start: 4, End: 6}
	b := diag.Span{Start: 1, End: 3}
	is.Equal(a.To(b), diag.Span{Start: 1, End: 6})
	is.Equal(a.Len(), 2)
	is.Equal(a.Text("0123456789"), "45")
	is.Equal(diag.Span{Start: 8, End: 20}.Text("0123456789"), "89")
}
