// Package diag carries source positions through every compiler stage and
// renders compiler errors with a caret pointer into the original source.
package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind is the stage that produced a Diagnostic.
type Kind int

const (
	LexError Kind = iota
	ParseError
	TypeError
	CodeGenError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ParseError:
		return "parse error"
	case TypeError:
		return "type error"
	case CodeGenError:
		return "codegen error"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code refines a Kind.
type Code int

const (
	None Code = iota

	// lexing
	UnknownCharacter
	UnterminatedString
	InvalidEscape

	// parsing
	UnexpectedToken
	UnbalancedDelimiter
	MalformedLiteral
	SourceTooLong

	// type checking
	UnknownField
	TypeMismatch
	UnknownFunction
	ArityError
	NotBoolean
	InvalidPredicate
	UnresolvedType

	// code generation
	Unsupported
)

var codeNames = map[Code]string{
	None:                "",
	UnknownCharacter:    "UnknownCharacter",
	UnterminatedString:  "UnterminatedString",
	InvalidEscape:       "InvalidEscape",
	UnexpectedToken:     "UnexpectedToken",
	UnbalancedDelimiter: "UnbalancedDelimiter",
	MalformedLiteral:    "MalformedLiteral",
	SourceTooLong:       "SourceTooLong",
	UnknownField:        "UnknownField",
	TypeMismatch:        "TypeMismatch",
	UnknownFunction:     "UnknownFunction",
	ArityError:          "ArityError",
	NotBoolean:          "NotBoolean",
	InvalidPredicate:    "InvalidPredicate",
	UnresolvedType:      "UnresolvedType",
	Unsupported:         "Unsupported",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Span is a half-open byte range [Start, End) in the source text.
type Span struct {
	Start int
	End   int
}

// To returns the smallest span covering both s and o.
func (s Span) To(o Span) Span {
	r := s
	if o.Start < r.Start {
		r.Start = o.Start
	}
	if o.End > r.End {
		r.End = o.End
	}
	return r
}

// Len is the number of bytes covered by the span.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Text returns the part of source covered by the span, clamped to the source bounds.
func (s Span) Text(source string) string {
	start, end := clamp(s.Start, len(source)), clamp(s.End, len(source))
	if end < start {
		return ""
	}
	return source[start:end]
}

// Position is a resolved location. Line and Column are 1-based; Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionOf converts a byte offset into a line and column.
func PositionOf(source string, offset int) Position {
	offset = clamp(offset, len(source))
	line, col := 1, 1
	for _, r := range source[:offset] {
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return Position{Offset: offset, Line: line, Column: col}
}

func clamp(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

// Diagnostic is the single error type returned by the compiler. The first
// Diagnostic produced by any stage ends the compilation.
type Diagnostic struct {
	Kind    Kind
	Code    Code
	Span    Span
	Message string

	// Path is the dotted field path involved in a type error, if any,
	// and Field its last segment.
	Path  string
	Field string

	// Source is the compiled text. When set, Error renders the caret view.
	Source string
}

// New creates a Diagnostic.
func New(kind Kind, code Code, span Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Code:    code,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithSource attaches the source text so that Error renders a caret pointer.
func (d *Diagnostic) WithSource(source string) *Diagnostic {
	d.Source = source
	return d
}

// WithField records the field path the diagnostic is about.
func (d *Diagnostic) WithField(path string) *Diagnostic {
	d.Path = path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		d.Field = path[i+1:]
	} else {
		d.Field = path
	}
	return d
}

// Position resolves the start of the span against the attached source.
func (d *Diagnostic) Position() Position {
	return PositionOf(d.Source, d.Span.Start)
}

func (d *Diagnostic) Error() string {
	if d.Source != "" {
		return d.Render(d.Source)
	}
	return fmt.Sprintf("%s at offset %d: %s", d.Kind, d.Span.Start, d.Message)
}

// Render formats the diagnostic with the offending source line and a caret
// line underneath the span:
//
//	type error: cannot compare integer with string
//	  --> 1:10
//	   |
//	 1 | user.age >= "eighteen"
//	   |      ^~~
func (d *Diagnostic) Render(source string) string {
	pos := PositionOf(source, d.Span.Start)
	lines := strings.Split(source, "\n")
	lineText := ""
	if pos.Line-1 < len(lines) {
		lineText = lines[pos.Line-1]
	}

	gutter := len(fmt.Sprint(pos.Line))
	pad := strings.Repeat(" ", gutter)

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", d.Kind, d.Message)
	fmt.Fprintf(&b, "%s--> %s\n", pad, pos)
	fmt.Fprintf(&b, "%s |\n", pad)
	fmt.Fprintf(&b, "%d | %s\n", pos.Line, lineText)
	fmt.Fprintf(&b, "%s | %s%s", pad, caretPad(lineText, pos.Column-1), underline(d.Span, source, lineText, pos.Column-1))
	return b.String()
}

// caretPad reproduces tabs from the source line so the caret stays aligned.
func caretPad(line string, cols int) string {
	var b strings.Builder
	i := 0
	for _, r := range line {
		if i == cols {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
		i++
	}
	for ; i < cols; i++ {
		b.WriteRune(' ')
	}
	return b.String()
}

// underline is a caret followed by tildes for the rest of the span on its first line.
func underline(s Span, source, line string, col int) string {
	width := utf8.RuneCountInString(s.Text(source))
	if nl := strings.IndexByte(s.Text(source), '\n'); nl >= 0 {
		width = utf8.RuneCountInString(s.Text(source)[:nl])
	}
	if rest := utf8.RuneCountInString(line) - col; width > rest {
		width = rest
	}
	if width < 1 {
		width = 1
	}
	return "^" + strings.Repeat("~", width-1)
}
