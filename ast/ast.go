// Package ast declares the syntax tree of elo rule expressions.
//
// A tree is built once by the parser. Nodes own their children exclusively;
// passes that need a different tree (the optimizer) build new nodes instead
// of modifying existing ones.
package ast

import (
	"strings"
	"time"

	"github.com/evoludigit/elo/diag"
)

// Expr is implemented by every node.
type Expr interface {
	Span() diag.Span
	exprNode()
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Raw   string
	Loc   diag.Span
}

// FloatLit is a decimal literal.
type FloatLit struct {
	Value float64
	Raw   string
	Loc   diag.Span
}

// BoolLit is true or false.
type BoolLit struct {
	Value bool
	Loc   diag.Span
}

// StringLit is a quoted string; Value holds the unescaped text.
type StringLit struct {
	Value string
	Loc   diag.Span
}

// NullLit is the null literal.
type NullLit struct {
	Loc diag.Span
}

// DateLit is a calendar date such as @2024-01-15.
type DateLit struct {
	Value time.Time
	Raw   string
	Loc   diag.Span
}

// DateTimeLit is an RFC 3339 instant such as @2024-01-15T10:00:00Z.
type DateTimeLit struct {
	Value time.Time
	Raw   string
	Loc   diag.Span
}

// DurationLit is an ISO-8601 duration such as @P1DT2H.
type DurationLit struct {
	Value time.Duration
	Raw   string
	Loc   diag.Span
}

// Segment is one name in a field path.
type Segment struct {
	Name string
	Loc  diag.Span
}

// FieldPath is a dotted reference such as user.address.city. The first
// segment names a field of the input, a let binding or a predicate element.
type FieldPath struct {
	Segments []Segment
}

// Unary is a prefix operation.
type Unary struct {
	Op    Op
	X     Expr
	OpLoc diag.Span
}

// Binary is an infix operation. For && and || the left operand is always
// evaluated first, and the right one only when needed.
type Binary struct {
	Op    Op
	X     Expr
	Y     Expr
	OpLoc diag.Span
}

// Call is a standard library function call. Piped is set for calls written
// as x |> f(args) or x.f(args); Args[0] is then the piped value. Infix is set
// for the a matches b form.
type Call struct {
	Name    string
	NameLoc diag.Span
	Args    []Expr
	Piped   bool
	Infix   bool
	Loc     diag.Span
}

// Lambda is a predicate fn(x ~> body), accepted only by any and all.
type Lambda struct {
	Param    string
	ParamLoc diag.Span
	Body     Expr
	Loc      diag.Span
}

// Let binds Name to Value while evaluating Body.
type Let struct {
	Name    string
	NameLoc diag.Span
	Value   Expr
	Body    Expr
	Loc     diag.Span
}

// Guard evaluates Body only when Cond holds; a failed Cond fails the rule.
type Guard struct {
	Cond Expr
	Body Expr
	Loc  diag.Span
}

// If is a conditional expression; both branches are required.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
	Loc  diag.Span
}

// Temporal is a reference to a keyword such as today or start_of_week,
// resolved when the validator runs.
type Temporal struct {
	Keyword Keyword
	Loc     diag.Span
}

// ArrayLit is a bracketed list of expressions.
type ArrayLit struct {
	Elems []Expr
	Loc   diag.Span
}

func (e *IntLit) Span() diag.Span      { return e.Loc }
func (e *FloatLit) Span() diag.Span    { return e.Loc }
func (e *BoolLit) Span() diag.Span     { return e.Loc }
func (e *StringLit) Span() diag.Span   { return e.Loc }
func (e *NullLit) Span() diag.Span     { return e.Loc }
func (e *DateLit) Span() diag.Span     { return e.Loc }
func (e *DateTimeLit) Span() diag.Span { return e.Loc }
func (e *DurationLit) Span() diag.Span { return e.Loc }
func (e *Unary) Span() diag.Span       { return e.OpLoc.To(e.X.Span()) }
func (e *Binary) Span() diag.Span      { return e.X.Span().To(e.Y.Span()) }
func (e *Call) Span() diag.Span        { return e.Loc }
func (e *Lambda) Span() diag.Span      { return e.Loc }
func (e *Let) Span() diag.Span         { return e.Loc }
func (e *Guard) Span() diag.Span       { return e.Loc }
func (e *If) Span() diag.Span          { return e.Loc }
func (e *Temporal) Span() diag.Span    { return e.Loc }
func (e *ArrayLit) Span() diag.Span    { return e.Loc }

func (e *FieldPath) Span() diag.Span {
	if len(e.Segments) == 0 {
		return diag.Span{}
	}
	return e.Segments[0].Loc.To(e.Segments[len(e.Segments)-1].Loc)
}

// Path is the dotted form of the field path.
func (e *FieldPath) Path() string {
	names := make([]string, len(e.Segments))
	for i, seg := range e.Segments {
		names[i] = seg.Name
	}
	return strings.Join(names, ".")
}

// Root is the first segment.
func (e *FieldPath) Root() string { return e.Segments[0].Name }

func (*IntLit) exprNode()      {}
func (*FloatLit) exprNode()    {}
func (*BoolLit) exprNode()     {}
func (*StringLit) exprNode()   {}
func (*NullLit) exprNode()     {}
func (*DateLit) exprNode()     {}
func (*DateTimeLit) exprNode() {}
func (*DurationLit) exprNode() {}
func (*FieldPath) exprNode()   {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Call) exprNode()        {}
func (*Lambda) exprNode()      {}
func (*Let) exprNode()         {}
func (*Guard) exprNode()       {}
func (*If) exprNode()          {}
func (*Temporal) exprNode()    {}
func (*ArrayLit) exprNode()    {}

// IsLiteral reports whether e is a literal with a value known at compile
// time. Temporal keywords are not literals.
func IsLiteral(e Expr) bool {
	switch e.(type) {
	case *IntLit, *FloatLit, *BoolLit, *StringLit, *NullLit, *DateLit, *DateTimeLit, *DurationLit:
		return true
	}
	return false
}
