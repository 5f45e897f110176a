// Package infer assigns a type to every node of a rule expression and
// resolves its field references and function calls.
//
// The result is a side table keyed by node, in the manner of go/types.Info;
// the tree itself is never modified.
package infer

import (
	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/schema"
	"github.com/evoludigit/elo/stdlib"
)

// Info holds the result of inferring one expression.
type Info struct {
	// Input is the type the rule validates.
	Input schema.Custom

	// Types maps every node to its type.
	Types map[ast.Expr]schema.Type

	// Refs maps every field path to what it refers to.
	Refs map[*ast.FieldPath]Ref

	// Calls maps every call to the overload it resolved to.
	Calls map[*ast.Call]stdlib.Signature
}

// TypeOf returns the type of e, or Unknown when e was not inferred.
func (info *Info) TypeOf(e ast.Expr) schema.Type {
	if t, ok := info.Types[e]; ok {
		return t
	}
	return schema.Unknown{}
}

// RefKind says what the first segment of a field path names.
type RefKind int

const (
	// InputField paths start at a field of the validated input.
	InputField RefKind = iota
	// LetBinding paths start at a value bound by let.
	LetBinding
	// LambdaParam paths start at the parameter of fn(x ~> ...).
	LambdaParam
	// ElementField paths start at a field of the element of an enclosing
	// any or all whose predicate is written without fn.
	ElementField
)

func (k RefKind) String() string {
	switch k {
	case InputField:
		return "input field"
	case LetBinding:
		return "let binding"
	case LambdaParam:
		return "parameter"
	case ElementField:
		return "element field"
	}
	return "unknown"
}

// Ref describes a resolved field path.
type Ref struct {
	Kind RefKind

	// Decl introduced the root: the *ast.Let, the *ast.Lambda, or the
	// any/all *ast.Call for ElementField. Nil for InputField.
	Decl ast.Expr

	// Fields are the struct fields selected, in order. For InputField and
	// ElementField the first segment is a field; for the other kinds it is
	// the binding and Fields covers the remaining segments.
	Fields []schema.Field

	// Declared is the type of the path before narrowing.
	Declared schema.Type

	// Deref is set when Declared is optional and the path is known to be
	// present, so the value is used as its element type.
	Deref bool

	// NarrowedBy holds the conditions (the left operand of an && or ||, or
	// the condition of a guard or if) that established the presence of the
	// optional values the path selects through or denotes.
	NarrowedBy []ast.Expr

	// Dynamic holds the trailing segment names looked up at run time because
	// the value they are selected from has an unknown type.
	Dynamic []string
}
