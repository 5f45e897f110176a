package ast

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Expr) (w Visitor)
}

// Walk traverses an expression in depth-first order, children in source order.
func Walk(v Visitor, node Expr) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, c := range Children(node) {
		Walk(v, c)
	}
	v.Visit(nil)
}

type inspector func(Expr) bool

func (f inspector) Visit(node Expr) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an expression in depth-first order, calling f for each
// node. If f returns true, Inspect descends into the node's children; the
// traversal ends each subtree with a call of f(nil).
func Inspect(node Expr, f func(Expr) bool) {
	Walk(inspector(f), node)
}

// Children returns the direct children of e in source order.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *IntLit, *FloatLit, *BoolLit, *StringLit, *NullLit,
		*DateLit, *DateTimeLit, *DurationLit, *FieldPath, *Temporal:
		return nil
	case *Unary:
		return []Expr{n.X}
	case *Binary:
		return []Expr{n.X, n.Y}
	case *Call:
		return n.Args
	case *Lambda:
		return []Expr{n.Body}
	case *Let:
		return []Expr{n.Value, n.Body}
	case *Guard:
		return []Expr{n.Cond, n.Body}
	case *If:
		return []Expr{n.Cond, n.Then, n.Else}
	case *ArrayLit:
		return n.Elems
	}
	panic(fmt.Sprintf("ast: unexpected node %T", e))
}

// Count returns the number of nodes in the tree rooted at e.
func Count(e Expr) int {
	n := 0
	Inspect(e, func(x Expr) bool {
		if x != nil {
			n++
		}
		return true
	})
	return n
}
