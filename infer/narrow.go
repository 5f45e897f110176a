package infer

import (
	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/schema"
)

// facts returns the keys of optional values that are present whenever cond
// evaluates to when. cond must already have been inferred.
//
//	is_some(p), !is_null(p), p != null    p is present when true
//	is_null(p), !is_some(p), p == null    p is present when false
//
// a && b contributes the facts of both operands when true, a || b when false.
func (c *checker) facts(cond ast.Expr, when bool) []string {
	switch e := cond.(type) {
	case *ast.Unary:
		if e.Op == ast.Not {
			return c.facts(e.X, !when)
		}

	case *ast.Call:
		if len(e.Args) != 1 {
			break
		}
		p, ok := e.Args[0].(*ast.FieldPath)
		if !ok {
			break
		}
		if (e.Name == "is_some" && when) || (e.Name == "is_null" && !when) {
			return c.present(p)
		}

	case *ast.Binary:
		switch e.Op {
		case ast.And:
			if when {
				return append(c.facts(e.X, true), c.facts(e.Y, true)...)
			}
		case ast.Or:
			if !when {
				return append(c.facts(e.X, false), c.facts(e.Y, false)...)
			}
		case ast.Eq, ast.Ne:
			p := comparedWithNull(e)
			if p != nil && (e.Op == ast.Ne) == when {
				return c.present(p)
			}
		}
	}
	return nil
}

func (c *checker) present(p *ast.FieldPath) []string {
	key, ok := c.keys[p]
	if !ok {
		return nil
	}
	if _, ok := c.info.Refs[p].Declared.(schema.Option); !ok {
		return nil
	}
	return []string{key}
}

// comparedWithNull returns the field path of p == null or null == p.
func comparedWithNull(e *ast.Binary) *ast.FieldPath {
	if isNull(e.Y) {
		p, _ := e.X.(*ast.FieldPath)
		return p
	}
	if isNull(e.X) {
		p, _ := e.Y.(*ast.FieldPath)
		return p
	}
	return nil
}
