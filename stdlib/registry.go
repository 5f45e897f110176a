// Package stdlib is the catalogue of functions callable from rules: their
// parameter kinds, result types and how the code generator emits them.
package stdlib

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/evoludigit/elo/schema"
)

// Category groups functions in documentation and listings.
type Category int

const (
	String Category = iota
	DateTime
	Array
	Type
	Math
)

func (c Category) String() string {
	switch c {
	case String:
		return "string"
	case DateTime:
		return "datetime"
	case Array:
		return "array"
	case Type:
		return "type"
	case Math:
		return "math"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Kind constrains the type of one argument.
type Kind int

const (
	KAny       Kind = iota // any type
	KString                // String
	KInteger               // Integer
	KFloat                 // Float, or Integer widened to Float
	KBoolean               // Boolean
	KDate                  // Date
	KTime                  // Date or DateTime
	KDuration              // Duration
	KArray                 // Array<T>
	KElem                  // T, where the first argument is Array<T>
	KPredicate             // Boolean expression evaluated per element of the first argument
	KUnknown               // only Unknown; selects a run-time checked overload
)

var kindNames = map[Kind]string{
	KAny:       "any",
	KString:    "string",
	KInteger:   "integer",
	KFloat:     "float",
	KBoolean:   "boolean",
	KDate:      "date",
	KTime:      "date or datetime",
	KDuration:  "duration",
	KArray:     "array",
	KElem:      "array element",
	KPredicate: "predicate",
	KUnknown:   "unknown",
}

func (k Kind) String() string { return kindNames[k] }

// Accepts reports whether an argument of type t satisfies the kind. first is
// the type of the call's first argument, used by KElem. Unknown satisfies
// every kind; the code generator converts it at run time.
func (k Kind) Accepts(t, first schema.Type) bool {
	if k == KUnknown {
		return schema.IsUnknown(t)
	}
	if schema.IsUnknown(t) {
		return true
	}
	switch k {
	case KAny, KPredicate:
		return true
	case KString:
		return schema.Equal(t, schema.String{})
	case KInteger:
		return schema.Equal(t, schema.Integer{})
	case KFloat:
		return schema.IsNumeric(t)
	case KBoolean:
		return schema.Equal(t, schema.Boolean{})
	case KDate:
		return schema.Equal(t, schema.Date{})
	case KTime:
		return schema.Equal(t, schema.Date{}) || schema.Equal(t, schema.DateTime{})
	case KDuration:
		return schema.Equal(t, schema.Duration{})
	case KArray:
		_, ok := t.(schema.Array)
		return ok
	case KElem:
		a, ok := first.(schema.Array)
		if !ok {
			return true
		}
		return Compatible(a.Elem, t)
	}
	return false
}

// Compatible reports whether values of types a and b can be compared for
// equality: identical types, two numbers, or anything against Unknown.
func Compatible(a, b schema.Type) bool {
	switch {
	case schema.IsUnknown(a) || schema.IsUnknown(b):
		return true
	case schema.IsNumeric(a) && schema.IsNumeric(b):
		return true
	}
	return schema.Equal(a, b)
}

// StrategyKind selects how the code generator emits a call.
type StrategyKind int

const (
	// Template calls are emitted by substituting the generated arguments into
	// Strategy.Template with fmt.Sprintf.
	Template StrategyKind = iota
	// Regex calls compile their pattern once when it is a literal.
	Regex
	// Loop calls (any, all, contains on arrays) emit an inline loop.
	Loop
	// Presence calls (is_null, is_some) depend on whether the argument is optional.
	Presence
	// TypeTest calls (is_string, ...) are constant for static types and
	// checked at run time for Unknown.
	TypeTest
)

// Strategy describes the code emitted for a call.
type Strategy struct {
	Kind     StrategyKind
	Template string   // fmt format over the generated arguments, for Template
	Imports  []string // packages the emitted code needs
}

// Signature is one overload of a function.
type Signature struct {
	Name     string
	Category Category
	Params   []Kind
	Strategy Strategy
	Doc      string

	result func(args []schema.Type) schema.Type
}

// Result returns the type of a call with the given argument types.
func (s Signature) Result(args []schema.Type) schema.Type {
	return s.result(args)
}

func (s Signature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	return s.Name + "(" + strings.Join(params, ", ") + ")"
}

// Registry is an immutable table of signatures keyed by function name.
type Registry struct {
	byName map[string][]Signature
}

// Default returns the standard library. It is built on first use and shared;
// it is never modified after construction.
var Default = sync.OnceValue(func() *Registry {
	return NewRegistry(builtins()...)
})

// NewRegistry builds a registry. Overloads of a name are tried in the order given.
func NewRegistry(sigs ...Signature) *Registry {
	r := &Registry{byName: map[string][]Signature{}}
	for _, s := range sigs {
		r.byName[s.Name] = append(r.byName[s.Name], s)
	}
	return r
}

// Has reports whether a function with the name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Overloads returns the signatures registered for name.
func (r *Registry) Overloads(name string) []Signature {
	return append([]Signature(nil), r.byName[name]...)
}

// Names returns all function names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByCategory returns the signatures in a category, sorted by name.
func (r *Registry) ByCategory(c Category) []Signature {
	var sigs []Signature
	for _, n := range r.Names() {
		for _, s := range r.byName[n] {
			if s.Category == c {
				sigs = append(sigs, s)
			}
		}
	}
	return sigs
}

// ResolveErrorKind distinguishes why Resolve failed.
type ResolveErrorKind int

const (
	UnknownFunction ResolveErrorKind = iota
	WrongArity
	WrongType
)

// ResolveError explains a failed Resolve.
type ResolveError struct {
	Kind ResolveErrorKind
	Name string
	// Arg is the index of the first rejected argument, for WrongType.
	Arg int
	// Want describes what was expected.
	Want string
	Got  string
}

func (e *ResolveError) Error() string {
	switch e.Kind {
	case UnknownFunction:
		return fmt.Sprintf("unknown function %s", e.Name)
	case WrongArity:
		return fmt.Sprintf("%s expects %s, got %s", e.Name, e.Want, e.Got)
	}
	return fmt.Sprintf("argument %d of %s must be %s, got %s", e.Arg+1, e.Name, e.Want, e.Got)
}

// Resolve selects the first overload of name that accepts the argument types.
func (r *Registry) Resolve(name string, args []schema.Type) (Signature, error) {
	sigs, ok := r.byName[name]
	if !ok {
		return Signature{}, &ResolveError{Kind: UnknownFunction, Name: name}
	}

	var arityOK []Signature
	for _, s := range sigs {
		if len(s.Params) == len(args) {
			arityOK = append(arityOK, s)
		}
	}
	if len(arityOK) == 0 {
		return Signature{}, &ResolveError{Kind: WrongArity, Name: name, Want: arities(sigs), Got: plural(len(args), "argument")}
	}

	var first schema.Type = schema.Unknown{}
	if len(args) > 0 {
		first = args[0]
	}

	var best *ResolveError
	for _, s := range arityOK {
		bad := -1
		for i, k := range s.Params {
			if !k.Accepts(args[i], first) {
				bad = i
				break
			}
		}
		if bad < 0 {
			return s, nil
		}
		if best == nil || bad > best.Arg {
			best = &ResolveError{Kind: WrongType, Name: name, Arg: bad, Want: wantFor(arityOK, args, bad), Got: args[bad].String()}
		}
	}
	return Signature{}, best
}

// wantFor lists what argument i may be, among the overloads that accept
// every argument before it.
func wantFor(sigs []Signature, args []schema.Type, i int) string {
	first := args[0]
	seen := map[string]bool{}
	var wants []string
	for _, s := range sigs {
		prefix := true
		for j := 0; j < i; j++ {
			if !s.Params[j].Accepts(args[j], first) {
				prefix = false
			}
		}
		if !prefix {
			continue
		}
		w := s.Params[i].String()
		if s.Params[i] == KElem {
			if a, ok := first.(schema.Array); ok {
				w = a.Elem.String()
			}
		}
		if s.Params[i] == KUnknown || seen[w] {
			continue
		}
		seen[w] = true
		wants = append(wants, w)
	}
	return strings.Join(wants, " or ")
}

func arities(sigs []Signature) string {
	seen := map[int]bool{}
	var ns []int
	for _, s := range sigs {
		if !seen[len(s.Params)] {
			seen[len(s.Params)] = true
			ns = append(ns, len(s.Params))
		}
	}
	sort.Ints(ns)
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = plural(n, "argument")
	}
	return strings.Join(parts, " or ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
