// Package elo compiles validation rules written in the elo expression
// language into Go source code.
//
// A rule is a boolean expression over the fields of an input type:
//
//	age >= 18 && email matches "^[^@]+@[^@]+$" && all(items, quantity > 0)
//
// The types a rule may refer to are described by a schema.TypeContext, built
// in Go or loaded from an HCL file with schema.LoadHCL. Compiling a rule
// produces the source of a function
//
//	func ValidateUser(input *User) error
//
// which returns nil when the input satisfies the rule, or an
// elort.ValidationErrors value listing every check that failed, with the
// field path, a rule name and a message for each.
//
// Typical use is as follows:
//
//  1. Describe the input types in a type context
//  2. Write the rule
//  3. Compile the rule with Compile, or with a Compiler configured by options
//  4. Write the returned source to a file in your program
//
// Compilation runs in stages: the source is lexed and parsed into an
// ast.Expr, every node is given a type by package infer, package optimize
// folds constants and simplifies boolean logic, and package codegen emits
// the function. The first error of any stage ends the compilation; it is
// returned as a *diag.Diagnostic that renders with a caret under the
// offending part of the source.
//
// # Values of unknown type
//
// Fields declared as "any" have a type known only when the validator runs.
// Operations on them compile to calls into package elort that check the
// value at run time. WithStrictUnknown turns such expressions into compile
// errors instead.
//
// # Generated code
//
// The generated function has no state of its own and never logs. Checks
// whose evaluation can fail (an integer division by a field, a date parsed
// from a field) fail the check rather than panic. Regular expressions given
// as literals are compiled once, when the package is initialized; patterns
// that do not compile, are very long, or nest repetitions never match.
package elo
