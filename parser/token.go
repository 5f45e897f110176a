package parser

import (
	"fmt"

	"github.com/evoludigit/elo/diag"
)

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	// Literals
	TokenIdent    // age
	TokenInt      // 42
	TokenFloat    // 3.14
	TokenString   // "hello" or 'hello'
	TokenDate     // @2024-01-15
	TokenDateTime // @2024-01-15T10:00:00Z
	TokenDuration // @P1DT2H

	// Keywords
	TokenLet
	TokenIn
	TokenIf
	TokenThen
	TokenElse
	TokenFn
	TokenGuard
	TokenTrue
	TokenFalse
	TokenNull
	TokenMatches
	TokenTemporal // today, SOW, ...

	// Grouping symbols
	TokenParenOpen    // (
	TokenParenClose   // )
	TokenBracketOpen  // [
	TokenBracketClose // ]

	// Basic symbols
	TokenDot    // .
	TokenComma  // ,
	TokenAssign // =

	// Arithmetic operators
	TokenPlus  // +
	TokenMinus // -
	TokenMult  // *
	TokenDiv   // /
	TokenMod   // %
	TokenCaret // ^

	// Comparison operators
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=

	// Logical operators
	TokenAnd // &&
	TokenOr  // ||
	TokenNot // !

	// Special operators
	TokenPipe  // |>
	TokenAlt   // ?|
	TokenArrow // ~>
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "end of input",
	TokenIdent:        "identifier",
	TokenInt:          "integer",
	TokenFloat:        "float",
	TokenString:       "string",
	TokenDate:         "date",
	TokenDateTime:     "datetime",
	TokenDuration:     "duration",
	TokenLet:          "'let'",
	TokenIn:           "'in'",
	TokenIf:           "'if'",
	TokenThen:         "'then'",
	TokenElse:         "'else'",
	TokenFn:           "'fn'",
	TokenGuard:        "'guard'",
	TokenTrue:         "'true'",
	TokenFalse:        "'false'",
	TokenNull:         "'null'",
	TokenMatches:      "'matches'",
	TokenTemporal:     "temporal keyword",
	TokenParenOpen:    "'('",
	TokenParenClose:   "')'",
	TokenBracketOpen:  "'['",
	TokenBracketClose: "']'",
	TokenDot:          "'.'",
	TokenComma:        "','",
	TokenAssign:       "'='",
	TokenPlus:         "'+'",
	TokenMinus:        "'-'",
	TokenMult:         "'*'",
	TokenDiv:          "'/'",
	TokenMod:          "'%'",
	TokenCaret:        "'^'",
	TokenEqual:        "'=='",
	TokenNotEqual:     "'!='",
	TokenLess:         "'<'",
	TokenLessEqual:    "'<='",
	TokenGreater:      "'>'",
	TokenGreaterEqual: "'>='",
	TokenAnd:          "'&&'",
	TokenOr:           "'||'",
	TokenNot:          "'!'",
	TokenPipe:         "'|>'",
	TokenAlt:          "'?|'",
	TokenArrow:        "'~>'",
}

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a lexical unit.
type Token struct {
	Type TokenType
	// Text is the token as written in the source.
	Text string
	// Value is the unescaped contents of a string literal, or the text
	// after '@' for temporal literals; otherwise it equals Text.
	Value  string
	Span   diag.Span
	Line   int
	Column int
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return t.Type.String()
	case TokenIdent, TokenInt, TokenFloat, TokenString, TokenDate, TokenDateTime, TokenDuration, TokenTemporal:
		return fmt.Sprintf("%s %s", t.Type, t.Text)
	}
	return t.Type.String()
}

var keywords = map[string]TokenType{
	"let":     TokenLet,
	"in":      TokenIn,
	"if":      TokenIf,
	"then":    TokenThen,
	"else":    TokenElse,
	"fn":      TokenFn,
	"guard":   TokenGuard,
	"true":    TokenTrue,
	"false":   TokenFalse,
	"null":    TokenNull,
	"matches": TokenMatches,
}

// symbols are tried longest first.
var symbols2 = map[string]TokenType{
	"==": TokenEqual,
	"!=": TokenNotEqual,
	"<=": TokenLessEqual,
	">=": TokenGreaterEqual,
	"&&": TokenAnd,
	"||": TokenOr,
	"|>": TokenPipe,
	"?|": TokenAlt,
	"~>": TokenArrow,
}

var symbols1 = map[rune]TokenType{
	'(': TokenParenOpen,
	')': TokenParenClose,
	'[': TokenBracketOpen,
	']': TokenBracketClose,
	'.': TokenDot,
	',': TokenComma,
	'=': TokenAssign,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMult,
	'/': TokenDiv,
	'%': TokenMod,
	'^': TokenCaret,
	'<': TokenLess,
	'>': TokenGreater,
	'!': TokenNot,
}
