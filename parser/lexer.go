package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/diag"
)

const eof = -1

// Lexer converts a rule expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
//
// The lexer also tracks the nesting of parentheses and brackets as it goes.
// String literals are consumed as whole tokens, so delimiters inside them
// never count.
type Lexer struct {
	input   string  // Input string being scanned
	start   int     // Start position of current token
	current int     // Current position in input
	width   int     // Width of last rune read
	open    []Token // unclosed ( and [, innermost last
}

// NewLexer creates a new lexer for the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize converts source into tokens. The last token is always TokenEOF.
// The error, if any, is a *diag.Diagnostic.
func Tokenize(source string) ([]Token, error) {
	l := NewLexer(source)
	var toks []Token
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Type == TokenEOF {
			break
		}
	}
	assignPositions(source, toks)
	return toks, nil
}

// assignPositions fills in Line and Column in a single pass over the source.
func assignPositions(source string, toks []Token) {
	line, col, off := 1, 1, 0
	for i := range toks {
		for off < toks[i].Span.Start && off < len(source) {
			r, w := utf8.DecodeRuneInString(source[off:])
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			off += w
		}
		toks[i].Line, toks[i].Column = line, col
	}
}

// Next returns the next token from the input. At the end of the input it
// returns TokenEOF, or an error if a delimiter is still open.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		if n := len(l.open); n > 0 {
			o := l.open[n-1]
			return Token{}, diag.New(diag.ParseError, diag.UnbalancedDelimiter, o.Span, "unclosed %s", o.Type)
		}
		return Token{Type: TokenEOF, Span: diag.Span{Start: l.current, End: l.current}}, nil
	}

	// Two-character symbols first (==, &&, |>, ...)
	if l.current < len(l.input) {
		if tt, ok := symbols2[l.input[l.start:l.current+1]]; ok {
			l.nextRune()
			return l.newToken(tt), nil
		}
	}

	if tt, ok := symbols1[ch]; ok {
		t := l.newToken(tt)
		return t, l.track(t)
	}

	switch {
	case ch == '"' || ch == '\'':
		return l.scanString(ch)
	case ch >= '0' && ch <= '9':
		l.backup()
		return l.scanNumber(), nil
	case ch == '@':
		return l.scanTemporal()
	case isIdentStart(ch):
		l.backup()
		return l.scanName(), nil
	}

	return Token{}, l.unexpected(ch)
}

func (l *Lexer) unexpected(ch rune) *diag.Diagnostic {
	span := diag.Span{Start: l.start, End: l.current}
	hint := ""
	switch ch {
	case '&':
		hint = ", did you mean '&&'?"
	case '|':
		hint = ", did you mean '||' or '|>'?"
	case '?':
		hint = ", did you mean '?|'?"
	case '~':
		hint = ", did you mean '~>'?"
	}
	return diag.New(diag.LexError, diag.UnknownCharacter, span, "unexpected character %q%s", ch, hint)
}

// track maintains the stack of open delimiters.
func (l *Lexer) track(t Token) error {
	switch t.Type {
	case TokenParenOpen, TokenBracketOpen:
		l.open = append(l.open, t)
	case TokenParenClose, TokenBracketClose:
		want := TokenParenOpen
		if t.Type == TokenBracketClose {
			want = TokenBracketOpen
		}
		n := len(l.open)
		if n == 0 {
			return diag.New(diag.ParseError, diag.UnbalancedDelimiter, t.Span, "unexpected %s with no matching opener", t.Type)
		}
		if o := l.open[n-1]; o.Type != want {
			return diag.New(diag.ParseError, diag.UnbalancedDelimiter, t.Span, "unexpected %s, the %s at offset %d is still open", t.Type, o.Type, o.Span.Start)
		}
		l.open = l.open[:n-1]
	}
	return nil
}

// scanString reads a string literal. The opening quote has already been
// consumed.
func (l *Lexer) scanString(quote rune) (Token, error) {
	var b strings.Builder
	for {
		r := l.nextRune()
		switch r {
		case eof:
			return Token{}, diag.New(diag.LexError, diag.UnterminatedString,
				diag.Span{Start: l.start, End: l.current}, "unterminated string literal")
		case quote:
			t := l.newToken(TokenString)
			t.Value = b.String()
			return t, nil
		case '\\':
			esc := l.current - 1
			switch e := l.nextRune(); e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\', '"', '\'':
				b.WriteRune(e)
			case eof:
				return Token{}, diag.New(diag.LexError, diag.UnterminatedString,
					diag.Span{Start: l.start, End: l.current}, "unterminated string literal")
			default:
				return Token{}, diag.New(diag.LexError, diag.InvalidEscape,
					diag.Span{Start: esc, End: l.current}, "invalid escape sequence '\\%c'", e)
			}
		default:
			b.WriteRune(r)
		}
	}
}

// scanNumber reads an integer or decimal literal. A dot belongs to the number
// only when a digit follows it.
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)
	if strings.HasPrefix(l.input[l.current:], ".") && len(l.input) > l.current+1 && isDigit(rune(l.input[l.current+1])) {
		l.nextRune()
		l.acceptAll(isDigit)
		return l.newToken(TokenFloat)
	}
	return l.newToken(TokenInt)
}

// scanTemporal reads @date, @datetime or @duration. The '@' has already
// been consumed. The literal is classified here and validated by the parser.
func (l *Lexer) scanTemporal() (Token, error) {
	body := l.current
	l.acceptAll(func(r rune) bool {
		return isDigit(r) || (r >= 'A' && r <= 'Z') || r == '-' || r == ':' || r == '.' || r == '+'
	})
	text := l.input[body:l.current]
	if text == "" {
		return Token{}, diag.New(diag.LexError, diag.UnknownCharacter, diag.Span{Start: l.start, End: l.current},
			"expected a date, datetime or duration after '@'")
	}
	tt := TokenDate
	switch {
	case text[0] == 'P':
		tt = TokenDuration
	case strings.Contains(text, "T"):
		tt = TokenDateTime
	}
	t := l.newToken(tt)
	t.Value = text
	return t, nil
}

// scanName reads an identifier or keyword.
func (l *Lexer) scanName() Token {
	l.acceptAll(func(r rune) bool { return isIdentStart(r) || r >= '0' && r <= '9' })
	t := l.newToken(TokenIdent)
	if tt, ok := keywords[t.Text]; ok {
		t.Type = tt
	} else if _, ok := ast.LookupKeyword(t.Text); ok {
		t.Type = TokenTemporal
	}
	return t
}

// Identifiers are ASCII: [A-Za-z_][A-Za-z0-9_]*.
func isIdentStart(r rune) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// Helper methods

func (l *Lexer) newToken(tt TokenType) Token {
	text := l.input[l.start:l.current]
	t := Token{
		Type:  tt,
		Text:  text,
		Value: text,
		Span:  diag.Span{Start: l.start, End: l.current},
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
	l.width = 0
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// skipWhitespace skips blanks and # comments.
func (l *Lexer) skipWhitespace() {
	for {
		l.acceptAll(isWhitespace)
		if strings.HasPrefix(l.input[l.current:], "#") {
			for r := l.nextRune(); r != '\n' && r != eof; r = l.nextRune() {
			}
			continue
		}
		break
	}
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
