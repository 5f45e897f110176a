package ast

import "fmt"

// Op is a unary or binary operator.
type Op int

const (
	Add  Op = iota // +
	Sub            // -
	Mul            // *
	Div            // /
	Mod            // %
	Pow            // ^
	Eq             // ==
	Ne             // !=
	Lt             // <
	Le             // <=
	Gt             // >
	Ge             // >=
	And            // &&
	Or             // ||
	Alt            // ?|
	Not            // !
	Neg            // unary -
	Plus           // unary +
)

var opSymbols = [...]string{
	Add:  "+",
	Sub:  "-",
	Mul:  "*",
	Div:  "/",
	Mod:  "%",
	Pow:  "^",
	Eq:   "==",
	Ne:   "!=",
	Lt:   "<",
	Le:   "<=",
	Gt:   ">",
	Ge:   ">=",
	And:  "&&",
	Or:   "||",
	Alt:  "?|",
	Not:  "!",
	Neg:  "-",
	Plus: "+",
}

func (o Op) String() string {
	if o >= 0 && int(o) < len(opSymbols) {
		return opSymbols[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Precedence of a binary operator; higher binds tighter. Unary operators
// (precedence 9) bind tighter than every binary operator.
func (o Op) Precedence() int {
	switch o {
	case Or:
		return 1
	case And:
		return 2
	case Eq, Ne:
		return 3
	case Lt, Le, Gt, Ge:
		return 4
	case Alt:
		return 5
	case Add, Sub:
		return 6
	case Mul, Div, Mod:
		return 7
	case Pow:
		return 8
	}
	return 9
}

// IsComparison reports whether o is one of == != < <= > >=.
func (o Op) IsComparison() bool { return o >= Eq && o <= Ge }

// IsArithmetic reports whether o is one of + - * / % ^.
func (o Op) IsArithmetic() bool { return o >= Add && o <= Pow }

// IsLogical reports whether o is && or ||.
func (o Op) IsLogical() bool { return o == And || o == Or }

// Keyword is a temporal keyword resolved when the validator runs.
type Keyword int

const (
	Now Keyword = iota
	Today
	Tomorrow
	Yesterday
	StartOfDay
	EndOfDay
	StartOfWeek
	EndOfWeek
	StartOfMonth
	EndOfMonth
	StartOfQuarter
	EndOfQuarter
	StartOfYear
	EndOfYear
	BeginningOfTime
	EndOfTime
)

type keywordInfo struct {
	name     string
	short    string
	goName   string
	dateTime bool
}

var keywords = [...]keywordInfo{
	Now:             {"now", "NOW", "Now", true},
	Today:           {"today", "TODAY", "Today", false},
	Tomorrow:        {"tomorrow", "TOMORROW", "Tomorrow", false},
	Yesterday:       {"yesterday", "YESTERDAY", "Yesterday", false},
	StartOfDay:      {"start_of_day", "SOD", "StartOfDay", true},
	EndOfDay:        {"end_of_day", "EOD", "EndOfDay", true},
	StartOfWeek:     {"start_of_week", "SOW", "StartOfWeek", false},
	EndOfWeek:       {"end_of_week", "EOW", "EndOfWeek", false},
	StartOfMonth:    {"start_of_month", "SOM", "StartOfMonth", false},
	EndOfMonth:      {"end_of_month", "EOM", "EndOfMonth", false},
	StartOfQuarter:  {"start_of_quarter", "SOQ", "StartOfQuarter", false},
	EndOfQuarter:    {"end_of_quarter", "EOQ", "EndOfQuarter", false},
	StartOfYear:     {"start_of_year", "SOY", "StartOfYear", false},
	EndOfYear:       {"end_of_year", "EOY", "EndOfYear", false},
	BeginningOfTime: {"beginning_of_time", "BOT", "BeginningOfTime", false},
	EndOfTime:       {"end_of_time", "EOT", "EndOfTime", false},
}

var keywordByName = func() map[string]Keyword {
	m := make(map[string]Keyword, 2*len(keywords))
	for k, info := range keywords {
		m[info.name] = Keyword(k)
		m[info.short] = Keyword(k)
	}
	return m
}()

// LookupKeyword returns the temporal keyword spelled s. Both the long
// (start_of_week) and short (SOW) spellings are keywords; matching is
// case-sensitive.
func LookupKeyword(s string) (Keyword, bool) {
	k, ok := keywordByName[s]
	return k, ok
}

// Keywords returns all temporal keywords.
func Keywords() []Keyword {
	ks := make([]Keyword, len(keywords))
	for i := range keywords {
		ks[i] = Keyword(i)
	}
	return ks
}

func (k Keyword) String() string { return keywords[k].name }

// GoName is the name of the elort function that computes the keyword.
func (k Keyword) GoName() string { return keywords[k].goName }

// IsDateTime reports whether the keyword is an instant rather than a date.
func (k Keyword) IsDateTime() bool { return keywords[k].dateTime }
