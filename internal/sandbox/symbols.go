package sandbox

import (
	"go/constant"
	"go/token"
	"reflect"

	"github.com/evoludigit/elo/elort"
	"github.com/traefik/yaegi/interp"
)

// Symbols exports the elort runtime to interpreted code, in the layout
// written by yaegi extract.
var Symbols = interp.Exports{
	"github.com/evoludigit/elo/elort/elort": {
		// constants
		"MaxExponent":      reflect.ValueOf(constant.MakeFromLiteral("63", token.INT, 0)),
		"MaxPatternLength": reflect.ValueOf(constant.MakeFromLiteral("1024", token.INT, 0)),

		// variables
		"ErrArithmetic": reflect.ValueOf(&elort.ErrArithmetic).Elem(),

		// functions
		"AbsInt":          reflect.ValueOf(elort.AbsInt),
		"Age":             reflect.ValueOf(elort.Age),
		"Arith":           reflect.ValueOf(elort.Arith),
		"AsDuration":      reflect.ValueOf(elort.AsDuration),
		"AsFloat":         reflect.ValueOf(elort.AsFloat),
		"AsInt":           reflect.ValueOf(elort.AsInt),
		"AsList":          reflect.ValueOf(elort.AsList),
		"AsString":        reflect.ValueOf(elort.AsString),
		"AsTime":          reflect.ValueOf(elort.AsTime),
		"BeginningOfTime": reflect.ValueOf(elort.BeginningOfTime),
		"CheckedMulInt":   reflect.ValueOf(elort.CheckedMulInt),
		"CheckedPowInt":   reflect.ValueOf(elort.CheckedPowInt),
		"Coalesce":        reflect.ValueOf(elort.Coalesce),
		"Compare":         reflect.ValueOf(elort.Compare),
		"CompilePattern":  reflect.ValueOf(elort.CompilePattern),
		"Contains":        reflect.ValueOf(elort.Contains),
		"DaysSince":       reflect.ValueOf(elort.DaysSince),
		"DurationDays":    reflect.ValueOf(elort.DurationDays),
		"EndOfDay":        reflect.ValueOf(elort.EndOfDay),
		"EndOfMonth":      reflect.ValueOf(elort.EndOfMonth),
		"EndOfQuarter":    reflect.ValueOf(elort.EndOfQuarter),
		"EndOfTime":       reflect.ValueOf(elort.EndOfTime),
		"EndOfWeek":       reflect.ValueOf(elort.EndOfWeek),
		"EndOfYear":       reflect.ValueOf(elort.EndOfYear),
		"Equal":           reflect.ValueOf(elort.Equal),
		"Field":           reflect.ValueOf(elort.Field),
		"Float":           reflect.ValueOf(elort.Float),
		"Guard":           reflect.ValueOf(elort.Guard),
		"Int":             reflect.ValueOf(elort.Int),
		"IsBool":          reflect.ValueOf(elort.IsBool),
		"IsNull":          reflect.ValueOf(elort.IsNull),
		"IsNumber":        reflect.ValueOf(elort.IsNumber),
		"IsString":        reflect.ValueOf(elort.IsString),
		"Length":          reflect.ValueOf(elort.Length),
		"Match":           reflect.ValueOf(elort.Match),
		"Matches":         reflect.ValueOf(elort.Matches),
		"MaxInt":          reflect.ValueOf(elort.MaxInt),
		"MinInt":          reflect.ValueOf(elort.MinInt),
		"Now":             reflect.ValueOf(elort.Now),
		"ParseDate":       reflect.ValueOf(elort.ParseDate),
		"ParseDateTime":   reflect.ValueOf(elort.ParseDateTime),
		"ParseDuration":   reflect.ValueOf(elort.ParseDuration),
		"PowInt":          reflect.ValueOf(elort.PowInt),
		"StartOfDay":      reflect.ValueOf(elort.StartOfDay),
		"StartOfMonth":    reflect.ValueOf(elort.StartOfMonth),
		"StartOfQuarter":  reflect.ValueOf(elort.StartOfQuarter),
		"StartOfWeek":     reflect.ValueOf(elort.StartOfWeek),
		"StartOfYear":     reflect.ValueOf(elort.StartOfYear),
		"Today":           reflect.ValueOf(elort.Today),
		"Tomorrow":        reflect.ValueOf(elort.Tomorrow),
		"Truthy":          reflect.ValueOf(elort.Truthy),
		"Yesterday":       reflect.ValueOf(elort.Yesterday),

		// types
		"ValidationError":  reflect.ValueOf((*elort.ValidationError)(nil)),
		"ValidationErrors": reflect.ValueOf((*elort.ValidationErrors)(nil)),
	},
}
