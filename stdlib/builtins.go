package stdlib

import "github.com/evoludigit/elo/schema"

func returns(t schema.Type) func([]schema.Type) schema.Type {
	return func([]schema.Type) schema.Type { return t }
}

// widened is Float when any argument is Float, otherwise Integer. Unknown
// arguments are converted to the overload's parameter type.
func widened(args []schema.Type) schema.Type {
	for _, a := range args {
		if schema.Equal(a, schema.Float{}) {
			return schema.Float{}
		}
	}
	return schema.Integer{}
}

func tmpl(format string, imports ...string) Strategy {
	return Strategy{Kind: Template, Template: format, Imports: imports}
}

var (
	boolean  = returns(schema.Boolean{})
	integer  = returns(schema.Integer{})
	str      = returns(schema.String{})
	floatT   = returns(schema.Float{})
	dateT    = returns(schema.Date{})
	dateTime = returns(schema.DateTime{})
	duration = returns(schema.Duration{})
)

func builtins() []Signature {
	return []Signature{
		// string
		{Name: "matches", Category: String, Params: []Kind{KString, KString}, result: boolean,
			Strategy: Strategy{Kind: Regex}, Doc: "reports whether the string contains a match of the pattern"},
		{Name: "contains", Category: Array, Params: []Kind{KUnknown, KAny}, result: boolean,
			Strategy: tmpl("elort.Contains(%[1]s, %[2]s)"), Doc: "contains on a value checked at run time"},
		{Name: "contains", Category: String, Params: []Kind{KString, KString}, result: boolean,
			Strategy: tmpl("strings.Contains(%[1]s, %[2]s)", "strings"), Doc: "reports whether the substring is present"},
		{Name: "contains", Category: Array, Params: []Kind{KArray, KElem}, result: boolean,
			Strategy: Strategy{Kind: Loop}, Doc: "reports whether the array holds an element equal to the value"},
		{Name: "length", Category: Array, Params: []Kind{KUnknown}, result: integer,
			Strategy: tmpl("elort.Length(%[1]s)"), Doc: "length of a value checked at run time"},
		{Name: "length", Category: String, Params: []Kind{KString}, result: integer,
			Strategy: tmpl("int64(utf8.RuneCountInString(%[1]s))", "unicode/utf8"), Doc: "number of characters in the string"},
		{Name: "length", Category: Array, Params: []Kind{KArray}, result: integer,
			Strategy: tmpl("int64(len(%[1]s))"), Doc: "number of elements in the array"},
		{Name: "uppercase", Category: String, Params: []Kind{KString}, result: str,
			Strategy: tmpl("strings.ToUpper(%[1]s)", "strings")},
		{Name: "lowercase", Category: String, Params: []Kind{KString}, result: str,
			Strategy: tmpl("strings.ToLower(%[1]s)", "strings")},
		{Name: "trim", Category: String, Params: []Kind{KString}, result: str,
			Strategy: tmpl("strings.TrimSpace(%[1]s)", "strings"), Doc: "removes leading and trailing white space"},
		{Name: "starts_with", Category: String, Params: []Kind{KString, KString}, result: boolean,
			Strategy: tmpl("strings.HasPrefix(%[1]s, %[2]s)", "strings")},
		{Name: "ends_with", Category: String, Params: []Kind{KString, KString}, result: boolean,
			Strategy: tmpl("strings.HasSuffix(%[1]s, %[2]s)", "strings")},
		{Name: "is_empty", Category: Array, Params: []Kind{KUnknown}, result: boolean,
			Strategy: tmpl("(elort.Length(%[1]s) == 0)")},
		{Name: "is_empty", Category: String, Params: []Kind{KString}, result: boolean,
			Strategy: tmpl("(%[1]s == \"\")")},
		{Name: "is_empty", Category: Array, Params: []Kind{KArray}, result: boolean,
			Strategy: tmpl("(len(%[1]s) == 0)")},

		// datetime
		{Name: "today", Category: DateTime, result: dateT,
			Strategy: tmpl("elort.Today()"), Doc: "the current day in UTC"},
		{Name: "now", Category: DateTime, result: dateTime,
			Strategy: tmpl("elort.Now()"), Doc: "the current instant"},
		{Name: "age", Category: DateTime, Params: []Kind{KTime}, result: integer,
			Strategy: tmpl("elort.Age(%[1]s)"), Doc: "whole years elapsed from the date until today"},
		{Name: "days_since", Category: DateTime, Params: []Kind{KTime}, result: integer,
			Strategy: tmpl("elort.DaysSince(%[1]s)"), Doc: "whole days elapsed from the date until today"},
		{Name: "date", Category: DateTime, Params: []Kind{KString}, result: dateT,
			Strategy: tmpl("elort.ParseDate(%[1]s)"), Doc: "parses YYYY-MM-DD"},
		{Name: "datetime", Category: DateTime, Params: []Kind{KString}, result: dateTime,
			Strategy: tmpl("elort.ParseDateTime(%[1]s)"), Doc: "parses an RFC 3339 timestamp"},
		{Name: "duration", Category: DateTime, Params: []Kind{KString}, result: duration,
			Strategy: tmpl("elort.ParseDuration(%[1]s)"), Doc: "parses an ISO 8601 duration"},
		{Name: "duration_days", Category: DateTime, Params: []Kind{KDuration}, result: integer,
			Strategy: tmpl("elort.DurationDays(%[1]s)"), Doc: "whole days in the duration"},

		// array
		{Name: "any", Category: Array, Params: []Kind{KArray, KPredicate}, result: boolean,
			Strategy: Strategy{Kind: Loop}, Doc: "reports whether the predicate holds for some element"},
		{Name: "all", Category: Array, Params: []Kind{KArray, KPredicate}, result: boolean,
			Strategy: Strategy{Kind: Loop}, Doc: "reports whether the predicate holds for every element"},

		// type
		{Name: "is_null", Category: Type, Params: []Kind{KAny}, result: boolean,
			Strategy: Strategy{Kind: Presence}},
		{Name: "is_some", Category: Type, Params: []Kind{KAny}, result: boolean,
			Strategy: Strategy{Kind: Presence}},
		{Name: "is_string", Category: Type, Params: []Kind{KAny}, result: boolean,
			Strategy: Strategy{Kind: TypeTest, Template: "elort.IsString(%[1]s)"}},
		{Name: "is_number", Category: Type, Params: []Kind{KAny}, result: boolean,
			Strategy: Strategy{Kind: TypeTest, Template: "elort.IsNumber(%[1]s)"}},
		{Name: "is_bool", Category: Type, Params: []Kind{KAny}, result: boolean,
			Strategy: Strategy{Kind: TypeTest, Template: "elort.IsBool(%[1]s)"}},

		// math
		{Name: "abs", Category: Math, Params: []Kind{KInteger}, result: integer,
			Strategy: tmpl("elort.AbsInt(%[1]s)")},
		{Name: "abs", Category: Math, Params: []Kind{KFloat}, result: floatT,
			Strategy: tmpl("math.Abs(%[1]s)", "math")},
		{Name: "min", Category: Math, Params: []Kind{KInteger, KInteger}, result: widened,
			Strategy: tmpl("elort.MinInt(%[1]s, %[2]s)")},
		{Name: "min", Category: Math, Params: []Kind{KFloat, KFloat}, result: widened,
			Strategy: tmpl("math.Min(%[1]s, %[2]s)", "math")},
		{Name: "max", Category: Math, Params: []Kind{KInteger, KInteger}, result: widened,
			Strategy: tmpl("elort.MaxInt(%[1]s, %[2]s)")},
		{Name: "max", Category: Math, Params: []Kind{KFloat, KFloat}, result: widened,
			Strategy: tmpl("math.Max(%[1]s, %[2]s)", "math")},
		{Name: "round", Category: Math, Params: []Kind{KFloat}, result: integer,
			Strategy: tmpl("int64(math.Round(%[1]s))", "math")},
		{Name: "floor", Category: Math, Params: []Kind{KFloat}, result: integer,
			Strategy: tmpl("int64(math.Floor(%[1]s))", "math")},
		{Name: "ceil", Category: Math, Params: []Kind{KFloat}, result: integer,
			Strategy: tmpl("int64(math.Ceil(%[1]s))", "math")},
	}
}
