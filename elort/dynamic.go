package elort

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"
)

// The functions below operate on values of unknown type, as decoded from JSON
// or stored in an any field. Integers of every width are treated as int64,
// floats and json.Number as numbers. Operations that do not apply to their
// operands yield false, nil or zero rather than panicking.

func number(v any) (i int64, f float64, isInt, ok bool) {
	switch n := v.(type) {
	case int:
		return int64(n), float64(n), true, true
	case int8:
		return int64(n), float64(n), true, true
	case int16:
		return int64(n), float64(n), true, true
	case int32:
		return int64(n), float64(n), true, true
	case int64:
		return n, float64(n), true, true
	case uint:
		return int64(n), float64(n), true, n <= math.MaxInt64
	case uint8:
		return int64(n), float64(n), true, true
	case uint16:
		return int64(n), float64(n), true, true
	case uint32:
		return int64(n), float64(n), true, true
	case uint64:
		return int64(n), float64(n), true, n <= math.MaxInt64
	case float32:
		return 0, float64(n), false, true
	case float64:
		return 0, n, false, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, float64(i), true, true
		}
		if f, err := n.Float64(); err == nil {
			return 0, f, false, true
		}
	}
	return 0, 0, false, false
}

// deref follows pointers, so that optional values compare by content.
func deref(v any) any {
	for {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
}

// IsNull reports whether v is nil or a nil pointer.
func IsNull(v any) bool {
	return deref(v) == nil
}

func IsString(v any) bool {
	_, ok := deref(v).(string)
	return ok
}

func IsNumber(v any) bool {
	_, _, _, ok := number(deref(v))
	return ok
}

func IsBool(v any) bool {
	_, ok := deref(v).(bool)
	return ok
}

// Truthy is true only for the boolean true.
func Truthy(v any) bool {
	b, ok := deref(v).(bool)
	return ok && b
}

// AsString returns v if it is a string, otherwise "".
func AsString(v any) string {
	s, _ := deref(v).(string)
	return s
}

// AsInt returns v as an integer. Floats are truncated; non-numbers are 0.
func AsInt(v any) int64 {
	i, f, isInt, ok := number(deref(v))
	switch {
	case !ok:
		return 0
	case isInt:
		return i
	}
	return int64(f)
}

// AsFloat returns v as a float; non-numbers are 0.
func AsFloat(v any) float64 {
	_, f, _, _ := number(deref(v))
	return f
}

// AsTime returns v as an instant. Strings are parsed as RFC 3339 or
// YYYY-MM-DD; anything else is the zero time.
func AsTime(v any) time.Time {
	switch t := deref(v).(type) {
	case time.Time:
		return t
	case string:
		if d, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return d.UTC()
		}
		if d, err := time.ParseInLocation("2006-01-02", t, time.UTC); err == nil {
			return d
		}
	}
	return time.Time{}
}

// AsDuration returns v as a duration. ISO-8601 strings are parsed;
// anything else is 0.
func AsDuration(v any) time.Duration {
	switch d := deref(v).(type) {
	case time.Duration:
		return d
	case string:
		defer func() { recover() }()
		return ParseDuration(d)
	}
	return 0
}

// AsList returns the elements of a slice or array, or nil.
func AsList(v any) []any {
	v = deref(v)
	if l, ok := v.([]any); ok {
		return l
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// Length is the number of characters of a string or elements of a list or
// map, and 0 for anything else.
func Length(v any) int64 {
	v = deref(v)
	if s, ok := v.(string); ok {
		return int64(utf8.RuneCountInString(s))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return int64(rv.Len())
	}
	return 0
}

// Field selects name from a map or struct. Struct fields match by json tag,
// then by name without regard to case or underscores. It returns nil when
// there is no such field.
func Field(v any, name string) any {
	v = deref(v)
	if m, ok := v.(map[string]any); ok {
		return m[name]
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		x := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !x.IsValid() {
			return nil
		}
		return x.Interface()
	case reflect.Struct:
		rt := rv.Type()
		folded := strings.ReplaceAll(name, "_", "")
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if tag == name || (tag == "" && strings.EqualFold(f.Name, folded)) {
				return rv.Field(i).Interface()
			}
		}
	}
	return nil
}

// Equal compares two values: numbers by value, instants by Equal, anything
// else with ==. Nil equals only nil.
func Equal(a, b any) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() || !ra.Type().Comparable() {
		return false
	}
	return a == b
}

// Compare applies the ordering operator op (<, <=, > or >=) to a and b. It
// is false when the values are not ordered with respect to each other.
func Compare(op string, a, b any) bool {
	c, ok := compare(deref(a), deref(b))
	if !ok {
		return false
	}
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

func compare(a, b any) (int, bool) {
	ai, af, aInt, aNum := number(a)
	bi, bf, bInt, bNum := number(b)
	switch {
	case aNum && bNum:
		if aInt && bInt {
			return cmp3(ai < bi, ai > bi), true
		}
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, false
		}
		return cmp3(af < bf, af > bf), true
	case aNum || bNum:
		return 0, false
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
		if y, ok := b.(time.Time); ok {
			return AsTime(x).Compare(y), !AsTime(x).IsZero()
		}
	case time.Time:
		switch y := b.(type) {
		case time.Time:
			return x.Compare(y), true
		case string:
			t := AsTime(y)
			return x.Compare(t), !t.IsZero()
		}
	case time.Duration:
		if y, ok := b.(time.Duration); ok {
			return cmp3(x < y, x > y), true
		}
	case bool:
		if y, ok := b.(bool); ok && x == y {
			return 0, true
		}
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

// Arith applies the arithmetic operator op (+ - * / % ^) to a and b.
// Integers stay integers; any float operand makes the result a float. +
// concatenates strings. The result is nil when the operator does not apply,
// an integer operation overflows, or an integer is divided by zero.
func Arith(op string, a, b any) any {
	a, b = deref(a), deref(b)
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok && op == "+" {
			return x + y
		}
		return nil
	}
	ai, af, aInt, aNum := number(a)
	bi, bf, bInt, bNum := number(b)
	if !aNum || !bNum {
		return timeArith(op, a, b)
	}
	if aInt && bInt {
		if v, ok := intArith(op, ai, bi); ok {
			return v
		}
		return nil
	}
	var v float64
	switch op {
	case "+":
		v = af + bf
	case "-":
		v = af - bf
	case "*":
		v = af * bf
	case "/":
		v = af / bf
	case "^":
		v = math.Pow(af, bf)
	default:
		return nil
	}
	return v
}

func intArith(op string, a, b int64) (v int64, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	switch op {
	case "+":
		v = a + b
		return v, (v > a) == (b > 0)
	case "-":
		v = a - b
		return v, (v < a) == (b > 0)
	case "*":
		if a == 0 || b == 0 {
			return 0, true
		}
		v = a * b
		return v, v/b == a && !(a == -1 && b == math.MinInt64) && !(b == -1 && a == math.MinInt64)
	case "/":
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return 0, false
		}
		return a / b, true
	case "%":
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return 0, false
		}
		return a % b, true
	case "^":
		return PowInt(a, b), true
	}
	return 0, false
}

func timeArith(op string, a, b any) any {
	switch x := a.(type) {
	case time.Time:
		switch y := b.(type) {
		case time.Duration:
			switch op {
			case "+":
				return x.Add(y)
			case "-":
				return x.Add(-y)
			}
		case time.Time:
			if op == "-" {
				return x.Sub(y)
			}
		}
	case time.Duration:
		switch y := b.(type) {
		case time.Duration:
			switch op {
			case "+":
				return x + y
			case "-":
				return x - y
			}
		case time.Time:
			if op == "+" {
				return y.Add(x)
			}
		}
	}
	return nil
}

// Contains reports whether the list holds an element Equal to v, or, when
// list is a string, whether v is a substring of it.
func Contains(list, v any) bool {
	if s, ok := deref(list).(string); ok {
		sub, ok := deref(v).(string)
		return ok && strings.Contains(s, sub)
	}
	for _, el := range AsList(list) {
		if Equal(el, v) {
			return true
		}
	}
	return false
}

// Coalesce returns v unless it is null, otherwise fallback.
func Coalesce(v, fallback any) any {
	if v = deref(v); v != nil {
		return v
	}
	return fallback
}
