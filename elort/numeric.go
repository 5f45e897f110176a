package elort

import (
	"errors"
	"math"
)

// ErrArithmetic is the panic value of an integer operation without a result.
var ErrArithmetic = errors.New("integer overflow or exponent out of range")

// MaxExponent is the largest exponent PowInt accepts.
const MaxExponent = 63

// PowInt returns base^exp. It panics with ErrArithmetic when exp is outside
// 0..MaxExponent or the result overflows; generated code calls it under Guard.
func PowInt(base, exp int64) int64 {
	v, ok := CheckedPowInt(base, exp)
	if !ok {
		panic(ErrArithmetic)
	}
	return v
}

// CheckedPowInt computes base^exp by repeated squaring. It reports false when
// exp is outside 0..MaxExponent or the result overflows int64. The optimizer
// folds constant powers with it.
func CheckedPowInt(base, exp int64) (int64, bool) {
	if exp < 0 || exp > MaxExponent {
		return 0, false
	}
	result := int64(1)
	for {
		if exp&1 == 1 {
			r, ok := CheckedMulInt(result, base)
			if !ok {
				return 0, false
			}
			result = r
		}
		exp >>= 1
		if exp == 0 {
			return result, true
		}
		// the square is needed by a later step, so its overflow is the result's
		b, ok := CheckedMulInt(base, base)
		if !ok {
			return 0, false
		}
		base = b
	}
}

// CheckedMulInt returns a*b, reporting false on overflow.
func CheckedMulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	v := a * b
	if v/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return v, true
}

// Guard evaluates check, treating a panic (division by zero, a malformed
// date, an overflowing power) as a failed check.
func Guard(check func() bool) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return check()
}

// AbsInt returns |x|. The absolute value of the smallest int64 overflows
// and panics with ErrArithmetic.
func AbsInt(x int64) int64 {
	if x == math.MinInt64 {
		panic(ErrArithmetic)
	}
	if x < 0 {
		return -x
	}
	return x
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Int returns v. Generated code passes literal operands through Int when Go
// would otherwise fold them into a constant expression that overflows or
// divides by zero at compile time.
func Int(v int64) int64 { return v }

// Float is the float64 counterpart of Int.
func Float(v float64) float64 { return v }
