// Package fixed implements the deterministic integer arithmetic shared by
// both peers of a match. No float value ever reaches simulation state.
package fixed

import (
	"math"
	"math/bits"
)

// Scale is the number of fixed-point units per whole unit (pixel, px/tick).
const Scale = 1_000_000

// Fixed is a signed fixed-point value scaled by Scale.
type Fixed int64

// FromInt converts a whole number to fixed-point.
func FromInt(n int) Fixed {
	return Fixed(int64(n) * Scale)
}

// ToInt converts fixed-point to a whole number, flooring toward negative infinity.
func (f Fixed) ToInt() int {
	q := int64(f) / Scale
	if int64(f)%Scale != 0 && f < 0 {
		q--
	}
	return int(q)
}

// Abs returns the absolute value.
func (f Fixed) Abs() Fixed {
	if f < 0 {
		return -f
	}
	return f
}

// Sign returns -1, 0, or 1.
func (f Fixed) Sign() int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	}
	return 0
}

// Mul returns (a*b)/Scale using a 128-bit intermediate, truncating toward zero.
// Results outside the int64 range saturate.
func Mul(a, b Fixed) Fixed {
	neg := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(magnitude(int64(a)), magnitude(int64(b)))
	if hi >= Scale {
		return saturate(neg)
	}
	q, _ := bits.Div64(hi, lo, Scale)
	return signed(q, neg)
}

// Div returns (a*Scale)/b, truncating toward zero. Division by zero yields 0.
func Div(a, b Fixed) Fixed {
	if b == 0 {
		return 0
	}
	neg := (a < 0) != (b < 0)
	d := magnitude(int64(b))
	hi, lo := bits.Mul64(magnitude(int64(a)), Scale)
	if hi >= d {
		return saturate(neg)
	}
	q, _ := bits.Div64(hi, lo, d)
	return signed(q, neg)
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi Fixed) Fixed {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func magnitude(v int64) uint64 {
	u := uint64(v) //#nosec G115 -- two's complement magnitude
	if v < 0 {
		u = -u
	}
	return u
}

func signed(q uint64, neg bool) Fixed {
	if q > math.MaxInt64 {
		return saturate(neg)
	}
	if neg {
		return -Fixed(q) //#nosec G115 -- range checked above
	}
	return Fixed(q) //#nosec G115 -- range checked above
}

func saturate(neg bool) Fixed {
	if neg {
		return math.MinInt64
	}
	return math.MaxInt64
}
