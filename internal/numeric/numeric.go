// Package numeric holds the small vector and scalar helpers shared by the
// exchange engine. Every helper is total: no input produces NaN from a
// division by zero or a logarithm of a non-positive number.
package numeric

import "math"

// Epsilon floors denominators that may legitimately reach zero.
const Epsilon = 1e-18

// Sum returns the sum of v.
func Sum(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

// Normalize scales v in place so it sums to 1.
// A vector with non-positive sum is left untouched.
func Normalize(v []float64) {
	s := Sum(v)
	if s <= 0 {
		return
	}
	for k := range v {
		v[k] /= s
	}
}

// Clamp bounds x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp01 bounds x into [0, 1].
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Floor returns max(x, floor).
func Floor(x, floor float64) float64 {
	return math.Max(x, floor)
}

// SafeLog returns ln(max(x, minQty)).
func SafeLog(x, minQty float64) float64 {
	return math.Log(math.Max(x, minQty))
}
