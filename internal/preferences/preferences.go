// Package preferences converts between pairwise preference parameters anchored
// to a numeraire good and aggregated Cobb–Douglas exponent vectors.
//
// For each good k other than the numeraire B:
//
//	alpha_kB = beta_k / (beta_k + beta_B)  =>  beta_k = alpha_kB / (1 - alpha_kB) * beta_B
//
// Every ratio is anchored to the same numeraire, so the aggregated vector is
// cycle-consistent without any cross-pair checks.
package preferences

import (
	"math"

	"dyad-exchange-lab/internal/numeric"
)

// MinAlpha keeps pairwise parameters away from the 0 and 1 boundaries.
const MinAlpha = 1e-6

// BaseAlpha is the conventional pairwise parameter of the numeraire against itself.
const BaseAlpha = 0.5

// Aggregate builds a normalized exponent vector from pairwise-to-base parameters.
// The numeraire's unnormalized weight is 1; each other good k gets
// a/(1-a) with a = clamp(pairwiseToBase[k], minAlpha, 1-minAlpha).
// Panics if base is out of range.
func Aggregate(pairwiseToBase []float64, base int, minAlpha float64) []float64 {
	n := len(pairwiseToBase)
	if base < 0 || base >= n {
		panic("preferences: base good index out of range")
	}

	beta := make([]float64, n)
	beta[base] = 1.0
	for k := 0; k < n; k++ {
		if k == base {
			continue
		}
		a := numeric.Clamp(pairwiseToBase[k], minAlpha, 1-minAlpha)
		beta[k] = a / (1 - a)
	}

	numeric.Normalize(beta)
	return beta
}

// DerivePairwise returns the dyadic exponent of good a in an (a, b) evaluation:
// beta[a] / (beta[a] + beta[b]), clamped into [minAlpha, 1-minAlpha].
func DerivePairwise(beta []float64, a, b int, minAlpha float64) float64 {
	ba := math.Max(beta[a], 0)
	bb := math.Max(beta[b], 0)
	denom := math.Max(ba+bb, numeric.Epsilon)
	return numeric.Clamp(ba/denom, minAlpha, 1-minAlpha)
}

// PairwiseToBase derives the full pairwise-to-base vector implied by beta.
// The numeraire's own entry is BaseAlpha.
func PairwiseToBase(beta []float64, base int, minAlpha float64) []float64 {
	out := make([]float64, len(beta))
	for k := range beta {
		if k == base {
			out[k] = BaseAlpha
			continue
		}
		out[k] = DerivePairwise(beta, k, base, minAlpha)
	}
	return out
}

// Utility evaluates exp(sum_k beta_k * ln(max(holdings_k, minQty))).
func Utility(beta, holdings []float64, minQty float64) float64 {
	n := min(len(beta), len(holdings))
	s := 0.0
	for k := 0; k < n; k++ {
		s += beta[k] * numeric.SafeLog(holdings[k], minQty)
	}
	return math.Exp(s)
}
