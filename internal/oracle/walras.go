package oracle

import (
	"math"

	"dyad-exchange-lab/internal/numeric"
)

// Price bracket for the equilibrium search, in units of the numeraire B.
const (
	PriceLow  = 1e-6
	PriceHigh = 1e6
)

// CobbDouglasWalras finds the Walrasian equilibrium of a two-agent exchange
// economy with utilities u = a^alpha * b^(1-alpha).
//
// Good B is the numeraire. Excess demand for A is decreasing in its price p,
// so p is located by bisection on the geometric midpoint of [PriceLow, PriceHigh]
// for exactly iters steps. Allocations are then read off the Marshallian
// demands at p. Agent j receives the remainder of each good, floored at
// minQty, so totals are conserved up to that floor even when the search has
// not fully converged.
type CobbDouglasWalras struct{}

// NewCobbDouglasWalras returns the default oracle.
func NewCobbDouglasWalras() *CobbDouglasWalras {
	return &CobbDouglasWalras{}
}

// ExcessDemandA returns total demand for A minus total supply of A at price p.
func ExcessDemandA(d Dyad, p float64) float64 {
	wi := p*d.AI + d.BI
	wj := p*d.AJ + d.BJ
	return d.AlphaI*wi/p + d.AlphaJ*wj/p - (d.AI + d.AJ)
}

// SolveTwoGoodExchange implements ParetoOracle.
func (o *CobbDouglasWalras) SolveTwoGoodExchange(d Dyad, minQty float64, iters int) DyadExchange {
	d = Dyad{
		AlphaI: numeric.Clamp01(d.AlphaI),
		AI:     numeric.Floor(d.AI, minQty),
		BI:     numeric.Floor(d.BI, minQty),
		AlphaJ: numeric.Clamp01(d.AlphaJ),
		AJ:     numeric.Floor(d.AJ, minQty),
		BJ:     numeric.Floor(d.BJ, minQty),
	}

	pLo, pHi := PriceLow, PriceHigh
	for n := 0; n < iters; n++ {
		mid := math.Sqrt(pLo * pHi)
		if ExcessDemandA(d, mid) > 0 {
			// demand exceeds supply: price too low
			pLo = mid
		} else {
			pHi = mid
		}
	}
	p := math.Sqrt(pLo * pHi)

	totalA := d.AI + d.AJ
	totalB := d.BI + d.BJ
	wi := p*d.AI + d.BI

	aI := numeric.Clamp(d.AlphaI*wi/p, minQty, totalA-minQty)
	bI := numeric.Clamp((1-d.AlphaI)*wi, minQty, totalB-minQty)

	// j takes the remainder; the floor absorbs rounding when i sits at its upper clamp
	return DyadExchange{
		Price:  p,
		APostI: aI,
		BPostI: bI,
		APostJ: numeric.Floor(totalA-aI, minQty),
		BPostJ: numeric.Floor(totalB-bI, minQty),
	}
}

var _ ParetoOracle = (*CobbDouglasWalras)(nil)
