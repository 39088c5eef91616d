package trade

import (
	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/numeric"
)

// Capped returns a copy of c with both quantity deltas scaled by frac.
// frac is clamped into [0,1]; 1 leaves the candidate unchanged.
// Scaling both goods by the same factor keeps the exchange conserved.
func (c *Candidate) Capped(frac float64) Candidate {
	out := *c
	frac = numeric.Clamp01(frac)
	if frac < 1 {
		out.DeltaAI *= frac
		out.DeltaBI *= frac
	}
	return out
}

// Apply executes c: agent i gains the deltas on goods A and B and agent j
// loses them. Every resulting quantity is floored at minQty.
func Apply(i, j *domain.Agent, c *Candidate, minQty float64) {
	a, b := c.GoodA, c.GoodB

	i.Holdings[a] = numeric.Floor(i.Holdings[a]+c.DeltaAI, minQty)
	i.Holdings[b] = numeric.Floor(i.Holdings[b]+c.DeltaBI, minQty)

	j.Holdings[a] = numeric.Floor(j.Holdings[a]-c.DeltaAI, minQty)
	j.Holdings[b] = numeric.Floor(j.Holdings[b]-c.DeltaBI, minQty)
}
