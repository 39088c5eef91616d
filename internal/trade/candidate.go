// Package trade searches for strictly Pareto-improving bilateral trades and
// applies them to agent holdings.
package trade

import (
	"math"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/numeric"
	"dyad-exchange-lab/internal/oracle"
	"dyad-exchange-lab/internal/preferences"
)

// Candidate is a proposed trade of goods (GoodA, GoodB) between agents i and j.
// Deltas are for agent i; agent j receives the negatives.
type Candidate struct {
	GoodA   int
	GoodB   int
	Price   float64 // equilibrium price ratio pA/pB
	DeltaAI float64
	DeltaBI float64
	DeltaUI float64 // full-bundle utility change of i
	DeltaUJ float64 // full-bundle utility change of j
}

// Score is the conservative ranking of a candidate: the smaller of the two gains.
func (c *Candidate) Score() float64 {
	return math.Min(c.DeltaUI, c.DeltaUJ)
}

// Params are the numeric knobs shared by every search policy.
type Params struct {
	BaseGood        int
	MinQty          float64
	OracleIters     int
	CandidateGoodsK int
}

// ParamsFromConfig extracts search parameters from a simulation config.
func ParamsFromConfig(cfg domain.SimConfig) Params {
	return Params{
		BaseGood:        cfg.BaseGood,
		MinQty:          cfg.MinQty,
		OracleIters:     cfg.OracleBisectIters,
		CandidateGoodsK: cfg.CandidateGoodsK,
	}
}

// dyadicAlpha returns agent's exponent on good a in an (a, b) evaluation.
// Against the numeraire the stored pairwise parameter is authoritative;
// otherwise it is derived from the aggregated weights.
func dyadicAlpha(ag *domain.Agent, a, b, base int) float64 {
	if b == base && len(ag.AlphaToBase) == len(ag.Holdings) {
		return numeric.Clamp(ag.AlphaToBase[a], preferences.MinAlpha, 1-preferences.MinAlpha)
	}
	return preferences.DerivePairwise(ag.Beta, a, b, preferences.MinAlpha)
}

// EvaluatePair evaluates the ordered good pair (a, b) for agents i and j.
// It returns nil unless both agents strictly gain under their full
// multi-good utility, or when the pair or vector shapes are invalid.
func EvaluatePair(i, j *domain.Agent, a, b int, p Params, o oracle.ParetoOracle) *Candidate {
	n := len(i.Holdings)
	if a == b || a < 0 || b < 0 || a >= n || b >= n || len(j.Holdings) != n {
		return nil
	}
	if len(i.Beta) != n || len(j.Beta) != n {
		return nil
	}

	ai, bi := i.Holdings[a], i.Holdings[b]
	aj, bj := j.Holdings[a], j.Holdings[b]

	ex := o.SolveTwoGoodExchange(oracle.Dyad{
		AlphaI: dyadicAlpha(i, a, b, p.BaseGood), AI: ai, BI: bi,
		AlphaJ: dyadicAlpha(j, a, b, p.BaseGood), AJ: aj, BJ: bj,
	}, p.MinQty, p.OracleIters)

	// The two-good optimum need not improve the full bundle, so recompute.
	deltaUI := bundleGain(i, a, b, ex.APostI, ex.BPostI, p.MinQty)
	deltaUJ := bundleGain(j, a, b, ex.APostJ, ex.BPostJ, p.MinQty)
	if !(deltaUI > 0 && deltaUJ > 0) {
		return nil
	}

	return &Candidate{
		GoodA:   a,
		GoodB:   b,
		Price:   ex.Price,
		DeltaAI: ex.APostI - ai,
		DeltaBI: ex.BPostI - bi,
		DeltaUI: deltaUI,
		DeltaUJ: deltaUJ,
	}
}

// bundleGain returns the utility change when only goods a and b are replaced.
func bundleGain(ag *domain.Agent, a, b int, aPost, bPost, minQty float64) float64 {
	before := preferences.Utility(ag.Beta, ag.Holdings, minQty)

	post := append([]float64(nil), ag.Holdings...)
	post[a] = aPost
	post[b] = bPost

	return preferences.Utility(ag.Beta, post, minQty) - before
}

// better reports whether c should replace the current best.
func better(c, best *Candidate) bool {
	return best == nil || c.Score() > best.Score()
}
