package trade

import (
	"errors"
	"math"
	"sort"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/numeric"
	"dyad-exchange-lab/internal/oracle"
)

// ErrUnknownPairingMode is returned for an unrecognized pairing mode.
var ErrUnknownPairingMode = errors.New("unknown pairing mode")

// Selector picks the best strictly-improving trade for an encounter.
type Selector interface {
	// Best returns the highest-scoring candidate, or nil when no pair improves both agents.
	Best(i, j *domain.Agent) *Candidate

	// Mode returns the pairing mode implemented.
	Mode() domain.PairingMode
}

// FromConfig builds the Selector for cfg.PairingMode.
func FromConfig(cfg domain.SimConfig, o oracle.ParetoOracle) (Selector, error) {
	p := ParamsFromConfig(cfg)
	switch cfg.PairingMode {
	case domain.PairingAgainstBase:
		return NewAgainstBase(p, o), nil
	case domain.PairingAllPairsPruned:
		return NewPrunedPairs(p, o), nil
	default:
		return nil, ErrUnknownPairingMode
	}
}

// AgainstBase evaluates every non-numeraire good against the numeraire.
type AgainstBase struct {
	params Params
	oracle oracle.ParetoOracle
}

// NewAgainstBase creates an against-numeraire selector.
func NewAgainstBase(p Params, o oracle.ParetoOracle) *AgainstBase {
	return &AgainstBase{params: p, oracle: o}
}

// Best implements Selector.
func (s *AgainstBase) Best(i, j *domain.Agent) *Candidate {
	n := len(i.Holdings)
	if n != len(j.Holdings) {
		return nil
	}

	var best *Candidate
	for a := 0; a < n; a++ {
		if a == s.params.BaseGood {
			continue
		}
		if c := EvaluatePair(i, j, a, s.params.BaseGood, s.params, s.oracle); c != nil && better(c, best) {
			best = c
		}
	}
	return best
}

// Mode implements Selector.
func (s *AgainstBase) Mode() domain.PairingMode {
	return domain.PairingAgainstBase
}

// PrunedPairs evaluates all ordered pairs within a pruned candidate set
// (top-K goods by MRS disagreement, plus the numeraire).
type PrunedPairs struct {
	params Params
	oracle oracle.ParetoOracle
}

// NewPrunedPairs creates a pruned all-pairs selector.
func NewPrunedPairs(p Params, o oracle.ParetoOracle) *PrunedPairs {
	return &PrunedPairs{params: p, oracle: o}
}

// Best implements Selector.
func (s *PrunedPairs) Best(i, j *domain.Agent) *Candidate {
	if len(i.Holdings) != len(j.Holdings) {
		return nil
	}

	goods := CandidateGoodsPruned(i, j, s.params.BaseGood, s.params.CandidateGoodsK, s.params.MinQty)
	goods = append(goods, s.params.BaseGood)

	var best *Candidate
	for _, a := range goods {
		for _, b := range goods {
			if a == b {
				continue
			}
			if c := EvaluatePair(i, j, a, b, s.params, s.oracle); c != nil && better(c, best) {
				best = c
			}
		}
	}
	return best
}

// Mode implements Selector.
func (s *PrunedPairs) Mode() domain.PairingMode {
	return domain.PairingAllPairsPruned
}

// MRSToBase is the Cobb–Douglas marginal rate of substitution of good k
// against the numeraire: (beta_k/beta_base) * (x_base/x_k).
func MRSToBase(beta, holdings []float64, k, base int, minQty float64) float64 {
	bk := math.Max(beta[k], 0)
	bb := math.Max(beta[base], numeric.Epsilon)
	xb := numeric.Floor(holdings[base], minQty)
	xk := numeric.Floor(holdings[k], minQty)
	return (bk / bb) * (xb / xk)
}

// CandidateGoodsPruned returns up to k non-numeraire goods ranked by the
// absolute difference in log-MRS between i and j, largest first.
// Ties keep ascending good order.
func CandidateGoodsPruned(i, j *domain.Agent, base, k int, minQty float64) []int {
	type scored struct {
		good         int
		disagreement float64
	}

	n := len(i.Holdings)
	all := make([]scored, 0, max(n-1, 0))
	for g := 0; g < n; g++ {
		if g == base {
			continue
		}
		mi := math.Log(math.Max(MRSToBase(i.Beta, i.Holdings, g, base, minQty), numeric.Epsilon))
		mj := math.Log(math.Max(MRSToBase(j.Beta, j.Holdings, g, base, minQty), numeric.Epsilon))
		all = append(all, scored{good: g, disagreement: math.Abs(mi - mj)})
	}

	sort.SliceStable(all, func(a, b int) bool {
		return all[a].disagreement > all[b].disagreement
	})

	k = min(max(k, 0), len(all))
	out := make([]int, k)
	for idx := 0; idx < k; idx++ {
		out[idx] = all[idx].good
	}
	return out
}

var (
	_ Selector = (*AgainstBase)(nil)
	_ Selector = (*PrunedPairs)(nil)
)
