package trade

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/oracle"
	"dyad-exchange-lab/internal/preferences"
)

// countingOracle delegates to the Walras oracle and counts calls.
type countingOracle struct {
	inner oracle.ParetoOracle
	calls int
}

func (o *countingOracle) SolveTwoGoodExchange(d oracle.Dyad, minQty float64, iters int) oracle.DyadExchange {
	o.calls++
	return o.inner.SolveTwoGoodExchange(d, minQty, iters)
}

// noTradeOracle returns the inputs unchanged.
type noTradeOracle struct{}

func (noTradeOracle) SolveTwoGoodExchange(d oracle.Dyad, _ float64, _ int) oracle.DyadExchange {
	return oracle.DyadExchange{Price: 1, APostI: d.AI, BPostI: d.BI, APostJ: d.AJ, BPostJ: d.BJ}
}

func newAgent(holdings, alphaToBase []float64, base int) *domain.Agent {
	return &domain.Agent{
		Holdings:    holdings,
		AlphaToBase: alphaToBase,
		Beta:        preferences.Aggregate(alphaToBase, base, preferences.MinAlpha),
	}
}

func randomAgent(rng *rand.Rand, n, base int) *domain.Agent {
	holdings := make([]float64, n)
	alpha := make([]float64, n)
	for k := 0; k < n; k++ {
		holdings[k] = 0.5 + rng.Float64()*1.5
		alpha[k] = 0.1 + rng.Float64()*0.8
	}
	alpha[base] = preferences.BaseAlpha
	return newAgent(holdings, alpha, base)
}

func defaultParams() Params {
	return Params{BaseGood: 0, MinQty: 1e-9, OracleIters: 80, CandidateGoodsK: 3}
}

func complementaryPair() (*domain.Agent, *domain.Agent) {
	i := newAgent([]float64{4, 1}, []float64{0.5, 0.8}, 0)
	j := newAgent([]float64{1, 4}, []float64{0.5, 0.2}, 0)
	return i, j
}

func TestEvaluatePair_ComplementaryAgentsTrade(t *testing.T) {
	i, j := complementaryPair()

	c := EvaluatePair(i, j, 1, 0, defaultParams(), oracle.NewCobbDouglasWalras())
	require.NotNil(t, c)

	assert.Equal(t, 1, c.GoodA)
	assert.Equal(t, 0, c.GoodB)
	assert.Greater(t, c.Price, 0.0)
	assert.Greater(t, c.DeltaAI, 0.0, "i buys good 1")
	assert.Less(t, c.DeltaBI, 0.0, "i pays with the numeraire")
	assert.Greater(t, c.DeltaUI, 0.0)
	assert.Greater(t, c.DeltaUJ, 0.0)
}

func TestEvaluatePair_Rejections(t *testing.T) {
	i, j := complementaryPair()
	o := oracle.NewCobbDouglasWalras()
	p := defaultParams()

	assert.Nil(t, EvaluatePair(i, j, 1, 1, p, o), "same good")
	assert.Nil(t, EvaluatePair(i, j, 2, 0, p, o), "good out of range")
	assert.Nil(t, EvaluatePair(i, j, -1, 0, p, o), "negative good")

	short := newAgent([]float64{1, 1, 1}, []float64{0.5, 0.5, 0.5}, 0)
	assert.Nil(t, EvaluatePair(i, short, 1, 0, p, o), "length mismatch")

	assert.Nil(t, EvaluatePair(i, j, 1, 0, p, noTradeOracle{}), "no gain")
}

func TestSelectors_StrictImprovement(t *testing.T) {
	rng := rand.New(rand.NewPCG(2024, 0))
	o := oracle.NewCobbDouglasWalras()
	const n = 8

	for _, mode := range []domain.PairingMode{domain.PairingAgainstBase, domain.PairingAllPairsPruned} {
		cfg := domain.DefaultSimConfig()
		cfg.PairingMode = mode
		cfg.CandidateGoodsK = 4
		sel, err := FromConfig(cfg, o)
		require.NoError(t, err)

		found := 0
		for trial := 0; trial < 200; trial++ {
			i := randomAgent(rng, n, 0)
			j := randomAgent(rng, n, 0)

			c := sel.Best(i, j)
			if c == nil {
				continue
			}
			found++

			// Recompute independently of the search.
			pi := append([]float64(nil), i.Holdings...)
			pj := append([]float64(nil), j.Holdings...)
			pi[c.GoodA] += c.DeltaAI
			pi[c.GoodB] += c.DeltaBI
			pj[c.GoodA] -= c.DeltaAI
			pj[c.GoodB] -= c.DeltaBI

			dUI := preferences.Utility(i.Beta, pi, 1e-9) - preferences.Utility(i.Beta, i.Holdings, 1e-9)
			dUJ := preferences.Utility(j.Beta, pj, 1e-9) - preferences.Utility(j.Beta, j.Holdings, 1e-9)
			require.Greater(t, dUI, 0.0, "mode %s trial %d", mode, trial)
			require.Greater(t, dUJ, 0.0, "mode %s trial %d", mode, trial)
			require.Greater(t, c.DeltaUI, 0.0)
			require.Greater(t, c.DeltaUJ, 0.0)
		}
		assert.Greater(t, found, 0, "mode %s found no trades at all", mode)
	}
}

func TestAgainstBase_PicksBestConservativeScore(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	o := oracle.NewCobbDouglasWalras()
	p := defaultParams()
	sel := NewAgainstBase(p, o)

	for trial := 0; trial < 50; trial++ {
		i := randomAgent(rng, 6, 0)
		j := randomAgent(rng, 6, 0)

		best := sel.Best(i, j)

		var manual *Candidate
		for a := 1; a < 6; a++ {
			if c := EvaluatePair(i, j, a, 0, p, o); c != nil && (manual == nil || c.Score() > manual.Score()) {
				manual = c
			}
		}
		if manual == nil {
			assert.Nil(t, best)
			continue
		}
		require.NotNil(t, best)
		assert.Equal(t, manual.GoodA, best.GoodA)
		assert.Equal(t, 0, best.GoodB)
		assert.Equal(t, manual.Score(), best.Score())
	}
}

func TestSelectors_OracleCallCounts(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	i := randomAgent(rng, 10, 3)
	j := randomAgent(rng, 10, 3)
	p := Params{BaseGood: 3, MinQty: 1e-9, OracleIters: 40, CandidateGoodsK: 4}

	co := &countingOracle{inner: oracle.NewCobbDouglasWalras()}
	NewAgainstBase(p, co).Best(i, j)
	assert.Equal(t, 9, co.calls, "one solve per non-numeraire good")

	co = &countingOracle{inner: oracle.NewCobbDouglasWalras()}
	NewPrunedPairs(p, co).Best(i, j)
	assert.Equal(t, 5*4, co.calls, "every ordered pair of K goods plus numeraire")
}

func TestCandidateGoodsPruned_Size(t *testing.T) {
	rng := rand.New(rand.NewPCG(77, 0))

	for trial := 0; trial < 100; trial++ {
		n := 2 + rng.IntN(20)
		base := rng.IntN(n)
		i := randomAgent(rng, n, base)
		j := randomAgent(rng, n, base)

		for _, k := range []int{0, 1, 3, n - 1, n, n + 5} {
			goods := CandidateGoodsPruned(i, j, base, k, 1e-9)

			require.Len(t, goods, min(k, n-1), "n=%d k=%d", n, k)
			seen := make(map[int]bool)
			for _, g := range goods {
				assert.NotEqual(t, base, g)
				assert.False(t, seen[g], "duplicate good %d", g)
				assert.True(t, g >= 0 && g < n)
				seen[g] = true
			}
		}
	}
}

func TestCandidateGoodsPruned_RanksByDisagreement(t *testing.T) {
	// Identical holdings; only preference disagreement differs per good.
	i := newAgent([]float64{1, 1, 1, 1}, []float64{0.5, 0.5, 0.9, 0.6}, 0)
	j := newAgent([]float64{1, 1, 1, 1}, []float64{0.5, 0.5, 0.1, 0.4}, 0)

	goods := CandidateGoodsPruned(i, j, 0, 2, 1e-9)
	assert.Equal(t, []int{2, 3}, goods)
}

func TestFromConfig(t *testing.T) {
	o := oracle.NewCobbDouglasWalras()
	cfg := domain.DefaultSimConfig()

	sel, err := FromConfig(cfg, o)
	require.NoError(t, err)
	assert.Equal(t, domain.PairingAgainstBase, sel.Mode())
	assert.IsType(t, &AgainstBase{}, sel)

	cfg.PairingMode = domain.PairingAllPairsPruned
	sel, err = FromConfig(cfg, o)
	require.NoError(t, err)
	assert.Equal(t, domain.PairingAllPairsPruned, sel.Mode())

	cfg.PairingMode = "nope"
	_, err = FromConfig(cfg, o)
	assert.ErrorIs(t, err, ErrUnknownPairingMode)
}
