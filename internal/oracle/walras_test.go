package oracle

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCobbDouglasWalras_ClearsMarket(t *testing.T) {
	o := NewCobbDouglasWalras()
	d := Dyad{AlphaI: 0.7, AI: 2.0, BI: 1.0, AlphaJ: 0.2, AJ: 1.5, BJ: 3.0}

	ex := o.SolveTwoGoodExchange(d, 1e-9, 80)

	assert.Greater(t, ex.Price, 0.0)
	assert.InDelta(t, 3.5, ex.APostI+ex.APostJ, 1e-6)
	assert.InDelta(t, 4.0, ex.BPostI+ex.BPostJ, 1e-6)

	// Closed form for two Cobb–Douglas agents.
	expected := (0.7*1.0 + 0.2*3.0) / (0.3*2.0 + 0.8*1.5)
	assert.InDelta(t, expected, ex.Price, 1e-9)
}

func TestCobbDouglasWalras_ConservationAnyIters(t *testing.T) {
	o := NewCobbDouglasWalras()
	rng := rand.New(rand.NewPCG(99, 1))

	for trial := 0; trial < 500; trial++ {
		d := Dyad{
			AlphaI: rng.Float64(),
			AI:     0.01 + rng.Float64()*50,
			BI:     0.01 + rng.Float64()*50,
			AlphaJ: rng.Float64(),
			AJ:     0.01 + rng.Float64()*50,
			BJ:     0.01 + rng.Float64()*50,
		}
		iters := 1 + rng.IntN(100)

		ex := o.SolveTwoGoodExchange(d, 1e-9, iters)

		require.InDelta(t, d.AI+d.AJ, ex.APostI+ex.APostJ, 1e-6, "trial %d A", trial)
		require.InDelta(t, d.BI+d.BJ, ex.BPostI+ex.BPostJ, 1e-6, "trial %d B", trial)
		require.Greater(t, ex.Price, 0.0)
		for _, q := range []float64{ex.APostI, ex.BPostI, ex.APostJ, ex.BPostJ} {
			require.GreaterOrEqual(t, q, 1e-9)
		}
	}
}

func TestCobbDouglasWalras_RemainderRespectsFloor(t *testing.T) {
	o := NewCobbDouglasWalras()
	// i all but exhausts B after one step, so j's remainder rounds near min_qty
	d := Dyad{AlphaI: 0.99, AI: 49.7, BI: 40, AlphaJ: 0.01, AJ: 0.3, BJ: 0.2}

	ex := o.SolveTwoGoodExchange(d, 1e-9, 1)

	for _, q := range []float64{ex.APostI, ex.BPostI, ex.APostJ, ex.BPostJ} {
		if q < 1e-9 {
			t.Errorf("post quantity %g below min_qty", q)
		}
	}
	assert.InDelta(t, 50.0, ex.APostI+ex.APostJ, 1e-6)
	assert.InDelta(t, 40.2, ex.BPostI+ex.BPostJ, 1e-6)
}

func TestCobbDouglasWalras_ParetoEfficientAtConvergence(t *testing.T) {
	o := NewCobbDouglasWalras()
	d := Dyad{AlphaI: 0.35, AI: 4.0, BI: 0.5, AlphaJ: 0.8, AJ: 0.7, BJ: 6.0}

	ex := o.SolveTwoGoodExchange(d, 1e-12, 120)

	// Both agents' MRS equal the equilibrium price.
	mrsI := d.AlphaI / (1 - d.AlphaI) * ex.BPostI / ex.APostI
	mrsJ := d.AlphaJ / (1 - d.AlphaJ) * ex.BPostJ / ex.APostJ
	assert.InDelta(t, ex.Price, mrsI, 1e-9)
	assert.InDelta(t, ex.Price, mrsJ, 1e-9)
	assert.InDelta(t, 0.0, ExcessDemandA(d, ex.Price), 1e-9)
}

func TestCobbDouglasWalras_ZeroItersUsesBracketMidpoint(t *testing.T) {
	o := NewCobbDouglasWalras()
	d := Dyad{AlphaI: 0.5, AI: 1, BI: 1, AlphaJ: 0.5, AJ: 1, BJ: 1}

	ex := o.SolveTwoGoodExchange(d, 1e-9, 0)

	assert.InDelta(t, 1.0, ex.Price, 1e-12)
	assert.InDelta(t, 2.0, ex.APostI+ex.APostJ, 1e-12)
}

func TestCobbDouglasWalras_DegenerateInputs(t *testing.T) {
	o := NewCobbDouglasWalras()
	d := Dyad{AlphaI: 1.5, AI: 0, BI: -3, AlphaJ: -0.2, AJ: 0, BJ: 0}

	ex := o.SolveTwoGoodExchange(d, 1e-6, 60)

	for _, v := range []float64{ex.Price, ex.APostI, ex.BPostI, ex.APostJ, ex.BPostJ} {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
	assert.InDelta(t, 2e-6, ex.APostI+ex.APostJ, 1e-12)
	assert.InDelta(t, 2e-6, ex.BPostI+ex.BPostJ, 1e-12)
}

func TestExcessDemandA_DecreasingInPrice(t *testing.T) {
	d := Dyad{AlphaI: 0.6, AI: 1.2, BI: 2.0, AlphaJ: 0.3, AJ: 2.5, BJ: 0.4}

	prev := math.Inf(1)
	for p := PriceLow; p <= PriceHigh; p *= 10 {
		z := ExcessDemandA(d, p)
		assert.Less(t, z, prev, "p=%g", p)
		prev = z
	}
}
