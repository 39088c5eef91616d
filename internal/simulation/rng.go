package simulation

import "math/rand/v2"

// pairingSeedMask separates the pairing stream from the initialization stream.
const pairingSeedMask uint64 = 0xA5A5_A5A5_A5A5_A5A5

// NewInitRNG returns the generator used for agent initialization draws.
func NewInitRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// NewPairingRNG returns the generator used for in-loop pairing draws.
// It is independent of the initialization stream, so changing round or
// encounter counts never perturbs the initial population.
func NewPairingRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed^pairingSeedMask, 0))
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
