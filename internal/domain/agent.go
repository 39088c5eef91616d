package domain

import "fmt"

// Agent is one trader in the exchange economy.
type Agent struct {
	// Holdings is the per-good quantity vector, every entry >= min_qty.
	Holdings []float64 `json:"holdings"`

	// Beta is the aggregated Cobb–Douglas exponent vector (non-negative, sums to 1).
	Beta []float64 `json:"beta"`

	// AlphaToBase[k] is the pairwise parameter of good k against the numeraire,
	// strictly inside (0,1). The numeraire's own entry is 0.5.
	AlphaToBase []float64 `json:"alpha_to_base"`

	// ReactionRules are carried for completeness and never applied.
	ReactionRules []ReactionRule `json:"reaction_rules,omitempty"`
}

// Clone returns a deep copy of the agent.
func (a *Agent) Clone() Agent {
	c := Agent{
		Holdings:    append([]float64(nil), a.Holdings...),
		Beta:        append([]float64(nil), a.Beta...),
		AlphaToBase: append([]float64(nil), a.AlphaToBase...),
	}
	if len(a.ReactionRules) > 0 {
		c.ReactionRules = append([]ReactionRule(nil), a.ReactionRules...)
	}
	return c
}

// Population owns every agent of a simulation run.
type Population []Agent

// Pair returns two simultaneously mutable, non-aliased handles into the
// population. The handles are only meant to live for one encounter.
// Panics if i == j or either index is out of range.
func (p Population) Pair(i, j int) (*Agent, *Agent) {
	if i == j {
		panic(fmt.Sprintf("domain: Pair called with identical indices %d", i))
	}
	if i < 0 || j < 0 || i >= len(p) || j >= len(p) {
		panic(fmt.Sprintf("domain: Pair indices (%d, %d) out of range for %d agents", i, j, len(p)))
	}
	return &p[i], &p[j]
}

// Clone returns a deep copy of the population.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for k := range p {
		out[k] = p[k].Clone()
	}
	return out
}
