// Package oracle computes Pareto-efficient reallocations of two goods between
// two agents. Search and apply logic depend only on the ParetoOracle
// interface, so alternative equilibrium solvers can be plugged in.
package oracle

// DyadExchange is the result of one oracle call for goods (A, B) between
// agents i and j.
type DyadExchange struct {
	// Price is the equilibrium price of A in units of B (pA/pB).
	Price float64

	APostI float64
	BPostI float64
	APostJ float64
	BPostJ float64
}

// Dyad holds the inputs of a two-agent, two-good exchange.
// Alpha is each agent's exponent on good A; B carries 1-Alpha.
type Dyad struct {
	AlphaI, AI, BI float64
	AlphaJ, AJ, BJ float64
}

// ParetoOracle solves a two-good exchange between two agents.
// Implementations must always return a result and must conserve the
// totals of A and B across the pair.
type ParetoOracle interface {
	SolveTwoGoodExchange(d Dyad, minQty float64, iters int) DyadExchange
}
