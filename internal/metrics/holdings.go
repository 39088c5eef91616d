// Package metrics derives summary statistics from a finished simulation.
package metrics

import "dyad-exchange-lab/internal/domain"

// MeanHoldings returns the arithmetic mean holding of every good across agents.
// An empty population yields nil.
func MeanHoldings(agents domain.Population) []float64 {
	if len(agents) == 0 {
		return nil
	}

	mean := make([]float64, len(agents[0].Holdings))
	for _, a := range agents {
		for k, q := range a.Holdings {
			mean[k] += q
		}
	}
	n := float64(len(agents))
	for k := range mean {
		mean[k] /= n
	}
	return mean
}
