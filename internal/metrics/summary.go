package metrics

import (
	"sort"

	"dyad-exchange-lab/internal/domain"
)

// PairCount is the number of trades executed on one (GoodA, GoodB) pair.
type PairCount struct {
	GoodA int `json:"good_a"`
	GoodB int `json:"good_b"`
	Count int `json:"count"`
}

// Summary aggregates a run's event log and final population.
type Summary struct {
	Agents         int   `json:"agents"`
	Rounds         int   `json:"rounds"`
	Encounters     int   `json:"encounters"`
	TotalTrades    int   `json:"total_trades"`
	TradesPerRound []int `json:"trades_per_round"`

	PairCounts []PairCount `json:"pair_counts"` // sorted by count DESC, then pair ASC

	PriceMean   float64 `json:"price_mean"`
	PriceMedian float64 `json:"price_median"`
	PriceP10    float64 `json:"price_p10"`
	PriceP90    float64 `json:"price_p90"`

	UtilityGainI float64 `json:"utility_gain_i"` // sum of realized DeltaUI
	UtilityGainJ float64 `json:"utility_gain_j"` // sum of realized DeltaUJ

	MeanHoldings []float64 `json:"mean_holdings"`
}

// Summarize computes a Summary for a run of cfg that produced events and
// ended with agents.
func Summarize(cfg domain.SimConfig, agents domain.Population, events []domain.TradeEvent) *Summary {
	s := &Summary{
		Agents:         len(agents),
		Rounds:         cfg.Rounds,
		TotalTrades:    len(events),
		TradesPerRound: make([]int, max(cfg.Rounds, 0)),
		PairCounts:     make([]PairCount, 0),
		MeanHoldings:   MeanHoldings(agents),
	}
	if len(agents) >= 2 {
		s.Encounters = cfg.Rounds * cfg.P2PEncountersPerRound
	}

	type pairKey struct{ a, b int }
	pairs := make(map[pairKey]int)
	prices := make([]float64, 0, len(events))

	for _, ev := range events {
		if ev.Round >= 0 && ev.Round < len(s.TradesPerRound) {
			s.TradesPerRound[ev.Round]++
		}
		pairs[pairKey{ev.GoodA, ev.GoodB}]++
		prices = append(prices, ev.Price)
		s.UtilityGainI += ev.DeltaUI
		s.UtilityGainJ += ev.DeltaUJ
	}

	for k, c := range pairs {
		s.PairCounts = append(s.PairCounts, PairCount{GoodA: k.a, GoodB: k.b, Count: c})
	}
	sort.Slice(s.PairCounts, func(i, j int) bool {
		pi, pj := s.PairCounts[i], s.PairCounts[j]
		if pi.Count != pj.Count {
			return pi.Count > pj.Count
		}
		if pi.GoodA != pj.GoodA {
			return pi.GoodA < pj.GoodA
		}
		return pi.GoodB < pj.GoodB
	})

	if len(prices) > 0 {
		s.PriceMean = computeMean(prices)
		sort.Float64s(prices)
		s.PriceMedian = computePercentile(prices, 0.50)
		s.PriceP10 = computePercentile(prices, 0.10)
		s.PriceP90 = computePercentile(prices, 0.90)
	}

	return s
}
