package simulation

import (
	"math/rand/v2"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/preferences"
)

// Initial holdings are drawn from [EndowmentLow, EndowmentHigh) before scaling.
const (
	EndowmentLow  = 0.5
	EndowmentHigh = 2.0
)

// State is the mutable state of a simulation run.
type State struct {
	Agents domain.Population
	Events []domain.TradeEvent
}

// InitAgents validates cfg and draws the initial population from rng.
// For each agent, holdings are drawn first, then pairwise-to-base parameters
// for every non-numeraire good.
func InitAgents(cfg domain.SimConfig, rng *rand.Rand) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := len(cfg.Goods)
	agents := make(domain.Population, cfg.NumAgents)
	for idx := range agents {
		holdings := make([]float64, n)
		for k := range holdings {
			holdings[k] = uniform(rng, EndowmentLow, EndowmentHigh) * cfg.InitialEndowmentScale
		}

		alpha := make([]float64, n)
		for k := range alpha {
			if k == cfg.BaseGood {
				alpha[k] = preferences.BaseAlpha
				continue
			}
			alpha[k] = uniform(rng, cfg.AlphaLow, cfg.AlphaHigh)
		}

		agents[idx] = domain.Agent{
			Holdings:      holdings,
			Beta:          preferences.Aggregate(alpha, cfg.BaseGood, preferences.MinAlpha),
			AlphaToBase:   alpha,
			ReactionRules: cfg.ReactionRules,
		}
	}

	return &State{Agents: agents, Events: make([]domain.TradeEvent, 0)}, nil
}
