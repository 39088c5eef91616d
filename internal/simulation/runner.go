// Package simulation drives repeated randomized bilateral encounters over an
// agent population. Execution is single-threaded and fully determined by the
// seed: one generator initializes agents, a second one draws pairings.
package simulation

import (
	"math/rand/v2"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/oracle"
	"dyad-exchange-lab/internal/preferences"
	"dyad-exchange-lab/internal/trade"
)

// Observer receives encounter outcomes. It must not mutate simulation state.
type Observer interface {
	OnEncounter(round int)
	OnTrade(ev domain.TradeEvent)
	OnNoCandidate(round int)
}

// Runner executes rounds of encounters for one configuration.
type Runner struct {
	cfg      domain.SimConfig
	selector trade.Selector
	observer Observer
}

// RunnerOptions contains optional collaborators for a Runner.
type RunnerOptions struct {
	Oracle   oracle.ParetoOracle // defaults to CobbDouglasWalras
	Observer Observer            // optional
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg domain.SimConfig, opts RunnerOptions) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := opts.Oracle
	if o == nil {
		o = oracle.NewCobbDouglasWalras()
	}

	sel, err := trade.FromConfig(cfg, o)
	if err != nil {
		return nil, err
	}

	return &Runner{cfg: cfg, selector: sel, observer: opts.Observer}, nil
}

// Run executes every round in order, appending executed trades to state.Events.
func (r *Runner) Run(state *State, rng *rand.Rand) {
	for round := 0; round < r.cfg.Rounds; round++ {
		r.RunRound(state, rng, round)
	}
}

// RunRound executes the configured number of encounters for one round.
// Populations with fewer than two agents cannot pair and are left untouched.
func (r *Runner) RunRound(state *State, rng *rand.Rand, round int) {
	n := len(state.Agents)
	if n < 2 {
		return
	}

	for e := 0; e < r.cfg.P2PEncountersPerRound; e++ {
		i := rng.IntN(n)
		j := rng.IntN(n)
		for j == i {
			j = rng.IntN(n)
		}
		r.encounter(state, round, i, j)
	}
}

func (r *Runner) encounter(state *State, round, i, j int) {
	if r.observer != nil {
		r.observer.OnEncounter(round)
	}

	ai, aj := state.Agents.Pair(i, j)
	minQty := r.cfg.MinQty

	ui0 := preferences.Utility(ai.Beta, ai.Holdings, minQty)
	uj0 := preferences.Utility(aj.Beta, aj.Holdings, minQty)

	cand := r.selector.Best(ai, aj)
	if cand == nil {
		if r.observer != nil {
			r.observer.OnNoCandidate(round)
		}
		return
	}

	capped := cand.Capped(r.cfg.StepCap())
	trade.Apply(ai, aj, &capped, minQty)

	ev := domain.TradeEvent{
		Round:   round,
		I:       i,
		J:       j,
		GoodA:   capped.GoodA,
		GoodB:   capped.GoodB,
		Price:   capped.Price,
		DeltaAI: capped.DeltaAI,
		DeltaBI: capped.DeltaBI,
		DeltaUI: preferences.Utility(ai.Beta, ai.Holdings, minQty) - ui0,
		DeltaUJ: preferences.Utility(aj.Beta, aj.Holdings, minQty) - uj0,
	}
	state.Events = append(state.Events, ev)

	if r.observer != nil {
		r.observer.OnTrade(ev)
	}
}

// Simulate initializes a population from cfg and runs it to completion.
func Simulate(cfg domain.SimConfig, opts RunnerOptions) (*State, error) {
	state, err := InitAgents(cfg, NewInitRNG(cfg.Seed))
	if err != nil {
		return nil, err
	}

	runner, err := NewRunner(cfg, opts)
	if err != nil {
		return nil, err
	}

	runner.Run(state, NewPairingRNG(cfg.Seed))
	return state, nil
}
