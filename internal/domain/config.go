package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a SimConfig violates a structural invariant.
// It is fatal: no simulation may start from an invalid configuration.
var ErrInvalidConfig = errors.New("invalid simulation config")

// PairingMode selects which good pairs are evaluated in an encounter.
type PairingMode string

// Pairing modes.
const (
	// PairingAgainstBase evaluates every good against the numeraire only.
	PairingAgainstBase PairingMode = "against_base"
	// PairingAllPairsPruned evaluates all ordered pairs within a pruned
	// candidate set of CandidateGoodsK goods plus the numeraire.
	PairingAllPairsPruned PairingMode = "all_pairs_pruned"
)

// Valid reports whether m is a known pairing mode.
func (m PairingMode) Valid() bool {
	return m == PairingAgainstBase || m == PairingAllPairsPruned
}

// DefaultCandidateGoodsK is the pruned candidate set size when unset.
const DefaultCandidateGoodsK = 12

// SimConfig holds every parameter of a simulation run.
type SimConfig struct {
	Seed                  uint64 `json:"seed" yaml:"seed"`
	NumAgents             int    `json:"num_agents" yaml:"num_agents"`
	Rounds                int    `json:"rounds" yaml:"rounds"`
	P2PEncountersPerRound int    `json:"p2p_encounters_per_round" yaml:"p2p_encounters_per_round"`
	BaseGood              int    `json:"base_good" yaml:"base_good"`

	InitialEndowmentScale float64 `json:"initial_endowment_scale" yaml:"initial_endowment_scale"`
	AlphaLow              float64 `json:"alpha_low" yaml:"alpha_low"`
	AlphaHigh             float64 `json:"alpha_high" yaml:"alpha_high"`

	TradeStepCapFrac  float64 `json:"trade_step_cap_frac" yaml:"trade_step_cap_frac"` // clamped to [0,1]; 1 = uncapped
	MinQty            float64 `json:"min_qty" yaml:"min_qty"`
	OracleBisectIters int     `json:"oracle_bisect_iters" yaml:"oracle_bisect_iters"`

	PairingMode     PairingMode `json:"pairing_mode" yaml:"pairing_mode"`
	CandidateGoodsK int         `json:"candidate_goods_k" yaml:"candidate_goods_k"` // all_pairs_pruned only

	Goods         []string       `json:"base_goods" yaml:"base_goods"`                   // display names, index = good id
	GoodsQuantity int            `json:"base_goods_quantity" yaml:"base_goods_quantity"` // declared len(Goods)
	ReactionRules []ReactionRule `json:"reaction_rules,omitempty" yaml:"reaction_rules,omitempty"`
}

// DefaultSimConfig returns a config with every numeric option set.
// Goods are left empty: the roster always comes from the caller.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Seed:                  42,
		NumAgents:             100,
		Rounds:                50,
		P2PEncountersPerRound: 200,
		BaseGood:              0,
		InitialEndowmentScale: 1.0,
		AlphaLow:              0.2,
		AlphaHigh:             0.8,
		TradeStepCapFrac:      1.0,
		MinQty:                1e-9,
		OracleBisectIters:     80,
		PairingMode:           PairingAgainstBase,
		CandidateGoodsK:       DefaultCandidateGoodsK,
	}
}

// Validate checks the structural invariants of the configuration.
// All errors wrap ErrInvalidConfig.
func (c *SimConfig) Validate() error {
	n := len(c.Goods)
	if n < 2 {
		return fmt.Errorf("%w: goods list must contain at least 2 entries, got %d", ErrInvalidConfig, n)
	}
	if c.GoodsQuantity != n {
		return fmt.Errorf("%w: base_goods_quantity %d does not match %d goods", ErrInvalidConfig, c.GoodsQuantity, n)
	}
	if c.BaseGood < 0 || c.BaseGood >= n {
		return fmt.Errorf("%w: base_good %d out of range [0,%d)", ErrInvalidConfig, c.BaseGood, n)
	}
	if c.NumAgents < 1 {
		return fmt.Errorf("%w: num_agents must be >= 1, got %d", ErrInvalidConfig, c.NumAgents)
	}
	if c.Rounds < 0 || c.P2PEncountersPerRound < 0 || c.OracleBisectIters < 0 || c.CandidateGoodsK < 0 {
		return fmt.Errorf("%w: counts must be non-negative", ErrInvalidConfig)
	}
	if !(c.InitialEndowmentScale > 0) {
		return fmt.Errorf("%w: initial_endowment_scale must be positive, got %g", ErrInvalidConfig, c.InitialEndowmentScale)
	}
	if !(c.AlphaLow > 0 && c.AlphaLow < c.AlphaHigh && c.AlphaHigh < 1) {
		return fmt.Errorf("%w: need 0 < alpha_low < alpha_high < 1, got [%g, %g]", ErrInvalidConfig, c.AlphaLow, c.AlphaHigh)
	}
	if !(c.MinQty > 0) {
		return fmt.Errorf("%w: min_qty must be positive, got %g", ErrInvalidConfig, c.MinQty)
	}
	if !c.PairingMode.Valid() {
		return fmt.Errorf("%w: unknown pairing_mode %q", ErrInvalidConfig, c.PairingMode)
	}
	return nil
}

// StepCap returns TradeStepCapFrac clamped into [0,1].
func (c *SimConfig) StepCap() float64 {
	switch {
	case c.TradeStepCapFrac < 0:
		return 0
	case c.TradeStepCapFrac > 1:
		return 1
	default:
		return c.TradeStepCapFrac
	}
}

// GoodName returns the display name of good k, or its index when unnamed.
func (c *SimConfig) GoodName(k int) string {
	if k >= 0 && k < len(c.Goods) {
		return c.Goods[k]
	}
	return fmt.Sprintf("good_%d", k)
}
