package domain

// TradeEvent is an immutable record of one executed dyadic trade.
// Quantity deltas are for agent I; agent J received the negatives.
type TradeEvent struct {
	Round int `json:"round"` // zero-based round index
	I     int `json:"i"`     // first agent index
	J     int `json:"j"`     // second agent index

	GoodA int     `json:"good_a"` // traded good A
	GoodB int     `json:"good_b"` // traded good B (price unit)
	Price float64 `json:"q_ab"`   // equilibrium price ratio pA/pB

	DeltaAI float64 `json:"delta_a_i"` // change in agent I's holding of A (post step cap)
	DeltaBI float64 `json:"delta_b_i"` // change in agent I's holding of B (post step cap)

	DeltaUI float64 `json:"delta_u_i"` // realized utility change of agent I
	DeltaUJ float64 `json:"delta_u_j"` // realized utility change of agent J
}

// RunRecord describes one persisted simulation run.
type RunRecord struct {
	RunID      string    `json:"run_id"`      // unique per execution
	ConfigHash string    `json:"config_hash"` // deterministic hash of Config
	Config     SimConfig `json:"config"`      // configuration actually used
	AgentCount int       `json:"agent_count"`
	EventCount int       `json:"event_count"`
	CreatedAt  int64     `json:"created_at"` // unix ms
}
