package domain

// AgentSnapshot is the persisted state of one agent at the end of a run.
type AgentSnapshot struct {
	RunID       string    `json:"run_id"`
	AgentIndex  int       `json:"agent_index"` // position in the population
	BaseGood    int       `json:"base_good"`
	Holdings    []float64 `json:"holdings"`
	Beta        []float64 `json:"beta"`
	AlphaToBase []float64 `json:"alpha_to_base"`
}

// SnapshotPopulation captures every agent of pop for runID.
func SnapshotPopulation(runID string, baseGood int, pop Population) []*AgentSnapshot {
	out := make([]*AgentSnapshot, len(pop))
	for idx := range pop {
		a := pop[idx].Clone()
		out[idx] = &AgentSnapshot{
			RunID:       runID,
			AgentIndex:  idx,
			BaseGood:    baseGood,
			Holdings:    a.Holdings,
			Beta:        a.Beta,
			AlphaToBase: a.AlphaToBase,
		}
	}
	return out
}
