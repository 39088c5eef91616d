// Package verification replays stored runs and checks that the simulation
// reproduces the persisted event log and final population.
package verification

import (
	"context"
	"fmt"

	"dyad-exchange-lab/internal/domain"
)

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Seq      int         // event position or agent index; -1 for run-level fields
	Field    string      // field name
	Expected interface{} // stored value
	Actual   interface{} // replayed value
}

// String formats the divergence for logs and CLI output.
func (d FieldDivergence) String() string {
	if d.Seq < 0 {
		return fmt.Sprintf("%s: stored=%v replayed=%v", d.Field, d.Expected, d.Actual)
	}
	return fmt.Sprintf("#%d %s: stored=%v replayed=%v", d.Seq, d.Field, d.Expected, d.Actual)
}

// VerificationResult contains the result of verifying a single run.
type VerificationResult struct {
	RunID          string            // verified run ID
	Match          bool              // true if every event and snapshot matches
	StoredEvents   int               // events in the stored log
	ReplayedEvents int               // events produced by the replay
	Divergences    []FieldDivergence // list of divergent fields
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalRuns     int                  // total runs verified
	MatchedRuns   int                  // runs that matched exactly
	DivergentRuns int                  // runs with divergences or errors
	Results       []VerificationResult // individual results
}

// Verifier checks stored runs against a fresh replay.
type Verifier interface {
	// VerifyRun re-simulates one stored run and compares the outputs.
	VerifyRun(ctx context.Context, runID string) (*VerificationResult, error)

	// VerifyRuns verifies several runs, recording failures in the report.
	VerifyRuns(ctx context.Context, runIDs []string) (*VerificationReport, error)
}

// CompareEvents compares two event logs position by position.
// Values must match exactly: a replay of the same seed is bit-identical.
func CompareEvents(stored, replayed []domain.TradeEvent) []FieldDivergence {
	var divergences []FieldDivergence

	if len(stored) != len(replayed) {
		divergences = append(divergences, FieldDivergence{
			Seq:      -1,
			Field:    "EventCount",
			Expected: len(stored),
			Actual:   len(replayed),
		})
	}

	n := min(len(stored), len(replayed))
	for seq := 0; seq < n; seq++ {
		divergences = append(divergences, compareEvent(seq, stored[seq], replayed[seq])...)
	}
	return divergences
}

func compareEvent(seq int, s, r domain.TradeEvent) []FieldDivergence {
	var out []FieldDivergence
	check := func(field string, expected, actual interface{}) {
		if expected != actual {
			out = append(out, FieldDivergence{Seq: seq, Field: field, Expected: expected, Actual: actual})
		}
	}

	check("Round", s.Round, r.Round)
	check("I", s.I, r.I)
	check("J", s.J, r.J)
	check("GoodA", s.GoodA, r.GoodA)
	check("GoodB", s.GoodB, r.GoodB)
	check("Price", s.Price, r.Price)
	check("DeltaAI", s.DeltaAI, r.DeltaAI)
	check("DeltaBI", s.DeltaBI, r.DeltaBI)
	check("DeltaUI", s.DeltaUI, r.DeltaUI)
	check("DeltaUJ", s.DeltaUJ, r.DeltaUJ)
	return out
}

// CompareHoldings compares stored final holdings with a replayed population.
// Seq in each divergence is the agent index.
func CompareHoldings(stored []*domain.AgentSnapshot, replayed domain.Population) []FieldDivergence {
	var divergences []FieldDivergence

	if len(stored) != len(replayed) {
		return append(divergences, FieldDivergence{
			Seq:      -1,
			Field:    "AgentCount",
			Expected: len(stored),
			Actual:   len(replayed),
		})
	}

	for _, snap := range stored {
		if snap.AgentIndex < 0 || snap.AgentIndex >= len(replayed) {
			divergences = append(divergences, FieldDivergence{Seq: snap.AgentIndex, Field: "AgentIndex", Expected: snap.AgentIndex, Actual: nil})
			continue
		}
		got := replayed[snap.AgentIndex].Holdings
		if !equalFloats(snap.Holdings, got) {
			divergences = append(divergences, FieldDivergence{
				Seq:      snap.AgentIndex,
				Field:    "Holdings",
				Expected: snap.Holdings,
				Actual:   got,
			})
		}
	}
	return divergences
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}
