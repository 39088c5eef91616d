package verification

import (
	"context"
	"errors"
	"fmt"

	"dyad-exchange-lab/internal/idhash"
	"dyad-exchange-lab/internal/simulation"
	"dyad-exchange-lab/internal/storage"
)

var (
	// ErrRunNotFound is returned when run ID doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrConfigHashMismatch is returned when a stored config no longer hashes
	// to the value recorded with it.
	ErrConfigHashMismatch = errors.New("stored config does not match its hash")
)

// ReplayVerifier implements Verifier by re-running the simulation from the
// stored configuration.
type ReplayVerifier struct {
	runStore      storage.RunStore
	eventStore    storage.TradeEventStore
	snapshotStore storage.AgentSnapshotStore // optional
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	RunStore      storage.RunStore
	EventStore    storage.TradeEventStore
	SnapshotStore storage.AgentSnapshotStore // nil skips holdings comparison
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	return &ReplayVerifier{
		runStore:      opts.RunStore,
		eventStore:    opts.EventStore,
		snapshotStore: opts.SnapshotStore,
	}
}

// Compile-time interface check.
var _ Verifier = (*ReplayVerifier)(nil)

// VerifyRun re-simulates one stored run and compares the outputs.
func (v *ReplayVerifier) VerifyRun(ctx context.Context, runID string) (*VerificationResult, error) {
	run, err := v.runStore.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	hash, err := idhash.ComputeConfigHash(run.Config)
	if err != nil {
		return nil, err
	}
	if run.ConfigHash != "" && hash != run.ConfigHash {
		return nil, fmt.Errorf("%w: run %s", ErrConfigHashMismatch, runID)
	}

	stored, err := v.eventStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	state, err := simulation.Simulate(run.Config, simulation.RunnerOptions{})
	if err != nil {
		return nil, fmt.Errorf("replay run %s: %w", runID, err)
	}

	divergences := CompareEvents(stored, state.Events)

	if run.EventCount != len(stored) {
		divergences = append(divergences, FieldDivergence{
			Seq:      -1,
			Field:    "RecordedEventCount",
			Expected: run.EventCount,
			Actual:   len(stored),
		})
	}

	if v.snapshotStore != nil {
		snaps, err := v.snapshotStore.GetByRunID(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("load snapshots: %w", err)
		}
		if len(snaps) > 0 {
			divergences = append(divergences, CompareHoldings(snaps, state.Agents)...)
		}
	}

	return &VerificationResult{
		RunID:          runID,
		Match:          len(divergences) == 0,
		StoredEvents:   len(stored),
		ReplayedEvents: len(state.Events),
		Divergences:    divergences,
	}, nil
}

// VerifyRuns verifies every run in runIDs.
func (v *ReplayVerifier) VerifyRuns(ctx context.Context, runIDs []string) (*VerificationReport, error) {
	report := &VerificationReport{
		TotalRuns: len(runIDs),
		Results:   make([]VerificationResult, 0, len(runIDs)),
	}

	for _, runID := range runIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := v.VerifyRun(ctx, runID)
		if err != nil {
			// Record error as divergence
			report.Results = append(report.Results, VerificationResult{
				RunID: runID,
				Match: false,
				Divergences: []FieldDivergence{
					{Seq: -1, Field: "Error", Expected: nil, Actual: err.Error()},
				},
			})
			report.DivergentRuns++
			continue
		}

		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedRuns++
		} else {
			report.DivergentRuns++
		}
	}

	return report, nil
}
