package memory

import (
	"context"
	"sort"
	"sync"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/storage"
)

// AgentSnapshotStore is an in-memory implementation of storage.AgentSnapshotStore.
type AgentSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]map[int]*domain.AgentSnapshot // run_id -> agent_index -> snapshot
}

// NewAgentSnapshotStore creates a new in-memory agent snapshot store.
func NewAgentSnapshotStore() *AgentSnapshotStore {
	return &AgentSnapshotStore{
		data: make(map[string]map[int]*domain.AgentSnapshot),
	}
}

// Compile-time interface check.
var _ storage.AgentSnapshotStore = (*AgentSnapshotStore)(nil)

type snapshotKey struct {
	runID string
	index int
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *AgentSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.AgentSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before mutating anything
	seen := make(map[snapshotKey]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.RunID == "" || snap.AgentIndex < 0 {
			return storage.ErrInvalidInput
		}
		key := snapshotKey{snap.RunID, snap.AgentIndex}
		if _, dup := seen[key]; dup {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[snap.RunID][snap.AgentIndex]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	for _, snap := range snapshots {
		run, ok := s.data[snap.RunID]
		if !ok {
			run = make(map[int]*domain.AgentSnapshot)
			s.data[snap.RunID] = run
		}
		run[snap.AgentIndex] = copySnapshot(snap)
	}
	return nil
}

// GetByRunID retrieves a run's snapshots ordered by agent_index ASC.
func (s *AgentSnapshotStore) GetByRunID(_ context.Context, runID string) ([]*domain.AgentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AgentSnapshot, 0, len(s.data[runID]))
	for _, snap := range s.data[runID] {
		result = append(result, copySnapshot(snap))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AgentIndex < result[j].AgentIndex
	})
	return result, nil
}

func copySnapshot(snap *domain.AgentSnapshot) *domain.AgentSnapshot {
	c := *snap
	c.Holdings = append([]float64(nil), snap.Holdings...)
	c.Beta = append([]float64(nil), snap.Beta...)
	c.AlphaToBase = append([]float64(nil), snap.AlphaToBase...)
	return &c
}
