// Package memory provides in-memory store implementations for tests and
// storage-less runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunRecord // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.RunRecord),
	}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.RunRecord) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.RunID] = copyRun(r)
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRun(r), nil
}

// GetByConfigHash retrieves all runs of one configuration, ordered by created_at ASC.
func (s *RunStore) GetByConfigHash(_ context.Context, configHash string) ([]*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RunRecord
	for _, r := range s.data {
		if r.ConfigHash == configHash {
			result = append(result, copyRun(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].RunID < result[j].RunID
	})
	return result, nil
}

// copyRun deep-copies the slices inside the embedded config.
func copyRun(r *domain.RunRecord) *domain.RunRecord {
	c := *r
	c.Config.Goods = append([]string(nil), r.Config.Goods...)
	if r.Config.ReactionRules != nil {
		c.Config.ReactionRules = append([]domain.ReactionRule(nil), r.Config.ReactionRules...)
	}
	return &c
}
