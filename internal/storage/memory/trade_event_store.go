package memory

import (
	"context"
	"sync"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/storage"
)

// TradeEventStore is an in-memory implementation of storage.TradeEventStore.
type TradeEventStore struct {
	mu   sync.RWMutex
	data map[string][]domain.TradeEvent // keyed by run_id, in seq order
}

// NewTradeEventStore creates a new in-memory trade event store.
func NewTradeEventStore() *TradeEventStore {
	return &TradeEventStore{
		data: make(map[string][]domain.TradeEvent),
	}
}

// Compile-time interface check.
var _ storage.TradeEventStore = (*TradeEventStore)(nil)

// InsertBulk adds the full event log of a run.
func (s *TradeEventStore) InsertBulk(_ context.Context, runID string, events []domain.TradeEvent) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[runID] = append(make([]domain.TradeEvent, 0, len(events)), events...)
	return nil
}

// GetByRunID retrieves a run's events ordered by seq ASC.
func (s *TradeEventStore) GetByRunID(_ context.Context, runID string) ([]domain.TradeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.data[runID]
	return append(make([]domain.TradeEvent, 0, len(events)), events...), nil
}
