package storage

import (
	"context"

	"dyad-exchange-lab/internal/domain"
)

// RunStore provides access to runs storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunRecord) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunRecord, error)

	// GetByConfigHash retrieves all runs of one configuration, ordered by created_at ASC.
	GetByConfigHash(ctx context.Context, configHash string) ([]*domain.RunRecord, error)
}

// TradeEventStore provides access to trade_events storage.
// Events are keyed by (run_id, seq) where seq is the position in the run's log.
type TradeEventStore interface {
	// InsertBulk adds the full event log of a run atomically. An empty log is a no-op.
	// Returns ErrDuplicateKey if the run already has events.
	InsertBulk(ctx context.Context, runID string, events []domain.TradeEvent) error

	// GetByRunID retrieves a run's events ordered by seq ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.TradeEvent, error)
}

// AgentSnapshotStore provides access to agent_snapshots storage.
type AgentSnapshotStore interface {
	// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, snapshots []*domain.AgentSnapshot) error

	// GetByRunID retrieves a run's snapshots ordered by agent_index ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.AgentSnapshot, error)
}
