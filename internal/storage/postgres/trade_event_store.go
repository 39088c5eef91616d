package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/storage"
)

// TradeEventStore implements storage.TradeEventStore using PostgreSQL.
type TradeEventStore struct {
	pool *Pool
}

// NewTradeEventStore creates a new TradeEventStore.
func NewTradeEventStore(pool *Pool) *TradeEventStore {
	return &TradeEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeEventStore = (*TradeEventStore)(nil)

var tradeEventColumns = []string{
	"run_id", "seq", "round", "agent_i", "agent_j", "good_a", "good_b",
	"q_ab", "delta_a_i", "delta_b_i", "delta_u_i", "delta_u_j",
}

// InsertBulk copies the full event log of a run in one transaction.
// Returns ErrDuplicateKey if the run already has events.
func (s *TradeEventStore) InsertBulk(ctx context.Context, runID string, events []domain.TradeEvent) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(events) == 0 {
		return nil
	}

	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		var existing int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM trade_events WHERE run_id = $1`, runID).Scan(&existing); err != nil {
			return fmt.Errorf("check existing trade events: %w", err)
		}
		if existing > 0 {
			return storage.ErrDuplicateKey
		}

		src := pgx.CopyFromSlice(len(events), func(seq int) ([]any, error) {
			ev := events[seq]
			return []any{
				runID, seq, ev.Round, ev.I, ev.J, ev.GoodA, ev.GoodB,
				ev.Price, ev.DeltaAI, ev.DeltaBI, ev.DeltaUI, ev.DeltaUJ,
			}, nil
		})

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"trade_events"}, tradeEventColumns, src); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("copy trade events: %w", err)
		}
		return nil
	})
}

// GetByRunID retrieves a run's events ordered by seq ASC.
func (s *TradeEventStore) GetByRunID(ctx context.Context, runID string) ([]domain.TradeEvent, error) {
	query := `
		SELECT round, agent_i, agent_j, good_a, good_b,
			q_ab, delta_a_i, delta_b_i, delta_u_i, delta_u_j
		FROM trade_events
		WHERE run_id = $1
		ORDER BY seq ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get trade events by run id: %w", err)
	}
	defer rows.Close()

	events := make([]domain.TradeEvent, 0)
	for rows.Next() {
		var ev domain.TradeEvent
		err := rows.Scan(
			&ev.Round, &ev.I, &ev.J, &ev.GoodA, &ev.GoodB,
			&ev.Price, &ev.DeltaAI, &ev.DeltaBI, &ev.DeltaUI, &ev.DeltaUJ,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade event row: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade event rows: %w", err)
	}
	return events, nil
}
