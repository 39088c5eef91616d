package clickhouse

import (
	"context"
	"fmt"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/idhash"
	"dyad-exchange-lab/internal/storage"
)

// TradeEventStore implements storage.TradeEventStore using ClickHouse.
type TradeEventStore struct {
	conn *Conn
}

// NewTradeEventStore creates a new TradeEventStore.
func NewTradeEventStore(conn *Conn) *TradeEventStore {
	return &TradeEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeEventStore = (*TradeEventStore)(nil)

// InsertBulk batch-inserts the full event log of a run.
// Returns ErrDuplicateKey if the run already has events.
func (s *TradeEventStore) InsertBulk(ctx context.Context, runID string, events []domain.TradeEvent) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(events) == 0 {
		return nil
	}

	// ReplacingMergeTree would silently replace; keep append-only semantics
	exists, err := s.exists(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_events (
			run_id, seq, event_id, round, agent_i, agent_j, good_a, good_b,
			q_ab, delta_a_i, delta_b_i, delta_u_i, delta_u_j
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for seq, ev := range events {
		err = batch.Append(
			runID, uint32(seq), idhash.ComputeEventID(runID, seq, ev.Round, ev.I, ev.J),
			uint32(ev.Round), uint32(ev.I), uint32(ev.J), uint32(ev.GoodA), uint32(ev.GoodB),
			ev.Price, ev.DeltaAI, ev.DeltaBI, ev.DeltaUI, ev.DeltaUJ,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRunID retrieves a run's events ordered by seq ASC.
func (s *TradeEventStore) GetByRunID(ctx context.Context, runID string) ([]domain.TradeEvent, error) {
	query := `
		SELECT round, agent_i, agent_j, good_a, good_b,
			q_ab, delta_a_i, delta_b_i, delta_u_i, delta_u_j
		FROM trade_events FINAL
		WHERE run_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query trade events: %w", err)
	}
	defer rows.Close()

	return scanTradeEvents(rows)
}

// exists checks whether runID already has events.
func (s *TradeEventStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM trade_events FINAL WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanTradeEvents scans multiple rows into a slice.
func scanTradeEvents(rows chRows) ([]domain.TradeEvent, error) {
	events := make([]domain.TradeEvent, 0)

	for rows.Next() {
		var (
			round, i, j, goodA, goodB uint32
			ev                        domain.TradeEvent
		)
		err := rows.Scan(
			&round, &i, &j, &goodA, &goodB,
			&ev.Price, &ev.DeltaAI, &ev.DeltaBI, &ev.DeltaUI, &ev.DeltaUJ,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade event: %w", err)
		}
		ev.Round, ev.I, ev.J = int(round), int(i), int(j)
		ev.GoodA, ev.GoodB = int(goodA), int(goodB)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade events: %w", err)
	}
	return events, nil
}
