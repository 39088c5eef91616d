package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunRecord) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	cfg, err := json.Marshal(r.Config)
	if err != nil {
		return fmt.Errorf("marshal run config: %w", err)
	}

	query := `
		INSERT INTO runs (run_id, config_hash, config, agent_count, event_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query, r.RunID, r.ConfigHash, cfg, r.AgentCount, r.EventCount, r.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunRecord, error) {
	query := `
		SELECT run_id, config_hash, config, agent_count, event_count, created_at
		FROM runs
		WHERE run_id = $1
	`

	r, err := scanRun(s.pool.QueryRow(ctx, query, runID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return r, nil
}

// GetByConfigHash retrieves all runs of one configuration, ordered by created_at ASC.
func (s *RunStore) GetByConfigHash(ctx context.Context, configHash string) ([]*domain.RunRecord, error) {
	query := `
		SELECT run_id, config_hash, config, agent_count, event_count, created_at
		FROM runs
		WHERE config_hash = $1
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, configHash)
	if err != nil {
		return nil, fmt.Errorf("get runs by config hash: %w", err)
	}
	defer rows.Close()

	var runs []*domain.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// scanRun scans a single row into a RunRecord.
func scanRun(row pgx.Row) (*domain.RunRecord, error) {
	var (
		r   domain.RunRecord
		cfg []byte
	)

	if err := row.Scan(&r.RunID, &r.ConfigHash, &cfg, &r.AgentCount, &r.EventCount, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cfg, &r.Config); err != nil {
		return nil, fmt.Errorf("decode run config: %w", err)
	}
	return &r, nil
}
