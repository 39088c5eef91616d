package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dyad-exchange-lab/internal/codec"
	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/storage"
)

// AgentSnapshotStore implements storage.AgentSnapshotStore using PostgreSQL.
// Preferences are stored as the codec profile payload.
type AgentSnapshotStore struct {
	pool *Pool
}

// NewAgentSnapshotStore creates a new AgentSnapshotStore.
func NewAgentSnapshotStore(pool *Pool) *AgentSnapshotStore {
	return &AgentSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AgentSnapshotStore = (*AgentSnapshotStore)(nil)

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *AgentSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.AgentSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	query := `
		INSERT INTO agent_snapshots (run_id, agent_index, holdings, preference_profile)
		VALUES ($1, $2, $3, $4)
	`

	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		for _, snap := range snapshots {
			if snap == nil || snap.RunID == "" {
				return storage.ErrInvalidInput
			}

			profile, err := codec.Encode(codec.PreferenceProfile{
				BaseGood:    snap.BaseGood,
				Beta:        snap.Beta,
				AlphaToBase: snap.AlphaToBase,
			})
			if err != nil {
				return fmt.Errorf("encode preference profile: %w", err)
			}

			if _, err := tx.Exec(ctx, query, snap.RunID, snap.AgentIndex, snap.Holdings, profile); err != nil {
				if isDuplicateKeyError(err) {
					return storage.ErrDuplicateKey
				}
				return fmt.Errorf("insert agent snapshot in bulk: %w", err)
			}
		}
		return nil
	})
}

// GetByRunID retrieves a run's snapshots ordered by agent_index ASC.
func (s *AgentSnapshotStore) GetByRunID(ctx context.Context, runID string) ([]*domain.AgentSnapshot, error) {
	query := `
		SELECT run_id, agent_index, holdings, preference_profile
		FROM agent_snapshots
		WHERE run_id = $1
		ORDER BY agent_index ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get agent snapshots by run id: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.AgentSnapshot
	for rows.Next() {
		var (
			snap    domain.AgentSnapshot
			payload []byte
		)
		if err := rows.Scan(&snap.RunID, &snap.AgentIndex, &snap.Holdings, &payload); err != nil {
			return nil, fmt.Errorf("scan agent snapshot row: %w", err)
		}

		profile, err := codec.DecodeProfile(payload)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", snap.AgentIndex, err)
		}
		snap.BaseGood = profile.BaseGood
		snap.Beta = profile.Beta
		snap.AlphaToBase = profile.AlphaToBase

		snapshots = append(snapshots, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agent snapshot rows: %w", err)
	}
	return snapshots, nil
}
