package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/storage"
)

func TestAgentSnapshotStore_InsertBulkAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestRun(t, ctx, pool, "run-snap")

	pop := domain.Population{
		{Holdings: []float64{1.5, 0.7, 2}, Beta: []float64{0.4, 0.35, 0.25}, AlphaToBase: []float64{0.5, 0.45, 0.6}},
		{Holdings: []float64{0.9, 1.1, 1}, Beta: []float64{0.3, 0.3, 0.4}, AlphaToBase: []float64{0.5, 0.5, 0.43}},
	}
	snaps := domain.SnapshotPopulation("run-snap", 0, pop)

	store := NewAgentSnapshotStore(pool)
	require.NoError(t, store.InsertBulk(ctx, snaps))

	got, err := store.GetByRunID(ctx, "run-snap")
	require.NoError(t, err)
	assert.Equal(t, snaps, got)
}

func TestAgentSnapshotStore_DuplicateRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestRun(t, ctx, pool, "run-snap")

	store := NewAgentSnapshotStore(pool)
	snap := func(idx int) *domain.AgentSnapshot {
		return &domain.AgentSnapshot{
			RunID: "run-snap", AgentIndex: idx,
			Holdings: []float64{1, 1}, Beta: []float64{0.5, 0.5}, AlphaToBase: []float64{0.5, 0.5},
		}
	}

	require.NoError(t, store.InsertBulk(ctx, []*domain.AgentSnapshot{snap(0)}))

	err := store.InsertBulk(ctx, []*domain.AgentSnapshot{snap(1), snap(0)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByRunID(ctx, "run-snap")
	require.NoError(t, err)
	assert.Len(t, got, 1, "failed batch must roll back")
}
