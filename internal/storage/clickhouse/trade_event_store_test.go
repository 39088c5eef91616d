package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/storage"
)

func createTestEvents() []domain.TradeEvent {
	return []domain.TradeEvent{
		{Round: 0, I: 4, J: 1, GoodA: 2, GoodB: 0, Price: 1.25, DeltaAI: 0.2, DeltaBI: -0.25, DeltaUI: 0.004, DeltaUJ: 0.003},
		{Round: 0, I: 0, J: 3, GoodA: 1, GoodB: 0, Price: 0.8, DeltaAI: -0.1, DeltaBI: 0.08, DeltaUI: 0.002, DeltaUJ: 0.001},
		{Round: 2, I: 1, J: 2, GoodA: 3, GoodB: 1, Price: 2.5, DeltaAI: 0.05, DeltaBI: -0.125, DeltaUI: 0.0005, DeltaUJ: 0.0007},
	}
}

func TestTradeEventStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeEventStore(conn)

	events := createTestEvents()
	require.NoError(t, store.InsertBulk(ctx, "run-ch-1", events))
	require.NoError(t, store.InsertBulk(ctx, "run-ch-2", events[:1]))

	got, err := store.GetByRunID(ctx, "run-ch-1")
	require.NoError(t, err)
	assert.Equal(t, events, got)

	other, err := store.GetByRunID(ctx, "run-ch-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestTradeEventStore_Duplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeEventStore(conn)

	require.NoError(t, store.InsertBulk(ctx, "run-dup", createTestEvents()))
	err := store.InsertBulk(ctx, "run-dup", createTestEvents())
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTradeEventStore_InvalidInput(t *testing.T) {
	// No connection needed: validation happens before any query
	store := NewTradeEventStore(nil)

	err := store.InsertBulk(context.Background(), "", createTestEvents())
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	assert.NoError(t, store.InsertBulk(context.Background(), "run", nil))
}
