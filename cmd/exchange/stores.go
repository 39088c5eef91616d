package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"dyad-exchange-lab/internal/storage"
	chstore "dyad-exchange-lab/internal/storage/clickhouse"
	"dyad-exchange-lab/internal/storage/memory"
	"dyad-exchange-lab/internal/storage/migrations"
	"dyad-exchange-lab/internal/storage/postgres"
)

// DSN environment variables, read after .env loading.
const (
	envPostgresDSN   = "RDX_POSTGRES_DSN"
	envClickhouseDSN = "RDX_CLICKHOUSE_DSN"
)

// backends holds the stores selected by flags.
type backends struct {
	name      string
	runs      storage.RunStore
	events    storage.TradeEventStore
	snapshots storage.AgentSnapshotStore
	analytics storage.TradeEventStore // nil without ClickHouse

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// dsnFlag returns the flag value, falling back to the environment.
func dsnFlag(value, env string) string {
	if value != "" {
		return value
	}
	return os.Getenv(env)
}

// openBackends connects and migrates the configured databases.
// With useMemory, in-memory stores replace Postgres.
func openBackends(ctx context.Context, logger *zap.Logger, postgresDSN, clickhouseDSN string, useMemory bool) (*backends, error) {
	b := &backends{}

	switch {
	case useMemory:
		b.name = "memory"
		b.runs = memory.NewRunStore()
		b.events = memory.NewTradeEventStore()
		b.snapshots = memory.NewAgentSnapshotStore()
		logger.Info("using in-memory storage")

	case postgresDSN != "":
		pool, err := postgres.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			b.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		b.name = "postgres"
		b.runs = postgres.NewRunStore(pool)
		b.events = postgres.NewTradeEventStore(pool)
		b.snapshots = postgres.NewAgentSnapshotStore(pool)
		logger.Info("connected to postgres")

	default:
		logger.Info("no primary storage configured, run will not be persisted")
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		b.closers = append(b.closers, func() { _ = conn.Close() })
		b.analytics = chstore.NewTradeEventStore(conn)
		logger.Info("connected to clickhouse")
	}

	return b, nil
}
