// Package orchestrator runs one simulation end to end.
// Flow: validate → init → run → summarize → persist → report
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/idhash"
	"dyad-exchange-lab/internal/logging"
	"dyad-exchange-lab/internal/metrics"
	"dyad-exchange-lab/internal/observability"
	"dyad-exchange-lab/internal/oracle"
	"dyad-exchange-lab/internal/reporting"
	"dyad-exchange-lab/internal/simulation"
	"dyad-exchange-lab/internal/storage"
)

// Run statuses recorded in metrics.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Orchestrator coordinates one run from config to persisted outputs.
type Orchestrator struct {
	// Stores (all optional)
	runStore       storage.RunStore
	eventStore     storage.TradeEventStore
	snapshotStore  storage.AgentSnapshotStore
	analyticsStore storage.TradeEventStore
	backend        string

	metrics *observability.Metrics
	logger  *zap.Logger

	outDir string
	newID  func() string
	now    func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	// Primary stores; nil skips persistence of that part
	RunStore      storage.RunStore
	EventStore    storage.TradeEventStore
	SnapshotStore storage.AgentSnapshotStore
	Backend       string // metrics label for the primary stores, e.g. "postgres"

	// AnalyticsStore receives a copy of the event log (ClickHouse)
	AnalyticsStore storage.TradeEventStore

	Metrics *observability.Metrics
	Logger  *zap.Logger

	OutDir string // empty skips file outputs

	NewID func() string    // defaults to uuid.NewString
	Now   func() time.Time // defaults to time.Now
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		runStore:       opts.RunStore,
		eventStore:     opts.EventStore,
		snapshotStore:  opts.SnapshotStore,
		analyticsStore: opts.AnalyticsStore,
		backend:        opts.Backend,
		metrics:        opts.Metrics,
		logger:         logging.OrNop(opts.Logger),
		outDir:         opts.OutDir,
		newID:          opts.NewID,
		now:            opts.Now,
	}
	if o.backend == "" {
		o.backend = "primary"
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Result contains results from one orchestrated run.
type Result struct {
	RunID      string
	ConfigHash string
	State      *simulation.State
	Summary    *metrics.Summary
	Outputs    []string // files written, empty without OutDir
	Duration   time.Duration
}

// Run executes the full pipeline for cfg.
func (o *Orchestrator) Run(ctx context.Context, cfg domain.SimConfig) (*Result, error) {
	start := o.now()
	result, err := o.run(ctx, cfg, start)

	elapsed := o.now().Sub(start)
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	if o.metrics != nil {
		o.metrics.RecordRun(status, elapsed.Seconds())
	}
	if err != nil {
		o.logger.Error("run failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return nil, err
	}

	result.Duration = elapsed
	o.logger.Info("run completed",
		zap.String("run_id", result.RunID),
		zap.Int("trades", result.Summary.TotalTrades),
		zap.Int("encounters", result.Summary.Encounters),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, cfg domain.SimConfig, start time.Time) (*Result, error) {
	// Phase 1: Validate and identify
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hash, err := idhash.ComputeConfigHash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash config: %w", err)
	}
	runID := o.newID()
	log := o.logger.With(zap.String("run_id", runID))
	log.Info("starting run",
		zap.String("config_hash", hash),
		zap.Uint64("seed", cfg.Seed),
		zap.Int("agents", cfg.NumAgents),
		zap.Int("goods", len(cfg.Goods)),
		zap.Int("rounds", cfg.Rounds),
		zap.String("pairing_mode", string(cfg.PairingMode)),
	)

	// Phase 2: Simulate
	state, err := o.simulate(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	// Phase 3: Summarize
	summary := metrics.Summarize(cfg, state.Agents, state.Events)

	result := &Result{
		RunID:      runID,
		ConfigHash: hash,
		State:      state,
		Summary:    summary,
	}

	// Phase 4: Persist
	record := &domain.RunRecord{
		RunID:      runID,
		ConfigHash: hash,
		Config:     cfg,
		AgentCount: len(state.Agents),
		EventCount: len(state.Events),
		CreatedAt:  start.UnixMilli(),
	}
	if err := o.persist(ctx, record, state); err != nil {
		return nil, err
	}

	// Phase 5: Report
	if o.outDir != "" {
		paths, err := reporting.WriteOutputs(o.outDir, &reporting.Report{
			RunID:       runID,
			ConfigHash:  hash,
			GeneratedAt: start,
			Config:      cfg,
			Summary:     summary,
			Events:      state.Events,
		})
		if err != nil {
			return nil, err
		}
		result.Outputs = paths
		log.Info("outputs written", zap.String("dir", o.outDir), zap.Int("files", len(paths)))
	}

	return result, nil
}

// simulate runs round by round so cancellation is honored between rounds.
func (o *Orchestrator) simulate(ctx context.Context, cfg domain.SimConfig, log *zap.Logger) (*simulation.State, error) {
	state, err := simulation.InitAgents(cfg, simulation.NewInitRNG(cfg.Seed))
	if err != nil {
		return nil, err
	}

	opts := simulation.RunnerOptions{}
	if o.metrics != nil {
		opts.Oracle = observability.InstrumentOracle(oracle.NewCobbDouglasWalras(), o.metrics)
		opts.Observer = o.metrics
	}
	runner, err := simulation.NewRunner(cfg, opts)
	if err != nil {
		return nil, err
	}

	rng := simulation.NewPairingRNG(cfg.Seed)
	for round := 0; round < cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		before := len(state.Events)
		runner.RunRound(state, rng, round)
		log.Debug("round finished", zap.Int("round", round), zap.Int("trades", len(state.Events)-before))
	}
	return state, nil
}

func (o *Orchestrator) persist(ctx context.Context, record *domain.RunRecord, state *simulation.State) error {
	if o.runStore != nil {
		if err := o.timed(o.backend, "insert_run", func() error {
			return o.runStore.Insert(ctx, record)
		}); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
	}

	if o.snapshotStore != nil {
		snaps := domain.SnapshotPopulation(record.RunID, record.Config.BaseGood, state.Agents)
		if err := o.timed(o.backend, "insert_snapshots", func() error {
			return o.snapshotStore.InsertBulk(ctx, snaps)
		}); err != nil {
			return fmt.Errorf("persist snapshots: %w", err)
		}
	}

	if o.eventStore != nil {
		if err := o.timed(o.backend, "insert_events", func() error {
			return o.eventStore.InsertBulk(ctx, record.RunID, state.Events)
		}); err != nil {
			return fmt.Errorf("persist events: %w", err)
		}
	}

	// Analytics copy is best effort: the primary log is authoritative
	if o.analyticsStore != nil {
		err := o.timed("clickhouse", "insert_events", func() error {
			return o.analyticsStore.InsertBulk(ctx, record.RunID, state.Events)
		})
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			o.logger.Warn("analytics insert failed", zap.String("run_id", record.RunID), zap.Error(err))
		}
	}
	return nil
}

func (o *Orchestrator) timed(database, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	if o.metrics != nil {
		o.metrics.RecordDBQuery(database, operation, time.Since(start).Seconds(), err)
	}
	return err
}
