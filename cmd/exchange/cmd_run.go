package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dyad-exchange-lab/internal/config"
	"dyad-exchange-lab/internal/logging"
	"dyad-exchange-lab/internal/metrics"
	"dyad-exchange-lab/internal/observability"
	"dyad-exchange-lab/internal/orchestrator"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation from a config file",
		Long: `Run loads a JSON or YAML config, simulates it, and optionally persists
the run and writes report files.

Examples:
  exchange run --config sim.yaml --out-dir out
  exchange run --config sim.json --postgres-dsn postgres://localhost/rdx
  RDX_SEED=7 exchange run --config sim.yaml --use-memory --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			level, _ := cmd.Flags().GetString("log-level")
			configPath, _ := cmd.Flags().GetString("config")
			outDir, _ := cmd.Flags().GetString("out-dir")
			pgDSN, _ := cmd.Flags().GetString("postgres-dsn")
			chDSN, _ := cmd.Flags().GetString("clickhouse-dsn")
			useMemory, _ := cmd.Flags().GetBool("use-memory")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			logger, err := logging.NewLogger(level)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := observability.NewMetrics("")
			if metricsAddr != "" {
				srv := startMetricsServer(logger, metricsAddr, m)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			b, err := openBackends(ctx, logger,
				dsnFlag(pgDSN, envPostgresDSN),
				dsnFlag(chDSN, envClickhouseDSN),
				useMemory)
			if err != nil {
				return err
			}
			defer b.Close()

			orch := orchestrator.New(orchestrator.Options{
				RunStore:       b.runs,
				EventStore:     b.events,
				SnapshotStore:  b.snapshots,
				Backend:        b.name,
				AnalyticsStore: b.analytics,
				Metrics:        m,
				Logger:         logger,
				OutDir:         outDir,
			})

			result, err := orch.Run(ctx, cfg)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(runOutput{
					RunID:      result.RunID,
					ConfigHash: result.ConfigHash,
					DurationMs: result.Duration.Milliseconds(),
					Outputs:    result.Outputs,
					Summary:    result.Summary,
				})
			}

			fmt.Printf("Run %s completed in %s\n", result.RunID, result.Duration.Round(time.Millisecond))
			fmt.Printf("  Config hash: %s\n", result.ConfigHash)
			fmt.Printf("  Agents:      %d\n", result.Summary.Agents)
			fmt.Printf("  Encounters:  %d\n", result.Summary.Encounters)
			fmt.Printf("  Trades:      %d\n", result.Summary.TotalTrades)
			if result.Summary.TotalTrades > 0 {
				fmt.Printf("  Price p50:   %.6f\n", result.Summary.PriceMedian)
			}
			for _, path := range result.Outputs {
				fmt.Printf("  Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().String("config", "", "Path to JSON or YAML simulation config (required)")
	cmd.Flags().String("out-dir", "", "Directory for report files (empty to skip)")
	cmd.Flags().String("postgres-dsn", "", "PostgreSQL DSN (default $"+envPostgresDSN+")")
	cmd.Flags().String("clickhouse-dsn", "", "ClickHouse DSN for the analytics copy (default $"+envClickhouseDSN+")")
	cmd.Flags().Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	cmd.Flags().String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	cmd.MarkFlagRequired("config")

	return cmd
}

// runOutput is the --json form of a finished run.
type runOutput struct {
	RunID      string           `json:"run_id"`
	ConfigHash string           `json:"config_hash"`
	DurationMs int64            `json:"duration_ms"`
	Outputs    []string         `json:"outputs,omitempty"`
	Summary    *metrics.Summary `json:"summary"`
}

func startMetricsServer(logger *zap.Logger, addr string, m *observability.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	return srv
}
