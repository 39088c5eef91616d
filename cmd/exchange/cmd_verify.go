package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dyad-exchange-lab/internal/logging"
	"dyad-exchange-lab/internal/storage"
	"dyad-exchange-lab/internal/verification"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay stored runs and compare against their event logs",
		Long: `Verify re-simulates stored runs from their saved configuration and
checks the persisted event log and final holdings for exact equality.

With --clickhouse-dsn the ClickHouse copy of the log is checked instead of
the Postgres one.

Examples:
  exchange verify --run-id 6f1c... --postgres-dsn postgres://localhost/rdx
  exchange verify --run-id a --run-id b --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			level, _ := cmd.Flags().GetString("log-level")
			runIDs, _ := cmd.Flags().GetStringSlice("run-id")
			pgDSN, _ := cmd.Flags().GetString("postgres-dsn")
			chDSN, _ := cmd.Flags().GetString("clickhouse-dsn")

			logger, err := logging.NewLogger(level)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			pgDSN = dsnFlag(pgDSN, envPostgresDSN)
			if pgDSN == "" {
				return fmt.Errorf("verify needs --postgres-dsn or $%s", envPostgresDSN)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := openBackends(ctx, logger, pgDSN, dsnFlag(chDSN, envClickhouseDSN), false)
			if err != nil {
				return err
			}
			defer b.Close()

			var events storage.TradeEventStore = b.events
			if b.analytics != nil {
				events = b.analytics
			}

			v := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
				RunStore:      b.runs,
				EventStore:    events,
				SnapshotStore: b.snapshots,
			})

			report, err := v.VerifyRuns(ctx, runIDs)
			if err != nil {
				return err
			}
			logger.Info("verification finished",
				zap.Int("runs", report.TotalRuns),
				zap.Int("matched", report.MatchedRuns),
				zap.Int("divergent", report.DivergentRuns),
			)

			if jsonOut {
				if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
					return err
				}
			} else {
				printReport(report)
			}

			if report.DivergentRuns > 0 {
				return fmt.Errorf("%d of %d runs diverged", report.DivergentRuns, report.TotalRuns)
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("run-id", nil, "Run ID to verify (repeatable, required)")
	cmd.Flags().String("postgres-dsn", "", "PostgreSQL DSN (default $"+envPostgresDSN+")")
	cmd.Flags().String("clickhouse-dsn", "", "Verify the ClickHouse event copy (default $"+envClickhouseDSN+")")
	cmd.MarkFlagRequired("run-id")

	return cmd
}

// maxPrintedDivergences caps per-run text output.
const maxPrintedDivergences = 10

func printReport(report *verification.VerificationReport) {
	for _, r := range report.Results {
		status := "MATCH"
		if !r.Match {
			status = "DIVERGED"
		}
		fmt.Printf("%s %s (stored=%d replayed=%d)\n", status, r.RunID, r.StoredEvents, r.ReplayedEvents)
		for i, d := range r.Divergences {
			if i == maxPrintedDivergences {
				fmt.Printf("  ... %d more\n", len(r.Divergences)-i)
				break
			}
			fmt.Printf("  %s\n", d)
		}
	}
	fmt.Printf("\n%d/%d runs matched\n", report.MatchedRuns, report.TotalRuns)
}
